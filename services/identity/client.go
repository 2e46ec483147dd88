package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Ethan-Swanepoel/RacerBooks/lib/myerrors"
)

const (
	httpClientTimeout = 5 * time.Second
)

type restClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewRESTClient is constructed once at process start and injected into every
// service that needs the provider.
func NewRESTClient(baseURL string, apiKey string) *restClient {
	return &restClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: httpClientTimeout,
		},
	}
}

type credentialsRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type accountResponse struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
}

type providerErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (cl restClient) SignIn(c context.Context, email string, password string) (string, error) {
	return cl.post(c, "accounts:signInWithPassword", email, password)
}

func (cl restClient) SignUp(c context.Context, email string, password string) (string, error) {
	return cl.post(c, "accounts:signUp", email, password)
}

func (cl restClient) post(c context.Context, operation string, email string, password string) (string, error) {
	url := fmt.Sprintf("%s/v1/%s?key=%s", cl.baseURL, operation, cl.apiKey)

	requestBody, err := json.Marshal(credentialsRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return "", myerrors.NewInternalError(fmt.Errorf("error marshalling request: %s", err))
	}

	httpReq, err := http.NewRequestWithContext(c, http.MethodPost, url, bytes.NewReader(requestBody))
	if err != nil {
		return "", myerrors.NewInternalError(fmt.Errorf("error creating request: %s", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := cl.httpClient.Do(httpReq)
	if err != nil {
		// Provider unreachable is surfaced as a plain auth-failure, never retried
		return "", myerrors.NewAuthenticationError(fmt.Errorf("identity provider unavailable: %s", err))
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", myerrors.NewAuthenticationError(fmt.Errorf("error reading provider response: %s", err))
	}

	if httpResp.StatusCode != http.StatusOK {
		return "", myerrors.NewAuthenticationError(fmt.Errorf("%s", parseProviderError(respBody)))
	}

	resp := accountResponse{}
	err = json.Unmarshal(respBody, &resp)
	if err != nil {
		return "", myerrors.NewAuthenticationError(fmt.Errorf("error parsing provider response: %s", err))
	}
	if resp.LocalID == "" {
		return "", myerrors.NewAuthenticationError(fmt.Errorf("provider returned no account identifier"))
	}

	return resp.LocalID, nil
}

// parseProviderError extracts the provider-supplied message so it can be shown
// to the user verbatim, the way the original error payload intends.
func parseProviderError(respBody []byte) string {
	resp := providerErrorResponse{}
	err := json.Unmarshal(respBody, &resp)
	if err != nil || resp.Error.Message == "" {
		return "identity provider rejected the request"
	}

	return resp.Error.Message
}
