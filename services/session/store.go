package session

import (
	"context"
	"fmt"

	"github.com/Ethan-Swanepoel/RacerBooks/lib/mylog"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/mystore"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/mytime"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/myuuid"
)

type sessionStore struct {
	store  mystore.Store[Session]
	nower  mytime.Nower
	uuider myuuid.UUIDer
	logger mylog.Logger
}

func NewStore(store mystore.Store[Session], nower mytime.Nower, uuider myuuid.UUIDer, logger mylog.Logger) *sessionStore {
	return &sessionStore{
		store:  store,
		nower:  nower,
		uuider: uuider,
		logger: logger,
	}
}

// Create issues a fresh token. A user may hold many sessions at once.
func (s *sessionStore) Create(c context.Context, externalUID string) (string, error) {
	token := s.uuider.Create()
	now := s.nower.Now()

	err := s.store.Put(c, token, Session{
		Token:        token,
		ExternalUID:  externalUID,
		CreatedAt:    now,
		LastAccessed: now,
	})
	if err != nil {
		return "", fmt.Errorf("error storing session: %s", err)
	}

	return token, nil
}

// Resolve returns the external user id bound to the token and slides the idle
// window. Sessions past the idle timeout are removed on observation.
func (s *sessionStore) Resolve(c context.Context, token string) (string, bool, error) {
	if token == "" {
		return "", false, nil
	}

	sess, found, err := s.store.Get(c, token)
	if err != nil {
		return "", false, fmt.Errorf("error fetching session: %s", err)
	}
	if !found {
		return "", false, nil
	}

	now := s.nower.Now()
	if now.Sub(sess.LastAccessed) > IdleTimeout {
		s.logger.Log(c, token, mylog.SeverityInfo, "Session %s expired", token)
		err = s.store.Delete(c, token)
		if err != nil {
			return "", false, fmt.Errorf("error removing expired session: %s", err)
		}
		return "", false, nil
	}

	sess.LastAccessed = now
	err = s.store.Put(c, token, sess)
	if err != nil {
		return "", false, fmt.Errorf("error refreshing session: %s", err)
	}

	return sess.ExternalUID, true, nil
}

func (s *sessionStore) Clear(c context.Context, token string) error {
	if token == "" {
		return nil
	}

	err := s.store.Delete(c, token)
	if err != nil {
		return fmt.Errorf("error clearing session: %s", err)
	}

	return nil
}
