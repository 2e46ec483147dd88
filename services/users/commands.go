package users

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/Ethan-Swanepoel/RacerBooks/lib/myerrors"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/mylog"
	"github.com/Ethan-Swanepoel/RacerBooks/lib/mystore"
	"github.com/Ethan-Swanepoel/RacerBooks/services/users/userevents"
)

const specialCharacters = "!@#$%^&*"

// register creates the credential pair at the identity provider and only then
// the local user row. Validation happens strictly before any provider call:
// email format, password length, password complexity, email uniqueness.
func (s *service) register(c context.Context, email string, password string, role Role) (User, error) {
	s.logger.Log(c, email, mylog.SeverityInfo, "Registering user %s with role %s", email, role)

	if !strings.Contains(email, "@") {
		return User{}, myerrors.NewInvalidInputErrorf("Invalid email entered")
	}

	if len(password) < 8 {
		return User{}, myerrors.NewInvalidInputErrorf("Password must be at least 8 characters.")
	}

	if !hasSpecialCharacter(password) || !hasNumber(password) {
		return User{}, myerrors.NewInvalidInputErrorf("Password must contain at least 1 special character (!@#$%%^&*) and 1 number.")
	}

	exists, err := s.Exists(c, email)
	if err != nil {
		return User{}, myerrors.NewInternalError(err)
	}
	if exists {
		return User{}, myerrors.NewConflictError(fmt.Errorf("Email already exists."))
	}

	_, err = s.identity.SignUp(c, email, password)
	if err != nil {
		return User{}, err
	}

	externalUID, err := s.identity.SignIn(c, email, password)
	if err != nil {
		return User{}, err
	}

	user := User{
		Email:       email,
		Role:        role,
		ExternalUID: externalUID,
	}

	err = s.userStore.RunInTransaction(c, func(c context.Context) error {
		// re-check under the transaction: the fast-path check above raced
		_, found, err := s.userStore.Get(c, email)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if found {
			return myerrors.NewConflictError(fmt.Errorf("Email already exists."))
		}

		err = s.userStore.Put(c, email, user)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		err = s.publisher.Publish(c, userevents.TopicName, userevents.UserRegistered{
			Email: email,
			Role:  string(role),
		})
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		return nil
	})
	if err != nil {
		return User{}, err
	}

	return user, nil
}

func (s *service) listUsers(c context.Context) ([]User, error) {
	users, err := s.userStore.List(c)
	if err != nil {
		return nil, myerrors.NewInternalError(err)
	}

	return users, nil
}

func (s *service) getUser(c context.Context, email string) (User, error) {
	user, found, err := s.userStore.Get(c, email)
	if err != nil {
		return User{}, myerrors.NewInternalError(err)
	}
	if !found {
		return User{}, myerrors.NewNotFoundError(fmt.Errorf("user with email %s not found", email))
	}

	return user, nil
}

// GetByExternalUID resolves the local user belonging to a provider account id.
func (s *service) GetByExternalUID(c context.Context, externalUID string) (User, bool, error) {
	matches, err := s.userStore.Query(c, []mystore.Filter{{Field: "ExternalUID", Compare: "=", Value: externalUID}}, "")
	if err != nil {
		return User{}, false, myerrors.NewInternalError(err)
	}
	if len(matches) == 0 {
		return User{}, false, nil
	}

	return matches[0], true, nil
}

func (s *service) Exists(c context.Context, email string) (bool, error) {
	_, found, err := s.userStore.Get(c, email)
	if err != nil {
		return false, err
	}

	return found, nil
}

func hasSpecialCharacter(input string) bool {
	return strings.ContainsAny(input, specialCharacters)
}

func hasNumber(input string) bool {
	for _, r := range input {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
