package users

import (
	"errors"
	"fmt"
)

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidArguments is returned when username or password is missing or unusable.
	ErrInvalidArguments = errors.New("username or password not provided")
	// ErrCredentialsTooLong is returned when the username exceeds 150 characters or the
	// password exceeds 72 bytes. It wraps ErrInvalidArguments.
	ErrCredentialsTooLong = fmt.Errorf("%w: username or password too long", ErrInvalidArguments)
	// ErrUserAlreadyExists is returned when the username is taken.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidCredentials is returned by Authenticate for any unknown user or wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UnspecifiedError wraps a storage or hashing failure that has no more specific meaning.
type UnspecifiedError struct {
	Op  string
	Err error
}

func (e *UnspecifiedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UnspecifiedError) Unwrap() error {
	return e.Err
}

func unspecified(op string, err error) error {
	return &UnspecifiedError{Op: op, Err: err}
}

// IsUnspecified reports whether err carries an UnspecifiedError.
func IsUnspecified(err error) bool {
	var u *UnspecifiedError
	return errors.As(err, &u)
}
