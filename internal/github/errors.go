package github

import (
	"errors"
	"fmt"
)

// NotFoundError indicates that the repository or the file does not exist
// (or is not visible with the current credentials).
type NotFoundError struct {
	Ref   Ref
	cause error
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return "file not found"
	}
	return fmt.Sprintf("%s not found", e.Ref)
}

func (e *NotFoundError) Unwrap() error { return e.cause }

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// AuthError indicates missing or rejected GitHub credentials.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e == nil || e.Message == "" {
		return "GitHub authentication failed"
	}
	return e.Message
}

func IsAuthError(err error) bool {
	var e *AuthError
	return errors.As(err, &e)
}
