package domain

import (
	"errors"
	"fmt"
)

// ErrorKind distinguishes the failure families surfaced by the toolkit.
type ErrorKind string

const (
	KindGeneric ErrorKind = "generic"
	KindAuth    ErrorKind = "auth"
	KindAPI     ErrorKind = "api"
)

var (
	// ErrNotAuthenticated is returned when an operation runs before a
	// successful authentication.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNoFieldsProvided is returned by partial updates with nothing to update.
	ErrNoFieldsProvided = errors.New("no fields provided")
)

// Error is the base toolkit error.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Kind() ErrorKind { return KindGeneric }

// AuthError reports a failure while loading, refreshing, obtaining, saving or
// revoking credentials.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AuthError) Unwrap() error { return e.Err }

func (e *AuthError) Kind() ErrorKind { return KindAuth }

// APIError reports a failed remote call. StatusCode is 0 when no HTTP response
// was received. Body holds the raw response body.
type APIError struct {
	Message    string
	StatusCode int
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

func (e *APIError) Kind() ErrorKind { return KindAPI }

// KindOf returns the kind of the first toolkit error in err's chain, or the
// empty kind if there is none.
func KindOf(err error) ErrorKind {
	var k interface{ Kind() ErrorKind }
	if errors.As(err, &k) {
		return k.Kind()
	}
	return ""
}

// NewAuthError wraps err as an AuthError with the given message.
func NewAuthError(msg string, err error) *AuthError {
	return &AuthError{Message: msg, Err: err}
}

// NotAuthenticatedAPIError is returned by client operations invoked before
// the client has authenticated service handles.
func NotAuthenticatedAPIError() *APIError {
	return &APIError{
		Message: "not authenticated; call Authenticate first",
		Err:     ErrNotAuthenticated,
	}
}
