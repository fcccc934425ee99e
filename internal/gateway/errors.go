package gateway

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced to callers.
var (
	ErrRemoteUnavailable  = errors.New("remote service unavailable")
	ErrValidationFailed   = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotFound           = errors.New("not found")
)

// RemoteError is a non-success answer from the remote service.
type RemoteError struct {
	Status  int
	Message string
	kind    error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%v: status %d: %s", e.kind, e.Status, e.Message)
}

func (e *RemoteError) Unwrap() error { return e.kind }

// Message extracts the user-facing text of err, preferring the server's own wording.
func Message(err error) string {
	var re *RemoteError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	return err.Error()
}

func invalid(format string, args ...any) error {
	return &RemoteError{Message: fmt.Sprintf(format, args...), kind: ErrValidationFailed}
}
