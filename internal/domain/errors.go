package domain

import "errors"

// Error kinds. Match with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrStore        = errors.New("store error")
)

// Error pairs a kind with a client-facing message and an optional cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.Error()
	}
}

func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Err }

func InvalidInput(msg string) error { return &Error{Kind: ErrInvalidInput, Message: msg} }

func Unauthorized(msg string, cause error) error {
	return &Error{Kind: ErrUnauthorized, Message: msg, Err: cause}
}

func NotFound(msg string) error { return &Error{Kind: ErrNotFound, Message: msg} }

func Conflict(msg string) error { return &Error{Kind: ErrConflict, Message: msg} }

// StoreFailure wraps a persistence error. Errors that already carry a kind
// are returned unchanged.
func StoreFailure(err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{Kind: ErrStore, Err: err}
}

// Message returns the client-facing text of err.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		if de.Message != "" {
			return de.Message
		}
		if de.Err != nil {
			return de.Err.Error()
		}
	}
	return err.Error()
}
