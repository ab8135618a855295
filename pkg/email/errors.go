package email

import "fmt"

// ErrDisabled is returned by Send when email.enabled is false.
type ErrDisabled struct{}

func (e ErrDisabled) Error() string { return "email delivery is disabled" }

type ErrInvalidMessage struct{ Reason string }

func (e ErrInvalidMessage) Error() string { return "email message rejected: " + e.Reason }

// ErrSend wraps the transport error of a failed delivery.
type ErrSend struct {
	Provider string
	Err      error
}

func (e ErrSend) Error() string { return fmt.Sprintf("email delivery via %s failed: %v", e.Provider, e.Err) }
func (e ErrSend) Unwrap() error { return e.Err }
