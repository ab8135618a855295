package pasetotoken

import "fmt"

// ErrConfig reports unusable key material or manager settings. It is a startup error.
type ErrConfig struct{ Msg string }

func (e ErrConfig) Error() string { return "admin token config: " + e.Msg }

// ErrInvalidToken covers every reason a presented token is rejected. Callers answer 401.
type ErrInvalidToken struct{ Err error }

func (e ErrInvalidToken) Error() string { return fmt.Sprintf("invalid admin token: %v", e.Err) }
func (e ErrInvalidToken) Unwrap() error { return e.Err }
