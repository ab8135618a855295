package admin

import "errors"

var (
	ErrInvalidCredentials = errors.New("password is incorrect")
	ErrNotConfigured      = errors.New("admin access is not configured")
	ErrNotFound           = errors.New("submission not found")
	ErrInvalidStatus      = errors.New("unknown submission status")
)
