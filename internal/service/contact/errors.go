package contact

import (
	"errors"
	"strings"

	"github.com/Alijeyrad/studio_backend/pkg/ratelimit"
)

var (
	ErrInvalidBody   = errors.New("invalid request body")
	ErrPersist       = errors.New("failed to save submission")
	ErrNotifySkipped = errors.New("lead notification is not configured")
)

// FieldError is one failing field of a submission.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Details []FieldError
}

func (e *ValidationError) Error() string {
	fields := make([]string, len(e.Details))
	for i, d := range e.Details {
		fields[i] = d.Field
	}
	return "validation failed: " + strings.Join(fields, ", ")
}

// QuotaError is returned when the caller exhausted its submissions for the current window.
type QuotaError struct {
	Decision ratelimit.Decision
}

func (e *QuotaError) Error() string {
	return "too many requests"
}
