package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("submission not found")
	ErrStatusTransition = errors.New("submission status can only change once, from received")
)

// Status is the lifecycle state of a Submission.
type Status string

const (
	StatusReceived           Status = "received"
	StatusNotified           Status = "notified"
	StatusNotificationFailed Status = "notification-failed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusReceived, StatusNotified, StatusNotificationFailed:
		return true
	}
	return false
}

// Submission is one lead captured by the public contact form.
// Optional contact fields are stored as empty strings when absent.
type Submission struct {
	ID             uuid.UUID         `json:"id"`
	FullName       string            `json:"full_name"`
	Email          string            `json:"email"`
	Phone          string            `json:"phone,omitempty"`
	Company        string            `json:"company,omitempty"`
	ServiceNeeded  string            `json:"service_needed,omitempty"`
	ProjectDetails string            `json:"project_details"`
	PageURL        string            `json:"page_url,omitempty"`
	UserAgent      string            `json:"user_agent,omitempty"`
	IPAddress      string            `json:"ip_address"`
	Status         Status            `json:"status"`
	Metadata       map[string]string `json:"metadata"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

type ListFilter struct {
	Status *Status
	Limit  int
	Offset int
}

// Store persists submissions. Implementations assign ID and timestamps on Create.
type Store interface {
	Create(ctx context.Context, s *Submission) error
	// UpdateStatus moves a received submission to a terminal status and merges extra into its metadata.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, extra map[string]string) error
	Get(ctx context.Context, id uuid.UUID) (*Submission, error)
	List(ctx context.Context, f ListFilter) ([]*Submission, int, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)

	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// prepareCreate stamps identity and timestamps. Postgres keeps microseconds, so both
// backends truncate to that precision to round-trip exactly.
func prepareCreate(s *Submission) error {
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	now := time.Now().UTC().Truncate(time.Microsecond)

	s.ID = id
	s.CreatedAt = now
	s.UpdatedAt = now
	if s.Status == "" {
		s.Status = StatusReceived
	}
	if s.Metadata == nil {
		s.Metadata = map[string]string{}
	}
	return nil
}

func normalizeFilter(f ListFilter) ListFilter {
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

func checkTransition(status Status) error {
	if status == StatusReceived || !status.Valid() {
		return ErrStatusTransition
	}
	return nil
}
