package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/studio_backend/internal/repo"
	pasetotoken "github.com/Alijeyrad/studio_backend/pkg/paseto"
	"github.com/Alijeyrad/studio_backend/pkg/reqctx"
	"github.com/Alijeyrad/studio_backend/pkg/util/password"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type ListRequest struct {
	Status  string
	Page    int
	PerPage int
}

type ListResponse struct {
	Items   []*repo.Submission `json:"items"`
	Total   int                `json:"total"`
	Page    int                `json:"page"`
	PerPage int                `json:"per_page"`
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Stats struct {
	Total    int                 `json:"total"`
	ByStatus map[repo.Status]int `json:"by_status"`
}

// TokenIssuer is the part of the PASETO manager login needs.
type TokenIssuer interface {
	IssueAccess(subject, role string) (string, time.Time, error)
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Login(ctx context.Context, pw string) (*Session, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*repo.Submission, error)
	Stats(ctx context.Context) (*Stats, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

const subject = "admin"

type adminService struct {
	store        repo.Store
	tokens       TokenIssuer
	passwordHash string
	floor        time.Duration
	log          *slog.Logger

	now   func() time.Time
	sleep func(d time.Duration)
}

func New(store repo.Store, tokens TokenIssuer, passwordHash string, loginFloor time.Duration, log *slog.Logger) Service {
	if log == nil {
		log = slog.Default()
	}
	return &adminService{
		store:        store,
		tokens:       tokens,
		passwordHash: strings.TrimSpace(passwordHash),
		floor:        loginFloor,
		log:          log.With(slog.String("component", "admin")),
		now:          time.Now,
		sleep:        time.Sleep,
	}
}

// Login takes at least the configured floor whatever the outcome, so response time does not
// reveal whether the password matched. The pad ignores cancellation.
func (s *adminService) Login(ctx context.Context, pw string) (*Session, error) {
	started := s.now()
	defer func() {
		if wait := s.floor - s.now().Sub(started); wait > 0 {
			s.sleep(wait)
		}
	}()

	if s.passwordHash == "" || s.tokens == nil {
		return nil, ErrNotConfigured
	}

	if err := password.Verify(s.passwordHash, pw); err != nil {
		if !errors.Is(err, password.ErrMismatch) {
			s.log.Error("admin password hash is unusable", slog.Any("error", err))
			return nil, ErrNotConfigured
		}
		s.log.Warn("admin login failed", reqctx.LogAttrs(ctx)...)
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.tokens.IssueAccess(subject, pasetotoken.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("issue admin token: %w", err)
	}
	s.log.Info("admin logged in", reqctx.LogAttrs(ctx)...)
	return &Session{Token: token, ExpiresAt: exp}, nil
}

func (s *adminService) List(ctx context.Context, req ListRequest) (*ListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 || req.PerPage > 100 {
		req.PerPage = 20
	}

	f := repo.ListFilter{Limit: req.PerPage, Offset: (req.Page - 1) * req.PerPage}
	if req.Status != "" {
		st := repo.Status(req.Status)
		if !st.Valid() {
			return nil, ErrInvalidStatus
		}
		f.Status = &st
	}

	items, total, err := s.store.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	if items == nil {
		items = []*repo.Submission{}
	}
	return &ListResponse{Items: items, Total: total, Page: req.Page, PerPage: req.PerPage}, nil
}

func (s *adminService) Get(ctx context.Context, id uuid.UUID) (*repo.Submission, error) {
	sub, err := s.store.Get(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return sub, nil
}

func (s *adminService) Stats(ctx context.Context) (*Stats, error) {
	counts, err := s.store.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count submissions: %w", err)
	}

	out := &Stats{ByStatus: map[repo.Status]int{
		repo.StatusReceived:           0,
		repo.StatusNotified:           0,
		repo.StatusNotificationFailed: 0,
	}}
	for st, n := range counts {
		out.ByStatus[st] = n
		out.Total += n
	}
	return out, nil
}
