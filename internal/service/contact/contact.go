package contact

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Alijeyrad/studio_backend/internal/repo"
	"github.com/Alijeyrad/studio_backend/pkg/observability"
	"github.com/Alijeyrad/studio_backend/pkg/ratelimit"
	"github.com/Alijeyrad/studio_backend/pkg/sms"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// ClientContext identifies the caller. IP is the rate limit key.
type ClientContext struct {
	IP        string
	UserAgent string
	Referrer  string
	RequestID string
}

type Result struct {
	ID      uuid.UUID
	Message string
}

type Options struct {
	Window         time.Duration
	MaxRequests    int
	SuccessMessage string
	NotifyTimeout  time.Duration
	PhoneRegion    string
}

const DefaultSuccessMessage = "Thank you! We'll be in touch within one business day."

// Deps are the collaborators of the contact pipeline. Alerter and Metrics may be nil.
type Deps struct {
	Store    repo.Store
	Limiter  ratelimit.Limiter
	Notifier Notifier
	Alerter  sms.Alerter
	Metrics  *observability.LeadMetrics
	Log      *slog.Logger
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Submit runs quota, bot trap, validation, persistence and notification in that order.
	// Only *QuotaError, ErrInvalidBody, *ValidationError and ErrPersist reach the caller.
	Submit(ctx context.Context, client ClientContext, body []byte) (*Result, error)

	// Wait blocks until every pending status update has finished.
	Wait()
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type contactService struct {
	store    repo.Store
	limiter  ratelimit.Limiter
	notifier Notifier
	alerter  sms.Alerter
	metrics  *observability.LeadMetrics
	log      *slog.Logger
	form     *formValidator
	opts     Options
	now      func() time.Time

	pending conc.WaitGroup
}

func New(d Deps, opts Options) Service {
	if opts.Window <= 0 {
		opts.Window = 15 * time.Minute
	}
	if opts.MaxRequests <= 0 {
		opts.MaxRequests = 5
	}
	if opts.SuccessMessage == "" {
		opts.SuccessMessage = DefaultSuccessMessage
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = 15 * time.Second
	}
	log := d.Log
	if log == nil {
		log = slog.Default()
	}

	return &contactService{
		store:    d.Store,
		limiter:  d.Limiter,
		notifier: d.Notifier,
		alerter:  d.Alerter,
		metrics:  d.Metrics,
		log:      log.With(slog.String("component", "contact")),
		form:     newFormValidator(opts.PhoneRegion),
		opts:     opts,
		now:      time.Now,
	}
}

func (s *contactService) Submit(ctx context.Context, client ClientContext, body []byte) (*Result, error) {
	ctx, span := observability.StartSpan(ctx, "contact.submit", attribute.String("client.address", client.IP))
	defer span.End()

	res, err := s.submit(ctx, client, body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.String("lead.id", res.ID.String()))
	}
	return res, err
}

func (s *contactService) submit(ctx context.Context, client ClientContext, body []byte) (*Result, error) {
	log := s.log.With(slog.String("ip", client.IP), slog.String("request_id", client.RequestID))

	if err := s.checkQuota(ctx, log, client.IP); err != nil {
		return nil, err
	}

	var payload map[string]any
	if err := sonic.Unmarshal(body, &payload); err != nil || payload == nil {
		s.metrics.Submission(observability.OutcomeInvalid)
		return nil, ErrInvalidBody
	}

	if isBot(payload) {
		log.Info("honeypot tripped, discarding submission")
		s.metrics.Submission(observability.OutcomeBotTrap)
		return s.decoy()
	}

	form, err := s.form.bind(payload)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			s.metrics.Submission(observability.OutcomeInvalid)
			return nil, verr
		}
		return nil, err
	}

	sub := &repo.Submission{
		FullName:       form.FullName,
		Email:          form.Email,
		Phone:          form.Phone,
		Company:        form.Company,
		ServiceNeeded:  form.ServiceNeeded,
		ProjectDetails: form.ProjectDetails,
		PageURL:        form.PageURL,
		UserAgent:      client.UserAgent,
		IPAddress:      client.IP,
		Status:         repo.StatusReceived,
		Metadata:       provenance(client),
	}
	if err := s.store.Create(ctx, sub); err != nil {
		log.Error("failed to persist submission", slog.Any("error", err))
		s.metrics.Submission(observability.OutcomePersistError)
		return nil, ErrPersist
	}
	log.Info("submission stored", slog.String("id", sub.ID.String()))
	s.metrics.Submission(observability.OutcomeAccepted)

	status, extra := s.notify(ctx, log, sub)

	s.pending.Go(func() {
		s.recordStatus(context.WithoutCancel(ctx), log, sub.ID, status, extra)
	})

	return &Result{ID: sub.ID, Message: s.opts.SuccessMessage}, nil
}

// Wait reports a panicking status update instead of re-raising it on the caller.
func (s *contactService) Wait() {
	if r := s.pending.WaitAndRecover(); r != nil {
		s.log.Error("status update panicked", slog.String("panic", r.String()))
	}
}

// checkQuota admits the request when the limiter itself is unavailable.
func (s *contactService) checkQuota(ctx context.Context, log *slog.Logger, ip string) error {
	d, err := s.limiter.Check(ctx, ip, s.opts.Window, s.opts.MaxRequests)
	if err != nil {
		log.Warn("rate limiter unavailable, admitting request", slog.Any("error", err))
		s.metrics.LimiterError()
		return nil
	}
	if !d.Allowed {
		log.Info("submission quota exceeded", slog.Time("reset", d.ResetTime))
		s.metrics.Submission(observability.OutcomeQuota)
		return &QuotaError{Decision: d}
	}
	return nil
}

// decoy mirrors a successful result so a bot cannot tell it was trapped.
func (s *contactService) decoy() (*Result, error) {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return &Result{ID: id, Message: s.opts.SuccessMessage}, nil
}

func provenance(client ClientContext) map[string]string {
	meta := map[string]string{}
	if client.Referrer != "" {
		meta["referrer"] = client.Referrer
	}
	if client.RequestID != "" {
		meta["request_id"] = client.RequestID
	}
	return meta
}

// notify sends the owner email and the optional SMS alert, and returns the status to record.
// An unconfigured email channel counts as delivered.
func (s *contactService) notify(ctx context.Context, log *slog.Logger, sub *repo.Submission) (repo.Status, map[string]string) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.NotifyTimeout)
	defer cancel()

	ctx, span := observability.StartSpan(ctx, "contact.notify", attribute.String("lead.id", sub.ID.String()))
	defer span.End()

	status := repo.StatusNotified
	extra := map[string]string{}

	err := s.notifier.Notify(ctx, sub)
	switch {
	case errors.Is(err, ErrNotifySkipped):
		extra["notification"] = "skipped"
		s.metrics.Notification("email", "skipped")
	case err != nil:
		status = repo.StatusNotificationFailed
		extra["notification"] = "failed"
		extra["notification_error"] = err.Error()
		s.metrics.Notification("email", "failed")
		log.Warn("lead notification failed", slog.String("id", sub.ID.String()), slog.Any("error", err))
	default:
		extra["notification"] = "sent"
		extra["notified_at"] = s.now().UTC().Format(time.RFC3339)
		s.metrics.Notification("email", "sent")
	}

	if s.alerter != nil && s.alerter.IsEnabled() {
		err := s.alerter.SendLeadAlert(ctx, sms.LeadAlert{
			Name:    sub.FullName,
			Service: sub.ServiceNeeded,
			Ref:     sub.ID.String()[:8],
		})
		if err != nil {
			extra["sms_alert"] = "failed"
			extra["sms_error"] = err.Error()
			s.metrics.Notification("sms", "failed")
			log.Warn("lead sms alert failed", slog.String("id", sub.ID.String()), slog.Any("error", err))
		} else {
			extra["sms_alert"] = "sent"
			s.metrics.Notification("sms", "sent")
		}
	}

	return status, extra
}

func (s *contactService) recordStatus(ctx context.Context, log *slog.Logger, id uuid.UUID, status repo.Status, extra map[string]string) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.store.UpdateStatus(ctx, id, status, extra); err != nil {
		log.Error("failed to record submission status",
			slog.String("id", id.String()),
			slog.String("status", string(status)),
			slog.Any("error", err),
		)
	}
}
