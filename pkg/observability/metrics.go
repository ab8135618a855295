package observability

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Lead outcomes as reported by the submission pipeline.
const (
	OutcomeAccepted     = "accepted"
	OutcomeBotTrap      = "bot_trap"
	OutcomeInvalid      = "invalid"
	OutcomeQuota        = "quota_exceeded"
	OutcomePersistError = "persist_error"
)

// LeadMetrics are the business counters of the contact pipeline.
type LeadMetrics struct {
	Submissions   *prometheus.CounterVec
	Notifications *prometheus.CounterVec
	LimiterErrors prometheus.Counter
}

// NewLeadMetrics registers the lead counters on reg. Registering twice on the same registry
// reuses the existing collectors.
func NewLeadMetrics(reg prometheus.Registerer) (*LeadMetrics, error) {
	m := &LeadMetrics{
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "studio",
			Subsystem: "contact",
			Name:      "submissions_total",
			Help:      "Contact form submissions by outcome.",
		}, []string{"outcome"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "studio",
			Subsystem: "contact",
			Name:      "notifications_total",
			Help:      "Owner notifications by channel and result.",
		}, []string{"channel", "result"}),
		LimiterErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "studio",
			Subsystem: "contact",
			Name:      "limiter_errors_total",
			Help:      "Rate limiter backend failures; requests are admitted when this happens.",
		}),
	}

	var err error
	if m.Submissions, err = register(reg, m.Submissions); err != nil {
		return nil, err
	}
	if m.Notifications, err = register(reg, m.Notifications); err != nil {
		return nil, err
	}
	if m.LimiterErrors, err = register(reg, m.LimiterErrors); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Submission counts one pipeline outcome. Safe on a nil receiver.
func (m *LeadMetrics) Submission(outcome string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(outcome).Inc()
}

// Notification counts one notification attempt. Safe on a nil receiver.
func (m *LeadMetrics) Notification(channel, result string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(channel, result).Inc()
}

// LimiterError counts a limiter backend failure. Safe on a nil receiver.
func (m *LeadMetrics) LimiterError() {
	if m == nil {
		return
	}
	m.LimiterErrors.Inc()
}
