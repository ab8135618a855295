package contact

import (
	"context"

	"github.com/Alijeyrad/studio_backend/internal/repo"
	"github.com/Alijeyrad/studio_backend/pkg/email"
)

// Notifier tells the site owner about a stored lead. It returns ErrNotifySkipped when no
// channel is configured.
type Notifier interface {
	Notify(ctx context.Context, sub *repo.Submission) error
}

// EmailNotifier sends the lead summary to the configured recipients with the submitter as reply-to.
type EmailNotifier struct {
	sender email.Sender
	cfg    email.Config
}

func NewEmailNotifier(sender email.Sender, cfg email.Config) *EmailNotifier {
	return &EmailNotifier{sender: sender, cfg: cfg}
}

func (n *EmailNotifier) Notify(ctx context.Context, sub *repo.Submission) error {
	if !n.cfg.Configured() {
		return ErrNotifySkipped
	}

	msg := email.BuildLeadNotificationEmail(n.cfg.NotifyTo, email.LeadEmailData{
		ID:             sub.ID.String(),
		FullName:       sub.FullName,
		Email:          sub.Email,
		Phone:          sub.Phone,
		Company:        sub.Company,
		ServiceNeeded:  sub.ServiceNeeded,
		ProjectDetails: sub.ProjectDetails,
		PageURL:        sub.PageURL,
		IPAddress:      sub.IPAddress,
		ReceivedAt:     sub.CreatedAt,
		AppName:        n.cfg.AppName,
		BaseURL:        n.cfg.BaseURL,
	})
	msg.Headers = map[string]string{"X-Lead-ID": sub.ID.String()}

	return n.sender.Send(ctx, msg)
}
