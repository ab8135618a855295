package app

import (
	"context"
	"log/slog"
	"time"

	"go.uber.org/fx"

	"github.com/Alijeyrad/studio_backend/config"
	"github.com/Alijeyrad/studio_backend/internal/repo"
	"github.com/Alijeyrad/studio_backend/internal/service/admin"
	"github.com/Alijeyrad/studio_backend/internal/service/contact"
	"github.com/Alijeyrad/studio_backend/pkg/email"
	"github.com/Alijeyrad/studio_backend/pkg/observability"
	pasetotoken "github.com/Alijeyrad/studio_backend/pkg/paseto"
	"github.com/Alijeyrad/studio_backend/pkg/ratelimit"
	"github.com/Alijeyrad/studio_backend/pkg/sms"
	"github.com/Alijeyrad/studio_backend/pkg/util/password"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideContactService,
		ProvideAdminService,
	),
)

type contactParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Cfg       *config.Config
	Log       *slog.Logger
	Store     repo.Store
	Limiter   ratelimit.Limiter
	Email     *email.Client
	SMS       *sms.Client
	Metrics   *observability.LeadMetrics
}

func ProvideContactService(p contactParams) contact.Service {
	svc := contact.New(contact.Deps{
		Store:    p.Store,
		Limiter:  p.Limiter,
		Notifier: contact.NewEmailNotifier(p.Email, p.Email.Config()),
		Alerter:  p.SMS,
		Metrics:  p.Metrics,
		Log:      p.Log,
	}, contact.Options{
		Window:         time.Duration(p.Cfg.RateLimit.WindowMinutes) * time.Minute,
		MaxRequests:    p.Cfg.RateLimit.MaxRequests,
		SuccessMessage: p.Cfg.Contact.SuccessMessage,
		NotifyTimeout:  time.Duration(p.Cfg.Contact.NotifyTimeoutSeconds) * time.Second,
		PhoneRegion:    p.Cfg.Contact.PhoneRegion,
	})

	// status updates still in flight must land before the store closes
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			done := make(chan struct{})
			go func() {
				svc.Wait()
				close(done)
			}()
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
	return svc
}

func ProvideAdminService(cfg *config.Config, store repo.Store, mgr *pasetotoken.Manager, log *slog.Logger) admin.Service {
	switch hash := cfg.Admin.PasswordHash; {
	case hash == "":
		log.Warn("admin.password_hash not set, admin login is disabled")
	case password.NewHasher(password.FromCentralConfig(cfg.Password)).NeedsRehash(hash):
		log.Warn("admin.password_hash uses outdated argon2id parameters, regenerate it with `system hash-password`")
	}

	return admin.New(store, mgr, cfg.Admin.PasswordHash,
		time.Duration(cfg.Admin.LoginFloorMs)*time.Millisecond, log)
}
