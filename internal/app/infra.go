package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/studio_backend/config"
	"github.com/Alijeyrad/studio_backend/internal/repo"
	"github.com/Alijeyrad/studio_backend/pkg/database"
	"github.com/Alijeyrad/studio_backend/pkg/email"
	"github.com/Alijeyrad/studio_backend/pkg/logs"
	"github.com/Alijeyrad/studio_backend/pkg/observability"
	pasetotoken "github.com/Alijeyrad/studio_backend/pkg/paseto"
	"github.com/Alijeyrad/studio_backend/pkg/ratelimit"
	redispkg "github.com/Alijeyrad/studio_backend/pkg/redis"
	"github.com/Alijeyrad/studio_backend/pkg/sms"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvideLogger),
	fx.Provide(ProvideStore),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideLimiter),
	fx.Provide(ProvideEmailClient),
	fx.Provide(ProvideSMSClient),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideLeadMetrics),
	fx.Provide(ProvidePasetoManager),
)

func ProvideLogger(cfg *config.Config) *slog.Logger {
	log := logs.New(cfg)
	slog.SetDefault(log)
	return log
}

// OpenStore opens the configured backend. Callers own Close.
func OpenStore(ctx context.Context, cfg *config.Config) (repo.Store, error) {
	switch strings.ToLower(cfg.Database.Driver) {
	case "postgres":
		return repo.NewPostgresStore(ctx, database.FromCentralConfig(cfg.Database))
	case "sqlite":
		return repo.NewSQLiteStore(cfg.Database.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

func ProvideStore(lc fx.Lifecycle, cfg *config.Config, log *slog.Logger) (repo.Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Database.Migrations.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("database schema applied", slog.String("driver", cfg.Database.Driver))
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Debug("closing submission store")
			return store.Close()
		},
	})
	return store, nil
}

// ProvideRedis returns nil when no address is configured; every consumer falls back to process-local state.
func ProvideRedis(lc fx.Lifecycle, cfg *config.Config, log *slog.Logger) (*redis.Client, error) {
	if cfg.Redis.Addr == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rdb, err := redispkg.NewRedisFromCentral(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

func ProvideLimiter(cfg *config.Config, rdb *redis.Client) (ratelimit.Limiter, error) {
	switch strings.ToLower(cfg.RateLimit.Backend) {
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("rate_limit.backend=redis requires redis.addr")
		}
		return ratelimit.NewRedis(rdb, "ratelimit:contact", nil), nil
	default:
		return ratelimit.NewMemory(ratelimit.WithSweepProbability(cfg.RateLimit.SweepProbability)), nil
	}
}

func ProvideEmailClient(cfg *config.Config) *email.Client {
	return email.NewFromCentral(cfg.Email)
}

func ProvideSMSClient(cfg *config.Config) (*sms.Client, error) {
	return sms.NewFromConfig(cfg.SMS)
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config, log *slog.Logger) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), observability.FromCentralConfig(cfg))
	if err != nil {
		return nil, err
	}
	log.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}

// ProvideLeadMetrics registers the business counters on the default registry, which is what
// the /metrics route serves.
func ProvideLeadMetrics() (*observability.LeadMetrics, error) {
	return observability.NewLeadMetrics(prometheus.DefaultRegisterer)
}

// ProvidePasetoManager falls back to an ephemeral local key in development so the admin API
// works without setup; sessions then do not survive a restart.
func ProvidePasetoManager(cfg *config.Config, log *slog.Logger) (*pasetotoken.Manager, error) {
	p := cfg.Admin.Paseto
	if pasetotoken.Mode(p.Mode) == pasetotoken.ModeLocal && p.LocalKeyHex == "" {
		if cfg.Server.Environment == "production" {
			return nil, fmt.Errorf("admin.paseto.local_key_hex is required in production")
		}
		log.Warn("admin.paseto.local_key_hex not set, using an ephemeral key")
		keys := pasetotoken.NewLocalKeys()
		return pasetotoken.New(pasetotoken.Config{
			Mode:      pasetotoken.ModeLocal,
			Issuer:    p.Issuer,
			Audience:  p.Audience,
			AccessTTL: time.Duration(p.AccessTTLMinutes) * time.Minute,
		}, keys)
	}
	return pasetotoken.NewPasetoManager(cfg)
}
