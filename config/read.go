package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/Alijeyrad/studio_backend/pkg/constants"
)

var GlobalConf *Config

func ReadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(constants.ConfigName)
	v.SetConfigType(constants.ConfigFormat)
	v.AddConfigPath(configPath)

	setDefaults(v)

	// Allow env vars to override config values.
	// e.g. LEADS_DATABASE_HOST overrides database.host
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The config file is optional in container deployments; defaults plus env vars are enough.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func MustReadConfig(path string) *Config {
	config, err := ReadConfig(path)
	if err != nil {
		panic(err)
	}

	GlobalConf = config

	return config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout_seconds", 30)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.body_limit_kb", 64)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.sqlite_path", "data/leads.db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("rate_limit.backend", "memory")
	v.SetDefault("rate_limit.window_minutes", 15)
	v.SetDefault("rate_limit.max_requests", 5)
	v.SetDefault("rate_limit.sweep_probability", 0.01)
	v.SetDefault("rate_limit.global.max", 60)
	v.SetDefault("rate_limit.global.expiration_seconds", 60)

	v.SetDefault("contact.phone_region", "US")
	v.SetDefault("contact.success_message", "Thank you! We'll be in touch within one business day.")
	v.SetDefault("contact.notify_timeout_seconds", 15)

	v.SetDefault("admin.login_floor_ms", 1000)
	v.SetDefault("admin.paseto.mode", "local")
	v.SetDefault("admin.paseto.issuer", constants.AppName)
	v.SetDefault("admin.paseto.audience", constants.AppName+"-admin")
	v.SetDefault("admin.paseto.access_ttl_minutes", 720)

	v.SetDefault("email.smtp.port", 587)
	v.SetDefault("email.smtp.timeout_seconds", 30)

	v.SetDefault("observability.service_name", constants.AppName+"_backend")
	v.SetDefault("observability.metrics.path", "/metrics")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.output.stdout", true)
}
