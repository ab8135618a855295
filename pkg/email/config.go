package email

import (
	"time"

	"github.com/Alijeyrad/studio_backend/config"
)

// Config holds email service configuration
type Config struct {
	Enabled bool
	From    string

	// NotifyTo receives lead notifications.
	NotifyTo []string

	SMTPHost           string
	SMTPPort           int
	SMTPUsername       string
	SMTPPassword       string
	SMTPUseTLS         bool
	SMTPTimeoutSeconds int

	AppName string
	BaseURL string
}

// Configured reports whether a notification can actually be delivered.
func (c Config) Configured() bool {
	return c.Enabled && c.SMTPHost != "" && len(cleanAddrs(c.NotifyTo)) > 0
}

// SMTPTimeout returns the SMTP timeout as a duration
func (c Config) SMTPTimeout() time.Duration {
	if c.SMTPTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.SMTPTimeoutSeconds) * time.Second
}

// FromCentralConfig converts central config.EmailConfig to package Config
func FromCentralConfig(c config.EmailConfig) Config {
	return Config{
		Enabled:            c.Enabled,
		From:               c.From,
		NotifyTo:           c.NotifyTo,
		SMTPHost:           c.SMTP.Host,
		SMTPPort:           c.SMTP.Port,
		SMTPUsername:       c.SMTP.Username,
		SMTPPassword:       c.SMTP.Password,
		SMTPUseTLS:         c.SMTP.UseTLS,
		SMTPTimeoutSeconds: c.SMTP.TimeoutSeconds,
		AppName:            c.AppName,
		BaseURL:            c.BaseURL,
	}
}
