package sms

import (
	"context"
	"errors"
	"fmt"

	"github.com/arsmn/go-smsir/smsir"

	"github.com/Alijeyrad/studio_backend/config"
)

var (
	ErrMissingMobile   = errors.New("sms: mobile number is required")
	ErrMissingTemplate = errors.New("sms: template id is required")
)

// Alerter sends a short templated text about a new lead.
type Alerter interface {
	SendLeadAlert(ctx context.Context, params LeadAlert) error
	IsEnabled() bool
}

// LeadAlert fills the sms.ir template parameters "name", "service" and "ref".
// Mobile defaults to the configured notify number.
type LeadAlert struct {
	Mobile  string
	Name    string
	Service string
	Ref     string
}

// Client sends SMS through sms.ir. A disabled client no-ops.
type Client struct {
	client       *smsir.Client
	templateID   string
	notifyMobile string
	enabled      bool
}

var _ Alerter = (*Client)(nil)

func NewFromConfig(cfg config.SMSConfig) (*Client, error) {
	if !cfg.Enabled {
		return &Client{enabled: false}, nil
	}

	if cfg.SMSIR.APIKey == "" {
		return nil, fmt.Errorf("sms.ir API key required when SMS enabled")
	}

	client := smsir.NewClient().WithAuthentication(cfg.SMSIR.APIKey, cfg.SMSIR.SecretKey)

	return &Client{
		client:       client,
		templateID:   cfg.SMSIR.TemplateID,
		notifyMobile: cfg.NotifyMobile,
		enabled:      true,
	}, nil
}

func (c *Client) SendLeadAlert(ctx context.Context, a LeadAlert) error {
	if !c.enabled {
		return nil
	}
	mobile := a.Mobile
	if mobile == "" {
		mobile = c.notifyMobile
	}
	if mobile == "" {
		return ErrMissingMobile
	}
	if c.templateID == "" {
		return ErrMissingTemplate
	}

	service := a.Service
	if service == "" {
		service = "-"
	}

	req := &smsir.UltraFastSendRequest{
		Mobile:     mobile,
		TemplateID: c.templateID,
		Parameters: []smsir.UltraFastParameter{
			{Key: "name", Value: truncate(a.Name, 30)},
			{Key: "service", Value: truncate(service, 30)},
			{Key: "ref", Value: a.Ref},
		},
	}

	if _, err := c.client.Verification.UltraFastSend(ctx, req); err != nil {
		return fmt.Errorf("sms.ir send failed: %w", err)
	}
	return nil
}

func (c *Client) IsEnabled() bool {
	return c.enabled
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
