package email

import (
	"context"
	"crypto/tls"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/Alijeyrad/studio_backend/config"
)

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// Client sends mail over SMTP with gomail.
type Client struct {
	cfg     Config
	deliver func(*gomail.Message) error
}

var _ Sender = (*Client)(nil)

func NewFromCentral(cfg config.EmailConfig) *Client {
	return New(FromCentralConfig(cfg))
}

func New(cfg Config) *Client {
	c := &Client{cfg: cfg}
	c.deliver = c.dialAndSend
	return c
}

func (c *Client) Config() Config {
	return c.cfg
}

// Send gives up after the SMTP timeout or the context deadline, whichever is sooner. gomail has no
// dial timeout of its own, so an abandoned delivery finishes in the background.
func (c *Client) Send(ctx context.Context, m Message) error {
	if !c.cfg.Enabled {
		return ErrDisabled{}
	}

	msg, err := buildMessage(c.cfg.From, m)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.SMTPTimeout())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.deliver(msg) }()

	select {
	case err := <-done:
		if err != nil {
			return ErrSend{Provider: "smtp " + c.cfg.SMTPHost, Err: err}
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) dialAndSend(msg *gomail.Message) error {
	d := gomail.NewDialer(c.cfg.SMTPHost, c.cfg.SMTPPort, c.cfg.SMTPUsername, c.cfg.SMTPPassword)
	// implicit TLS (465); 587 upgrades through STARTTLS on its own
	d.SSL = c.cfg.SMTPUseTLS
	d.TLSConfig = &tls.Config{ServerName: c.cfg.SMTPHost, MinVersion: tls.VersionTLS12}
	return d.DialAndSend(msg)
}

func buildMessage(from string, m Message) (*gomail.Message, error) {
	from = strings.TrimSpace(from)
	to := cleanAddrs(m.To)
	subject := strings.TrimSpace(m.Subject)
	text, html := strings.TrimSpace(m.TextBody) != "", strings.TrimSpace(m.HTMLBody) != ""

	switch {
	case from == "":
		return nil, ErrInvalidMessage{Reason: "from is required"}
	case len(to) == 0:
		return nil, ErrInvalidMessage{Reason: "at least one recipient is required"}
	case subject == "":
		return nil, ErrInvalidMessage{Reason: "subject is required"}
	case !text && !html:
		return nil, ErrInvalidMessage{Reason: "a text or html body is required"}
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	if replyTo := strings.TrimSpace(m.ReplyTo); replyTo != "" {
		msg.SetHeader("Reply-To", replyTo)
	}
	for k, v := range m.Headers {
		if k, v = strings.TrimSpace(k), strings.TrimSpace(v); k != "" && v != "" {
			msg.SetHeader(k, v)
		}
	}

	// plain text first so clients without html support still get a readable body
	switch {
	case text && html:
		msg.SetBody("text/plain", m.TextBody)
		msg.AddAlternative("text/html", m.HTMLBody)
	case html:
		msg.SetBody("text/html", m.HTMLBody)
	default:
		msg.SetBody("text/plain", m.TextBody)
	}

	return msg, nil
}

func cleanAddrs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
