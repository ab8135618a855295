package email

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func TestBuildMessage(t *testing.T) {
	msg, err := buildMessage(" leads@studio.test ", Message{
		To:       []string{"owner@studio.test", " "},
		ReplyTo:  "ada@example.com",
		Subject:  "New lead",
		TextBody: "hello",
		HTMLBody: "<p>hello</p>",
		Headers:  map[string]string{"X-Lead-ID": "abc", "": "ignored"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"leads@studio.test"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"owner@studio.test"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"ada@example.com"}, msg.GetHeader("Reply-To"))
	assert.Equal(t, []string{"abc"}, msg.GetHeader("X-Lead-ID"))
}

func TestBuildMessage_Invalid(t *testing.T) {
	tt := []struct {
		desc string
		from string
		msg  Message
	}{
		{desc: "missing from", from: "", msg: Message{To: []string{"a@b.c"}, Subject: "s", TextBody: "b"}},
		{desc: "missing recipient", from: "x@y.z", msg: Message{Subject: "s", TextBody: "b"}},
		{desc: "missing subject", from: "x@y.z", msg: Message{To: []string{"a@b.c"}, TextBody: "b"}},
		{desc: "missing body", from: "x@y.z", msg: Message{To: []string{"a@b.c"}, Subject: "s"}},
	}

	for _, ts := range tt {
		_, err := buildMessage(ts.from, ts.msg)
		var invalid ErrInvalidMessage
		assert.True(t, errors.As(err, &invalid), ts.desc)
	}
}

func TestClient_Disabled(t *testing.T) {
	c := New(Config{Enabled: false})
	err := c.Send(context.Background(), Message{})

	var disabled ErrDisabled
	assert.ErrorAs(t, err, &disabled)
	assert.False(t, c.Config().Configured())
}

func TestBuildLeadNotificationEmail(t *testing.T) {
	m := BuildLeadNotificationEmail([]string{"owner@studio.test"}, LeadEmailData{
		ID:             "0190a2b4-0000-7000-8000-000000000000",
		FullName:       "Jane <b>Doe</b>",
		Email:          "jane@example.com",
		ProjectDetails: "Need a marketing site & a booking flow",
		ReceivedAt:     time.Date(2024, time.June, 23, 10, 0, 0, 0, time.UTC),
		AppName:        "Studio",
		BaseURL:        "https://studio.test/",
	})

	assert.Equal(t, "jane@example.com", m.ReplyTo)
	assert.Equal(t, "[Studio] New lead: Jane <b>Doe</b> (General inquiry)", m.Subject)
	assert.Contains(t, m.HTMLBody, "Jane &lt;b&gt;Doe&lt;/b&gt;")
	assert.NotContains(t, m.HTMLBody, "<b>Doe</b>")
	assert.Contains(t, m.HTMLBody, "booking flow")
	assert.Contains(t, m.TextBody, "https://studio.test/admin/submissions/0190a2b4-0000-7000-8000-000000000000")
	assert.False(t, strings.Contains(m.TextBody, "Phone:"), "empty rows are omitted")
}

func TestClient_Send(t *testing.T) {
	cfg := Config{Enabled: true, From: "leads@studio.test", SMTPHost: "smtp.studio.test", SMTPTimeoutSeconds: 5}
	msg := Message{To: []string{"owner@studio.test"}, Subject: "New lead", TextBody: "hello"}

	t.Run("delivered", func(t *testing.T) {
		c := New(cfg)
		var got []string
		c.deliver = func(m *gomail.Message) error {
			got = m.GetHeader("To")
			return nil
		}
		require.NoError(t, c.Send(context.Background(), msg))
		assert.Equal(t, []string{"owner@studio.test"}, got)
	})

	t.Run("smtp failure is wrapped", func(t *testing.T) {
		c := New(cfg)
		boom := errors.New("535 auth failed")
		c.deliver = func(*gomail.Message) error { return boom }

		err := c.Send(context.Background(), msg)
		var sendErr ErrSend
		require.ErrorAs(t, err, &sendErr)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("context deadline wins", func(t *testing.T) {
		c := New(cfg)
		release := make(chan struct{})
		defer close(release)
		c.deliver = func(*gomail.Message) error {
			<-release
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, c.Send(ctx, msg), context.DeadlineExceeded)
	})
}
