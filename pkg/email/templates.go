package email

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// LeadEmailData is the content of a new-lead notification.
type LeadEmailData struct {
	ID             string
	FullName       string
	Email          string
	Phone          string
	Company        string
	ServiceNeeded  string
	ProjectDetails string
	PageURL        string
	IPAddress      string
	ReceivedAt     time.Time
	AppName        string
	BaseURL        string
}

// BuildLeadNotificationEmail creates the message sent to the site owner for a new contact submission.
// Replies go straight to the submitter.
func BuildLeadNotificationEmail(to []string, data LeadEmailData) Message {
	appName := data.AppName
	if appName == "" {
		appName = "Studio"
	}

	service := data.ServiceNeeded
	if service == "" {
		service = "General inquiry"
	}

	subject := fmt.Sprintf("[%s] New lead: %s (%s)", appName, data.FullName, service)

	rows := []struct{ label, value string }{
		{"Name", data.FullName},
		{"Email", data.Email},
		{"Phone", data.Phone},
		{"Company", data.Company},
		{"Service", service},
		{"Page", data.PageURL},
		{"IP", data.IPAddress},
		{"Received", data.ReceivedAt.UTC().Format(time.RFC1123)},
		{"Reference", data.ID},
	}

	var text, table strings.Builder
	for _, r := range rows {
		if r.value == "" {
			continue
		}
		fmt.Fprintf(&text, "%s: %s\n", r.label, r.value)
		fmt.Fprintf(&table,
			`<tr><td style="padding: 4px 12px 4px 0; color: #6b7280;">%s</td><td style="padding: 4px 0;">%s</td></tr>`+"\n",
			r.label, html.EscapeString(r.value))
	}

	adminLink := ""
	if data.BaseURL != "" {
		adminLink = strings.TrimRight(data.BaseURL, "/") + "/admin/submissions/" + data.ID
	}

	textBody := fmt.Sprintf(`New contact form submission

%s
Project details:
%s
`, text.String(), data.ProjectDetails)
	if adminLink != "" {
		textBody += "\nView in admin: " + adminLink + "\n"
	}

	linkHTML := ""
	if adminLink != "" {
		linkHTML = fmt.Sprintf(`<p><a href="%s" style="color: #2563eb;">View in admin</a></p>`, html.EscapeString(adminLink))
	}

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2563eb;">New contact form submission</h2>
    <table style="border-collapse: collapse;">
%s    </table>
    <h3>Project details</h3>
    <p style="background-color: #f3f4f6; padding: 10px 15px; border-radius: 4px; white-space: pre-wrap;">%s</p>
    %s
</body>
</html>`, table.String(), html.EscapeString(data.ProjectDetails), linkHTML)

	return Message{
		To:       to,
		ReplyTo:  data.Email,
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}
