package email

// Message is one outgoing mail. ReplyTo lets the recipient answer the lead directly.
type Message struct {
	To       []string
	ReplyTo  string
	Subject  string
	TextBody string
	HTMLBody string
	Headers  map[string]string
}
