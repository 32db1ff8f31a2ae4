package email

// Sender is what the worker and handlers depend on, so tests can swap in a
// recording fake instead of a live SMTP connection.
type Sender interface {
	SendEmail(to, subject, body string) error
}
