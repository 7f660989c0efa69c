package mailer

// Mailer is the delivery boundary. Send returns the transport's message id
// when it has one; implementations must not retry internally, callers treat
// failures as non-fatal and record them.
type Mailer interface {
	Send(toEmail, toName, subject, text, html string) (string, error)
}
