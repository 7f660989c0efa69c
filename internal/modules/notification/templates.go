package notification

import "fmt"

// Plain string templates, one pair per notice. The clinic's tone: short,
// customer-facing, no markup beyond basic HTML.

func bookingReceivedSubject(serviceName string) string {
	return fmt.Sprintf("Booking received - %s", serviceName)
}

func bookingReceivedBody(name, serviceName, startsAt string) (text, html string) {
	text = fmt.Sprintf(
		"Hi %s,\n\nWe have received your booking for %s on %s. "+
			"Our team will be in touch to confirm your appointment time.\n\n%s",
		name, serviceName, startsAt, signatureText)
	html = fmt.Sprintf(
		"<p>Hi %s,</p><p>We have received your booking for <b>%s</b> on <b>%s</b>. "+
			"Our team will be in touch to confirm your appointment time.</p>%s",
		name, serviceName, startsAt, signatureHTML)
	return text, html
}

func bookingConfirmedSubject(serviceName string) string {
	return fmt.Sprintf("Booking confirmed - %s", serviceName)
}

func bookingConfirmedBody(name, serviceName, startsAt string) (text, html string) {
	text = fmt.Sprintf(
		"Hi %s,\n\nYour booking for %s on %s is confirmed. We look forward to seeing you.\n\n%s",
		name, serviceName, startsAt, signatureText)
	html = fmt.Sprintf(
		"<p>Hi %s,</p><p>Your booking for <b>%s</b> on <b>%s</b> is confirmed. "+
			"We look forward to seeing you.</p>%s",
		name, serviceName, startsAt, signatureHTML)
	return text, html
}

func paymentRequestSubject(serviceName string) string {
	return fmt.Sprintf("Payment request - %s", serviceName)
}

func paymentRequestBody(name, serviceName, amount, payURL string) (text, html string) {
	text = fmt.Sprintf(
		"Hi %s,\n\nTo secure your booking for %s, please complete a payment of %s:\n%s\n\n"+
			"You can pay the amount above or choose a 20%% deposit on the payment page.\n\n%s",
		name, serviceName, amount, payURL, signatureText)
	html = fmt.Sprintf(
		"<p>Hi %s,</p><p>To secure your booking for <b>%s</b>, please complete a payment of <b>%s</b>:</p>"+
			`<p><a href="%s">Pay now</a></p>`+
			"<p>You can pay the amount above or choose a 20%% deposit on the payment page.</p>%s",
		name, serviceName, amount, payURL, signatureHTML)
	return text, html
}

func paymentReceivedSubject(serviceName string) string {
	return fmt.Sprintf("Payment received - %s", serviceName)
}

func paymentReceivedBody(name, serviceName, amount, startsAt string) (text, html string) {
	text = fmt.Sprintf(
		"Hi %s,\n\nWe have received your payment of %s for %s. "+
			"Your appointment on %s is confirmed.\n\n%s",
		name, amount, serviceName, startsAt, signatureText)
	html = fmt.Sprintf(
		"<p>Hi %s,</p><p>We have received your payment of <b>%s</b> for <b>%s</b>. "+
			"Your appointment on <b>%s</b> is confirmed.</p>%s",
		name, amount, serviceName, startsAt, signatureHTML)
	return text, html
}

func paymentRequestCancelledSubject(serviceName string) string {
	return fmt.Sprintf("Payment request cancelled - %s", serviceName)
}

func paymentRequestCancelledBody(name, serviceName string) (text, html string) {
	text = fmt.Sprintf(
		"Hi %s,\n\nThe payment request for your %s booking has been cancelled. "+
			"No payment is due; if this is unexpected, just reply to this email.\n\n%s",
		name, serviceName, signatureText)
	html = fmt.Sprintf(
		"<p>Hi %s,</p><p>The payment request for your <b>%s</b> booking has been cancelled. "+
			"No payment is due; if this is unexpected, just reply to this email.</p>%s",
		name, serviceName, signatureHTML)
	return text, html
}

const (
	signatureText = "Kind regards,\nKH Therapy Clinic"
	signatureHTML = "<p>Kind regards,<br>KH Therapy Clinic</p>"
)

// formatAmount renders a money value with its currency symbol, e.g.
// "€50.00". Unknown currencies fall back to the ISO code prefix.
func formatAmount(amount float64, currency string) string {
	switch currency {
	case "EUR":
		return fmt.Sprintf("€%.2f", amount)
	case "GBP":
		return fmt.Sprintf("£%.2f", amount)
	case "USD":
		return fmt.Sprintf("$%.2f", amount)
	}
	return fmt.Sprintf("%s %.2f", currency, amount)
}
