package notification

import (
	"context"
	"errors"
	"strings"
	"testing"

	"clinicbook/internal/domain"

	"go.uber.org/zap"
)

type fakeMailer struct {
	sent    int
	lastTo  string
	lastSub string
	lastTxt string
	err     error
}

func (f *fakeMailer) Send(toEmail, toName, subject, text, html string) (string, error) {
	f.sent++
	f.lastTo = toEmail
	f.lastSub = subject
	f.lastTxt = text
	if f.err != nil {
		return "", f.err
	}
	return "msg-1", nil
}

type fakeAudit struct {
	rows []domain.Notification
	err  error
}

func (f *fakeAudit) Create(ctx context.Context, n *domain.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, *n)
	return nil
}

var (
	testCustomer = &domain.Customer{ID: 1, FirstName: "Aoife", LastName: "Byrne", Email: "aoife@example.ie"}
	testBooking  = &domain.Booking{ID: 10, ServiceName: "Deep Tissue Massage", StartsAt: "2025-03-10T09:00:00"}
)

func TestPaymentRequestIssuedRendersAmountAndLink(t *testing.T) {
	mail := &fakeMailer{}
	audit := &fakeAudit{}
	svc := NewService(mail, audit, zap.NewNop())

	pr := &domain.PaymentRequest{ID: 4, Amount: 50, Currency: "EUR"}
	err := svc.PaymentRequestIssued(context.Background(), pr, testBooking, testCustomer, "https://clinic.example/pay/abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mail.sent != 1 || mail.lastTo != "aoife@example.ie" {
		t.Fatalf("send = %d to %q", mail.sent, mail.lastTo)
	}
	if !strings.Contains(mail.lastTxt, "€50.00") {
		t.Errorf("body must carry the formatted amount, got %q", mail.lastTxt)
	}
	if !strings.Contains(mail.lastTxt, "https://clinic.example/pay/abc") {
		t.Errorf("body must carry the pay link, got %q", mail.lastTxt)
	}

	if len(audit.rows) != 1 {
		t.Fatalf("audit rows = %d, want 1", len(audit.rows))
	}
	row := audit.rows[0]
	if row.Status != domain.NotificationSent || row.Type != domain.NotificationPaymentRequest {
		t.Errorf("audit row = %+v", row)
	}
	if row.PaymentRequestID == nil || *row.PaymentRequestID != 4 {
		t.Error("audit row must link the payment request")
	}
}

func TestSendFailureIsRecordedAndWrapped(t *testing.T) {
	mail := &fakeMailer{err: errors.New("relay refused")}
	audit := &fakeAudit{}
	svc := NewService(mail, audit, zap.NewNop())

	err := svc.BookingReceived(context.Background(), testBooking, testCustomer)
	if !errors.Is(err, ErrSendFailed) {
		t.Fatalf("err = %v, want ErrSendFailed", err)
	}
	if len(audit.rows) != 1 {
		t.Fatalf("failed dispatch must still be audited, rows = %d", len(audit.rows))
	}
	if audit.rows[0].Status != domain.NotificationFailed || audit.rows[0].Error == "" {
		t.Errorf("audit row = %+v, want failed with recorded error", audit.rows[0])
	}
}

func TestAuditFailureDoesNotFailDispatch(t *testing.T) {
	mail := &fakeMailer{}
	audit := &fakeAudit{err: errors.New("disk full")}
	svc := NewService(mail, audit, zap.NewNop())

	if err := svc.BookingConfirmed(context.Background(), testBooking, testCustomer); err != nil {
		t.Fatalf("a broken audit log must not fail the notice, got %v", err)
	}
	if mail.sent != 1 {
		t.Errorf("send count = %d, want 1", mail.sent)
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		amount   float64
		currency string
		want     string
	}{
		{50, "EUR", "€50.00"},
		{10.5, "GBP", "£10.50"},
		{4.67, "USD", "$4.67"},
		{99, "CHF", "CHF 99.00"},
	}
	for _, c := range cases {
		if got := formatAmount(c.amount, c.currency); got != c.want {
			t.Errorf("formatAmount(%v, %s) = %q, want %q", c.amount, c.currency, got, c.want)
		}
	}
}
