package payment

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestSimulatedProviderRoundTrip(t *testing.T) {
	prov := NewSimulatedProvider("http://localhost:5173/")

	sess, err := prov.CreateSession(context.Background(), SessionParams{
		Amount: 10, Currency: "EUR", Reference: "pr-ref-1", Description: "Deep Tissue Massage",
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if sess.ID == "" || sess.URL == "" {
		t.Fatalf("session = %+v", sess)
	}

	// Before any callback the session is still open.
	ev, err := prov.ResolveSession(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("ResolveSession: %v", err)
	}
	if ev.Status != CompletionIgnored {
		t.Fatalf("open session resolved as %s", ev.Status)
	}

	payload := fmt.Sprintf(`{"session_id":%q,"status":"succeeded"}`, sess.ID)
	first, err := prov.VerifyCallback([]byte(payload), "")
	if err != nil {
		t.Fatalf("VerifyCallback: %v", err)
	}
	if first.Status != CompletionSucceeded || first.Reference != "pr-ref-1" {
		t.Fatalf("event = %+v", first)
	}
	if first.TransactionID == "" {
		t.Fatalf("succeeded callback must carry a transaction id")
	}

	// A replayed callback keeps the same transaction id, so settlement
	// stays idempotent end to end.
	replay, err := prov.VerifyCallback([]byte(payload), "")
	if err != nil {
		t.Fatalf("replay VerifyCallback: %v", err)
	}
	if replay.TransactionID != first.TransactionID {
		t.Fatalf("replay txn = %q, first = %q", replay.TransactionID, first.TransactionID)
	}

	resolved, err := prov.ResolveSession(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("ResolveSession after callback: %v", err)
	}
	if resolved.Status != CompletionSucceeded || resolved.TransactionID != first.TransactionID {
		t.Fatalf("resolved = %+v", resolved)
	}
}

func TestSimulatedProviderRejectsUnknownStatus(t *testing.T) {
	prov := NewSimulatedProvider("http://localhost:5173")
	_, err := prov.VerifyCallback([]byte(`{"session_id":"sim_x","status":"maybe"}`), "")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
