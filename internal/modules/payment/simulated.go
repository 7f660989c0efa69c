package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SimulatedProvider keeps checkout sessions in memory and accepts unsigned
// JSON callbacks. It exists for local development and end-to-end tests, and
// its events flow through the exact same completion path as live providers.
type SimulatedProvider struct {
	frontendURL string

	mu       sync.Mutex
	sessions map[string]*simSession
}

type simSession struct {
	params        SessionParams
	transactionID string
	completed     bool
	outcome       CompletionStatus
}

// simCallback is the payload POST /payments/simulate accepts.
type simCallback struct {
	SessionID     string `json:"session_id"`
	Reference     string `json:"reference"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
	Reason        string `json:"reason"`
}

func NewSimulatedProvider(frontendURL string) *SimulatedProvider {
	return &SimulatedProvider{
		frontendURL: strings.TrimRight(frontendURL, "/"),
		sessions:    make(map[string]*simSession),
	}
}

func (p *SimulatedProvider) Name() string { return "simulated" }

func (p *SimulatedProvider) CreateSession(_ context.Context, sp SessionParams) (*Session, error) {
	id := "sim_" + uuid.NewString()

	p.mu.Lock()
	p.sessions[id] = &simSession{params: sp}
	p.mu.Unlock()

	url := fmt.Sprintf("%s/pay/simulated?session_id=%s&reference=%s", p.frontendURL, id, sp.Reference)
	return &Session{ID: id, URL: url}, nil
}

func (p *SimulatedProvider) VerifyCallback(payload []byte, _ string) (*CompletionEvent, error) {
	var cb simCallback
	if err := json.Unmarshal(payload, &cb); err != nil {
		return nil, fmt.Errorf("decode simulated callback: %w", err)
	}

	status, err := parseSimStatus(cb.Status)
	if err != nil {
		return nil, err
	}

	ev := &CompletionEvent{
		Reference:     cb.Reference,
		CheckoutRef:   cb.SessionID,
		TransactionID: cb.TransactionID,
		Status:        status,
		Reason:        cb.Reason,
		RawBody:       string(payload),
		OccurredAt:    time.Now(),
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.sessions[cb.SessionID]; ok {
		if ev.Reference == "" {
			ev.Reference = s.params.Reference
		}
		if status == CompletionSucceeded {
			// Replays of the same session keep the same transaction id.
			if s.transactionID == "" {
				if cb.TransactionID != "" {
					s.transactionID = cb.TransactionID
				} else {
					s.transactionID = "sim_txn_" + uuid.NewString()
				}
			}
			ev.TransactionID = s.transactionID
		}
		s.completed = true
		s.outcome = status
	}
	return ev, nil
}

func (p *SimulatedProvider) ResolveSession(_ context.Context, sessionID string) (*CompletionEvent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: unknown session %s", ErrProvider, sessionID)
	}
	ev := &CompletionEvent{
		Reference:   s.params.Reference,
		CheckoutRef: sessionID,
		OccurredAt:  time.Now(),
	}
	if !s.completed {
		ev.Status = CompletionIgnored
		return ev, nil
	}
	ev.Status = s.outcome
	ev.TransactionID = s.transactionID
	return ev, nil
}

func parseSimStatus(s string) (CompletionStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "succeeded", "paid":
		return CompletionSucceeded, nil
	case "failed":
		return CompletionFailed, nil
	case "expired", "session_expired":
		return CompletionSessionExpired, nil
	default:
		return "", fmt.Errorf("%w: unknown simulated status %q", ErrValidation, s)
	}
}
