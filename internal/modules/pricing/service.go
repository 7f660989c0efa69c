package pricing

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"clinicbook/internal/domain"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrResolutionFailed marks a tier-1/tier-2 miss. It never leaves this
// package as a returned error: the fallback chain absorbs it and the
// resolution degrades to the next tier.
var ErrResolutionFailed = errors.New("pricing resolution failed")

type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
	SourceCaller   Source = "caller"
	SourceNone     Source = "none"
)

// Resolution is the outcome of the fallback chain. Amount is rounded to 2dp;
// ServiceID is set only for live hits. A zero amount with SourceNone means
// the booking proceeds as unchargeable.
type Resolution struct {
	Amount    float64
	Source    Source
	ServiceID int64
}

func (r Resolution) Chargeable() bool { return r.Amount > 0 }

type serviceCatalog interface {
	GetActiveByName(ctx context.Context, name string) (*domain.Service, error)
}

// Resolver turns a parsed service selection into a money amount through the
// three-tier chain: live catalog, static fallback, caller-supplied hint.
type Resolver struct {
	services serviceCatalog
	log      *zap.Logger
}

func NewResolver(services serviceCatalog, log *zap.Logger) *Resolver {
	return &Resolver{services: services, log: log}
}

func (r *Resolver) Resolve(ctx context.Context, sel domain.ServiceSelection, callerAmount float64) Resolution {
	if amount, id, err := r.resolveLive(ctx, sel); err == nil {
		return Resolution{Amount: amount, Source: SourceLive, ServiceID: id}
	} else if !errors.Is(err, ErrResolutionFailed) {
		// A catalog query failure is also absorbed: pricing must never block
		// checkout, the chain just moves on without the live tier.
		r.log.Warn("live price lookup failed", zap.String("service", sel.Name), zap.Error(err))
	} else {
		r.log.Debug("live price miss", zap.String("service", sel.Name), zap.String("slot_type", string(sel.SlotType)))
	}

	if amount, err := r.resolveFallback(sel); err == nil {
		r.log.Info("price resolved from static fallback",
			zap.String("service", sel.Name),
			zap.Float64("amount", amount))
		return Resolution{Amount: amount, Source: SourceFallback}
	}

	if callerAmount > 0 {
		return Resolution{Amount: Round2(callerAmount), Source: SourceCaller}
	}

	r.log.Warn("price unresolved, booking proceeds unchargeable", zap.String("selection", sel.Raw))
	return Resolution{Source: SourceNone}
}

func (r *Resolver) resolveLive(ctx context.Context, sel domain.ServiceSelection) (float64, int64, error) {
	svc, err := r.services.GetActiveByName(ctx, sel.Name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, 0, ErrResolutionFailed
		}
		return 0, 0, err
	}
	amount, ok := svc.Pricing().AmountFor(sel.SlotType)
	if !ok {
		return 0, 0, ErrResolutionFailed
	}
	return Round2(amount), svc.ID, nil
}

func (r *Resolver) resolveFallback(sel domain.ServiceSelection) (float64, error) {
	entry, ok := FallbackFor(sel.Name)
	if !ok {
		return 0, ErrResolutionFailed
	}

	text := entry.Flat
	switch sel.SlotType {
	case domain.SlotInHour:
		if entry.InHour != "" {
			text = entry.InHour
		}
	case domain.SlotOutOfHour:
		if entry.OutOfHour != "" {
			text = entry.OutOfHour
		}
	default:
		if text == "" {
			text = entry.InHour
		}
	}

	amount, ok := ParseAmount(text)
	if !ok {
		return 0, ErrResolutionFailed
	}
	return amount, nil
}

// ParseAmount extracts a positive money amount from a price text, stripping
// currency symbols and thousands separators: "€40" -> 40, "€1,250.50" ->
// 1250.5. Non-numeric texts ("Contact for quote") fail closed.
func ParseAmount(text string) (float64, bool) {
	var b strings.Builder
	started := false
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			started = true
		case r == '.' && started:
			b.WriteRune(r)
		case r == ',' && started:
			// thousands separator
		case started:
			// first numeric run only
			goto parse
		}
	}
parse:
	if !started {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(b.String(), "."), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return Round2(v), true
}

// Round2 is the single rounding point for money values.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
