package pricing

import (
	"context"
	"errors"
	"testing"

	"clinicbook/internal/domain"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeCatalog struct {
	services map[string]*domain.Service
	err      error
}

func (f *fakeCatalog) GetActiveByName(ctx context.Context, name string) (*domain.Service, error) {
	if f.err != nil {
		return nil, f.err
	}
	if svc, ok := f.services[name]; ok {
		return svc, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newTestResolver(catalog *fakeCatalog) *Resolver {
	return NewResolver(catalog, zap.NewNop())
}

func TestResolveLivePriceWins(t *testing.T) {
	catalog := &fakeCatalog{services: map[string]*domain.Service{
		"Deep Tissue Massage": {
			ID:             7,
			Name:           "Deep Tissue Massage",
			PricingKind:    domain.PricingTimeDependent,
			InHourPrice:    50,
			OutOfHourPrice: 60,
		},
	}}
	r := newTestResolver(catalog)

	sel := domain.ParseServiceSelection("Deep Tissue Massage - In Hour (€50)")
	res := r.Resolve(context.Background(), sel, 999)
	if res.Source != SourceLive {
		t.Fatalf("source = %s, want live", res.Source)
	}
	if res.Amount != 50.00 {
		t.Errorf("amount = %v, want 50.00", res.Amount)
	}
	if res.ServiceID != 7 {
		t.Errorf("service id = %d, want 7", res.ServiceID)
	}

	sel = domain.ParseServiceSelection("Deep Tissue Massage - Out of Hour (€60)")
	res = r.Resolve(context.Background(), sel, 0)
	if res.Source != SourceLive || res.Amount != 60.00 {
		t.Errorf("out-of-hour = %v from %s, want 60.00 from live", res.Amount, res.Source)
	}
}

func TestResolveFallsBackToStaticCatalog(t *testing.T) {
	// Service exists only in the static fallback, with an in-hour price text
	// of "€40".
	r := newTestResolver(&fakeCatalog{})

	sel := domain.ParseServiceSelection("Dry Needling - In Hour")
	res := r.Resolve(context.Background(), sel, 0)
	if res.Source != SourceFallback {
		t.Fatalf("source = %s, want fallback", res.Source)
	}
	if res.Amount != 40.00 {
		t.Errorf("amount = %v, want 40.00", res.Amount)
	}
}

func TestResolveLiveZeroPriceFallsThrough(t *testing.T) {
	// A live row whose matching price column is zero is a tier-1 miss, not a
	// free service.
	catalog := &fakeCatalog{services: map[string]*domain.Service{
		"Reflexology": {
			ID:          3,
			Name:        "Reflexology",
			PricingKind: domain.PricingTimeDependent,
			InHourPrice: 0,
		},
	}}
	r := newTestResolver(catalog)

	sel := domain.ParseServiceSelection("Reflexology - In Hour")
	res := r.Resolve(context.Background(), sel, 0)
	if res.Source != SourceFallback || res.Amount != 40.00 {
		t.Errorf("got %v from %s, want 40.00 from fallback", res.Amount, res.Source)
	}
}

func TestResolveRetainsCallerAmount(t *testing.T) {
	r := newTestResolver(&fakeCatalog{})

	sel := domain.ParseServiceSelection("Hot Stone Massage (€42)")
	res := r.Resolve(context.Background(), sel, 42.555)
	if res.Source != SourceCaller {
		t.Fatalf("source = %s, want caller", res.Source)
	}
	if res.Amount != 42.56 {
		t.Errorf("amount = %v, want caller value rounded to 42.56", res.Amount)
	}
}

func TestResolveNonNumericFallbackFailsClosed(t *testing.T) {
	r := newTestResolver(&fakeCatalog{})

	sel := domain.ParseServiceSelection("Pitch Side Cover")
	res := r.Resolve(context.Background(), sel, 35)
	if res.Source != SourceCaller || res.Amount != 35.00 {
		t.Errorf("got %v from %s, want 35.00 from caller", res.Amount, res.Source)
	}
}

func TestResolveUnresolvableIsUnchargeable(t *testing.T) {
	r := newTestResolver(&fakeCatalog{})

	sel := domain.ParseServiceSelection("Free Consultation")
	res := r.Resolve(context.Background(), sel, 0)
	if res.Source != SourceNone || res.Amount != 0 {
		t.Errorf("got %v from %s, want 0 from none", res.Amount, res.Source)
	}
	if res.Chargeable() {
		t.Error("zero resolution must not be chargeable")
	}
}

func TestResolveQueryFailureIsAbsorbed(t *testing.T) {
	r := newTestResolver(&fakeCatalog{err: errors.New("connection refused")})

	sel := domain.ParseServiceSelection("Sports Massage - Out of Hour")
	res := r.Resolve(context.Background(), sel, 0)
	if res.Source != SourceFallback || res.Amount != 55.00 {
		t.Errorf("got %v from %s, want 55.00 from fallback", res.Amount, res.Source)
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		text string
		want float64
		ok   bool
	}{
		{"€40", 40, true},
		{"€40.50", 40.5, true},
		{"40", 40, true},
		{"€1,250.50", 1250.5, true},
		{"From €35", 35, true},
		{"€45 / €55", 45, true},
		{"Contact for quote", 0, false},
		{"", 0, false},
		{"€0", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseAmount(c.text)
		if got != c.want || ok != c.ok {
			t.Errorf("ParseAmount(%q) = (%v, %v), want (%v, %v)", c.text, got, ok, c.want, c.ok)
		}
	}
}
