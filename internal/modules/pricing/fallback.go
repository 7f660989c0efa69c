package pricing

// FallbackPricing is a static catalog entry: price texts as they appear on
// the marketing site, one per tier. Flat covers services without an
// in-hour/out-of-hour split.
type FallbackPricing struct {
	InHour    string
	OutOfHour string
	Flat      string
}

// fallbackCatalog mirrors the published price list. Live services are the
// source of truth; this static copy only bridges the gap while a legacy
// service's row is incomplete, so checkout is never blocked on a missing
// price column. Keys are lowercase service names.
var fallbackCatalog = map[string]FallbackPricing{
	"deep tissue massage":     {InHour: "€50", OutOfHour: "€60"},
	"sports massage":          {InHour: "€45", OutOfHour: "€55"},
	"physiotherapy":           {Flat: "€65"},
	"dry needling":            {InHour: "€40", OutOfHour: "€50"},
	"reflexology":             {InHour: "€40", OutOfHour: "€50"},
	"post surgery rehab":      {Flat: "€70"},
	"ergonomic assessment":    {Flat: "€90"},
	"ultimate health check":   {Flat: "€120"},
	"pitch side cover":        {Flat: "Contact for quote"},
	"corporate wellness talk": {Flat: "On request"},
}

// FallbackFor looks a service up by case-insensitive name.
func FallbackFor(name string) (FallbackPricing, bool) {
	entry, ok := fallbackCatalog[normalizeName(name)]
	return entry, ok
}
