package domain

import "strings"

// ServiceSelection is the parsed form of the tier-tagged label the booking
// form submits, e.g. "Deep Tissue Massage - In Hour (€50)". The parenthetical
// price hint is display decoration and is stripped; Raw keeps the submitted
// value for persistence.
type ServiceSelection struct {
	Raw      string
	Name     string
	SlotType SlotType // empty for flat-price selections
}

const (
	inHourTag    = " - in hour"
	outOfHourTag = " - out of hour"
)

// ParseServiceSelection splits a selection label into base service name and
// slot-type tag. Recognized shapes: "<name> - In Hour (...)",
// "<name> - Out of Hour (...)", "<name> (...)". Matching is case-insensitive
// and the parenthetical suffix is optional.
func ParseServiceSelection(raw string) ServiceSelection {
	sel := ServiceSelection{Raw: strings.TrimSpace(raw)}

	name := stripPriceHint(sel.Raw)
	lower := strings.ToLower(name)

	switch {
	case strings.HasSuffix(lower, inHourTag):
		sel.SlotType = SlotInHour
		name = strings.TrimSpace(name[:len(name)-len(inHourTag)])
	case strings.HasSuffix(lower, outOfHourTag):
		sel.SlotType = SlotOutOfHour
		name = strings.TrimSpace(name[:len(name)-len(outOfHourTag)])
	}

	sel.Name = name
	return sel
}

// stripPriceHint drops a trailing "(...)" group, if any: the form appends the
// advertised price there and it never takes part in matching.
func stripPriceHint(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, ")") {
		return s
	}
	open := strings.LastIndex(s, "(")
	if open <= 0 {
		return s
	}
	return strings.TrimSpace(s[:open])
}
