package availability

import (
	"context"
	"fmt"
	"sort"
	"time"

	"clinicbook/internal/domain"

	"go.uber.org/zap"
)

type slotCatalog interface {
	ListAvailableFrom(ctx context.Context, fromDate string, types []domain.SlotType) ([]domain.AvailabilitySlot, error)
	ListAvailableOn(ctx context.Context, date string, types []domain.SlotType) ([]domain.AvailabilitySlot, error)
}

// Service resolves a customer's service/date selection into the concrete
// bookable slots. Reads only; the claim at acceptance time lives in the
// booking flow.
type Service struct {
	catalog slotCatalog
	log     *zap.Logger
	now     func() time.Time
}

func NewService(catalog slotCatalog, log *zap.Logger) *Service {
	return &Service{catalog: catalog, log: log, now: time.Now}
}

// Resolve lists the bookable time ranges for a selection, ordered by
// (date, start). Same-day slots are offered only while their start time is
// strictly ahead of the clock; a requested date never leaks slots from other
// dates. A catalog failure comes back as ErrFetchFailed with an empty,
// renderable Result.
func (s *Service) Resolve(ctx context.Context, q ResolveQuery) (*Result, error) {
	sel := domain.ParseServiceSelection(q.Service)
	types := sel.SlotType.Filter()

	now := s.now()
	today := now.Format(domain.DateFormat)
	nowTime := now.Format(domain.TimeFormat)

	// Floor the requested date to today; asking for a past date means "from
	// now on that request", which the exact-date restriction below turns into
	// today's remaining slots.
	dateRequested := q.Date != ""
	floor := q.Date
	if floor < today {
		floor = today
	}

	var (
		slots []domain.AvailabilitySlot
		err   error
	)
	if dateRequested {
		slots, err = s.catalog.ListAvailableOn(ctx, floor, types)
	} else {
		slots, err = s.catalog.ListAvailableFrom(ctx, today, types)
	}
	if err != nil {
		return &Result{Slots: []ResolvedSlot{}, Message: msgNoSlots},
			fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	resolved := make([]ResolvedSlot, 0, len(slots))
	seen := make(map[string]bool, len(slots))
	droppedToday := false

	for _, slot := range slots {
		if slot.Date < today {
			continue
		}
		if slot.Date == today && slot.StartTime <= nowTime {
			droppedToday = true
			continue
		}

		key := slot.Date + "|" + slot.StartTime + "-" + slot.EndTime
		if seen[key] {
			continue
		}
		seen[key] = true

		label := slot.Date + " " + slot.StartTime + " - " + slot.EndTime
		if dateRequested {
			label = slot.StartTime + " - " + slot.EndTime
		}
		resolved = append(resolved, ResolvedSlot{
			Key:       key,
			Date:      slot.Date,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
			SlotType:  slot.SlotType,
			Label:     label,
		})
	}

	sort.Slice(resolved, func(i, j int) bool {
		if resolved[i].Date != resolved[j].Date {
			return resolved[i].Date < resolved[j].Date
		}
		return resolved[i].StartTime < resolved[j].StartTime
	})

	result := &Result{Slots: resolved}
	if len(resolved) == 0 {
		if droppedToday {
			result.Message = msgNoSlotsToday
		} else {
			result.Message = msgNoSlots
		}
		s.log.Debug("no slots resolved",
			zap.String("service", sel.Name),
			zap.String("date", q.Date),
			zap.Bool("all_past_today", droppedToday))
	}
	return result, nil
}
