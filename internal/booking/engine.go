package booking

import (
	"time"

	"chargeslot/internal/slot"

	"github.com/google/uuid"
)

// BanRequest asks the profile store to set (Until != nil) or lift a ban.
type BanRequest struct {
	UserID uuid.UUID
	Until  *time.Time
}

// Transition is the outcome of a state change decided by the Engine.
// Changed is false when the request was a no-op.
type Transition struct {
	Booking Booking
	Changed bool
	Ban     *BanRequest
}

// Engine decides booking state changes over a caller-supplied snapshot.
// It holds no mutable state and performs no I/O.
type Engine struct {
	catalog          *slot.Catalog
	confirmOwnerOnly bool
}

func NewEngine(catalog *slot.Catalog, confirmOwnerOnly bool) *Engine {
	return &Engine{
		catalog:          catalog,
		confirmOwnerOnly: confirmOwnerOnly,
	}
}

func (e *Engine) Catalog() *slot.Catalog {
	return e.catalog
}

// RequestBooking validates a new booking of ts on date. The returned booking
// has no ID; the caller assigns one before persisting it.
func (e *Engine) RequestBooking(
	snapshot []Booking,
	requester uuid.UUID,
	bannedUntil *time.Time,
	date time.Time,
	ts slot.TimeSlot,
	notes string,
	now time.Time,
) (Booking, error) {
	if bannedUntil != nil && bannedUntil.After(now) {
		return Booking{}, &ForbiddenError{BannedUntil: *bannedUntil}
	}

	if e.catalog.IsPast(date, ts, now) {
		return Booking{}, ErrSlotInPast
	}

	window := e.catalog.Window(date, ts)
	if FindOccupant(snapshot, window) != nil {
		return Booking{}, ErrConflict
	}

	return Booking{
		UserID:         requester,
		StartTime:      window.Start,
		EndTime:        window.End,
		Duration:       window.Hours(),
		Status:         StatusActive,
		ChargingStatus: ChargingUnknown,
		Notes:          notes,
	}, nil
}

// CancelBooking has no time restriction. Cancelling twice is a no-op.
func (e *Engine) CancelBooking(b Booking, requester uuid.UUID, isAdmin bool) (Transition, error) {
	if b.UserID != requester && !isAdmin {
		return Transition{}, ErrForbidden
	}

	if b.Status == StatusCancelled {
		return Transition{Booking: b}, nil
	}

	b.Status = StatusCancelled
	return Transition{Booking: b, Changed: true}, nil
}

func (e *Engine) ReportAbuse(b Booking, reporter uuid.UUID, now time.Time, banDuration time.Duration) (Transition, error) {
	if !b.IsActive() {
		return Transition{}, ErrNotReportable
	}
	if b.UserID == reporter {
		return Transition{}, ErrForbidden
	}
	if b.ChargingStatus == ChargingActive || b.ChargingStatus == ChargingNotCharging {
		return Transition{}, ErrNotReportable
	}

	until := now.Add(banDuration)
	b.ChargingStatus = ChargingNotCharging
	b.ReporterID = &reporter

	return Transition{
		Booking: b,
		Changed: true,
		Ban:     &BanRequest{UserID: b.UserID, Until: &until},
	}, nil
}

// UndoReport is allowed only for the user who filed the report.
func (e *Engine) UndoReport(b Booking, requester uuid.UUID) (Transition, error) {
	if b.ChargingStatus != ChargingNotCharging || b.ReporterID == nil {
		return Transition{}, ErrNotReportable
	}
	if *b.ReporterID != requester {
		return Transition{}, ErrForbidden
	}

	b.ChargingStatus = ChargingUnknown
	b.ReporterID = nil

	return Transition{
		Booking: b,
		Changed: true,
		Ban:     &BanRequest{UserID: b.UserID},
	}, nil
}

// ConfirmCharging lets any user confirm unless the engine was built with
// confirmOwnerOnly.
func (e *Engine) ConfirmCharging(b Booking, requester uuid.UUID) (Transition, error) {
	if !b.IsActive() {
		return Transition{}, ErrNotReportable
	}
	if e.confirmOwnerOnly && b.UserID != requester {
		return Transition{}, ErrForbidden
	}

	switch b.ChargingStatus {
	case ChargingActive:
		return Transition{Booking: b}, nil
	case ChargingNotCharging:
		return Transition{}, ErrNotReportable
	}

	b.ChargingStatus = ChargingActive
	return Transition{Booking: b, Changed: true}, nil
}

// FindOccupant returns the first active booking overlapping window, or nil.
func FindOccupant(snapshot []Booking, window slot.Interval) *Booking {
	for i := range snapshot {
		if snapshot[i].IsActive() && slot.Overlaps(snapshot[i].Interval(), window) {
			b := snapshot[i]
			return &b
		}
	}
	return nil
}

// BuildCalendar renders days consecutive days starting at from. Actions are
// derived by dry-running the engine so the calendar never offers something
// the engine would reject.
func (e *Engine) BuildCalendar(snapshot []BookingWithProfile, from time.Time, days int, viewer Viewer, now time.Time) []CalendarDay {
	plain := make([]Booking, len(snapshot))
	for i := range snapshot {
		plain[i] = snapshot[i].Booking
	}

	start := e.catalog.Day(from)
	slots := e.catalog.SlotsForDay()
	out := make([]CalendarDay, 0, days)

	for d := 0; d < days; d++ {
		date := start.AddDate(0, 0, d)
		day := CalendarDay{
			Date:  date.Format("2006-01-02"),
			Slots: make([]CalendarSlot, 0, len(slots)),
		}

		for _, ts := range slots {
			window := e.catalog.Window(date, ts)
			cs := CalendarSlot{
				Slot:    ts,
				Start:   window.Start,
				End:     window.End,
				Actions: []Action{},
			}

			occupant := findOccupantWithProfile(snapshot, window)
			if occupant == nil {
				cs.State = StateFree
				if e.catalog.IsPast(date, ts, now) {
					cs.State = StatePast
				}
				if _, err := e.RequestBooking(plain, viewer.ID, viewer.BannedUntil, date, ts, "", now); err == nil {
					cs.Actions = append(cs.Actions, ActionBook)
				}
			} else {
				cs.Occupant = occupant
				cs.State = occupiedState(occupant.Booking, viewer.ID)
				cs.Actions = e.occupiedActions(occupant.Booking, viewer, now)
			}

			day.Slots = append(day.Slots, cs)
		}

		out = append(out, day)
	}

	return out
}

func (e *Engine) occupiedActions(b Booking, viewer Viewer, now time.Time) []Action {
	actions := []Action{}

	if t, err := e.CancelBooking(b, viewer.ID, viewer.IsAdmin); err == nil && t.Changed {
		actions = append(actions, ActionCancel)
	}
	if t, err := e.ConfirmCharging(b, viewer.ID); err == nil && t.Changed {
		actions = append(actions, ActionConfirm)
	}
	if _, err := e.ReportAbuse(b, viewer.ID, now, 0); err == nil {
		actions = append(actions, ActionReport)
	}
	if _, err := e.UndoReport(b, viewer.ID); err == nil {
		actions = append(actions, ActionUndoReport)
	}

	return actions
}

func occupiedState(b Booking, viewer uuid.UUID) SlotState {
	switch {
	case b.UserID == viewer:
		return StateOwn
	case b.ChargingStatus == ChargingActive:
		return StateCharging
	case b.ChargingStatus == ChargingNotCharging:
		return StateReported
	default:
		return StateOccupied
	}
}

func findOccupantWithProfile(snapshot []BookingWithProfile, window slot.Interval) *BookingWithProfile {
	for i := range snapshot {
		if snapshot[i].IsActive() && slot.Overlaps(snapshot[i].Interval(), window) {
			b := snapshot[i]
			return &b
		}
	}
	return nil
}
