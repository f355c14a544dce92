package slot

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnknownSlot    = errors.New("unknown time slot")
	ErrInvalidCatalog = errors.New("invalid slot catalog")
)

// TimeSlot is a fixed daily window. StartHour and Duration are whole hours.
type TimeSlot struct {
	ID        int    `json:"id" mapstructure:"id"`
	Label     string `json:"label" mapstructure:"label"`
	StartHour int    `json:"start_hour" mapstructure:"start_hour"`
	Duration  int    `json:"duration" mapstructure:"duration"`
}

// Interval is half-open: [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (i Interval) Overlaps(other Interval) bool {
	return Overlaps(i, other)
}

// Hours is the elapsed length of the interval. It differs from the slot's
// nominal Duration on days with a DST change.
func (i Interval) Hours() int {
	return int(i.End.Sub(i.Start) / time.Hour)
}

func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

// Catalog is an immutable set of windows that partition every day.
type Catalog struct {
	loc   *time.Location
	slots []TimeSlot
}

// NewCatalog checks that the slots, taken in order and wrapping at midnight,
// cover 24 hours back to back.
func NewCatalog(loc *time.Location, slots ...TimeSlot) (*Catalog, error) {
	if loc == nil {
		loc = time.UTC
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("%w: no slots", ErrInvalidCatalog)
	}

	seen := make(map[int]bool, len(slots))
	total := 0
	for i, s := range slots {
		if seen[s.ID] {
			return nil, fmt.Errorf("%w: duplicate slot id %d", ErrInvalidCatalog, s.ID)
		}
		seen[s.ID] = true

		if s.StartHour < 0 || s.StartHour > 23 {
			return nil, fmt.Errorf("%w: slot %d starts at hour %d", ErrInvalidCatalog, s.ID, s.StartHour)
		}
		if s.Duration <= 0 {
			return nil, fmt.Errorf("%w: slot %d has duration %d", ErrInvalidCatalog, s.ID, s.Duration)
		}

		next := slots[(i+1)%len(slots)]
		if (s.StartHour+s.Duration)%24 != next.StartHour {
			return nil, fmt.Errorf("%w: gap or overlap between slot %d and slot %d", ErrInvalidCatalog, s.ID, next.ID)
		}
		total += s.Duration
	}
	if total != 24 {
		return nil, fmt.Errorf("%w: durations sum to %dh, want 24h", ErrInvalidCatalog, total)
	}

	out := make([]TimeSlot, len(slots))
	copy(out, slots)
	return &Catalog{loc: loc, slots: out}, nil
}

func (c *Catalog) Location() *time.Location {
	return c.loc
}

// SlotsForDay returns the windows in catalog order. The result is a copy.
func (c *Catalog) SlotsForDay() []TimeSlot {
	out := make([]TimeSlot, len(c.slots))
	copy(out, c.slots)
	return out
}

func (c *Catalog) ByID(id int) (TimeSlot, error) {
	for _, s := range c.slots {
		if s.ID == id {
			return s, nil
		}
	}
	return TimeSlot{}, fmt.Errorf("%w: %d", ErrUnknownSlot, id)
}

// Day truncates t to midnight in the catalog's location.
func (c *Catalog) Day(t time.Time) time.Time {
	d := t.In(c.loc)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, c.loc)
}

func (c *Catalog) SlotStart(date time.Time, s TimeSlot) time.Time {
	d := date.In(c.loc)
	return time.Date(d.Year(), d.Month(), d.Day(), s.StartHour, 0, 0, 0, c.loc)
}

// SlotEnd is computed on the wall clock so consecutive windows stay adjacent
// across DST changes. The night window may end on the following day.
func (c *Catalog) SlotEnd(date time.Time, s TimeSlot) time.Time {
	d := date.In(c.loc)
	return time.Date(d.Year(), d.Month(), d.Day(), s.StartHour+s.Duration, 0, 0, 0, c.loc)
}

func (c *Catalog) Window(date time.Time, s TimeSlot) Interval {
	return Interval{Start: c.SlotStart(date, s), End: c.SlotEnd(date, s)}
}

// IsPast reports whether the window has fully ended. A window that is in
// progress is still bookable.
func (c *Catalog) IsPast(date time.Time, s TimeSlot, now time.Time) bool {
	return !c.SlotEnd(date, s).After(now)
}
