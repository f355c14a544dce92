package booking

import (
	"time"

	"chargeslot/internal/slot"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
)

type ChargingStatus string

const (
	ChargingUnknown     ChargingStatus = "unknown"
	ChargingActive      ChargingStatus = "charging"
	ChargingNotCharging ChargingStatus = "not_charging"
)

type Booking struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	UserID         uuid.UUID      `db:"user_id" json:"user_id"`
	StartTime      time.Time      `db:"start_time" json:"start_time"`
	EndTime        time.Time      `db:"end_time" json:"end_time"`
	Duration       int            `db:"duration" json:"duration"`
	Status         Status         `db:"status" json:"status"`
	ChargingStatus ChargingStatus `db:"charging_status" json:"charging_status"`
	ReporterID     *uuid.UUID     `db:"reporter_id" json:"reporter_id,omitempty"`
	Notes          string         `db:"notes" json:"notes"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

func (b Booking) Interval() slot.Interval {
	return slot.Interval{Start: b.StartTime, End: b.EndTime}
}

func (b Booking) IsActive() bool {
	return b.Status == StatusActive
}

// BookingWithProfile is a booking joined with the owner's public profile.
type BookingWithProfile struct {
	Booking
	FirstName   string     `db:"first_name" json:"first_name"`
	LastName    string     `db:"last_name" json:"last_name"`
	BannedUntil *time.Time `db:"banned_until" json:"banned_until,omitempty"`
}

type MyBookings struct {
	Upcoming []Booking `json:"upcoming"`
	History  []Booking `json:"history"`
}

type SlotState string

const (
	StateFree     SlotState = "free"
	StatePast     SlotState = "past"
	StateOwn      SlotState = "own"
	StateOccupied SlotState = "occupied"
	StateCharging SlotState = "charging"
	StateReported SlotState = "reported"
)

type Action string

const (
	ActionBook       Action = "book"
	ActionCancel     Action = "cancel"
	ActionConfirm    Action = "confirm"
	ActionReport     Action = "report"
	ActionUndoReport Action = "undo_report"
)

// Viewer is the user a calendar is rendered for.
type Viewer struct {
	ID          uuid.UUID
	IsAdmin     bool
	BannedUntil *time.Time
}

type CalendarSlot struct {
	Slot     slot.TimeSlot       `json:"slot"`
	Start    time.Time           `json:"start"`
	End      time.Time           `json:"end"`
	State    SlotState           `json:"state"`
	Occupant *BookingWithProfile `json:"occupant,omitempty"`
	Actions  []Action            `json:"actions"`
}

type CalendarDay struct {
	Date  string         `json:"date"`
	Slots []CalendarSlot `json:"slots"`
}
