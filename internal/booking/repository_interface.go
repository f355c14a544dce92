package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists bookings. Implementations must enforce that no two
// active bookings overlap and report a violation as ErrConflict.
type Repository interface {
	Insert(ctx context.Context, b *Booking) (*Booking, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	// The update methods apply only while the row still satisfies the
	// transition's preconditions, otherwise they return ErrConflict.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error
	// MarkNotCharging requires an active booking in charging state from.
	MarkNotCharging(ctx context.Context, id, reporterID uuid.UUID, from ChargingStatus) error
	// ClearReport requires the booking to still carry reporterID's report.
	ClearReport(ctx context.Context, id, reporterID uuid.UUID) error
	// MarkCharging requires an active booking in charging state from.
	MarkCharging(ctx context.Context, id uuid.UUID, from ChargingStatus) error
	ListInRange(ctx context.Context, from, to time.Time) ([]BookingWithProfile, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Booking, error)
	CountCompleted(ctx context.Context, userID uuid.UUID, now time.Time) (int, error)
}
