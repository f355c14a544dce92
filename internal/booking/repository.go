package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// exclusion_violation, raised by the bookings_no_overlap constraint.
const pqExclusionViolation pq.ErrorCode = "23P01"

const bookingColumns = `id, user_id, start_time, end_time, duration, status, charging_status, reporter_id, notes, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, b *Booking) (*Booking, error) {
	query := `
		INSERT INTO bookings (id, user_id, start_time, end_time, duration, status, charging_status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + bookingColumns

	var created Booking
	err := r.db.GetContext(ctx, &created, query,
		b.ID, b.UserID, b.StartTime, b.EndTime, b.Duration, b.Status, b.ChargingStatus, b.Notes,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqExclusionViolation {
			return nil, ErrConflict
		}
		return nil, err
	}

	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var b Booking
	err := r.db.GetContext(ctx, &b, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &b, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	query := `UPDATE bookings SET status = $1 WHERE id = $2 AND status = $3`

	result, err := r.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return err
	}

	return expectOneRow(result)
}

func (r *repository) MarkNotCharging(ctx context.Context, id, reporterID uuid.UUID, from ChargingStatus) error {
	query := `
		UPDATE bookings SET charging_status = 'not_charging', reporter_id = $1
		WHERE id = $2 AND status = 'active' AND charging_status = $3
	`

	result, err := r.db.ExecContext(ctx, query, reporterID, id, from)
	if err != nil {
		return err
	}

	return expectOneRow(result)
}

func (r *repository) ClearReport(ctx context.Context, id, reporterID uuid.UUID) error {
	query := `
		UPDATE bookings SET charging_status = 'unknown', reporter_id = NULL
		WHERE id = $1 AND charging_status = 'not_charging' AND reporter_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, id, reporterID)
	if err != nil {
		return err
	}

	return expectOneRow(result)
}

func (r *repository) MarkCharging(ctx context.Context, id uuid.UUID, from ChargingStatus) error {
	query := `
		UPDATE bookings SET charging_status = 'charging'
		WHERE id = $1 AND status = 'active' AND charging_status = $2
	`

	result, err := r.db.ExecContext(ctx, query, id, from)
	if err != nil {
		return err
	}

	return expectOneRow(result)
}

func (r *repository) ListInRange(ctx context.Context, from, to time.Time) ([]BookingWithProfile, error) {
	query := `
		SELECT b.id, b.user_id, b.start_time, b.end_time, b.duration, b.status, b.charging_status, b.reporter_id, b.notes, b.created_at,
			p.first_name, p.last_name, p.banned_until
		FROM bookings b
		JOIN profiles p ON p.id = b.user_id
		WHERE b.status = 'active' AND b.start_time < $2 AND b.end_time > $1
		ORDER BY b.start_time
	`

	bookings := []BookingWithProfile{}
	if err := r.db.SelectContext(ctx, &bookings, query, from, to); err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY start_time DESC`

	bookings := []Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, userID); err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) CountCompleted(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE user_id = $1 AND status = 'active' AND end_time <= $2`

	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, now); err != nil {
		return 0, err
	}

	return count, nil
}

func expectOneRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrConflict
	}
	return nil
}
