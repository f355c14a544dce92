package profile

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrNotFound    = errors.New("profile not found")
	ErrEmailExists = errors.New("email already exists")
)

const pqUniqueViolation pq.ErrorCode = "23505"

const profileColumns = `id, email, password_hash, role, first_name, last_name, phone, avatar_url, banned_until, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Profile) (*Profile, error) {
	query := `
		INSERT INTO profiles (id, email, password_hash, role, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + profileColumns

	var created Profile
	err := r.db.GetContext(ctx, &created, query,
		p.ID, strings.ToLower(p.Email), p.PasswordHash, p.Role, p.FirstName, p.LastName,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	return &created, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = $1`
	return r.findOne(ctx, query, strings.ToLower(email))
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *repository) findOne(ctx context.Context, query string, arg any) (*Profile, error) {
	var p Profile
	if err := r.db.GetContext(ctx, &p, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM profiles WHERE email = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, strings.ToLower(email)); err != nil {
		return false, err
	}

	return exists, nil
}

func (r *repository) UpdateDetails(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Profile, error) {
	query := `
		UPDATE profiles SET first_name = $1, last_name = $2, phone = $3, avatar_url = $4
		WHERE id = $5
		RETURNING ` + profileColumns

	var p Profile
	err := r.db.GetContext(ctx, &p, query, req.FirstName, req.LastName, req.Phone, req.AvatarURL, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &p, nil
}

func (r *repository) GetBannedUntil(ctx context.Context, id uuid.UUID) (*time.Time, error) {
	query := `SELECT banned_until FROM profiles WHERE id = $1`

	var until sql.NullTime
	if err := r.db.GetContext(ctx, &until, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !until.Valid {
		return nil, nil
	}

	return &until.Time, nil
}

// SetBannedUntil sets or, with a nil until, clears the suspension.
func (r *repository) SetBannedUntil(ctx context.Context, id uuid.UUID, until *time.Time) error {
	query := `UPDATE profiles SET banned_until = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, until, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *repository) FindContact(ctx context.Context, id uuid.UUID) (string, string, error) {
	query := `SELECT email, first_name FROM profiles WHERE id = $1`

	var row struct {
		Email     string `db:"email"`
		FirstName string `db:"first_name"`
	}
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", ErrNotFound
		}
		return "", "", err
	}

	return row.Email, row.FirstName, nil
}
