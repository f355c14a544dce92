package profile

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Profile) (*Profile, error)
	FindByEmail(ctx context.Context, email string) (*Profile, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateDetails(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Profile, error)
	GetBannedUntil(ctx context.Context, id uuid.UUID) (*time.Time, error)
	SetBannedUntil(ctx context.Context, id uuid.UUID, until *time.Time) error
	FindContact(ctx context.Context, id uuid.UUID) (address, name string, err error)
}
