package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chargeslot/internal/auth"
	"chargeslot/internal/reputation"

	"github.com/google/uuid"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// CompletedCounter counts a user's bookings that have run to completion.
type CompletedCounter interface {
	CountCompleted(ctx context.Context, userID uuid.UUID, now time.Time) (int, error)
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Profile, string, string, error)
	Login(ctx context.Context, req LoginRequest) (*Profile, string, string, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, *Profile, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Profile, error)
	Reputation(ctx context.Context, id uuid.UUID) (*reputation.Score, error)
}

type service struct {
	repo      Repository
	counter   CompletedCounter
	jwtSecret string
	now       func() time.Time
}

func NewService(repo Repository, counter CompletedCounter, jwtSecret string) Service {
	return &service{
		repo:      repo,
		counter:   counter,
		jwtSecret: jwtSecret,
		now:       time.Now,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*Profile, string, string, error) {
	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, "", "", err
	}
	if exists {
		return nil, "", "", ErrEmailExists
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", "", err
	}

	p, err := s.repo.Create(ctx, &Profile{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         auth.RoleMember,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	})
	if err != nil {
		return nil, "", "", err
	}

	accessToken, refreshToken, err := auth.GenerateTokens(p.ID, p.Email, p.Role, s.jwtSecret, s.jwtSecret)
	if err != nil {
		return nil, "", "", err
	}

	return p, accessToken, refreshToken, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*Profile, string, string, error) {
	p, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", "", ErrInvalidCredentials
		}
		return nil, "", "", err
	}

	if !auth.CheckPassword(p.PasswordHash, req.Password) {
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, refreshToken, err := auth.GenerateTokens(p.ID, p.Email, p.Role, s.jwtSecret, s.jwtSecret)
	if err != nil {
		return nil, "", "", err
	}

	return p, accessToken, refreshToken, nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, *Profile, error) {
	_, claims, err := auth.RefreshAccessToken(refreshToken, s.jwtSecret, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	p, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", nil, err
	}

	// Role changes since the refresh token was issued take effect here.
	accessToken, err := auth.GenerateAccessToken(p.ID, p.Email, p.Role, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	return accessToken, p, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Profile, error) {
	return s.repo.UpdateDetails(ctx, id, req)
}

func (s *service) Reputation(ctx context.Context, id uuid.UUID) (*reputation.Score, error) {
	completed, err := s.counter.CountCompleted(ctx, id, s.now())
	if err != nil {
		return nil, fmt.Errorf("count completed bookings: %w", err)
	}

	score := reputation.ScoreFor(completed)
	return &score, nil
}
