package auth

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tempora-hr/tempora/internal/directory"
	"github.com/tempora-hr/tempora/internal/shared"
)

// ProfileSource resolves login credentials against the directory.
type ProfileSource interface {
	GetProfile(ctx context.Context, id uuid.UUID) (directory.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (directory.Profile, error)
}

// Service wraps authentication business rules.
type Service struct {
	profiles ProfileSource
}

// NewService constructs a new Service.
func NewService(profiles ProfileSource) *Service {
	return &Service{profiles: profiles}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (directory.Profile, error) {
	profile, err := s.profiles.GetProfileByEmail(ctx, email)
	if err != nil {
		return directory.Profile{}, shared.ErrInvalidCredentials
	}
	if !profile.Active {
		return directory.Profile{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return directory.Profile{}, shared.ErrInvalidCredentials
	}
	return profile, nil
}

// Profile loads the profile behind an authenticated session.
func (s *Service) Profile(ctx context.Context, id uuid.UUID) (directory.Profile, error) {
	return s.profiles.GetProfile(ctx, id)
}
