package company

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store abstracts settings and holiday persistence.
type Store interface {
	GetSettings(ctx context.Context) (Settings, error)
	UpdateSettings(ctx context.Context, id uuid.UUID, in UpdateSettingsInput) (Settings, error)
	ListHolidays(ctx context.Context, year int) ([]Holiday, error)
	CreateHoliday(ctx context.Context, in CreateHolidayInput) (Holiday, error)
	DeleteHoliday(ctx context.Context, id uuid.UUID) error
}

// Service applies company configuration rules.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService builds a company service.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Settings returns the current settings, creating defaults when absent.
func (s *Service) Settings(ctx context.Context) (Settings, error) {
	return s.store.GetSettings(ctx)
}

// UpdateSettings validates and persists new settings values.
func (s *Service) UpdateSettings(ctx context.Context, in UpdateSettingsInput) (Settings, error) {
	if err := in.Validate(); err != nil {
		return Settings{}, err
	}
	current, err := s.store.GetSettings(ctx)
	if err != nil {
		return Settings{}, err
	}
	return s.store.UpdateSettings(ctx, current.ID, in)
}

// Holidays lists the holidays of a year; zero means the current year.
func (s *Service) Holidays(ctx context.Context, year int) ([]Holiday, error) {
	if year == 0 {
		year = s.now().Year()
	}
	return s.store.ListHolidays(ctx, year)
}

// AddHoliday validates and stores a holiday entry.
func (s *Service) AddHoliday(ctx context.Context, in CreateHolidayInput) (Holiday, error) {
	if err := in.Validate(); err != nil {
		return Holiday{}, err
	}
	return s.store.CreateHoliday(ctx, in)
}

// RemoveHoliday deletes a holiday by id.
func (s *Service) RemoveHoliday(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteHoliday(ctx, id)
}
