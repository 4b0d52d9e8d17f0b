package company

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tempora-hr/tempora/internal/platform/httpx"
)

// Settings is the single company-wide configuration row.
type Settings struct {
	ID                  uuid.UUID `json:"id"`
	RequireSelfie       bool      `json:"require_selfie"`
	GeofenceRadiusKM    float64   `json:"geofence_radius_km"`
	RetentionYears      int       `json:"retention_years"`
	NotifyManagerOnLate bool      `json:"notify_manager_on_late"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// UpdateSettingsInput carries the editable settings fields.
type UpdateSettingsInput struct {
	RequireSelfie       bool
	GeofenceRadiusKM    float64
	RetentionYears      int
	NotifyManagerOnLate bool
}

// Validate bounds the settings input.
func (in UpdateSettingsInput) Validate() error {
	if in.GeofenceRadiusKM < 0 {
		return fmt.Errorf("geofence radius must not be negative: %w", httpx.ErrValidation)
	}
	if in.RetentionYears < 1 || in.RetentionYears > 50 {
		return fmt.Errorf("retention years must be between 1 and 50: %w", httpx.ErrValidation)
	}
	return nil
}

// Holiday is a stored calendar entry. Holidays are configuration only
// and never change the expected-minutes baseline.
type Holiday struct {
	ID          uuid.UUID `json:"id"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	National    bool      `json:"national"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateHolidayInput carries a new holiday entry.
type CreateHolidayInput struct {
	Date        time.Time
	Description string
	National    bool
}

// Validate checks a holiday entry before insertion.
func (in CreateHolidayInput) Validate() error {
	if in.Date.IsZero() {
		return fmt.Errorf("holiday date is required: %w", httpx.ErrValidation)
	}
	if in.Description == "" {
		return fmt.Errorf("holiday description is required: %w", httpx.ErrValidation)
	}
	return nil
}

var (
	// ErrNotFound is returned when a settings row or holiday does not exist.
	ErrNotFound = fmt.Errorf("company record: %w", httpx.ErrNotFound)
	// ErrDuplicateHoliday is returned when a holiday already exists for a date.
	ErrDuplicateHoliday = fmt.Errorf("holiday already exists for that date: %w", httpx.ErrConflict)
)
