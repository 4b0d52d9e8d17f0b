package directory

import (
	"context"

	"github.com/google/uuid"
)

// ProfileStore abstracts directory persistence for the service.
type ProfileStore interface {
	GetProfile(ctx context.Context, id uuid.UUID) (Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (Profile, error)
	ListTeam(ctx context.Context, managerID uuid.UUID) ([]Profile, error)
	ListActiveProfiles(ctx context.Context) ([]Profile, error)
	SetProfileActive(ctx context.Context, id uuid.UUID, active bool) error
	ExpectedDailyMinutes(ctx context.Context, userID uuid.UUID) (int, error)
	ListDepartments(ctx context.Context) ([]Department, error)
	CreateDepartment(ctx context.Context, in CreateDepartmentInput) (Department, error)
	SetDepartmentActive(ctx context.Context, id uuid.UUID, active bool) error
}

// Service orchestrates directory lookups and the management relationship.
type Service struct {
	store ProfileStore
}

// NewService constructs a Service instance.
func NewService(store ProfileStore) *Service {
	return &Service{store: store}
}

// GetProfile fetches a profile by ID.
func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (Profile, error) {
	return s.store.GetProfile(ctx, id)
}

// GetProfileByEmail fetches a profile by email.
func (s *Service) GetProfileByEmail(ctx context.Context, email string) (Profile, error) {
	return s.store.GetProfileByEmail(ctx, email)
}

// ListTeam returns the profiles reporting to a manager.
func (s *Service) ListTeam(ctx context.Context, managerID uuid.UUID) ([]Profile, error) {
	return s.store.ListTeam(ctx, managerID)
}

// ListActiveProfiles returns all active profiles.
func (s *Service) ListActiveProfiles(ctx context.Context) ([]Profile, error) {
	return s.store.ListActiveProfiles(ctx)
}

// SetProfileActive toggles an employee's active flag.
func (s *Service) SetProfileActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.store.SetProfileActive(ctx, id, active)
}

// IsManagerOf reports whether the reviewer has authority over the
// requester: either a direct management link, or an HR-or-above role.
func (s *Service) IsManagerOf(ctx context.Context, reviewerID, requesterID uuid.UUID) (bool, error) {
	if reviewerID == requesterID {
		return false, nil
	}
	requester, err := s.store.GetProfile(ctx, requesterID)
	if err != nil {
		return false, err
	}
	if requester.ManagerID != nil && *requester.ManagerID == reviewerID {
		return true, nil
	}
	reviewer, err := s.store.GetProfile(ctx, reviewerID)
	if err != nil {
		return false, err
	}
	return reviewer.Role.AtLeast(RoleHR), nil
}

// ExpectedDailyMinutes resolves the expected-minutes policy for an
// employee's department.
func (s *Service) ExpectedDailyMinutes(ctx context.Context, userID uuid.UUID) (int, error) {
	minutes, err := s.store.ExpectedDailyMinutes(ctx, userID)
	if err != nil {
		return 0, err
	}
	if minutes <= 0 {
		minutes = DefaultExpectedDailyMinutes
	}
	return minutes, nil
}

// ListDepartments returns all departments.
func (s *Service) ListDepartments(ctx context.Context) ([]Department, error) {
	return s.store.ListDepartments(ctx)
}

// CreateDepartment validates and inserts a department.
func (s *Service) CreateDepartment(ctx context.Context, in CreateDepartmentInput) (Department, error) {
	if err := in.Validate(); err != nil {
		return Department{}, err
	}
	return s.store.CreateDepartment(ctx, in)
}

// SetDepartmentActive toggles a department's active flag.
func (s *Service) SetDepartmentActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.store.SetDepartmentActive(ctx, id, active)
}
