package directory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type memoryProfileStore struct {
	profiles    map[uuid.UUID]Profile
	minutes     map[uuid.UUID]int
	departments []Department
}

func newMemoryProfileStore() *memoryProfileStore {
	return &memoryProfileStore{
		profiles: make(map[uuid.UUID]Profile),
		minutes:  make(map[uuid.UUID]int),
	}
}

func (m *memoryProfileStore) GetProfile(ctx context.Context, id uuid.UUID) (Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

func (m *memoryProfileStore) GetProfileByEmail(ctx context.Context, email string) (Profile, error) {
	for _, p := range m.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return Profile{}, ErrNotFound
}

func (m *memoryProfileStore) ListTeam(ctx context.Context, managerID uuid.UUID) ([]Profile, error) {
	var team []Profile
	for _, p := range m.profiles {
		if p.ManagerID != nil && *p.ManagerID == managerID {
			team = append(team, p)
		}
	}
	return team, nil
}

func (m *memoryProfileStore) ListActiveProfiles(ctx context.Context) ([]Profile, error) {
	var active []Profile
	for _, p := range m.profiles {
		if p.Active {
			active = append(active, p)
		}
	}
	return active, nil
}

func (m *memoryProfileStore) SetProfileActive(ctx context.Context, id uuid.UUID, active bool) error {
	p, ok := m.profiles[id]
	if !ok {
		return ErrNotFound
	}
	p.Active = active
	m.profiles[id] = p
	return nil
}

func (m *memoryProfileStore) ExpectedDailyMinutes(ctx context.Context, userID uuid.UUID) (int, error) {
	return m.minutes[userID], nil
}

func (m *memoryProfileStore) ListDepartments(ctx context.Context) ([]Department, error) {
	return m.departments, nil
}

func (m *memoryProfileStore) CreateDepartment(ctx context.Context, in CreateDepartmentInput) (Department, error) {
	for _, d := range m.departments {
		if d.Name == in.Name {
			return Department{}, ErrDuplicateDepartment
		}
	}
	dept := Department{
		ID:                   uuid.New(),
		Name:                 in.Name,
		ExpectedDailyMinutes: in.ExpectedDailyMinutes,
		ToleranceMinutes:     in.ToleranceMinutes,
		Active:               true,
	}
	m.departments = append(m.departments, dept)
	return dept, nil
}

func (m *memoryProfileStore) SetDepartmentActive(ctx context.Context, id uuid.UUID, active bool) error {
	for i, d := range m.departments {
		if d.ID == id {
			m.departments[i].Active = active
			return nil
		}
	}
	return ErrNotFound
}

func addProfile(store *memoryProfileStore, role Role, managerID *uuid.UUID) uuid.UUID {
	id := uuid.New()
	store.profiles[id] = Profile{
		ID:        id,
		Name:      "someone",
		Email:     id.String() + "@example.com",
		Role:      role,
		ManagerID: managerID,
		Active:    true,
	}
	return id
}

func TestParseRole(t *testing.T) {
	for _, raw := range []string{"employee", "manager", "hr", "admin"} {
		role, err := ParseRole(raw)
		require.NoError(t, err)
		require.Equal(t, raw, string(role))
	}
	_, err := ParseRole("intern")
	require.Error(t, err)
	_, err = ParseRole("")
	require.Error(t, err)
}

func TestRoleAtLeast(t *testing.T) {
	require.True(t, RoleAdmin.AtLeast(RoleHR))
	require.True(t, RoleHR.AtLeast(RoleHR))
	require.True(t, RoleManager.AtLeast(RoleEmployee))
	require.False(t, RoleEmployee.AtLeast(RoleManager))
	require.False(t, RoleManager.AtLeast(RoleHR))
}

func TestIsManagerOf(t *testing.T) {
	store := newMemoryProfileStore()
	svc := NewService(store)

	managerID := addProfile(store, RoleManager, nil)
	employeeID := addProfile(store, RoleEmployee, &managerID)
	otherManagerID := addProfile(store, RoleManager, nil)
	hrID := addProfile(store, RoleHR, nil)
	adminID := addProfile(store, RoleAdmin, nil)

	ctx := context.Background()

	ok, err := svc.IsManagerOf(ctx, managerID, employeeID)
	require.NoError(t, err)
	require.True(t, ok, "direct manager link")

	ok, err = svc.IsManagerOf(ctx, otherManagerID, employeeID)
	require.NoError(t, err)
	require.False(t, ok, "unrelated manager has no authority")

	ok, err = svc.IsManagerOf(ctx, hrID, employeeID)
	require.NoError(t, err)
	require.True(t, ok, "hr reviews anyone")

	ok, err = svc.IsManagerOf(ctx, adminID, managerID)
	require.NoError(t, err)
	require.True(t, ok, "admin reviews anyone")

	ok, err = svc.IsManagerOf(ctx, employeeID, employeeID)
	require.NoError(t, err)
	require.False(t, ok, "nobody reviews their own request")

	_, err = svc.IsManagerOf(ctx, managerID, uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestExpectedDailyMinutesFallback(t *testing.T) {
	store := newMemoryProfileStore()
	svc := NewService(store)

	withPolicy := addProfile(store, RoleEmployee, nil)
	store.minutes[withPolicy] = 360

	withoutPolicy := addProfile(store, RoleEmployee, nil)

	minutes, err := svc.ExpectedDailyMinutes(context.Background(), withPolicy)
	require.NoError(t, err)
	require.Equal(t, 360, minutes)

	minutes, err = svc.ExpectedDailyMinutes(context.Background(), withoutPolicy)
	require.NoError(t, err)
	require.Equal(t, DefaultExpectedDailyMinutes, minutes)
}

func TestCreateDepartment(t *testing.T) {
	store := newMemoryProfileStore()
	svc := NewService(store)
	ctx := context.Background()

	dept, err := svc.CreateDepartment(ctx, CreateDepartmentInput{
		Name:                 "Engineering",
		ExpectedDailyMinutes: 480,
	})
	require.NoError(t, err)
	require.Equal(t, "Engineering", dept.Name)

	_, err = svc.CreateDepartment(ctx, CreateDepartmentInput{
		Name:                 "Engineering",
		ExpectedDailyMinutes: 480,
	})
	require.ErrorIs(t, err, ErrDuplicateDepartment)

	_, err = svc.CreateDepartment(ctx, CreateDepartmentInput{
		Name: "",
	})
	require.Error(t, err)

	_, err = svc.CreateDepartment(ctx, CreateDepartmentInput{
		Name:                 "Night Shift",
		ExpectedDailyMinutes: 2000,
	})
	require.Error(t, err, "expected minutes above a day must fail")
}
