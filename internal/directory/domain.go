package directory

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is an ordered capability level. Higher levels inherit the
// authority of lower ones.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleHR       Role = "hr"
	RoleAdmin    Role = "admin"
)

var roleLevels = map[Role]int{
	RoleEmployee: 1,
	RoleManager:  2,
	RoleHR:       3,
	RoleAdmin:    4,
}

// Level returns the numeric rank of the role; unknown roles rank zero.
func (r Role) Level() int {
	return roleLevels[r]
}

// AtLeast reports whether the role ranks at or above the other role.
func (r Role) AtLeast(other Role) bool {
	return r.Level() >= other.Level()
}

// ParseRole normalises a stored role name.
func ParseRole(s string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := roleLevels[role]; !ok {
		return "", errors.New("directory: unknown role")
	}
	return role, nil
}

// WorkdayType distinguishes fixed-schedule from flexible departments.
type WorkdayType string

const (
	WorkdayFixed    WorkdayType = "fixed"
	WorkdayFlexible WorkdayType = "flexible"
)

// Profile describes an employee record.
type Profile struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	DepartmentID *uuid.UUID
	ManagerID    *uuid.UUID
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Department groups employees under a shared attendance policy.
type Department struct {
	ID                   uuid.UUID
	Name                 string
	ExpectedDailyMinutes int
	ToleranceMinutes     int
	StandardClockIn      string
	StandardClockOut     string
	Workday              WorkdayType
	Active               bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// DefaultExpectedDailyMinutes applies when an employee has no
// department policy (8-hour day).
const DefaultExpectedDailyMinutes = 480

// CreateDepartmentInput captures validation rules for new departments.
type CreateDepartmentInput struct {
	Name                 string
	ExpectedDailyMinutes int
	ToleranceMinutes     int
	StandardClockIn      string
	StandardClockOut     string
	Workday              WorkdayType
}

// Validate ensures the department input is coherent.
func (in CreateDepartmentInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("directory: department name required")
	}
	if in.ExpectedDailyMinutes < 0 || in.ExpectedDailyMinutes > 24*60 {
		return errors.New("directory: expected daily minutes out of range")
	}
	if in.ToleranceMinutes < 0 {
		return errors.New("directory: tolerance minutes cannot be negative")
	}
	switch in.Workday {
	case "", WorkdayFixed, WorkdayFlexible:
	default:
		return errors.New("directory: unknown workday type")
	}
	return nil
}

// ErrNotFound indicates a missing directory record.
var ErrNotFound = errors.New("directory: not found")

// ErrDuplicateDepartment indicates a department name collision.
var ErrDuplicateDepartment = errors.New("directory: department already exists")
