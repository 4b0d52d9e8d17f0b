package timeclock

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// PunchKind marks the direction of a punch.
type PunchKind string

const (
	KindIn  PunchKind = "in"
	KindOut PunchKind = "out"
)

// Opposite returns the kind expected after this one.
func (k PunchKind) Opposite() PunchKind {
	if k == KindIn {
		return KindOut
	}
	return KindIn
}

// Valid reports whether the kind is a known value.
func (k PunchKind) Valid() bool {
	return k == KindIn || k == KindOut
}

// CaptureMethod records how the punch was captured.
type CaptureMethod string

const (
	MethodApp       CaptureMethod = "app"
	MethodBiometric CaptureMethod = "biometric"
	MethodQR        CaptureMethod = "qr"
	MethodManual    CaptureMethod = "manual"
)

// Valid reports whether the method is a known value.
func (m CaptureMethod) Valid() bool {
	switch m {
	case MethodApp, MethodBiometric, MethodQR, MethodManual:
		return true
	}
	return false
}

// Geolocation captures where a punch happened.
type Geolocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// Punch is a single timestamped attendance event. Punches are
// immutable once created; only an approved adjustment may rewrite the
// instant, and the core never deletes them.
type Punch struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Instant   time.Time
	Kind      PunchKind
	Method    CaptureMethod
	Location  *Geolocation
	PhotoRef  string
	Note      string
	CreatedAt time.Time
}

// RegisterInput bundles parameters for creating a punch.
type RegisterInput struct {
	UserID   uuid.UUID
	Kind     PunchKind
	Method   CaptureMethod
	Location *Geolocation
	PhotoRef string
	Note     string
}

// Validate ensures the register input is coherent.
func (in RegisterInput) Validate() error {
	if in.UserID == uuid.Nil {
		return errors.New("timeclock: user id required")
	}
	if !in.Kind.Valid() {
		return errors.New("timeclock: punch kind must be in or out")
	}
	if in.Method != "" && !in.Method.Valid() {
		return errors.New("timeclock: unknown capture method")
	}
	return nil
}

// ErrNotFound indicates a missing punch.
var ErrNotFound = errors.New("timeclock: punch not found")
