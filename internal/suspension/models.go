package suspension

import (
	"time"

	"github.com/google/uuid"
)

// SuspensionType classifies an enforcement action. Temporary and permanent
// suspensions restrict the account and are mutually exclusive per user;
// warnings are advisory and stack freely.
type SuspensionType string

const (
	TypeTemporary SuspensionType = "temporary"
	TypePermanent SuspensionType = "permanent"
	TypeWarning   SuspensionType = "warning"
)

// Valid reports whether the type is a known enum value
func (t SuspensionType) Valid() bool {
	switch t {
	case TypeTemporary, TypePermanent, TypeWarning:
		return true
	}
	return false
}

// Exclusive reports whether the type blocks account access and is subject
// to the one-active-per-user rule
func (t SuspensionType) Exclusive() bool {
	return t == TypeTemporary || t == TypePermanent
}

// UserSuspension is an enforcement record against a user. A nil EndDate
// means indefinite; the active flag is always derived from the clock,
// never stored.
type UserSuspension struct {
	ID          uuid.UUID      `json:"id"`
	UserID      uuid.UUID      `json:"user_id"`
	Reason      string         `json:"reason"`
	SuspendedBy uuid.UUID      `json:"suspended_by"`
	Type        SuspensionType `json:"type"`
	StartDate   time.Time      `json:"start_date"`
	EndDate     *time.Time     `json:"end_date,omitempty"`
	LiftedAt    *time.Time     `json:"lifted_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// ActiveAt reports whether the suspension is in force at the given instant.
// A suspension whose end date equals the instant exactly has expired.
func (s *UserSuspension) ActiveAt(now time.Time) bool {
	if s.LiftedAt != nil {
		return false
	}
	return s.EndDate == nil || s.EndDate.After(now)
}

// Active reports whether the suspension is currently in force
func (s *UserSuspension) Active() bool {
	return s.ActiveAt(time.Now())
}

// Filter selects suspensions for listing. At most one key is applied, in
// declaration order; with no key set the active exclusive suspensions are
// returned.
type Filter struct {
	UserID *uuid.UUID
	Active *bool
	Type   *SuspensionType
	Limit  int
	Offset int
}

// SuspendRequest is the payload for suspending a user
type SuspendRequest struct {
	UserID  uuid.UUID      `json:"user_id" binding:"required"`
	Reason  string         `json:"reason" binding:"required,min=3,max=2000"`
	Type    SuspensionType `json:"type" binding:"required,oneof=temporary permanent warning"`
	EndDate *time.Time     `json:"end_date,omitempty"`
}
