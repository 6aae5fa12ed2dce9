package activity

import (
	"time"

	"github.com/google/uuid"
)

// ActivityType identifies which detection rule produced a finding
type ActivityType string

const (
	TypeRapidListing      ActivityType = "rapid_listing"
	TypePriceManipulation ActivityType = "price_manipulation"
	TypeDuplicateImages   ActivityType = "duplicate_images"
	TypeOther             ActivityType = "other"
)

// Valid reports whether the type is a known enum value
func (t ActivityType) Valid() bool {
	switch t {
	case TypeRapidListing, TypePriceManipulation, TypeDuplicateImages, TypeOther:
		return true
	}
	return false
}

// Severity grades a finding. Values are ordered low < medium < high < critical.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank returns the ordinal position of the severity for comparisons
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether the severity is a known enum value
func (s Severity) Valid() bool {
	return s.Rank() > 0
}

// ActivityStatus is the review state of a finding
type ActivityStatus string

const (
	StatusPending   ActivityStatus = "pending"
	StatusReviewed  ActivityStatus = "reviewed"
	StatusDismissed ActivityStatus = "dismissed"
)

// SuspiciousActivity is a system-generated finding from an automated
// detection rule. Findings are never created by direct user action and the
// review transition is one-shot: reviewed/dismissed are terminal.
type SuspiciousActivity struct {
	ID           uuid.UUID              `json:"id"`
	UserID       uuid.UUID              `json:"user_id"`
	ActivityType ActivityType           `json:"activity_type"`
	Severity     Severity               `json:"severity"`
	Evidence     map[string]interface{} `json:"evidence"`
	Status       ActivityStatus         `json:"status"`
	ReviewedBy   *uuid.UUID             `json:"reviewed_by,omitempty"`
	ReviewNotes  string                 `json:"review_notes,omitempty"`
	ReviewedAt   *time.Time             `json:"reviewed_at,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

// Filter selects activities for listing. At most one key is applied, in
// declaration order; with no key set the pending queue view is returned.
type Filter struct {
	Status       *ActivityStatus
	UserID       *uuid.UUID
	Severity     *Severity
	ActivityType *ActivityType
	Limit        int
	Offset       int
}
