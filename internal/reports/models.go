package reports

import (
	"time"

	"github.com/google/uuid"
)

// ReportType categorizes what the reporter is accusing the target of
type ReportType string

const (
	ReportTypeFakeListing  ReportType = "fake_listing"
	ReportTypeNonDelivery  ReportType = "non_delivery"
	ReportTypePaymentFraud ReportType = "payment_fraud"
	ReportTypeCounterfeit  ReportType = "counterfeit"
	ReportTypeOther        ReportType = "other"
)

// Priority returns the triage weight of a report type. Higher weights sort
// first in the moderation queue.
func (t ReportType) Priority() int {
	switch t {
	case ReportTypePaymentFraud:
		return 12
	case ReportTypeCounterfeit:
		return 10
	case ReportTypeFakeListing:
		return 8
	case ReportTypeNonDelivery:
		return 6
	default:
		return 4
	}
}

// Valid reports whether the type is a known enum value
func (t ReportType) Valid() bool {
	switch t {
	case ReportTypeFakeListing, ReportTypeNonDelivery, ReportTypePaymentFraud, ReportTypeCounterfeit, ReportTypeOther:
		return true
	}
	return false
}

// ReportStatus is the lifecycle state of a fraud report
type ReportStatus string

const (
	StatusOpen      ReportStatus = "open"
	StatusAssigned  ReportStatus = "assigned"
	StatusResolved  ReportStatus = "resolved"
	StatusDismissed ReportStatus = "dismissed"
)

// Terminal reports whether the status admits no further transitions
func (s ReportStatus) Terminal() bool {
	return s == StatusResolved || s == StatusDismissed
}

// FraudReport is a user-submitted accusation against a listing, user or
// transaction. Resolution fields are set iff the report is terminal;
// AssignedTo stays set once assignment has occurred.
type FraudReport struct {
	ID             uuid.UUID    `json:"id"`
	ReporterID     uuid.UUID    `json:"reporter_id"`
	ReportedUserID *uuid.UUID   `json:"reported_user_id,omitempty"`
	ListingID      *uuid.UUID   `json:"listing_id,omitempty"`
	TransactionID  *uuid.UUID   `json:"transaction_id,omitempty"`
	Type           ReportType   `json:"type"`
	Reason         string       `json:"reason"`
	Description    string       `json:"description,omitempty"`
	Evidence       []string     `json:"evidence,omitempty"`
	Status         ReportStatus `json:"status"`
	AssignedTo     *uuid.UUID   `json:"assigned_to,omitempty"`
	Resolution     *string      `json:"resolution,omitempty"`
	ResolvedBy     *uuid.UUID   `json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time   `json:"resolved_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Filter selects reports for listing. At most one key is applied, in
// declaration order; with no key set the priority queue view is returned.
type Filter struct {
	Status         *ReportStatus
	AssignedTo     *uuid.UUID
	ReportedUserID *uuid.UUID
	Type           *ReportType
	Limit          int
	Offset         int
}

// SubmitReportRequest is the payload for submitting a fraud report
type SubmitReportRequest struct {
	ReportedUserID *uuid.UUID `json:"reported_user_id" binding:"omitempty"`
	ListingID      *uuid.UUID `json:"listing_id" binding:"omitempty"`
	TransactionID  *uuid.UUID `json:"transaction_id" binding:"omitempty"`
	Type           ReportType `json:"type" binding:"required"`
	Reason         string     `json:"reason" binding:"required,min=3,max=200"`
	Description    string     `json:"description" binding:"max=4000"`
	Evidence       []string   `json:"evidence" binding:"max=20"`
}
