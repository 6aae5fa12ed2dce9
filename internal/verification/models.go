package verification

import (
	"time"

	"github.com/google/uuid"
)

// VerificationMethod records how a verification outcome was produced
type VerificationMethod string

const (
	MethodAutomated VerificationMethod = "automated"
	MethodManual    VerificationMethod = "manual"
)

// Valid reports whether the method is a known enum value
func (m VerificationMethod) Valid() bool {
	return m == MethodAutomated || m == MethodManual
}

// VerificationStatus is the lifecycle state of a ticket verification
type VerificationStatus string

const (
	StatusPending              VerificationStatus = "pending"
	StatusVerified             VerificationStatus = "verified"
	StatusRejected             VerificationStatus = "rejected"
	StatusRequiresManualReview VerificationStatus = "requires_manual_review"
)

// Terminal reports whether the status admits no further transitions
func (s VerificationStatus) Terminal() bool {
	return s == StatusVerified || s == StatusRejected
}

// CheckOutcome is the result of a single automated check
type CheckOutcome string

const (
	OutcomePass         CheckOutcome = "pass"
	OutcomeFail         CheckOutcome = "fail"
	OutcomeInconclusive CheckOutcome = "inconclusive"
)

// CheckResult captures one automated check's verdict and how sure it is.
// Confidence is in [0,1].
type CheckResult struct {
	Name       string       `json:"name"`
	Outcome    CheckOutcome `json:"outcome"`
	Confidence float64      `json:"confidence"`
	Details    string       `json:"details,omitempty"`
}

// TicketVerification is an authenticity assessment of a listing. Automated
// runs persist every individual check outcome; a later manual review
// supersedes the automated verdict without discarding that evidence.
type TicketVerification struct {
	ID          uuid.UUID          `json:"id"`
	ListingID   uuid.UUID          `json:"listing_id"`
	SellerID    uuid.UUID          `json:"seller_id"`
	Method      VerificationMethod `json:"method"`
	Status      VerificationStatus `json:"status"`
	Checks      []CheckResult      `json:"checks,omitempty"`
	ReviewNotes string             `json:"review_notes,omitempty"`
	ReviewedBy  *uuid.UUID         `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time         `json:"reviewed_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// Filter selects verifications for listing. At most one key is applied, in
// declaration order; with no key set the manual review queue is returned.
type Filter struct {
	Status    *VerificationStatus
	ListingID *uuid.UUID
	Method    *VerificationMethod
	Limit     int
	Offset    int
}

// ManualReviewRequest is the payload for a moderator's verification verdict
type ManualReviewRequest struct {
	Status VerificationStatus `json:"status" binding:"required,oneof=verified rejected"`
	Notes  string             `json:"notes" binding:"max=4000"`
}
