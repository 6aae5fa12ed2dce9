package verification

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryInterface defines the verification store operations
type RepositoryInterface interface {
	Create(ctx context.Context, verification *TicketVerification) error
	GetByID(ctx context.Context, verificationID uuid.UUID) (*TicketVerification, error)
	UpdateReview(ctx context.Context, verificationID uuid.UUID, status VerificationStatus, reviewedBy uuid.UUID, notes string) error
	ListByStatus(ctx context.Context, status VerificationStatus, limit, offset int) ([]*TicketVerification, error)
	ListByListing(ctx context.Context, listingID uuid.UUID, limit, offset int) ([]*TicketVerification, error)
	ListByMethod(ctx context.Context, method VerificationMethod, limit, offset int) ([]*TicketVerification, error)
	ListReviewQueue(ctx context.Context, limit, offset int) ([]*TicketVerification, error)
	CountRejectedBySeller(ctx context.Context, sellerID uuid.UUID) (int, error)
	CountPendingManualReview(ctx context.Context) (int64, error)
}
