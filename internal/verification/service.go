package verification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/stagepass/trust-safety/internal/audit"
	"github.com/stagepass/trust-safety/internal/auth"
	"github.com/stagepass/trust-safety/internal/marketplace"
	"github.com/stagepass/trust-safety/pkg/common"
	"github.com/stagepass/trust-safety/pkg/config"
	"github.com/stagepass/trust-safety/pkg/locks"
	"github.com/stagepass/trust-safety/pkg/logger"
)

const entityKind = "ticket_verification"

const defaultPageSize = 50

// Service owns the verification lifecycle: automated runs and the manual
// review that may supersede them.
type Service struct {
	repo        RepositoryInterface
	marketplace marketplace.Client
	checks      Runner
	events      audit.Publisher
	cfg         config.VerificationConfig
	transitions *locks.Keyed
}

// NewService creates a new verification service
func NewService(repo RepositoryInterface, mkt marketplace.Client, checks Runner, events audit.Publisher, cfg config.VerificationConfig) *Service {
	return &Service{
		repo:        repo,
		marketplace: mkt,
		checks:      checks,
		events:      events,
		cfg:         cfg,
		transitions: locks.NewKeyed(),
	}
}

// RunAutomatedVerification runs the check battery against a listing and
// persists one record carrying the verdict and every check outcome.
// Any check failing with confidence at or above the reject threshold
// rejects the listing; a unanimous confident pass verifies it; anything in
// between escalates to manual review.
func (s *Service) RunAutomatedVerification(ctx context.Context, actor auth.Actor, listingID uuid.UUID) (*TicketVerification, error) {
	if err := auth.Require(actor, auth.RoleModerator); err != nil {
		return nil, err
	}

	listing, err := s.marketplace.GetListing(ctx, listingID)
	if err != nil {
		if common.IsKind(err, common.KindNotFound) {
			return nil, common.NewNotFoundError("listing not found", err)
		}
		return nil, common.NewDependencyError("unable to load listing", err)
	}

	results := s.checks.Run(ctx, listing)
	status := s.aggregate(results)

	now := time.Now()
	verification := &TicketVerification{
		ID:        uuid.New(),
		ListingID: listing.ID,
		SellerID:  listing.SellerID,
		Method:    MethodAutomated,
		Status:    status,
		Checks:    results,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, verification); err != nil {
		return nil, common.NewDependencyError("unable to store verification", err)
	}

	s.events.Emit(audit.Event{
		EntityKind: entityKind,
		EntityID:   verification.ID,
		NewStatus:  string(status),
		ActorID:    actor.ID,
		At:         now,
	})
	logger.Info("automated verification completed",
		zap.String("verification_id", verification.ID.String()),
		zap.String("listing_id", listing.ID.String()),
		zap.String("status", string(status)),
	)

	return verification, nil
}

// PerformManualReview records a moderator verdict on a verification that is
// still waiting on a human. Terminal records reject re-review; the
// automated check evidence stays on the record.
func (s *Service) PerformManualReview(ctx context.Context, actor auth.Actor, verificationID uuid.UUID, status VerificationStatus, notes string) (*TicketVerification, error) {
	if err := auth.Require(actor, auth.RoleModerator); err != nil {
		return nil, err
	}

	if status != StatusVerified && status != StatusRejected {
		return nil, common.NewBadRequestError("review status must be verified or rejected", nil)
	}

	s.transitions.Lock(verificationID)
	defer s.transitions.Unlock(verificationID)

	verification, err := s.repo.GetByID(ctx, verificationID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, common.NewNotFoundError("verification not found", err)
		}
		return nil, common.NewDependencyError("unable to load verification", err)
	}

	if verification.Status.Terminal() {
		return nil, common.NewInvalidTransitionError("verification already has a final verdict")
	}

	if err := s.repo.UpdateReview(ctx, verificationID, status, actor.ID, notes); err != nil {
		return nil, common.NewDependencyError("unable to review verification", err)
	}

	now := time.Now()
	s.events.Emit(audit.Event{
		EntityKind: entityKind,
		EntityID:   verificationID,
		OldStatus:  string(verification.Status),
		NewStatus:  string(status),
		ActorID:    actor.ID,
		At:         now,
	})
	logger.Info("manual verification review recorded",
		zap.String("verification_id", verificationID.String()),
		zap.String("status", string(status)),
		zap.String("reviewer_id", actor.ID.String()),
	)

	verification.Status = status
	verification.ReviewNotes = notes
	verification.ReviewedBy = &actor.ID
	verification.ReviewedAt = &now
	return verification, nil
}

// ListVerifications returns verifications for the moderation UI. At most
// one filter key is applied; with none set the review queue is returned.
func (s *Service) ListVerifications(ctx context.Context, actor auth.Actor, filter *Filter) ([]*TicketVerification, error) {
	if err := auth.Require(actor, auth.RoleModerator); err != nil {
		return nil, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = defaultPageSize
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var (
		result []*TicketVerification
		err    error
	)

	switch {
	case filter.Status != nil:
		result, err = s.repo.ListByStatus(ctx, *filter.Status, limit, offset)
	case filter.ListingID != nil:
		result, err = s.repo.ListByListing(ctx, *filter.ListingID, limit, offset)
	case filter.Method != nil:
		result, err = s.repo.ListByMethod(ctx, *filter.Method, limit, offset)
	default:
		result, err = s.repo.ListReviewQueue(ctx, limit, offset)
	}

	if err != nil {
		return nil, common.NewDependencyError("unable to list verifications", err)
	}
	if result == nil {
		result = []*TicketVerification{}
	}
	return result, nil
}

func (s *Service) aggregate(results []CheckResult) VerificationStatus {
	allConfidentPasses := len(results) > 0
	for _, result := range results {
		if result.Outcome == OutcomeFail && result.Confidence >= s.cfg.RejectThreshold {
			return StatusRejected
		}
		if result.Outcome != OutcomePass || result.Confidence < s.cfg.TrustThreshold {
			allConfidentPasses = false
		}
	}
	if allConfidentPasses {
		return StatusVerified
	}
	return StatusRequiresManualReview
}
