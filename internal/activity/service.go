package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/stagepass/trust-safety/internal/audit"
	"github.com/stagepass/trust-safety/internal/auth"
	"github.com/stagepass/trust-safety/pkg/common"
	"github.com/stagepass/trust-safety/pkg/locks"
	"github.com/stagepass/trust-safety/pkg/logger"
)

const entityKind = "suspicious_activity"

const defaultPageSize = 50

// Service owns the review lifecycle of detection findings
type Service struct {
	repo        RepositoryInterface
	events      audit.Publisher
	transitions *locks.Keyed
}

// NewService creates a new suspicious activity service
func NewService(repo RepositoryInterface, events audit.Publisher) *Service {
	return &Service{
		repo:        repo,
		events:      events,
		transitions: locks.NewKeyed(),
	}
}

// ReviewActivity moves a pending finding to reviewed or dismissed. The
// transition is one-shot: terminal findings reject further review.
func (s *Service) ReviewActivity(ctx context.Context, actor auth.Actor, activityID uuid.UUID, status ActivityStatus, notes string) (*SuspiciousActivity, error) {
	if err := auth.Require(actor, auth.RoleModerator); err != nil {
		return nil, err
	}

	if status != StatusReviewed && status != StatusDismissed {
		return nil, common.NewBadRequestError("review status must be reviewed or dismissed", nil)
	}

	s.transitions.Lock(activityID)
	defer s.transitions.Unlock(activityID)

	finding, err := s.repo.GetByID(ctx, activityID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, common.NewNotFoundError("activity not found", err)
		}
		return nil, common.NewDependencyError("unable to load activity", err)
	}

	if finding.Status != StatusPending {
		return nil, common.NewInvalidTransitionError("activity has already been reviewed")
	}

	if err := s.repo.UpdateReview(ctx, activityID, status, actor.ID, notes); err != nil {
		return nil, common.NewDependencyError("unable to review activity", err)
	}

	now := time.Now()
	s.events.Emit(audit.Event{
		EntityKind: entityKind,
		EntityID:   activityID,
		OldStatus:  string(StatusPending),
		NewStatus:  string(status),
		ActorID:    actor.ID,
		At:         now,
	})
	logger.Info("suspicious activity reviewed",
		zap.String("activity_id", activityID.String()),
		zap.String("status", string(status)),
		zap.String("reviewer_id", actor.ID.String()),
	)

	finding.Status = status
	finding.ReviewedBy = &actor.ID
	finding.ReviewNotes = notes
	finding.ReviewedAt = &now
	return finding, nil
}

// ListActivities returns findings for the moderation UI. At most one filter
// key is applied; with none set the pending queue view is returned.
func (s *Service) ListActivities(ctx context.Context, actor auth.Actor, filter *Filter) ([]*SuspiciousActivity, error) {
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
		result []*SuspiciousActivity
		err    error
	)

	switch {
	case filter.Status != nil:
		result, err = s.repo.ListByStatus(ctx, *filter.Status, limit, offset)
	case filter.UserID != nil:
		result, err = s.repo.ListByUser(ctx, *filter.UserID, limit, offset)
	case filter.Severity != nil:
		result, err = s.repo.ListBySeverity(ctx, *filter.Severity, limit, offset)
	case filter.ActivityType != nil:
		result, err = s.repo.ListByType(ctx, *filter.ActivityType, limit, offset)
	default:
		result, err = s.repo.ListPendingQueue(ctx, limit, offset)
	}

	if err != nil {
		return nil, common.NewDependencyError("unable to list activities", err)
	}
	if result == nil {
		result = []*SuspiciousActivity{}
	}
	return result, nil
}
