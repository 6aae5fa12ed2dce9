package suspension

import (
	"context"
	"strings"
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

const entityKind = "user_suspension"

const defaultPageSize = 50

// Service owns the suspension lifecycle. It enforces the one active
// exclusive suspension per user rule and keeps lifting idempotent.
type Service struct {
	repo   RepositoryInterface
	events audit.Publisher
	lifts  *locks.Keyed
}

// NewService creates a new suspension service
func NewService(repo RepositoryInterface, events audit.Publisher) *Service {
	return &Service{
		repo:   repo,
		events: events,
		lifts:  locks.NewKeyed(),
	}
}

// SuspendUser creates an enforcement record against a user. Temporary
// suspensions need a future end date and permanent ones never carry one.
// A second exclusive suspension for a user with one already active is a
// conflict; an admin must lift the existing one first.
func (s *Service) SuspendUser(ctx context.Context, actor auth.Actor, req *SuspendRequest) (*UserSuspension, error) {
	if err := auth.Require(actor, auth.RoleAdmin); err != nil {
		return nil, err
	}

	if !req.Type.Valid() {
		return nil, common.NewBadRequestError("unknown suspension type", nil)
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, common.NewBadRequestError("reason is required", nil)
	}
	if req.UserID == uuid.Nil {
		return nil, common.NewBadRequestError("user ID is required", nil)
	}

	now := time.Now()
	endDate := req.EndDate
	switch req.Type {
	case TypeTemporary:
		if endDate == nil || !endDate.After(now) {
			return nil, common.NewBadRequestError("temporary suspension requires a future end date", nil)
		}
	case TypePermanent:
		endDate = nil
	}

	suspension := &UserSuspension{
		ID:          uuid.New(),
		UserID:      req.UserID,
		Reason:      strings.TrimSpace(req.Reason),
		SuspendedBy: actor.ID,
		Type:        req.Type,
		StartDate:   now,
		EndDate:     endDate,
		CreatedAt:   now,
	}

	if suspension.Type.Exclusive() {
		created, err := s.repo.CreateExclusive(ctx, suspension)
		if err != nil {
			return nil, common.NewDependencyError("unable to store suspension", err)
		}
		if !created {
			return nil, common.NewConflictError("user already has an active suspension")
		}
	} else {
		if err := s.repo.Create(ctx, suspension); err != nil {
			return nil, common.NewDependencyError("unable to store suspension", err)
		}
	}

	s.events.Emit(audit.Event{
		EntityKind: entityKind,
		EntityID:   suspension.ID,
		NewStatus:  "active",
		ActorID:    actor.ID,
		At:         now,
	})
	logger.Info("user suspended",
		zap.String("suspension_id", suspension.ID.String()),
		zap.String("user_id", suspension.UserID.String()),
		zap.String("type", string(suspension.Type)),
	)

	return suspension, nil
}

// LiftSuspension ends a suspension ahead of schedule. Lifting twice is a
// no-op success and leaves the first lift timestamp untouched.
func (s *Service) LiftSuspension(ctx context.Context, actor auth.Actor, suspensionID uuid.UUID) (*UserSuspension, error) {
	if err := auth.Require(actor, auth.RoleAdmin); err != nil {
		return nil, err
	}

	s.lifts.Lock(suspensionID)
	defer s.lifts.Unlock(suspensionID)

	suspension, err := s.repo.GetByID(ctx, suspensionID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, common.NewNotFoundError("suspension not found", err)
		}
		return nil, common.NewDependencyError("unable to load suspension", err)
	}

	if suspension.LiftedAt != nil {
		return suspension, nil
	}

	if err := s.repo.Lift(ctx, suspensionID); err != nil {
		return nil, common.NewDependencyError("unable to lift suspension", err)
	}

	now := time.Now()
	s.events.Emit(audit.Event{
		EntityKind: entityKind,
		EntityID:   suspensionID,
		OldStatus:  "active",
		NewStatus:  "lifted",
		ActorID:    actor.ID,
		At:         now,
	})
	logger.Info("suspension lifted",
		zap.String("suspension_id", suspensionID.String()),
		zap.String("user_id", suspension.UserID.String()),
	)

	suspension.LiftedAt = &now
	return suspension, nil
}

// ListSuspensions returns suspensions for the moderation UI. At most one
// filter key is applied; with none set the active exclusive suspensions
// are returned.
func (s *Service) ListSuspensions(ctx context.Context, actor auth.Actor, filter *Filter) ([]*UserSuspension, error) {
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

	now := time.Now()
	var (
		result []*UserSuspension
		err    error
	)

	switch {
	case filter.UserID != nil:
		result, err = s.repo.ListByUser(ctx, *filter.UserID, limit, offset)
	case filter.Active != nil:
		result, err = s.repo.ListByActive(ctx, *filter.Active, now, limit, offset)
	case filter.Type != nil:
		result, err = s.repo.ListByType(ctx, *filter.Type, limit, offset)
	default:
		result, err = s.repo.ListActiveExclusive(ctx, now, limit, offset)
	}

	if err != nil {
		return nil, common.NewDependencyError("unable to list suspensions", err)
	}
	if result == nil {
		result = []*UserSuspension{}
	}
	return result, nil
}
