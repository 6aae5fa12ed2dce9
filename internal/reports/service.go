package reports

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/stagepass/trust-safety/internal/audit"
	"github.com/stagepass/trust-safety/internal/auth"
	"github.com/stagepass/trust-safety/internal/marketplace"
	"github.com/stagepass/trust-safety/pkg/common"
	"github.com/stagepass/trust-safety/pkg/locks"
	"github.com/stagepass/trust-safety/pkg/logger"
)

const entityKind = "fraud_report"

const defaultPageSize = 50

// Service owns the fraud report lifecycle: submission, assignment and
// resolution. All transitions are role-gated before any store access and
// serialized per report.
type Service struct {
	repo        RepositoryInterface
	marketplace marketplace.Client
	events      audit.Publisher
	transitions *locks.Keyed
}

// NewService creates a new fraud report service
func NewService(repo RepositoryInterface, mkt marketplace.Client, events audit.Publisher) *Service {
	return &Service{
		repo:        repo,
		marketplace: mkt,
		events:      events,
		transitions: locks.NewKeyed(),
	}
}

// SubmitReport files a new fraud report. Any authenticated caller may
// submit; the report must name at least one target.
func (s *Service) SubmitReport(ctx context.Context, actor auth.Actor, req *SubmitReportRequest) (*FraudReport, error) {
	if err := auth.Require(actor, auth.RoleUser); err != nil {
		return nil, err
	}

	if !req.Type.Valid() {
		return nil, common.NewBadRequestError("unknown report type", nil)
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, common.NewBadRequestError("reason is required", nil)
	}
	if req.ReportedUserID == nil && req.ListingID == nil && req.TransactionID == nil {
		return nil, common.NewBadRequestError("report must reference a user, listing or transaction", nil)
	}

	now := time.Now()
	report := &FraudReport{
		ID:             uuid.New(),
		ReporterID:     actor.ID,
		ReportedUserID: req.ReportedUserID,
		ListingID:      req.ListingID,
		TransactionID:  req.TransactionID,
		Type:           req.Type,
		Reason:         strings.TrimSpace(req.Reason),
		Description:    req.Description,
		Evidence:       req.Evidence,
		Status:         StatusOpen,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, report); err != nil {
		return nil, common.NewDependencyError("unable to store fraud report", err)
	}

	s.events.Emit(audit.Event{
		EntityKind: entityKind,
		EntityID:   report.ID,
		NewStatus:  string(StatusOpen),
		ActorID:    actor.ID,
		At:         now,
	})

	return report, nil
}

// ListReports returns reports for the moderation UI. At most one filter key
// is applied; with none set the priority queue view is returned.
func (s *Service) ListReports(ctx context.Context, actor auth.Actor, filter *Filter) ([]*FraudReport, error) {
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
		result []*FraudReport
		err    error
	)

	switch {
	case filter.Status != nil:
		result, err = s.repo.ListByStatus(ctx, *filter.Status, limit, offset)
	case filter.AssignedTo != nil:
		result, err = s.repo.ListByAssignee(ctx, *filter.AssignedTo, limit, offset)
	case filter.ReportedUserID != nil:
		result, err = s.repo.ListByReportedUser(ctx, *filter.ReportedUserID, limit, offset)
	case filter.Type != nil:
		result, err = s.repo.ListByType(ctx, *filter.Type, limit, offset)
	default:
		result, err = s.repo.ListPriorityQueue(ctx, limit, offset)
	}

	if err != nil {
		return nil, common.NewDependencyError("unable to list fraud reports", err)
	}
	if result == nil {
		result = []*FraudReport{}
	}
	return result, nil
}

// AssignReport assigns or reassigns an open report to a moderator. Admin
// only; the assignee must resolve to a moderator or admin account.
func (s *Service) AssignReport(ctx context.Context, actor auth.Actor, reportID, moderatorID uuid.UUID) (*FraudReport, error) {
	if err := auth.Require(actor, auth.RoleAdmin); err != nil {
		return nil, err
	}

	assignee, err := s.marketplace.GetUser(ctx, moderatorID)
	if err != nil {
		if common.IsKind(err, common.KindNotFound) {
			return nil, common.NewBadRequestError("assignee account not found", err)
		}
		return nil, common.NewDependencyError("unable to resolve assignee", err)
	}
	if role := auth.ParseRole(assignee.Role); role < auth.RoleModerator {
		return nil, common.NewBadRequestError("assignee is not a moderator", nil)
	}

	s.transitions.Lock(reportID)
	defer s.transitions.Unlock(reportID)

	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status.Terminal() {
		return nil, common.NewInvalidTransitionError("report is already closed")
	}

	if err := s.repo.UpdateAssignment(ctx, reportID, moderatorID); err != nil {
		return nil, common.NewDependencyError("unable to assign report", err)
	}

	s.emitTransition(report, StatusAssigned, actor.ID)

	report.AssignedTo = &moderatorID
	report.Status = StatusAssigned
	return report, nil
}

// ResolveReport closes a report with a resolution
func (s *Service) ResolveReport(ctx context.Context, actor auth.Actor, reportID uuid.UUID, resolution string) (*FraudReport, error) {
	return s.closeReport(ctx, actor, reportID, StatusResolved, resolution)
}

// DismissReport closes a report without implying enforcement action
func (s *Service) DismissReport(ctx context.Context, actor auth.Actor, reportID uuid.UUID, resolution string) (*FraudReport, error) {
	return s.closeReport(ctx, actor, reportID, StatusDismissed, resolution)
}

func (s *Service) closeReport(ctx context.Context, actor auth.Actor, reportID uuid.UUID, status ReportStatus, resolution string) (*FraudReport, error) {
	if err := auth.Require(actor, auth.RoleModerator); err != nil {
		return nil, err
	}

	resolution = strings.TrimSpace(resolution)
	if resolution == "" {
		return nil, common.NewBadRequestError("resolution text is required", nil)
	}

	s.transitions.Lock(reportID)
	defer s.transitions.Unlock(reportID)

	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status.Terminal() {
		return nil, common.NewInvalidTransitionError("report is already closed")
	}

	if err := s.repo.UpdateResolution(ctx, reportID, status, resolution, actor.ID); err != nil {
		return nil, common.NewDependencyError("unable to close report", err)
	}

	s.emitTransition(report, status, actor.ID)

	now := time.Now()
	report.Status = status
	report.Resolution = &resolution
	report.ResolvedBy = &actor.ID
	report.ResolvedAt = &now
	return report, nil
}

func (s *Service) getReport(ctx context.Context, reportID uuid.UUID) (*FraudReport, error) {
	report, err := s.repo.GetByID(ctx, reportID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, common.NewNotFoundError("report not found", err)
		}
		return nil, common.NewDependencyError("unable to load report", err)
	}
	return report, nil
}

func (s *Service) emitTransition(report *FraudReport, newStatus ReportStatus, actorID uuid.UUID) {
	s.events.Emit(audit.Event{
		EntityKind: entityKind,
		EntityID:   report.ID,
		OldStatus:  string(report.Status),
		NewStatus:  string(newStatus),
		ActorID:    actorID,
		At:         time.Now(),
	})
	logger.Info("fraud report transition",
		zap.String("report_id", report.ID.String()),
		zap.String("from", string(report.Status)),
		zap.String("to", string(newStatus)),
		zap.String("actor_id", actorID.String()),
	)
}
