package activity

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryInterface defines the contract for suspicious activity storage
type RepositoryInterface interface {
	Create(ctx context.Context, activity *SuspiciousActivity) error
	GetByID(ctx context.Context, activityID uuid.UUID) (*SuspiciousActivity, error)
	HasPendingOfType(ctx context.Context, userID uuid.UUID, activityType ActivityType) (bool, error)
	UpdateReview(ctx context.Context, activityID uuid.UUID, status ActivityStatus, reviewedBy uuid.UUID, notes string) error

	ListByStatus(ctx context.Context, status ActivityStatus, limit, offset int) ([]*SuspiciousActivity, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*SuspiciousActivity, error)
	ListBySeverity(ctx context.Context, severity Severity, limit, offset int) ([]*SuspiciousActivity, error)
	ListByType(ctx context.Context, activityType ActivityType, limit, offset int) ([]*SuspiciousActivity, error)
	ListPendingQueue(ctx context.Context, limit, offset int) ([]*SuspiciousActivity, error)

	CountPendingByUser(ctx context.Context, userID uuid.UUID) (map[Severity]int, error)
	CountPending(ctx context.Context) (int64, error)
}
