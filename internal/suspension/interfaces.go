package suspension

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RepositoryInterface defines the suspension store operations
type RepositoryInterface interface {
	Create(ctx context.Context, suspension *UserSuspension) error
	CreateExclusive(ctx context.Context, suspension *UserSuspension) (bool, error)
	GetByID(ctx context.Context, suspensionID uuid.UUID) (*UserSuspension, error)
	Lift(ctx context.Context, suspensionID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*UserSuspension, error)
	ListByActive(ctx context.Context, active bool, now time.Time, limit, offset int) ([]*UserSuspension, error)
	ListByType(ctx context.Context, suspensionType SuspensionType, limit, offset int) ([]*UserSuspension, error)
	ListActiveExclusive(ctx context.Context, now time.Time, limit, offset int) ([]*UserSuspension, error)
	CountActiveExclusive(ctx context.Context, now time.Time) (int64, error)
}
