package risk

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/stagepass/trust-safety/internal/activity"
	"github.com/stagepass/trust-safety/internal/reports"
	"github.com/stagepass/trust-safety/internal/suspension"
)

// The aggregator only reads. Each store exposes a narrow counting surface
// here instead of its full repository interface.

// ReportReader counts unresolved fraud reports
type ReportReader interface {
	CountOpenByReportedUser(ctx context.Context, userID uuid.UUID) (map[reports.ReportType]int, error)
	CountOpen(ctx context.Context) (int64, error)
}

// ActivityReader counts unreviewed detection findings
type ActivityReader interface {
	CountPendingByUser(ctx context.Context, userID uuid.UUID) (map[activity.Severity]int, error)
	CountPending(ctx context.Context) (int64, error)
}

// VerificationReader counts verification outcomes
type VerificationReader interface {
	CountRejectedBySeller(ctx context.Context, sellerID uuid.UUID) (int, error)
	CountPendingManualReview(ctx context.Context) (int64, error)
}

// SuspensionReader reads a user's enforcement history
type SuspensionReader interface {
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*suspension.UserSuspension, error)
	CountActiveExclusive(ctx context.Context, now time.Time) (int64, error)
}
