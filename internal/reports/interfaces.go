package reports

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryInterface defines the contract for fraud report storage
type RepositoryInterface interface {
	Create(ctx context.Context, report *FraudReport) error
	GetByID(ctx context.Context, reportID uuid.UUID) (*FraudReport, error)
	UpdateAssignment(ctx context.Context, reportID, moderatorID uuid.UUID) error
	UpdateResolution(ctx context.Context, reportID uuid.UUID, status ReportStatus, resolution string, resolvedBy uuid.UUID) error

	ListByStatus(ctx context.Context, status ReportStatus, limit, offset int) ([]*FraudReport, error)
	ListByAssignee(ctx context.Context, moderatorID uuid.UUID, limit, offset int) ([]*FraudReport, error)
	ListByReportedUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*FraudReport, error)
	ListByType(ctx context.Context, reportType ReportType, limit, offset int) ([]*FraudReport, error)
	ListPriorityQueue(ctx context.Context, limit, offset int) ([]*FraudReport, error)

	CountOpenByReportedUser(ctx context.Context, userID uuid.UUID) (map[ReportType]int, error)
	CountOpen(ctx context.Context) (int64, error)
}
