package reports

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles fraud report data operations
type Repository struct {
	db *pgxpool.Pool
}

// Ensure the concrete repository satisfies the service's requirements.
var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new fraud report repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const reportColumns = `
	id, reporter_id, reported_user_id, listing_id, transaction_id, type,
	reason, description, evidence, status, assigned_to, resolution,
	resolved_by, resolved_at, created_at, updated_at
`

// typePriorityCase orders the moderation queue by report type weight.
const typePriorityCase = `
	CASE type
		WHEN 'payment_fraud' THEN 12
		WHEN 'counterfeit' THEN 10
		WHEN 'fake_listing' THEN 8
		WHEN 'non_delivery' THEN 6
		ELSE 4
	END
`

// Create inserts a new fraud report
func (r *Repository) Create(ctx context.Context, report *FraudReport) error {
	evidenceJSON, err := json.Marshal(report.Evidence)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO fraud_reports (
			id, reporter_id, reported_user_id, listing_id, transaction_id,
			type, reason, description, evidence, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = r.db.Exec(ctx, query,
		report.ID,
		report.ReporterID,
		report.ReportedUserID,
		report.ListingID,
		report.TransactionID,
		report.Type,
		report.Reason,
		report.Description,
		evidenceJSON,
		report.Status,
		report.CreatedAt,
		report.UpdatedAt,
	)

	return err
}

// GetByID retrieves a fraud report by ID
func (r *Repository) GetByID(ctx context.Context, reportID uuid.UUID) (*FraudReport, error) {
	query := `SELECT ` + reportColumns + ` FROM fraud_reports WHERE id = $1`
	row := r.db.QueryRow(ctx, query, reportID)
	return scanReport(row)
}

// UpdateAssignment moves a report to assigned and stamps the moderator
func (r *Repository) UpdateAssignment(ctx context.Context, reportID, moderatorID uuid.UUID) error {
	query := `
		UPDATE fraud_reports
		SET status = 'assigned',
		    assigned_to = $2,
		    updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query, reportID, moderatorID)
	return err
}

// UpdateResolution moves a report to a terminal status and stamps the
// resolution audit fields
func (r *Repository) UpdateResolution(ctx context.Context, reportID uuid.UUID, status ReportStatus, resolution string, resolvedBy uuid.UUID) error {
	query := `
		UPDATE fraud_reports
		SET status = $2,
		    resolution = $3,
		    resolved_by = $4,
		    resolved_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query, reportID, status, resolution, resolvedBy)
	return err
}

// ListByStatus retrieves reports with the given status, oldest first
func (r *Repository) ListByStatus(ctx context.Context, status ReportStatus, limit, offset int) ([]*FraudReport, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM fraud_reports
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, status, limit, offset)
}

// ListByAssignee retrieves reports assigned to the given moderator
func (r *Repository) ListByAssignee(ctx context.Context, moderatorID uuid.UUID, limit, offset int) ([]*FraudReport, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM fraud_reports
		WHERE assigned_to = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, moderatorID, limit, offset)
}

// ListByReportedUser retrieves reports filed against the given user
func (r *Repository) ListByReportedUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*FraudReport, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM fraud_reports
		WHERE reported_user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, userID, limit, offset)
}

// ListByType retrieves reports of the given type
func (r *Repository) ListByType(ctx context.Context, reportType ReportType, limit, offset int) ([]*FraudReport, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM fraud_reports
		WHERE type = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, reportType, limit, offset)
}

// ListPriorityQueue retrieves unresolved reports ordered by type weight,
// then age. This is the default moderation view.
func (r *Repository) ListPriorityQueue(ctx context.Context, limit, offset int) ([]*FraudReport, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM fraud_reports
		WHERE status IN ('open', 'assigned')
		ORDER BY ` + typePriorityCase + ` DESC, created_at ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReports(rows)
}

// CountOpenByReportedUser counts unresolved reports against a user per type
func (r *Repository) CountOpenByReportedUser(ctx context.Context, userID uuid.UUID) (map[ReportType]int, error) {
	query := `
		SELECT type, COUNT(*)
		FROM fraud_reports
		WHERE reported_user_id = $1
		  AND status IN ('open', 'assigned')
		GROUP BY type
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[ReportType]int)
	for rows.Next() {
		var reportType ReportType
		var count int
		if err := rows.Scan(&reportType, &count); err != nil {
			return nil, err
		}
		counts[reportType] = count
	}

	return counts, rows.Err()
}

// CountOpen counts all unresolved reports
func (r *Repository) CountOpen(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM fraud_reports WHERE status IN ('open', 'assigned')`).Scan(&count)
	return count, err
}

func (r *Repository) list(ctx context.Context, query string, args ...interface{}) ([]*FraudReport, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReports(rows)
}

func scanReports(rows pgx.Rows) ([]*FraudReport, error) {
	reports := make([]*FraudReport, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

func scanReport(row pgx.Row) (*FraudReport, error) {
	var report FraudReport
	var evidenceJSON []byte
	var description, resolution sql.NullString

	err := row.Scan(
		&report.ID,
		&report.ReporterID,
		&report.ReportedUserID,
		&report.ListingID,
		&report.TransactionID,
		&report.Type,
		&report.Reason,
		&description,
		&evidenceJSON,
		&report.Status,
		&report.AssignedTo,
		&resolution,
		&report.ResolvedBy,
		&report.ResolvedAt,
		&report.CreatedAt,
		&report.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	if description.Valid {
		report.Description = description.String
	}
	if resolution.Valid {
		report.Resolution = &resolution.String
	}
	if len(evidenceJSON) > 0 {
		if err := json.Unmarshal(evidenceJSON, &report.Evidence); err != nil {
			report.Evidence = nil
		}
	}

	return &report, nil
}
