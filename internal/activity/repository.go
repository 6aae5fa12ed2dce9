package activity

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles suspicious activity data operations
type Repository struct {
	db *pgxpool.Pool
}

// Ensure the concrete repository satisfies the service's requirements.
var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new suspicious activity repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const activityColumns = `
	id, user_id, activity_type, severity, evidence, status,
	reviewed_by, review_notes, reviewed_at, created_at
`

const severityRankCase = `
	CASE severity
		WHEN 'critical' THEN 4
		WHEN 'high' THEN 3
		WHEN 'medium' THEN 2
		ELSE 1
	END
`

// Create inserts a new suspicious activity finding
func (r *Repository) Create(ctx context.Context, activity *SuspiciousActivity) error {
	evidenceJSON, err := json.Marshal(activity.Evidence)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO suspicious_activities (
			id, user_id, activity_type, severity, evidence, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.db.Exec(ctx, query,
		activity.ID,
		activity.UserID,
		activity.ActivityType,
		activity.Severity,
		evidenceJSON,
		activity.Status,
		activity.CreatedAt,
	)

	return err
}

// GetByID retrieves a suspicious activity by ID
func (r *Repository) GetByID(ctx context.Context, activityID uuid.UUID) (*SuspiciousActivity, error) {
	query := `SELECT ` + activityColumns + ` FROM suspicious_activities WHERE id = $1`
	row := r.db.QueryRow(ctx, query, activityID)
	return scanActivity(row)
}

// HasPendingOfType reports whether the user already has a pending finding of
// the given type. Detection rules use this to avoid duplicate spam within a
// window.
func (r *Repository) HasPendingOfType(ctx context.Context, userID uuid.UUID, activityType ActivityType) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM suspicious_activities
			WHERE user_id = $1 AND activity_type = $2 AND status = 'pending'
		)
	`

	var exists bool
	err := r.db.QueryRow(ctx, query, userID, activityType).Scan(&exists)
	return exists, err
}

// UpdateReview moves a pending finding to a terminal review status
func (r *Repository) UpdateReview(ctx context.Context, activityID uuid.UUID, status ActivityStatus, reviewedBy uuid.UUID, notes string) error {
	query := `
		UPDATE suspicious_activities
		SET status = $2,
		    reviewed_by = $3,
		    review_notes = $4,
		    reviewed_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query, activityID, status, reviewedBy, notes)
	return err
}

// ListByStatus retrieves findings with the given status
func (r *Repository) ListByStatus(ctx context.Context, status ActivityStatus, limit, offset int) ([]*SuspiciousActivity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM suspicious_activities
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, status, limit, offset)
}

// ListByUser retrieves findings for the given user
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*SuspiciousActivity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM suspicious_activities
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, userID, limit, offset)
}

// ListBySeverity retrieves findings of the given severity
func (r *Repository) ListBySeverity(ctx context.Context, severity Severity, limit, offset int) ([]*SuspiciousActivity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM suspicious_activities
		WHERE severity = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, severity, limit, offset)
}

// ListByType retrieves findings of the given activity type
func (r *Repository) ListByType(ctx context.Context, activityType ActivityType, limit, offset int) ([]*SuspiciousActivity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM suspicious_activities
		WHERE activity_type = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, activityType, limit, offset)
}

// ListPendingQueue retrieves pending findings, most severe first. This is
// the default moderation view.
func (r *Repository) ListPendingQueue(ctx context.Context, limit, offset int) ([]*SuspiciousActivity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM suspicious_activities
		WHERE status = 'pending'
		ORDER BY ` + severityRankCase + ` DESC, created_at ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}

// CountPendingByUser counts a user's pending findings per severity
func (r *Repository) CountPendingByUser(ctx context.Context, userID uuid.UUID) (map[Severity]int, error) {
	query := `
		SELECT severity, COUNT(*)
		FROM suspicious_activities
		WHERE user_id = $1 AND status = 'pending'
		GROUP BY severity
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[Severity]int)
	for rows.Next() {
		var severity Severity
		var count int
		if err := rows.Scan(&severity, &count); err != nil {
			return nil, err
		}
		counts[severity] = count
	}

	return counts, rows.Err()
}

// CountPending counts all pending findings
func (r *Repository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM suspicious_activities WHERE status = 'pending'`).Scan(&count)
	return count, err
}

func (r *Repository) list(ctx context.Context, query string, args ...interface{}) ([]*SuspiciousActivity, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}

func scanActivities(rows pgx.Rows) ([]*SuspiciousActivity, error) {
	activities := make([]*SuspiciousActivity, 0)
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	return activities, rows.Err()
}

func scanActivity(row pgx.Row) (*SuspiciousActivity, error) {
	var activity SuspiciousActivity
	var evidenceJSON []byte
	var reviewNotes sql.NullString

	err := row.Scan(
		&activity.ID,
		&activity.UserID,
		&activity.ActivityType,
		&activity.Severity,
		&evidenceJSON,
		&activity.Status,
		&activity.ReviewedBy,
		&reviewNotes,
		&activity.ReviewedAt,
		&activity.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	if reviewNotes.Valid {
		activity.ReviewNotes = reviewNotes.String
	}
	if err := json.Unmarshal(evidenceJSON, &activity.Evidence); err != nil {
		activity.Evidence = make(map[string]interface{})
	}

	return &activity, nil
}
