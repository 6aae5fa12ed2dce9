package suspension

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles user suspension data operations
type Repository struct {
	db *pgxpool.Pool
}

// Ensure the concrete repository satisfies the service's requirements.
var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new suspension repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const suspensionColumns = `
	id, user_id, reason, suspended_by, type, start_date, end_date,
	lifted_at, created_at
`

// Create inserts a suspension without exclusivity protection. Used for
// warnings, which stack freely.
func (r *Repository) Create(ctx context.Context, suspension *UserSuspension) error {
	query := `
		INSERT INTO user_suspensions (
			id, user_id, reason, suspended_by, type, start_date, end_date, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		suspension.ID,
		suspension.UserID,
		suspension.Reason,
		suspension.SuspendedBy,
		suspension.Type,
		suspension.StartDate,
		suspension.EndDate,
		suspension.CreatedAt,
	)

	return err
}

// CreateExclusive inserts a temporary or permanent suspension only if the
// user has no other active exclusive suspension. The check and the insert
// are one statement, so concurrent suspensions of the same user cannot
// both succeed. Returns false when the row was not inserted.
func (r *Repository) CreateExclusive(ctx context.Context, suspension *UserSuspension) (bool, error) {
	query := `
		INSERT INTO user_suspensions (
			id, user_id, reason, suspended_by, type, start_date, end_date, created_at
		)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8
		WHERE NOT EXISTS (
			SELECT 1 FROM user_suspensions
			WHERE user_id = $2
			  AND type IN ('temporary', 'permanent')
			  AND lifted_at IS NULL
			  AND (end_date IS NULL OR end_date > NOW())
		)
	`

	tag, err := r.db.Exec(ctx, query,
		suspension.ID,
		suspension.UserID,
		suspension.Reason,
		suspension.SuspendedBy,
		suspension.Type,
		suspension.StartDate,
		suspension.EndDate,
		suspension.CreatedAt,
	)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

// GetByID retrieves a suspension by ID
func (r *Repository) GetByID(ctx context.Context, suspensionID uuid.UUID) (*UserSuspension, error) {
	query := `SELECT ` + suspensionColumns + ` FROM user_suspensions WHERE id = $1`
	row := r.db.QueryRow(ctx, query, suspensionID)
	return scanSuspension(row)
}

// Lift stamps lifted_at on a suspension that has not been lifted yet.
// Already-lifted rows are untouched, preserving the original timestamp.
func (r *Repository) Lift(ctx context.Context, suspensionID uuid.UUID) error {
	query := `
		UPDATE user_suspensions
		SET lifted_at = NOW()
		WHERE id = $1 AND lifted_at IS NULL
	`

	_, err := r.db.Exec(ctx, query, suspensionID)
	return err
}

// ListByUser retrieves a user's full suspension history, newest first
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*UserSuspension, error) {
	query := `
		SELECT ` + suspensionColumns + `
		FROM user_suspensions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, userID, limit, offset)
}

// ListByActive retrieves suspensions by derived active state at the given
// instant
func (r *Repository) ListByActive(ctx context.Context, active bool, now time.Time, limit, offset int) ([]*UserSuspension, error) {
	condition := `lifted_at IS NULL AND (end_date IS NULL OR end_date > $1)`
	if !active {
		condition = `(lifted_at IS NOT NULL OR (end_date IS NOT NULL AND end_date <= $1))`
	}

	query := `
		SELECT ` + suspensionColumns + `
		FROM user_suspensions
		WHERE ` + condition + `
		ORDER BY start_date DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, now, limit, offset)
}

// ListByType retrieves suspensions of the given type, newest first
func (r *Repository) ListByType(ctx context.Context, suspensionType SuspensionType, limit, offset int) ([]*UserSuspension, error) {
	query := `
		SELECT ` + suspensionColumns + `
		FROM user_suspensions
		WHERE type = $1
		ORDER BY start_date DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, suspensionType, limit, offset)
}

// ListActiveExclusive retrieves the suspensions currently blocking account
// access. This is the default moderation view.
func (r *Repository) ListActiveExclusive(ctx context.Context, now time.Time, limit, offset int) ([]*UserSuspension, error) {
	query := `
		SELECT ` + suspensionColumns + `
		FROM user_suspensions
		WHERE type IN ('temporary', 'permanent')
		  AND lifted_at IS NULL
		  AND (end_date IS NULL OR end_date > $1)
		ORDER BY start_date DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, now, limit, offset)
}

// CountActiveExclusive counts suspensions currently blocking account access
func (r *Repository) CountActiveExclusive(ctx context.Context, now time.Time) (int64, error) {
	query := `
		SELECT COUNT(*) FROM user_suspensions
		WHERE type IN ('temporary', 'permanent')
		  AND lifted_at IS NULL
		  AND (end_date IS NULL OR end_date > $1)
	`

	var count int64
	err := r.db.QueryRow(ctx, query, now).Scan(&count)
	return count, err
}

func (r *Repository) list(ctx context.Context, query string, args ...interface{}) ([]*UserSuspension, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	suspensions := make([]*UserSuspension, 0)
	for rows.Next() {
		suspension, err := scanSuspension(rows)
		if err != nil {
			return nil, err
		}
		suspensions = append(suspensions, suspension)
	}
	return suspensions, rows.Err()
}

func scanSuspension(row pgx.Row) (*UserSuspension, error) {
	var suspension UserSuspension

	err := row.Scan(
		&suspension.ID,
		&suspension.UserID,
		&suspension.Reason,
		&suspension.SuspendedBy,
		&suspension.Type,
		&suspension.StartDate,
		&suspension.EndDate,
		&suspension.LiftedAt,
		&suspension.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return &suspension, nil
}
