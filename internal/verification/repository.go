package verification

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles ticket verification data operations
type Repository struct {
	db *pgxpool.Pool
}

// Ensure the concrete repository satisfies the service's requirements.
var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new verification repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const verificationColumns = `
	id, listing_id, seller_id, method, status, checks, review_notes,
	reviewed_by, reviewed_at, created_at, updated_at
`

// Create inserts a new verification record
func (r *Repository) Create(ctx context.Context, verification *TicketVerification) error {
	checksJSON, err := json.Marshal(verification.Checks)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO ticket_verifications (
			id, listing_id, seller_id, method, status, checks,
			review_notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.Exec(ctx, query,
		verification.ID,
		verification.ListingID,
		verification.SellerID,
		verification.Method,
		verification.Status,
		checksJSON,
		verification.ReviewNotes,
		verification.CreatedAt,
		verification.UpdatedAt,
	)

	return err
}

// GetByID retrieves a verification by ID
func (r *Repository) GetByID(ctx context.Context, verificationID uuid.UUID) (*TicketVerification, error) {
	query := `SELECT ` + verificationColumns + ` FROM ticket_verifications WHERE id = $1`
	row := r.db.QueryRow(ctx, query, verificationID)
	return scanVerification(row)
}

// UpdateReview records a moderator verdict. The automated check results
// stay on the row untouched.
func (r *Repository) UpdateReview(ctx context.Context, verificationID uuid.UUID, status VerificationStatus, reviewedBy uuid.UUID, notes string) error {
	query := `
		UPDATE ticket_verifications
		SET status = $2,
		    review_notes = $3,
		    reviewed_by = $4,
		    reviewed_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query, verificationID, status, notes, reviewedBy)
	return err
}

// ListByStatus retrieves verifications with the given status, oldest first
func (r *Repository) ListByStatus(ctx context.Context, status VerificationStatus, limit, offset int) ([]*TicketVerification, error) {
	query := `
		SELECT ` + verificationColumns + `
		FROM ticket_verifications
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, status, limit, offset)
}

// ListByListing retrieves the verification history of a listing, newest first
func (r *Repository) ListByListing(ctx context.Context, listingID uuid.UUID, limit, offset int) ([]*TicketVerification, error) {
	query := `
		SELECT ` + verificationColumns + `
		FROM ticket_verifications
		WHERE listing_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, listingID, limit, offset)
}

// ListByMethod retrieves verifications produced by the given method
func (r *Repository) ListByMethod(ctx context.Context, method VerificationMethod, limit, offset int) ([]*TicketVerification, error) {
	query := `
		SELECT ` + verificationColumns + `
		FROM ticket_verifications
		WHERE method = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, method, limit, offset)
}

// ListReviewQueue retrieves verifications waiting on a human, manual-review
// escalations before untouched pending ones, oldest first within each.
// This is the default moderation view.
func (r *Repository) ListReviewQueue(ctx context.Context, limit, offset int) ([]*TicketVerification, error) {
	query := `
		SELECT ` + verificationColumns + `
		FROM ticket_verifications
		WHERE status IN ('requires_manual_review', 'pending')
		ORDER BY CASE status WHEN 'requires_manual_review' THEN 0 ELSE 1 END, created_at ASC
		LIMIT $1 OFFSET $2
	`
	return r.list(ctx, query, limit, offset)
}

// CountRejectedBySeller counts rejected verifications across a seller's listings
func (r *Repository) CountRejectedBySeller(ctx context.Context, sellerID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM ticket_verifications WHERE seller_id = $1 AND status = 'rejected'`,
		sellerID,
	).Scan(&count)
	return count, err
}

// CountPendingManualReview counts verifications escalated to a human
func (r *Repository) CountPendingManualReview(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM ticket_verifications WHERE status = 'requires_manual_review'`,
	).Scan(&count)
	return count, err
}

func (r *Repository) list(ctx context.Context, query string, args ...interface{}) ([]*TicketVerification, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	verifications := make([]*TicketVerification, 0)
	for rows.Next() {
		verification, err := scanVerification(rows)
		if err != nil {
			return nil, err
		}
		verifications = append(verifications, verification)
	}
	return verifications, rows.Err()
}

func scanVerification(row pgx.Row) (*TicketVerification, error) {
	var verification TicketVerification
	var checksJSON []byte
	var notes sql.NullString

	err := row.Scan(
		&verification.ID,
		&verification.ListingID,
		&verification.SellerID,
		&verification.Method,
		&verification.Status,
		&checksJSON,
		&notes,
		&verification.ReviewedBy,
		&verification.ReviewedAt,
		&verification.CreatedAt,
		&verification.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	if notes.Valid {
		verification.ReviewNotes = notes.String
	}
	if len(checksJSON) > 0 {
		if err := json.Unmarshal(checksJSON, &verification.Checks); err != nil {
			verification.Checks = nil
		}
	}

	return &verification, nil
}
