package marketplace

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Listing carries the listing attributes the detection and verification
// rules read. The marketplace service owns the source of truth.
type Listing struct {
	ID                uuid.UUID `json:"id"`
	SellerID          uuid.UUID `json:"seller_id"`
	EventName         string    `json:"event_name"`
	EventCategory     string    `json:"event_category"`
	Venue             string    `json:"venue"`
	AskingPrice       float64   `json:"asking_price"`
	OriginalPrice     float64   `json:"original_price"`
	Currency          string    `json:"currency"`
	Description       string    `json:"description"`
	ImageFingerprints []string  `json:"image_fingerprints"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}

// User carries the account attributes the engine needs for assignment and
// seller-history checks.
type User struct {
	ID        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	Suspended bool      `json:"suspended"`
	Rating    float64   `json:"rating"`
	SaleCount int       `json:"sale_count"`
}

// Fingerprint maps an image content fingerprint to the listing and seller
// that uploaded it.
type Fingerprint struct {
	Hash      string    `json:"hash"`
	ListingID uuid.UUID `json:"listing_id"`
	SellerID  uuid.UUID `json:"seller_id"`
}

// Client is the read-only collaborator supplying listing and user data.
// The engine never writes back through this interface.
type Client interface {
	GetListing(ctx context.Context, listingID uuid.UUID) (*Listing, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*User, error)
	CountListingsSince(ctx context.Context, sellerID uuid.UUID, since time.Time) (int, error)
	ListSellerPrices(ctx context.Context, sellerID uuid.UUID, eventCategory string) ([]float64, error)
	ListActiveFingerprints(ctx context.Context, excludeListingID uuid.UUID) ([]Fingerprint, error)
}
