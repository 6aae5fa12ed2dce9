package activity

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stagepass/trust-safety/internal/audit"
	"github.com/stagepass/trust-safety/internal/marketplace"
	"github.com/stagepass/trust-safety/pkg/config"
	"github.com/stagepass/trust-safety/pkg/logger"
	"github.com/stagepass/trust-safety/pkg/redis"
)

// Detector runs the automated detection rules. Every rule is a best-effort
// observer of marketplace events: a failed lookup or store write is logged
// and produces no finding, never an error for the triggering user action.
type Detector struct {
	repo        RepositoryInterface
	marketplace marketplace.Client
	redis       *redis.Client
	events      audit.Publisher
	cfg         config.DetectionConfig
}

// NewDetector creates a detection rule engine
func NewDetector(repo RepositoryInterface, mkt marketplace.Client, rdb *redis.Client, events audit.Publisher, cfg config.DetectionConfig) *Detector {
	return &Detector{
		repo:        repo,
		marketplace: mkt,
		redis:       rdb,
		events:      events,
		cfg:         cfg,
	}
}

// DetectRapidListing fires when a seller creates listings faster than the
// configured trailing-window threshold. Each invocation counts one listing
// creation; the window counter lives in redis and expires with the window.
func (d *Detector) DetectRapidListing(ctx context.Context, userID uuid.UUID) *SuspiciousActivity {
	window := time.Duration(d.cfg.RapidListingWindow) * time.Hour
	key := fmt.Sprintf("detect:rapid:%s", userID)

	count, err := d.redis.IncrementWithWindow(ctx, key, window)
	if err != nil {
		d.softFail("rapid_listing", userID, "window counter unavailable", err)
		return nil
	}

	threshold := int64(d.cfg.RapidListingThreshold)
	if threshold <= 0 || count <= threshold {
		return nil
	}

	if d.hasPendingFinding(ctx, userID, TypeRapidListing) {
		return nil
	}

	ratio := float64(count) / float64(threshold)
	severity := SeverityLow
	switch {
	case ratio >= 4:
		severity = SeverityCritical
	case ratio >= 2.5:
		severity = SeverityHigh
	case ratio >= 1.5:
		severity = SeverityMedium
	}

	return d.record(ctx, userID, TypeRapidListing, severity, map[string]interface{}{
		"listing_count": count,
		"threshold":     threshold,
		"window_hours":  d.cfg.RapidListingWindow,
	})
}

// DetectPriceManipulation fires when a listing's asking price deviates far
// from the seller's own history for the event category and from the ticket's
// face value.
func (d *Detector) DetectPriceManipulation(ctx context.Context, listingID uuid.UUID) *SuspiciousActivity {
	listing, err := d.marketplace.GetListing(ctx, listingID)
	if err != nil {
		d.softFail("price_manipulation", listingID, "listing lookup failed", err)
		return nil
	}
	if listing.AskingPrice <= 0 {
		return nil
	}

	prices, err := d.marketplace.ListSellerPrices(ctx, listing.SellerID, listing.EventCategory)
	if err != nil {
		d.softFail("price_manipulation", listingID, "price history lookup failed", err)
		return nil
	}

	deviation := deviationRatio(listing.AskingPrice, listing.OriginalPrice)
	if m := median(prices); m > 0 {
		if r := deviationRatio(listing.AskingPrice, m); r > deviation {
			deviation = r
		}
	}

	if deviation < d.cfg.PriceDeviationMedium {
		return nil
	}

	if d.hasPendingFinding(ctx, listing.SellerID, TypePriceManipulation) {
		return nil
	}

	severity := SeverityLow
	switch {
	case deviation >= 2*d.cfg.PriceDeviationExtreme:
		severity = SeverityCritical
	case deviation >= d.cfg.PriceDeviationExtreme:
		severity = SeverityHigh
	case deviation >= d.cfg.PriceDeviationHigh:
		severity = SeverityMedium
	}

	return d.record(ctx, listing.SellerID, TypePriceManipulation, severity, map[string]interface{}{
		"listing_id":      listing.ID.String(),
		"asking_price":    listing.AskingPrice,
		"original_price":  listing.OriginalPrice,
		"historic_median": median(prices),
		"deviation":       deviation,
	})
}

// DetectDuplicateImages fires on image fingerprint collisions between the
// listing and other active listings. A cross-seller collision is a strong
// counterfeit signal; same-seller reuse is recorded as informational.
func (d *Detector) DetectDuplicateImages(ctx context.Context, listingID uuid.UUID) *SuspiciousActivity {
	listing, err := d.marketplace.GetListing(ctx, listingID)
	if err != nil {
		d.softFail("duplicate_images", listingID, "listing lookup failed", err)
		return nil
	}
	if len(listing.ImageFingerprints) == 0 {
		return nil
	}

	others, err := d.marketplace.ListActiveFingerprints(ctx, listingID)
	if err != nil {
		d.softFail("duplicate_images", listingID, "fingerprint lookup failed", err)
		return nil
	}

	index := make(map[string][]marketplace.Fingerprint, len(others))
	for _, fp := range others {
		index[fp.Hash] = append(index[fp.Hash], fp)
	}

	var matchedHashes []string
	collidingListings := make(map[uuid.UUID]struct{})
	crossSeller := false
	for _, hash := range listing.ImageFingerprints {
		matches, ok := index[hash]
		if !ok {
			continue
		}
		matchedHashes = append(matchedHashes, hash)
		for _, fp := range matches {
			collidingListings[fp.ListingID] = struct{}{}
			if fp.SellerID != listing.SellerID {
				crossSeller = true
			}
		}
	}

	if len(matchedHashes) == 0 {
		return nil
	}

	if d.hasPendingFinding(ctx, listing.SellerID, TypeDuplicateImages) {
		return nil
	}

	severity := SeverityLow
	if crossSeller {
		severity = SeverityHigh
	}

	listingIDs := make([]string, 0, len(collidingListings))
	for id := range collidingListings {
		listingIDs = append(listingIDs, id.String())
	}
	sort.Strings(listingIDs)

	return d.record(ctx, listing.SellerID, TypeDuplicateImages, severity, map[string]interface{}{
		"listing_id":         listing.ID.String(),
		"matched_hashes":     matchedHashes,
		"colliding_listings": listingIDs,
		"cross_seller":       crossSeller,
	})
}

func (d *Detector) hasPendingFinding(ctx context.Context, userID uuid.UUID, activityType ActivityType) bool {
	pending, err := d.repo.HasPendingOfType(ctx, userID, activityType)
	if err != nil {
		d.softFail(string(activityType), userID, "pending lookup failed", err)
		// Assume a pending finding exists rather than risking duplicates.
		return true
	}
	return pending
}

func (d *Detector) record(ctx context.Context, userID uuid.UUID, activityType ActivityType, severity Severity, evidence map[string]interface{}) *SuspiciousActivity {
	finding := &SuspiciousActivity{
		ID:           uuid.New(),
		UserID:       userID,
		ActivityType: activityType,
		Severity:     severity,
		Evidence:     evidence,
		Status:       StatusPending,
		CreatedAt:    time.Now(),
	}

	if err := d.repo.Create(ctx, finding); err != nil {
		d.softFail(string(activityType), userID, "unable to store finding", err)
		return nil
	}

	d.events.Emit(audit.Event{
		EntityKind: entityKind,
		EntityID:   finding.ID,
		NewStatus:  string(StatusPending),
		At:         finding.CreatedAt,
	})

	logger.Info("detection rule fired",
		zap.String("activity_type", string(activityType)),
		zap.String("user_id", userID.String()),
		zap.String("severity", string(severity)),
	)

	return finding
}

func (d *Detector) softFail(rule string, subject uuid.UUID, msg string, err error) {
	logger.Warn("detection rule degraded to no finding",
		zap.String("rule", rule),
		zap.String("subject", subject.String()),
		zap.String("reason", msg),
		zap.Error(err),
	)
}

// deviationRatio returns how far apart two prices are as a ratio >= 1.
// Both severe overpricing and severe undercutting count as deviation.
func deviationRatio(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	if a > b {
		return a / b
	}
	return b / a
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
