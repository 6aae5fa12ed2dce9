package verification

import (
	"context"
	"fmt"
	"time"

	"github.com/stagepass/trust-safety/internal/marketplace"
)

// Check names, stable identifiers persisted with each verification record.
const (
	CheckSellerHistory       = "seller_history"
	CheckPriceSanity         = "price_sanity"
	CheckDuplicateImages     = "duplicate_images"
	CheckListingCompleteness = "listing_completeness"
)

// Runner produces the automated check results for a listing
type Runner interface {
	Run(ctx context.Context, listing *marketplace.Listing) []CheckResult
}

// Battery is the fixed set of automated checks. A collaborator failure
// downgrades the affected check to inconclusive instead of failing the run.
type Battery struct {
	marketplace marketplace.Client
}

// NewBattery creates the automated check battery
func NewBattery(mkt marketplace.Client) *Battery {
	return &Battery{marketplace: mkt}
}

// Run executes every check and returns all results in battery order
func (b *Battery) Run(ctx context.Context, listing *marketplace.Listing) []CheckResult {
	return []CheckResult{
		b.sellerHistory(ctx, listing),
		b.priceSanity(listing),
		b.duplicateImages(ctx, listing),
		b.listingCompleteness(listing),
	}
}

// sellerHistory judges the seller's track record. Suspended or poorly rated
// sellers fail; brand-new accounts with no sales are inconclusive.
func (b *Battery) sellerHistory(ctx context.Context, listing *marketplace.Listing) CheckResult {
	seller, err := b.marketplace.GetUser(ctx, listing.SellerID)
	if err != nil {
		return CheckResult{
			Name:       CheckSellerHistory,
			Outcome:    OutcomeInconclusive,
			Confidence: 0.5,
			Details:    "seller lookup unavailable",
		}
	}

	if seller.Suspended {
		return CheckResult{
			Name:       CheckSellerHistory,
			Outcome:    OutcomeFail,
			Confidence: 0.9,
			Details:    "seller account is suspended",
		}
	}

	if seller.SaleCount >= 3 && seller.Rating < 2.5 {
		return CheckResult{
			Name:       CheckSellerHistory,
			Outcome:    OutcomeFail,
			Confidence: 0.75,
			Details:    fmt.Sprintf("seller rating %.1f across %d sales", seller.Rating, seller.SaleCount),
		}
	}

	if seller.SaleCount == 0 && time.Since(seller.CreatedAt) < 7*24*time.Hour {
		return CheckResult{
			Name:       CheckSellerHistory,
			Outcome:    OutcomeInconclusive,
			Confidence: 0.6,
			Details:    "new account without sale history",
		}
	}

	confidence := 0.75
	if seller.SaleCount >= 10 {
		confidence += 0.1
	}
	if seller.Rating >= 4 {
		confidence += 0.1
	}
	return CheckResult{Name: CheckSellerHistory, Outcome: OutcomePass, Confidence: confidence}
}

// priceSanity compares the asking price to the ticket's face value. Both
// extreme markup and suspiciously deep discounts count against the listing.
func (b *Battery) priceSanity(listing *marketplace.Listing) CheckResult {
	if listing.OriginalPrice <= 0 || listing.AskingPrice <= 0 {
		return CheckResult{
			Name:       CheckPriceSanity,
			Outcome:    OutcomeInconclusive,
			Confidence: 0.5,
			Details:    "no face value to compare against",
		}
	}

	ratio := listing.AskingPrice / listing.OriginalPrice
	if ratio < 1 {
		ratio = 1 / ratio
	}

	switch {
	case ratio >= 3:
		return CheckResult{
			Name:       CheckPriceSanity,
			Outcome:    OutcomeFail,
			Confidence: 0.85,
			Details:    fmt.Sprintf("asking price deviates %.1fx from face value", ratio),
		}
	case ratio >= 2:
		return CheckResult{
			Name:       CheckPriceSanity,
			Outcome:    OutcomeInconclusive,
			Confidence: 0.6,
			Details:    fmt.Sprintf("asking price deviates %.1fx from face value", ratio),
		}
	}
	return CheckResult{Name: CheckPriceSanity, Outcome: OutcomePass, Confidence: 0.9}
}

// duplicateImages looks for fingerprint collisions with other active
// listings. Another seller using the same photos is a counterfeit signal.
func (b *Battery) duplicateImages(ctx context.Context, listing *marketplace.Listing) CheckResult {
	if len(listing.ImageFingerprints) == 0 {
		return CheckResult{
			Name:       CheckDuplicateImages,
			Outcome:    OutcomeInconclusive,
			Confidence: 0.5,
			Details:    "listing has no images",
		}
	}

	others, err := b.marketplace.ListActiveFingerprints(ctx, listing.ID)
	if err != nil {
		return CheckResult{
			Name:       CheckDuplicateImages,
			Outcome:    OutcomeInconclusive,
			Confidence: 0.5,
			Details:    "fingerprint lookup unavailable",
		}
	}

	ownHashes := make(map[string]struct{}, len(listing.ImageFingerprints))
	for _, hash := range listing.ImageFingerprints {
		ownHashes[hash] = struct{}{}
	}

	sameSeller := false
	for _, fp := range others {
		if _, ok := ownHashes[fp.Hash]; !ok {
			continue
		}
		if fp.SellerID != listing.SellerID {
			return CheckResult{
				Name:       CheckDuplicateImages,
				Outcome:    OutcomeFail,
				Confidence: 0.9,
				Details:    "images match another seller's active listing",
			}
		}
		sameSeller = true
	}

	if sameSeller {
		return CheckResult{
			Name:       CheckDuplicateImages,
			Outcome:    OutcomeInconclusive,
			Confidence: 0.6,
			Details:    "images reused across the seller's own listings",
		}
	}
	return CheckResult{Name: CheckDuplicateImages, Outcome: OutcomePass, Confidence: 0.85}
}

// listingCompleteness checks that the listing carries the attributes a
// legitimate resale offer would have.
func (b *Battery) listingCompleteness(listing *marketplace.Listing) CheckResult {
	var missing []string
	if listing.EventName == "" {
		missing = append(missing, "event name")
	}
	if listing.Venue == "" {
		missing = append(missing, "venue")
	}
	if len(listing.Description) < 20 {
		missing = append(missing, "description")
	}
	if len(listing.ImageFingerprints) == 0 {
		missing = append(missing, "images")
	}
	if listing.OriginalPrice <= 0 {
		missing = append(missing, "face value")
	}

	switch len(missing) {
	case 0:
		return CheckResult{Name: CheckListingCompleteness, Outcome: OutcomePass, Confidence: 0.9}
	case 1:
		return CheckResult{
			Name:       CheckListingCompleteness,
			Outcome:    OutcomeInconclusive,
			Confidence: 0.6,
			Details:    "missing " + missing[0],
		}
	default:
		return CheckResult{
			Name:       CheckListingCompleteness,
			Outcome:    OutcomeFail,
			Confidence: 0.8,
			Details:    fmt.Sprintf("%d required attributes missing", len(missing)),
		}
	}
}
