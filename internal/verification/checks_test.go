package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stagepass/trust-safety/internal/marketplace"
)

type mockMarketplaceClient struct {
	mock.Mock
}

func (m *mockMarketplaceClient) GetListing(ctx context.Context, listingID uuid.UUID) (*marketplace.Listing, error) {
	args := m.Called(ctx, listingID)
	listing, _ := args.Get(0).(*marketplace.Listing)
	return listing, args.Error(1)
}

func (m *mockMarketplaceClient) GetUser(ctx context.Context, userID uuid.UUID) (*marketplace.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*marketplace.User)
	return user, args.Error(1)
}

func (m *mockMarketplaceClient) CountListingsSince(ctx context.Context, sellerID uuid.UUID, since time.Time) (int, error) {
	args := m.Called(ctx, sellerID, since)
	return args.Int(0), args.Error(1)
}

func (m *mockMarketplaceClient) ListSellerPrices(ctx context.Context, sellerID uuid.UUID, eventCategory string) ([]float64, error) {
	args := m.Called(ctx, sellerID, eventCategory)
	prices, _ := args.Get(0).([]float64)
	return prices, args.Error(1)
}

func (m *mockMarketplaceClient) ListActiveFingerprints(ctx context.Context, excludeListingID uuid.UUID) ([]marketplace.Fingerprint, error) {
	args := m.Called(ctx, excludeListingID)
	fps, _ := args.Get(0).([]marketplace.Fingerprint)
	return fps, args.Error(1)
}

func completeListing(sellerID uuid.UUID) *marketplace.Listing {
	return &marketplace.Listing{
		ID:                uuid.New(),
		SellerID:          sellerID,
		EventName:         "Arena Tour Final",
		EventCategory:     "concert",
		Venue:             "Riverside Arena",
		AskingPrice:       120,
		OriginalPrice:     100,
		Description:       "Two seated tickets, block C, row 14, together.",
		ImageFingerprints: []string{"aa11", "bb22"},
	}
}

func establishedSeller(id uuid.UUID) *marketplace.User {
	return &marketplace.User{
		ID:        id,
		CreatedAt: time.Now().Add(-365 * 24 * time.Hour),
		Rating:    4.6,
		SaleCount: 24,
	}
}

func resultByName(t *testing.T, results []CheckResult, name string) CheckResult {
	t.Helper()
	for _, result := range results {
		if result.Name == name {
			return result
		}
	}
	t.Fatalf("check %s missing from results", name)
	return CheckResult{}
}

func TestBatteryCleanListingPassesEveryCheck(t *testing.T) {
	ctx := context.Background()
	mkt := new(mockMarketplaceClient)
	battery := NewBattery(mkt)
	sellerID := uuid.New()
	listing := completeListing(sellerID)

	mkt.On("GetUser", ctx, sellerID).Return(establishedSeller(sellerID), nil).Once()
	mkt.On("ListActiveFingerprints", ctx, listing.ID).Return([]marketplace.Fingerprint{}, nil).Once()

	results := battery.Run(ctx, listing)
	require.Len(t, results, 4)
	for _, result := range results {
		assert.Equal(t, OutcomePass, result.Outcome, result.Name)
		assert.GreaterOrEqual(t, result.Confidence, 0.7, result.Name)
	}
}

func TestBatterySuspendedSellerFailsHistoryCheck(t *testing.T) {
	ctx := context.Background()
	mkt := new(mockMarketplaceClient)
	battery := NewBattery(mkt)
	sellerID := uuid.New()
	listing := completeListing(sellerID)

	seller := establishedSeller(sellerID)
	seller.Suspended = true
	mkt.On("GetUser", ctx, sellerID).Return(seller, nil).Once()
	mkt.On("ListActiveFingerprints", ctx, listing.ID).Return([]marketplace.Fingerprint{}, nil).Once()

	result := resultByName(t, battery.Run(ctx, listing), CheckSellerHistory)
	assert.Equal(t, OutcomeFail, result.Outcome)
	assert.GreaterOrEqual(t, result.Confidence, 0.8)
}

func TestBatteryNewSellerIsInconclusive(t *testing.T) {
	ctx := context.Background()
	mkt := new(mockMarketplaceClient)
	battery := NewBattery(mkt)
	sellerID := uuid.New()
	listing := completeListing(sellerID)

	mkt.On("GetUser", ctx, sellerID).Return(&marketplace.User{
		ID:        sellerID,
		CreatedAt: time.Now().Add(-24 * time.Hour),
	}, nil).Once()
	mkt.On("ListActiveFingerprints", ctx, listing.ID).Return([]marketplace.Fingerprint{}, nil).Once()

	result := resultByName(t, battery.Run(ctx, listing), CheckSellerHistory)
	assert.Equal(t, OutcomeInconclusive, result.Outcome)
}

func TestBatteryExtremeMarkupFailsPriceSanity(t *testing.T) {
	ctx := context.Background()
	mkt := new(mockMarketplaceClient)
	battery := NewBattery(mkt)
	sellerID := uuid.New()
	listing := completeListing(sellerID)
	listing.AskingPrice = 450

	mkt.On("GetUser", ctx, sellerID).Return(establishedSeller(sellerID), nil).Once()
	mkt.On("ListActiveFingerprints", ctx, listing.ID).Return([]marketplace.Fingerprint{}, nil).Once()

	result := resultByName(t, battery.Run(ctx, listing), CheckPriceSanity)
	assert.Equal(t, OutcomeFail, result.Outcome)
	assert.GreaterOrEqual(t, result.Confidence, 0.8)
}

func TestBatteryDeepDiscountAlsoFailsPriceSanity(t *testing.T) {
	ctx := context.Background()
	mkt := new(mockMarketplaceClient)
	battery := NewBattery(mkt)
	sellerID := uuid.New()
	listing := completeListing(sellerID)
	listing.AskingPrice = 25

	mkt.On("GetUser", ctx, sellerID).Return(establishedSeller(sellerID), nil).Once()
	mkt.On("ListActiveFingerprints", ctx, listing.ID).Return([]marketplace.Fingerprint{}, nil).Once()

	result := resultByName(t, battery.Run(ctx, listing), CheckPriceSanity)
	assert.Equal(t, OutcomeFail, result.Outcome)
}

func TestBatteryCrossSellerImageMatchFails(t *testing.T) {
	ctx := context.Background()
	mkt := new(mockMarketplaceClient)
	battery := NewBattery(mkt)
	sellerID := uuid.New()
	listing := completeListing(sellerID)

	mkt.On("GetUser", ctx, sellerID).Return(establishedSeller(sellerID), nil).Once()
	mkt.On("ListActiveFingerprints", ctx, listing.ID).Return([]marketplace.Fingerprint{
		{Hash: "bb22", ListingID: uuid.New(), SellerID: uuid.New()},
	}, nil).Once()

	result := resultByName(t, battery.Run(ctx, listing), CheckDuplicateImages)
	assert.Equal(t, OutcomeFail, result.Outcome)
	assert.GreaterOrEqual(t, result.Confidence, 0.8)
}

func TestBatteryIncompleteListingFailsCompleteness(t *testing.T) {
	ctx := context.Background()
	mkt := new(mockMarketplaceClient)
	battery := NewBattery(mkt)
	sellerID := uuid.New()
	listing := completeListing(sellerID)
	listing.Venue = ""
	listing.Description = "cheap"

	mkt.On("GetUser", ctx, sellerID).Return(establishedSeller(sellerID), nil).Once()
	mkt.On("ListActiveFingerprints", ctx, listing.ID).Return([]marketplace.Fingerprint{}, nil).Once()

	result := resultByName(t, battery.Run(ctx, listing), CheckListingCompleteness)
	assert.Equal(t, OutcomeFail, result.Outcome)
}

func TestBatteryCollaboratorFailureDowngradesToInconclusive(t *testing.T) {
	ctx := context.Background()
	mkt := new(mockMarketplaceClient)
	battery := NewBattery(mkt)
	sellerID := uuid.New()
	listing := completeListing(sellerID)

	mkt.On("GetUser", ctx, sellerID).Return(nil, errors.New("marketplace unavailable")).Once()
	mkt.On("ListActiveFingerprints", ctx, listing.ID).Return(nil, errors.New("marketplace unavailable")).Once()

	results := battery.Run(ctx, listing)
	assert.Equal(t, OutcomeInconclusive, resultByName(t, results, CheckSellerHistory).Outcome)
	assert.Equal(t, OutcomeInconclusive, resultByName(t, results, CheckDuplicateImages).Outcome)
}
