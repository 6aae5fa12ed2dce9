package reports

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stagepass/trust-safety/internal/audit"
	"github.com/stagepass/trust-safety/internal/auth"
	"github.com/stagepass/trust-safety/internal/marketplace"
	"github.com/stagepass/trust-safety/pkg/common"
)

type mockReportRepository struct {
	mock.Mock
}

func (m *mockReportRepository) Create(ctx context.Context, report *FraudReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *mockReportRepository) GetByID(ctx context.Context, reportID uuid.UUID) (*FraudReport, error) {
	args := m.Called(ctx, reportID)
	report, _ := args.Get(0).(*FraudReport)
	return report, args.Error(1)
}

func (m *mockReportRepository) UpdateAssignment(ctx context.Context, reportID, moderatorID uuid.UUID) error {
	args := m.Called(ctx, reportID, moderatorID)
	return args.Error(0)
}

func (m *mockReportRepository) UpdateResolution(ctx context.Context, reportID uuid.UUID, status ReportStatus, resolution string, resolvedBy uuid.UUID) error {
	args := m.Called(ctx, reportID, status, resolution, resolvedBy)
	return args.Error(0)
}

func (m *mockReportRepository) ListByStatus(ctx context.Context, status ReportStatus, limit, offset int) ([]*FraudReport, error) {
	args := m.Called(ctx, status, limit, offset)
	result, _ := args.Get(0).([]*FraudReport)
	return result, args.Error(1)
}

func (m *mockReportRepository) ListByAssignee(ctx context.Context, moderatorID uuid.UUID, limit, offset int) ([]*FraudReport, error) {
	args := m.Called(ctx, moderatorID, limit, offset)
	result, _ := args.Get(0).([]*FraudReport)
	return result, args.Error(1)
}

func (m *mockReportRepository) ListByReportedUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*FraudReport, error) {
	args := m.Called(ctx, userID, limit, offset)
	result, _ := args.Get(0).([]*FraudReport)
	return result, args.Error(1)
}

func (m *mockReportRepository) ListByType(ctx context.Context, reportType ReportType, limit, offset int) ([]*FraudReport, error) {
	args := m.Called(ctx, reportType, limit, offset)
	result, _ := args.Get(0).([]*FraudReport)
	return result, args.Error(1)
}

func (m *mockReportRepository) ListPriorityQueue(ctx context.Context, limit, offset int) ([]*FraudReport, error) {
	args := m.Called(ctx, limit, offset)
	result, _ := args.Get(0).([]*FraudReport)
	return result, args.Error(1)
}

func (m *mockReportRepository) CountOpenByReportedUser(ctx context.Context, userID uuid.UUID) (map[ReportType]int, error) {
	args := m.Called(ctx, userID)
	counts, _ := args.Get(0).(map[ReportType]int)
	return counts, args.Error(1)
}

func (m *mockReportRepository) CountOpen(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockMarketplace struct {
	mock.Mock
}

func (m *mockMarketplace) GetListing(ctx context.Context, listingID uuid.UUID) (*marketplace.Listing, error) {
	args := m.Called(ctx, listingID)
	listing, _ := args.Get(0).(*marketplace.Listing)
	return listing, args.Error(1)
}

func (m *mockMarketplace) GetUser(ctx context.Context, userID uuid.UUID) (*marketplace.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*marketplace.User)
	return user, args.Error(1)
}

func (m *mockMarketplace) CountListingsSince(ctx context.Context, sellerID uuid.UUID, since time.Time) (int, error) {
	args := m.Called(ctx, sellerID, since)
	return args.Int(0), args.Error(1)
}

func (m *mockMarketplace) ListSellerPrices(ctx context.Context, sellerID uuid.UUID, eventCategory string) ([]float64, error) {
	args := m.Called(ctx, sellerID, eventCategory)
	prices, _ := args.Get(0).([]float64)
	return prices, args.Error(1)
}

func (m *mockMarketplace) ListActiveFingerprints(ctx context.Context, excludeListingID uuid.UUID) ([]marketplace.Fingerprint, error) {
	args := m.Called(ctx, excludeListingID)
	fingerprints, _ := args.Get(0).([]marketplace.Fingerprint)
	return fingerprints, args.Error(1)
}

func newTestService() (*Service, *mockReportRepository, *mockMarketplace, *audit.Recorder) {
	repo := new(mockReportRepository)
	mkt := new(mockMarketplace)
	recorder := &audit.Recorder{}
	return NewService(repo, mkt, recorder), repo, mkt, recorder
}

func TestSubmitReportCreatesOpenReport(t *testing.T) {
	ctx := context.Background()
	service, repo, _, recorder := newTestService()
	reporter := auth.Actor{ID: uuid.New(), Role: auth.RoleUser}
	reportedUser := uuid.New()

	repo.On("Create", ctx, mock.MatchedBy(func(r *FraudReport) bool {
		return r.ID != uuid.Nil &&
			r.Status == StatusOpen &&
			r.ReporterID == reporter.ID &&
			*r.ReportedUserID == reportedUser &&
			!r.CreatedAt.IsZero()
	})).Return(nil).Once()

	report, err := service.SubmitReport(ctx, reporter, &SubmitReportRequest{
		ReportedUserID: &reportedUser,
		Type:           ReportTypeCounterfeit,
		Reason:         "seller ships photocopied tickets",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, report.Status)
	assert.Nil(t, report.Resolution)

	events := recorder.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "fraud_report", events[0].EntityKind)
	assert.Equal(t, string(StatusOpen), events[0].NewStatus)
	repo.AssertExpectations(t)
}

func TestSubmitReportRequiresTarget(t *testing.T) {
	ctx := context.Background()
	service, repo, _, _ := newTestService()

	_, err := service.SubmitReport(ctx, auth.Actor{ID: uuid.New(), Role: auth.RoleUser}, &SubmitReportRequest{
		Type:   ReportTypeOther,
		Reason: "something is off",
	})
	require.Error(t, err)
	assert.True(t, common.IsKind(err, common.KindValidation))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAssignReportRejectsNonAdminWithoutTouchingStore(t *testing.T) {
	ctx := context.Background()
	service, repo, mkt, recorder := newTestService()
	moderator := auth.Actor{ID: uuid.New(), Role: auth.RoleModerator}

	_, err := service.AssignReport(ctx, moderator, uuid.New(), uuid.New())
	require.Error(t, err)
	assert.True(t, common.IsKind(err, common.KindForbidden))

	// Role check precedes every lookup: no store read, no assignee
	// resolution, no event.
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "UpdateAssignment", mock.Anything, mock.Anything, mock.Anything)
	mkt.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
	assert.Empty(t, recorder.Events())
}

func TestAssignReportStampsModerator(t *testing.T) {
	ctx := context.Background()
	service, repo, mkt, recorder := newTestService()
	admin := auth.Actor{ID: uuid.New(), Role: auth.RoleAdmin}
	reportID := uuid.New()
	moderatorID := uuid.New()

	mkt.On("GetUser", ctx, moderatorID).Return(&marketplace.User{ID: moderatorID, Role: "moderator"}, nil).Once()
	repo.On("GetByID", ctx, reportID).Return(&FraudReport{
		ID:     reportID,
		Status: StatusOpen,
		Type:   ReportTypeFakeListing,
	}, nil).Once()
	repo.On("UpdateAssignment", ctx, reportID, moderatorID).Return(nil).Once()

	report, err := service.AssignReport(ctx, admin, reportID, moderatorID)
	require.NoError(t, err)
	assert.Equal(t, StatusAssigned, report.Status)
	assert.Equal(t, moderatorID, *report.AssignedTo)

	events := recorder.Events()
	require.Len(t, events, 1)
	assert.Equal(t, string(StatusOpen), events[0].OldStatus)
	assert.Equal(t, string(StatusAssigned), events[0].NewStatus)
	repo.AssertExpectations(t)
	mkt.AssertExpectations(t)
}

func TestAssignReportRejectsNonModeratorAssignee(t *testing.T) {
	ctx := context.Background()
	service, repo, mkt, _ := newTestService()
	admin := auth.Actor{ID: uuid.New(), Role: auth.RoleAdmin}
	assigneeID := uuid.New()

	mkt.On("GetUser", ctx, assigneeID).Return(&marketplace.User{ID: assigneeID, Role: "user"}, nil).Once()

	_, err := service.AssignReport(ctx, admin, uuid.New(), assigneeID)
	require.Error(t, err)
	assert.True(t, common.IsKind(err, common.KindValidation))
	repo.AssertNotCalled(t, "UpdateAssignment", mock.Anything, mock.Anything, mock.Anything)
}

func TestAssignReportAllowsReassignment(t *testing.T) {
	ctx := context.Background()
	service, repo, mkt, _ := newTestService()
	admin := auth.Actor{ID: uuid.New(), Role: auth.RoleAdmin}
	reportID := uuid.New()
	previous := uuid.New()
	next := uuid.New()

	mkt.On("GetUser", ctx, next).Return(&marketplace.User{ID: next, Role: "admin"}, nil).Once()
	repo.On("GetByID", ctx, reportID).Return(&FraudReport{
		ID:         reportID,
		Status:     StatusAssigned,
		AssignedTo: &previous,
	}, nil).Once()
	repo.On("UpdateAssignment", ctx, reportID, next).Return(nil).Once()

	report, err := service.AssignReport(ctx, admin, reportID, next)
	require.NoError(t, err)
	assert.Equal(t, next, *report.AssignedTo)
	repo.AssertExpectations(t)
}

func TestAssignReportNotFound(t *testing.T) {
	ctx := context.Background()
	service, repo, mkt, _ := newTestService()
	admin := auth.Actor{ID: uuid.New(), Role: auth.RoleAdmin}
	reportID := uuid.New()
	moderatorID := uuid.New()

	mkt.On("GetUser", ctx, moderatorID).Return(&marketplace.User{ID: moderatorID, Role: "moderator"}, nil).Once()
	repo.On("GetByID", ctx, reportID).Return(nil, pgx.ErrNoRows).Once()

	_, err := service.AssignReport(ctx, admin, reportID, moderatorID)
	require.Error(t, err)
	assert.True(t, common.IsKind(err, common.KindNotFound))
}

func TestResolveReportStampsResolution(t *testing.T) {
	ctx := context.Background()
	service, repo, _, recorder := newTestService()
	moderator := auth.Actor{ID: uuid.New(), Role: auth.RoleModerator}
	reportID := uuid.New()

	repo.On("GetByID", ctx, reportID).Return(&FraudReport{
		ID:     reportID,
		Status: StatusAssigned,
	}, nil).Once()
	repo.On("UpdateResolution", ctx, reportID, StatusResolved, "listing removed, buyer refunded", moderator.ID).Return(nil).Once()

	report, err := service.ResolveReport(ctx, moderator, reportID, "listing removed, buyer refunded")
	require.NoError(t, err)
	assert.Equal(t, StatusResolved, report.Status)
	assert.Equal(t, moderator.ID, *report.ResolvedBy)
	assert.NotNil(t, report.ResolvedAt)

	events := recorder.Events()
	require.Len(t, events, 1)
	assert.Equal(t, string(StatusResolved), events[0].NewStatus)
	repo.AssertExpectations(t)
}

func TestResolveReportCannotResolveTwice(t *testing.T) {
	ctx := context.Background()
	service, repo, _, _ := newTestService()
	moderator := auth.Actor{ID: uuid.New(), Role: auth.RoleModerator}
	reportID := uuid.New()
	resolution := "verified as legitimate"

	repo.On("GetByID", ctx, reportID).Return(&FraudReport{
		ID:         reportID,
		Status:     StatusResolved,
		Resolution: &resolution,
	}, nil).Once()

	_, err := service.ResolveReport(ctx, moderator, reportID, "closing again")
	require.Error(t, err)
	assert.True(t, common.IsKind(err, common.KindInvalidTransition))
	repo.AssertNotCalled(t, "UpdateResolution", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestResolveReportRequiresResolutionText(t *testing.T) {
	ctx := context.Background()
	service, repo, _, _ := newTestService()
	moderator := auth.Actor{ID: uuid.New(), Role: auth.RoleModerator}

	_, err := service.ResolveReport(ctx, moderator, uuid.New(), "   ")
	require.Error(t, err)
	assert.True(t, common.IsKind(err, common.KindValidation))
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestDismissReportSetsDismissedStatus(t *testing.T) {
	ctx := context.Background()
	service, repo, _, _ := newTestService()
	moderator := auth.Actor{ID: uuid.New(), Role: auth.RoleModerator}
	reportID := uuid.New()

	repo.On("GetByID", ctx, reportID).Return(&FraudReport{ID: reportID, Status: StatusOpen}, nil).Once()
	repo.On("UpdateResolution", ctx, reportID, StatusDismissed, "duplicate of earlier report", moderator.ID).Return(nil).Once()

	report, err := service.DismissReport(ctx, moderator, reportID, "duplicate of earlier report")
	require.NoError(t, err)
	assert.Equal(t, StatusDismissed, report.Status)
	repo.AssertExpectations(t)
}

func TestListReportsDefaultsToPriorityQueue(t *testing.T) {
	ctx := context.Background()
	service, repo, _, _ := newTestService()
	moderator := auth.Actor{ID: uuid.New(), Role: auth.RoleModerator}

	repo.On("ListPriorityQueue", ctx, defaultPageSize, 0).Return([]*FraudReport{}, nil).Once()

	result, err := service.ListReports(ctx, moderator, &Filter{})
	require.NoError(t, err)
	assert.NotNil(t, result)
	repo.AssertExpectations(t)
}

func TestListReportsAppliesOnlyFirstRecognizedFilter(t *testing.T) {
	ctx := context.Background()
	service, repo, _, _ := newTestService()
	moderator := auth.Actor{ID: uuid.New(), Role: auth.RoleModerator}
	status := StatusOpen
	assignee := uuid.New()

	repo.On("ListByStatus", ctx, StatusOpen, defaultPageSize, 0).Return([]*FraudReport{}, nil).Once()

	_, err := service.ListReports(ctx, moderator, &Filter{Status: &status, AssignedTo: &assignee})
	require.NoError(t, err)
	repo.AssertNotCalled(t, "ListByAssignee", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestListReportsForbiddenForRegularUsers(t *testing.T) {
	ctx := context.Background()
	service, repo, _, _ := newTestService()

	_, err := service.ListReports(ctx, auth.Actor{ID: uuid.New(), Role: auth.RoleUser}, &Filter{})
	require.Error(t, err)
	assert.True(t, common.IsKind(err, common.KindForbidden))
	repo.AssertNotCalled(t, "ListPriorityQueue", mock.Anything, mock.Anything, mock.Anything)
}
