package suspension

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
	"github.com/stagepass/trust-safety/pkg/common"
)

type mockSuspensionRepository struct {
	mock.Mock
}

func (m *mockSuspensionRepository) Create(ctx context.Context, suspension *UserSuspension) error {
	args := m.Called(ctx, suspension)
	return args.Error(0)
}

func (m *mockSuspensionRepository) CreateExclusive(ctx context.Context, suspension *UserSuspension) (bool, error) {
	args := m.Called(ctx, suspension)
	return args.Bool(0), args.Error(1)
}

func (m *mockSuspensionRepository) GetByID(ctx context.Context, suspensionID uuid.UUID) (*UserSuspension, error) {
	args := m.Called(ctx, suspensionID)
	suspension, _ := args.Get(0).(*UserSuspension)
	return suspension, args.Error(1)
}

func (m *mockSuspensionRepository) Lift(ctx context.Context, suspensionID uuid.UUID) error {
	args := m.Called(ctx, suspensionID)
	return args.Error(0)
}

func (m *mockSuspensionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*UserSuspension, error) {
	args := m.Called(ctx, userID, limit, offset)
	result, _ := args.Get(0).([]*UserSuspension)
	return result, args.Error(1)
}

func (m *mockSuspensionRepository) ListByActive(ctx context.Context, active bool, now time.Time, limit, offset int) ([]*UserSuspension, error) {
	args := m.Called(ctx, active, now, limit, offset)
	result, _ := args.Get(0).([]*UserSuspension)
	return result, args.Error(1)
}

func (m *mockSuspensionRepository) ListByType(ctx context.Context, suspensionType SuspensionType, limit, offset int) ([]*UserSuspension, error) {
	args := m.Called(ctx, suspensionType, limit, offset)
	result, _ := args.Get(0).([]*UserSuspension)
	return result, args.Error(1)
}

func (m *mockSuspensionRepository) ListActiveExclusive(ctx context.Context, now time.Time, limit, offset int) ([]*UserSuspension, error) {
	args := m.Called(ctx, now, limit, offset)
	result, _ := args.Get(0).([]*UserSuspension)
	return result, args.Error(1)
}

func (m *mockSuspensionRepository) CountActiveExclusive(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func adminActor() auth.Actor {
	return auth.Actor{ID: uuid.New(), Role: auth.RoleAdmin}
}

func TestSuspendUserPermanentForcesNilEndDate(t *testing.T) {
	ctx := context.Background()
	repo := new(mockSuspensionRepository)
	recorder := &audit.Recorder{}
	service := NewService(repo, recorder)
	admin := adminActor()
	userID := uuid.New()
	requestedEnd := time.Now().Add(30 * 24 * time.Hour)

	repo.On("CreateExclusive", ctx, mock.MatchedBy(func(s *UserSuspension) bool {
		return s.UserID == userID && s.Type == TypePermanent && s.EndDate == nil && s.SuspendedBy == admin.ID
	})).Return(true, nil).Once()

	suspension, err := service.SuspendUser(ctx, admin, &SuspendRequest{
		UserID:  userID,
		Reason:  "counterfeit tickets",
		Type:    TypePermanent,
		EndDate: &requestedEnd,
	})
	require.NoError(t, err)
	assert.Nil(t, suspension.EndDate)
	assert.True(t, suspension.Active())
	assert.Len(t, recorder.Events(), 1)
	repo.AssertExpectations(t)
}

func TestSuspendUserDuplicateActiveExclusiveConflicts(t *testing.T) {
	ctx := context.Background()
	repo := new(mockSuspensionRepository)
	service := NewService(repo, &audit.Recorder{})
	admin := adminActor()
	endDate := time.Now().Add(7 * 24 * time.Hour)

	repo.On("CreateExclusive", ctx, mock.Anything).Return(false, nil).Once()

	suspension, err := service.SuspendUser(ctx, admin, &SuspendRequest{
		UserID:  uuid.New(),
		Reason:  "repeat fraud reports",
		Type:    TypeTemporary,
		EndDate: &endDate,
	})
	require.Error(t, err)
	assert.Nil(t, suspension)
	assert.True(t, common.IsKind(err, common.KindConflict))
}

func TestSuspendUserTemporaryRequiresFutureEndDate(t *testing.T) {
	ctx := context.Background()
	repo := new(mockSuspensionRepository)
	service := NewService(repo, &audit.Recorder{})
	admin := adminActor()
	pastEnd := time.Now().Add(-time.Hour)

	for _, endDate := range []*time.Time{nil, &pastEnd} {
		_, err := service.SuspendUser(ctx, admin, &SuspendRequest{
			UserID:  uuid.New(),
			Reason:  "cooling off",
			Type:    TypeTemporary,
			EndDate: endDate,
		})
		require.Error(t, err)
		assert.True(t, common.IsKind(err, common.KindValidation))
	}
	repo.AssertNotCalled(t, "CreateExclusive", mock.Anything, mock.Anything)
}

func TestSuspendUserWarningsBypassExclusivity(t *testing.T) {
	ctx := context.Background()
	repo := new(mockSuspensionRepository)
	service := NewService(repo, &audit.Recorder{})
	admin := adminActor()

	repo.On("Create", ctx, mock.MatchedBy(func(s *UserSuspension) bool {
		return s.Type == TypeWarning
	})).Return(nil).Once()

	suspension, err := service.SuspendUser(ctx, admin, &SuspendRequest{
		UserID: uuid.New(),
		Reason: "misleading listing description",
		Type:   TypeWarning,
	})
	require.NoError(t, err)
	assert.Equal(t, TypeWarning, suspension.Type)
	repo.AssertNotCalled(t, "CreateExclusive", mock.Anything, mock.Anything)
}

func TestSuspendUserForbiddenForModeratorsWithoutStoreAccess(t *testing.T) {
	ctx := context.Background()
	repo := new(mockSuspensionRepository)
	service := NewService(repo, &audit.Recorder{})

	_, err := service.SuspendUser(ctx, auth.Actor{ID: uuid.New(), Role: auth.RoleModerator}, &SuspendRequest{
		UserID: uuid.New(),
		Reason: "escalate",
		Type:   TypePermanent,
	})
	require.Error(t, err)
	assert.True(t, common.IsKind(err, common.KindForbidden))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "CreateExclusive", mock.Anything, mock.Anything)
}

func TestLiftSuspensionStampsLiftedAt(t *testing.T) {
	ctx := context.Background()
	repo := new(mockSuspensionRepository)
	recorder := &audit.Recorder{}
	service := NewService(repo, recorder)
	admin := adminActor()
	suspensionID := uuid.New()

	repo.On("GetByID", ctx, suspensionID).Return(&UserSuspension{
		ID:     suspensionID,
		UserID: uuid.New(),
		Type:   TypeTemporary,
	}, nil).Once()
	repo.On("Lift", ctx, suspensionID).Return(nil).Once()

	suspension, err := service.LiftSuspension(ctx, admin, suspensionID)
	require.NoError(t, err)
	require.NotNil(t, suspension.LiftedAt)
	assert.False(t, suspension.Active())
	assert.Len(t, recorder.Events(), 1)
}

func TestLiftSuspensionIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := new(mockSuspensionRepository)
	recorder := &audit.Recorder{}
	service := NewService(repo, recorder)
	admin := adminActor()
	suspensionID := uuid.New()
	firstLift := time.Now().Add(-time.Hour)

	repo.On("GetByID", ctx, suspensionID).Return(&UserSuspension{
		ID:       suspensionID,
		UserID:   uuid.New(),
		Type:     TypeTemporary,
		LiftedAt: &firstLift,
	}, nil).Once()

	suspension, err := service.LiftSuspension(ctx, admin, suspensionID)
	require.NoError(t, err)
	assert.Equal(t, firstLift, *suspension.LiftedAt)
	repo.AssertNotCalled(t, "Lift", mock.Anything, mock.Anything)
	assert.Empty(t, recorder.Events())
}

func TestLiftSuspensionNotFound(t *testing.T) {
	ctx := context.Background()
	repo := new(mockSuspensionRepository)
	service := NewService(repo, &audit.Recorder{})
	admin := adminActor()
	suspensionID := uuid.New()

	repo.On("GetByID", ctx, suspensionID).Return(nil, pgx.ErrNoRows).Once()

	_, err := service.LiftSuspension(ctx, admin, suspensionID)
	require.Error(t, err)
	assert.True(t, common.IsKind(err, common.KindNotFound))
}

func TestListSuspensionsDefaultsToActiveExclusive(t *testing.T) {
	ctx := context.Background()
	repo := new(mockSuspensionRepository)
	service := NewService(repo, &audit.Recorder{})
	moderator := auth.Actor{ID: uuid.New(), Role: auth.RoleModerator}

	repo.On("ListActiveExclusive", ctx, mock.AnythingOfType("time.Time"), defaultPageSize, 0).
		Return([]*UserSuspension{}, nil).Once()

	result, err := service.ListSuspensions(ctx, moderator, &Filter{})
	require.NoError(t, err)
	assert.NotNil(t, result)
	repo.AssertExpectations(t)
}

func TestListSuspensionsAppliesOnlyFirstRecognizedFilter(t *testing.T) {
	ctx := context.Background()
	repo := new(mockSuspensionRepository)
	service := NewService(repo, &audit.Recorder{})
	moderator := auth.Actor{ID: uuid.New(), Role: auth.RoleModerator}
	userID := uuid.New()
	active := true

	repo.On("ListByUser", ctx, userID, defaultPageSize, 0).Return([]*UserSuspension{}, nil).Once()

	_, err := service.ListSuspensions(ctx, moderator, &Filter{UserID: &userID, Active: &active})
	require.NoError(t, err)
	repo.AssertNotCalled(t, "ListByActive", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestActiveBoundaryAtExactEndDate(t *testing.T) {
	now := time.Now()
	endsNow := &UserSuspension{Type: TypeTemporary, EndDate: &now}
	assert.False(t, endsNow.ActiveAt(now))

	justAfter := now.Add(time.Nanosecond)
	endsJustAfter := &UserSuspension{Type: TypeTemporary, EndDate: &justAfter}
	assert.True(t, endsJustAfter.ActiveAt(now))

	indefinite := &UserSuspension{Type: TypePermanent}
	assert.True(t, indefinite.ActiveAt(now))

	lifted := &UserSuspension{Type: TypePermanent, LiftedAt: &now}
	assert.False(t, lifted.ActiveAt(now))
}
