package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"twocare/internal/domain"
	apperrors "twocare/pkg/errors"
)

// memoryCareRequests хранит заявки в памяти.
type memoryCareRequests struct {
	mu       sync.Mutex
	requests map[uuid.UUID]domain.CareRequest
	lastList domain.CareRequestFilter
}

func newMemoryCareRequests(reqs ...domain.CareRequest) *memoryCareRequests {
	m := &memoryCareRequests{requests: make(map[uuid.UUID]domain.CareRequest)}
	for _, r := range reqs {
		m.requests[r.ID] = r
	}
	return m
}

func (m *memoryCareRequests) Create(_ context.Context, req domain.CareRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[req.ID] = req
	return nil
}

func (m *memoryCareRequests) GetByID(_ context.Context, id uuid.UUID) (*domain.CareRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("заявка не найдена")
	}
	return &req, nil
}

func (m *memoryCareRequests) UpdateStatus(_ context.Context, id uuid.UUID, status domain.CareRequestStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return apperrors.NewNotFoundError("заявка не найдена")
	}
	req.Status = status
	m.requests[id] = req
	return nil
}

func (m *memoryCareRequests) List(_ context.Context, filter domain.CareRequestFilter) ([]domain.CareRequest, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastList = filter
	return []domain.CareRequest{}, 0, nil
}

func (m *memoryCareRequests) status(id uuid.UUID) domain.CareRequestStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[id].Status
}

type careRequestFixture struct {
	svc           *CareRequestServiceImpl
	repo          *memoryCareRequests
	caregivers    *MockCaregiverRepository
	carereceivers *MockCarereceiverRepository
	caregiver     domain.Actor
	carereceiver  domain.Actor
	request       domain.CareRequest
}

func newCareRequestFixture() *careRequestFixture {
	f := &careRequestFixture{
		caregiver:    domain.Actor{UserID: uuid.New(), Role: domain.UserRoleCaregiver},
		carereceiver: domain.Actor{UserID: uuid.New(), Role: domain.UserRoleCarereceiver},
	}
	f.request = domain.CareRequest{
		ID:                 uuid.New(),
		CaregiverID:        uuid.New(),
		CarereceiverID:     uuid.New(),
		Date:               time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Status:             domain.CareRequestStatusPending,
		CaregiverUserID:    f.caregiver.UserID,
		CarereceiverUserID: f.carereceiver.UserID,
	}
	f.repo = newMemoryCareRequests(f.request)
	f.caregivers = new(MockCaregiverRepository)
	f.carereceivers = new(MockCarereceiverRepository)
	f.svc = NewCareRequestService(f.repo, f.caregivers, f.carereceivers, zap.NewNop())
	return f
}

func TestCareRequestService_LastTransitionWins(t *testing.T) {
	f := newCareRequestFixture()
	ctx := context.Background()

	_, err := f.svc.Accept(ctx, f.caregiver, f.request.ID)
	require.NoError(t, err)
	_, err = f.svc.Decline(ctx, f.caregiver, f.request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CareRequestStatusDeclined, f.repo.status(f.request.ID))

	req, err := f.svc.Accept(ctx, f.caregiver, f.request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CareRequestStatusAccepted, req.Status)
	assert.Equal(t, domain.CareRequestStatusAccepted, f.repo.status(f.request.ID))

	// повторное принятие ничего не меняет
	_, err = f.svc.Accept(ctx, f.caregiver, f.request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CareRequestStatusAccepted, f.repo.status(f.request.ID))
}

func TestCareRequestService_TransitionMissingID(t *testing.T) {
	f := newCareRequestFixture()
	admin := domain.Actor{UserID: uuid.New(), Role: domain.UserRoleAdmin}

	_, err := f.svc.Accept(context.Background(), admin, uuid.New())
	assert.True(t, apperrors.IsNotFound(err))

	_, err = f.svc.Decline(context.Background(), f.caregiver, uuid.New())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCareRequestService_TransitionRequiresCaregiverParty(t *testing.T) {
	f := newCareRequestFixture()
	stranger := domain.Actor{UserID: uuid.New(), Role: domain.UserRoleCaregiver}

	_, err := f.svc.Accept(context.Background(), f.carereceiver, f.request.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeForbidden))

	_, err = f.svc.Decline(context.Background(), stranger, f.request.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeForbidden))
	assert.Equal(t, domain.CareRequestStatusPending, f.repo.status(f.request.ID))

	admin := domain.Actor{UserID: uuid.New(), Role: domain.UserRoleAdmin}
	_, err = f.svc.Decline(context.Background(), admin, f.request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CareRequestStatusDeclined, f.repo.status(f.request.ID))
}

func TestCareRequestService_GetByID(t *testing.T) {
	f := newCareRequestFixture()

	req, err := f.svc.GetByID(context.Background(), f.carereceiver, f.request.ID)
	require.NoError(t, err)
	assert.Equal(t, f.request.ID, req.ID)

	_, err = f.svc.GetByID(context.Background(), domain.Actor{UserID: uuid.New(), Role: domain.UserRoleCarereceiver}, f.request.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeForbidden))
}

func TestCareRequestService_Create(t *testing.T) {
	t.Run("caregiver cannot create", func(t *testing.T) {
		f := newCareRequestFixture()

		_, err := f.svc.Create(context.Background(), f.caregiver, domain.CreateCareRequestDTO{CaregiverID: uuid.New(), Date: time.Now()})
		assert.True(t, apperrors.Is(err, apperrors.ErrorTypeForbidden))
	})

	t.Run("unknown caregiver", func(t *testing.T) {
		f := newCareRequestFixture()
		caregiverID := uuid.New()
		f.carereceivers.On("GetByUserID", mock.Anything, f.carereceiver.UserID).Return(&domain.Carereceiver{ID: uuid.New(), UserID: f.carereceiver.UserID}, nil)
		f.caregivers.On("GetByID", mock.Anything, caregiverID).Return(nil, apperrors.NewNotFoundError("профиль сиделки не найден"))

		_, err := f.svc.Create(context.Background(), f.carereceiver, domain.CreateCareRequestDTO{CaregiverID: caregiverID, Date: time.Now()})
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("starts pending", func(t *testing.T) {
		f := newCareRequestFixture()
		profile := &domain.Carereceiver{ID: uuid.New(), UserID: f.carereceiver.UserID}
		caregiver := &domain.Caregiver{ID: uuid.New(), UserID: f.caregiver.UserID}
		f.carereceivers.On("GetByUserID", mock.Anything, f.carereceiver.UserID).Return(profile, nil)
		f.caregivers.On("GetByID", mock.Anything, caregiver.ID).Return(caregiver, nil)

		req, err := f.svc.Create(context.Background(), f.carereceiver, domain.CreateCareRequestDTO{
			CaregiverID: caregiver.ID,
			Date:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			Message:     "нужна помощь",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.CareRequestStatusPending, req.Status)
		assert.Equal(t, profile.ID, req.CarereceiverID)
		assert.Equal(t, domain.CareRequestStatusPending, f.repo.status(req.ID))
	})
}

func TestCareRequestService_ListScopesToCaller(t *testing.T) {
	f := newCareRequestFixture()
	profile := &domain.Caregiver{ID: uuid.New(), UserID: f.caregiver.UserID}
	f.caregivers.On("GetByUserID", mock.Anything, f.caregiver.UserID).Return(profile, nil)
	f.carereceivers.On("GetByUserID", mock.Anything, f.caregiver.UserID).Return(nil, apperrors.NewNotFoundError("профиль получателя ухода не найден"))

	accepted := domain.CareRequestStatusAccepted
	_, _, err := f.svc.List(context.Background(), f.caregiver, &accepted, 10, 0)
	require.NoError(t, err)

	require.NotNil(t, f.repo.lastList.CaregiverID)
	assert.Equal(t, profile.ID, *f.repo.lastList.CaregiverID)
	assert.Nil(t, f.repo.lastList.CarereceiverID)
	assert.Equal(t, &accepted, f.repo.lastList.Status)

	nobody := domain.Actor{UserID: uuid.New(), Role: domain.UserRoleCarereceiver}
	f.caregivers.On("GetByUserID", mock.Anything, nobody.UserID).Return(nil, apperrors.NewNotFoundError("профиль сиделки не найден"))
	f.carereceivers.On("GetByUserID", mock.Anything, nobody.UserID).Return(nil, apperrors.NewNotFoundError("профиль получателя ухода не найден"))

	items, total, err := f.svc.List(context.Background(), nobody, nil, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)
}
