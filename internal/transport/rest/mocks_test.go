package rest

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"twocare/internal/domain"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, dto domain.RegisterRequest) (uuid.UUID, error) {
	args := m.Called(ctx, dto)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockAuthService) ObtainTokens(ctx context.Context, dto domain.LoginRequest, client domain.ClientInfo) (*domain.Tokens, error) {
	args := m.Called(ctx, dto, client)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tokens), args.Error(1)
}

func (m *MockAuthService) VerifyToken(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockAuthService) RefreshTokens(ctx context.Context, refreshToken string, client domain.ClientInfo) (*domain.Tokens, error) {
	args := m.Called(ctx, refreshToken, client)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tokens), args.Error(1)
}

func (m *MockAuthService) ParseToken(ctx context.Context, token string) (domain.Actor, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(domain.Actor), args.Error(1)
}

type MockCaregiverService struct {
	mock.Mock
}

func (m *MockCaregiverService) Upsert(ctx context.Context, actor domain.Actor, dto domain.UpsertCaregiverDTO, mode domain.UpsertMode) (*domain.Caregiver, bool, error) {
	args := m.Called(ctx, actor, dto, mode)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*domain.Caregiver), args.Bool(1), args.Error(2)
}

func (m *MockCaregiverService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Caregiver, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Caregiver), args.Error(1)
}

func (m *MockCaregiverService) Calendar(ctx context.Context, id uuid.UUID) (*domain.Calendar, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Calendar), args.Error(1)
}

func (m *MockCaregiverService) SelfCalendar(ctx context.Context, actor domain.Actor) (*domain.Calendar, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Calendar), args.Error(1)
}

func (m *MockCaregiverService) Search(ctx context.Context, q domain.CaregiverSearch) ([]domain.CaregiverListItem, int, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.CaregiverListItem), args.Int(1), args.Error(2)
}

func (m *MockCaregiverService) UploadPhoto(ctx context.Context, actor domain.Actor, photo []byte, filename string) (*domain.Caregiver, error) {
	args := m.Called(ctx, actor, photo, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Caregiver), args.Error(1)
}

func (m *MockCaregiverService) DeletePhoto(ctx context.Context, actor domain.Actor) error {
	return m.Called(ctx, actor).Error(0)
}

func (m *MockCaregiverService) Reindex(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockCareRequestService struct {
	mock.Mock
}

func (m *MockCareRequestService) Create(ctx context.Context, actor domain.Actor, dto domain.CreateCareRequestDTO) (*domain.CareRequest, error) {
	args := m.Called(ctx, actor, dto)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CareRequest), args.Error(1)
}

func (m *MockCareRequestService) GetByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.CareRequest, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CareRequest), args.Error(1)
}

func (m *MockCareRequestService) List(ctx context.Context, actor domain.Actor, status *domain.CareRequestStatus, limit, offset int) ([]domain.CareRequest, int, error) {
	args := m.Called(ctx, actor, status, limit, offset)
	return args.Get(0).([]domain.CareRequest), args.Int(1), args.Error(2)
}

func (m *MockCareRequestService) Accept(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.CareRequest, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CareRequest), args.Error(1)
}

func (m *MockCareRequestService) Decline(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.CareRequest, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CareRequest), args.Error(1)
}

type MockRatingService struct {
	mock.Mock
}

func (m *MockRatingService) CanRate(ctx context.Context, actor domain.Actor, caregiverID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, actor, caregiverID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRatingService) Create(ctx context.Context, actor domain.Actor, dto domain.CreateRatingDTO) (*domain.Rating, error) {
	args := m.Called(ctx, actor, dto)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rating), args.Error(1)
}

func (m *MockRatingService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Rating, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rating), args.Error(1)
}

func (m *MockRatingService) ListMine(ctx context.Context, actor domain.Actor, limit, offset int) ([]domain.Rating, int, error) {
	args := m.Called(ctx, actor, limit, offset)
	return args.Get(0).([]domain.Rating), args.Int(1), args.Error(2)
}
