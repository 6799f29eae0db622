package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"twocare/config"
	"twocare/internal/domain"
	"twocare/internal/mirror"
	"twocare/internal/repository"
	"twocare/internal/storage"
)

type Deps struct {
	Repos       *repository.Repositories
	Logger      *zap.Logger
	Config      *config.Config
	FileStorage storage.FileStorage
	Search      mirror.Store
	Notifier    mirror.Notifier
}

type Services struct {
	Auth           AuthService
	Caregiver      CaregiverService
	Carereceiver   CarereceiverService
	Qualification  QualificationService
	Specialization SpecializationService
	CareRequest    CareRequestService
	Rating         RatingService
}

func NewServices(deps Deps) *Services {
	if deps.Notifier == nil {
		deps.Notifier = mirror.NopNotifier{}
	}
	if deps.Search == nil {
		deps.Search = mirror.DisabledStore{}
	}

	return &Services{
		Auth:           NewAuthService(deps.Repos.Auth, deps.Repos.User, deps.Config.JWT, deps.Logger),
		Caregiver:      NewCaregiverService(deps.Repos.Caregiver, deps.Repos.Qualification, deps.Repos.Specialization, deps.Repos.Outbox, deps.FileStorage, deps.Search, deps.Notifier, deps.Logger),
		Carereceiver:   NewCarereceiverService(deps.Repos.Carereceiver, deps.Logger),
		Qualification:  NewQualificationService(deps.Repos.Qualification, deps.Logger),
		Specialization: NewSpecializationService(deps.Repos.Specialization, deps.Logger),
		CareRequest:    NewCareRequestService(deps.Repos.CareRequest, deps.Repos.Caregiver, deps.Repos.Carereceiver, deps.Logger),
		Rating:         NewRatingService(deps.Repos.Rating, deps.Repos.Caregiver, deps.Repos.Carereceiver, deps.Notifier, deps.Logger),
	}
}

type AuthService interface {
	Register(ctx context.Context, dto domain.RegisterRequest) (uuid.UUID, error)
	ObtainTokens(ctx context.Context, dto domain.LoginRequest, client domain.ClientInfo) (*domain.Tokens, error)
	VerifyToken(ctx context.Context, token string) error
	RefreshTokens(ctx context.Context, refreshToken string, client domain.ClientInfo) (*domain.Tokens, error)
	ParseToken(ctx context.Context, token string) (domain.Actor, error)
}

type CaregiverService interface {
	Upsert(ctx context.Context, actor domain.Actor, dto domain.UpsertCaregiverDTO, mode domain.UpsertMode) (*domain.Caregiver, bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Caregiver, error)
	Calendar(ctx context.Context, id uuid.UUID) (*domain.Calendar, error)
	SelfCalendar(ctx context.Context, actor domain.Actor) (*domain.Calendar, error)
	Search(ctx context.Context, q domain.CaregiverSearch) ([]domain.CaregiverListItem, int, error)
	UploadPhoto(ctx context.Context, actor domain.Actor, photo []byte, filename string) (*domain.Caregiver, error)
	DeletePhoto(ctx context.Context, actor domain.Actor) error
	Reindex(ctx context.Context) (int64, error)
}

type CarereceiverService interface {
	Upsert(ctx context.Context, actor domain.Actor, dto domain.UpsertCarereceiverDTO, mode domain.UpsertMode) (*domain.Carereceiver, bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Carereceiver, error)
}

type QualificationService interface {
	Create(ctx context.Context, actor domain.Actor, dto domain.CreateReferenceDTO) (*domain.Qualification, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Qualification, error)
	Update(ctx context.Context, actor domain.Actor, id uuid.UUID, dto domain.UpdateReferenceDTO) (*domain.Qualification, error)
	Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error
	List(ctx context.Context, filter domain.ReferenceFilter) ([]domain.Qualification, int, error)
}

type SpecializationService interface {
	Create(ctx context.Context, actor domain.Actor, dto domain.CreateReferenceDTO) (*domain.Specialization, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Specialization, error)
	Update(ctx context.Context, actor domain.Actor, id uuid.UUID, dto domain.UpdateReferenceDTO) (*domain.Specialization, error)
	Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error
	List(ctx context.Context, filter domain.ReferenceFilter) ([]domain.Specialization, int, error)
}

type CareRequestService interface {
	Create(ctx context.Context, actor domain.Actor, dto domain.CreateCareRequestDTO) (*domain.CareRequest, error)
	GetByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.CareRequest, error)
	List(ctx context.Context, actor domain.Actor, status *domain.CareRequestStatus, limit, offset int) ([]domain.CareRequest, int, error)
	Accept(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.CareRequest, error)
	Decline(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.CareRequest, error)
}

type RatingService interface {
	CanRate(ctx context.Context, actor domain.Actor, caregiverID *uuid.UUID) (bool, error)
	Create(ctx context.Context, actor domain.Actor, dto domain.CreateRatingDTO) (*domain.Rating, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Rating, error)
	ListMine(ctx context.Context, actor domain.Actor, limit, offset int) ([]domain.Rating, int, error)
}
