package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"twocare/internal/domain"
)

type Repositories struct {
	User           UserRepository
	Auth           AuthRepository
	Caregiver      CaregiverRepository
	Carereceiver   CarereceiverRepository
	Qualification  QualificationRepository
	Specialization SpecializationRepository
	CareRequest    CareRequestRepository
	Rating         RatingRepository
	Outbox         OutboxRepository
}

func NewRepositories(db *pgxpool.Pool, outboxMaxAttempts int) *Repositories {
	outbox := NewOutboxRepository(db, outboxMaxAttempts)

	return &Repositories{
		User:           NewUserRepository(db),
		Auth:           NewAuthRepository(db),
		Caregiver:      NewCaregiverRepository(db, outbox),
		Carereceiver:   NewCarereceiverRepository(db),
		Qualification:  NewQualificationRepository(db),
		Specialization: NewSpecializationRepository(db),
		CareRequest:    NewCareRequestRepository(db),
		Rating:         NewRatingRepository(db, outbox),
		Outbox:         outbox,
	}
}

type UserRepository interface {
	Create(ctx context.Context, dto domain.CreateUserDTO) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type AuthRepository interface {
	CreateSession(ctx context.Context, session domain.Session) error
	GetSessionByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error
	DeleteExpiredSessions(ctx context.Context, userID uuid.UUID) error
}

type CaregiverRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Caregiver, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Caregiver, error)
	GetCalendarByID(ctx context.Context, id uuid.UUID) (*domain.Calendar, error)
	GetCalendarByUserID(ctx context.Context, userID uuid.UUID) (*domain.Calendar, error)
	Upsert(ctx context.Context, userID uuid.UUID, fn CaregiverUpsertFunc) (*domain.CaregiverRecord, bool, error)
	UpdatePhoto(ctx context.Context, id uuid.UUID, photoURL string) error
}

type CarereceiverRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Carereceiver, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Carereceiver, error)
	Upsert(ctx context.Context, userID uuid.UUID, fn CarereceiverUpsertFunc) (*domain.CarereceiverRecord, bool, error)
}

type QualificationRepository interface {
	Create(ctx context.Context, dto domain.CreateReferenceDTO) (*domain.Qualification, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Qualification, error)
	Update(ctx context.Context, id uuid.UUID, dto domain.UpdateReferenceDTO) (*domain.Qualification, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter domain.ReferenceFilter) ([]domain.Qualification, int, error)
	Missing(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
}

type SpecializationRepository interface {
	Create(ctx context.Context, dto domain.CreateReferenceDTO) (*domain.Specialization, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Specialization, error)
	Update(ctx context.Context, id uuid.UUID, dto domain.UpdateReferenceDTO) (*domain.Specialization, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter domain.ReferenceFilter) ([]domain.Specialization, int, error)
	Missing(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
}

type CareRequestRepository interface {
	Create(ctx context.Context, req domain.CareRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.CareRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.CareRequestStatus) error
	List(ctx context.Context, filter domain.CareRequestFilter) ([]domain.CareRequest, int, error)
}

type RatingRepository interface {
	CountEligibility(ctx context.Context, caregiverID, carereceiverID uuid.UUID) (accepted int, rated int, err error)
	CreateForOldestUnrated(ctx context.Context, caregiverID, carereceiverID uuid.UUID, score int, comment string) (*domain.Rating, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Rating, error)
	ListByCaregiver(ctx context.Context, filter domain.RatingFilter) ([]domain.Rating, int, error)
}

type OutboxRepository interface {
	FetchNext(ctx context.Context) (*domain.OutboxEntry, error)
	MarkDone(ctx context.Context, id int64) error
	Reschedule(ctx context.Context, id int64, attempts int, nextTry time.Time, lastError string) error
	MarkDead(ctx context.Context, id int64, attempts int, lastError string) error
	EnqueueAll(ctx context.Context) (int64, error)
}
