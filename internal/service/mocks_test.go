package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"twocare/internal/domain"
	"twocare/internal/mirror"
	"twocare/internal/repository"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, dto domain.CreateUserDTO) (uuid.UUID, error) {
	args := m.Called(ctx, dto)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockAuthRepository struct {
	mock.Mock
}

func (m *MockAuthRepository) CreateSession(ctx context.Context, session domain.Session) error {
	return m.Called(ctx, session).Error(0)
}

func (m *MockAuthRepository) GetSessionByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockAuthRepository) DeleteSession(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAuthRepository) DeleteExpiredSessions(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

// MockCaregiverRepository.Upsert вызывает переданную функцию с записью,
// заданной первым аргументом Return, как это делает транзакция в БД.
type MockCaregiverRepository struct {
	mock.Mock
	saved []domain.CaregiverRecord
}

func (m *MockCaregiverRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Caregiver, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Caregiver), args.Error(1)
}

func (m *MockCaregiverRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Caregiver, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Caregiver), args.Error(1)
}

func (m *MockCaregiverRepository) GetCalendarByID(ctx context.Context, id uuid.UUID) (*domain.Calendar, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Calendar), args.Error(1)
}

func (m *MockCaregiverRepository) GetCalendarByUserID(ctx context.Context, userID uuid.UUID) (*domain.Calendar, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Calendar), args.Error(1)
}

func (m *MockCaregiverRepository) Upsert(ctx context.Context, userID uuid.UUID, fn repository.CaregiverUpsertFunc) (*domain.CaregiverRecord, bool, error) {
	args := m.Called(ctx, userID)
	existing, _ := args.Get(0).(*domain.CaregiverRecord)

	rec, err := fn(existing)
	if err != nil {
		return nil, false, err
	}

	created := existing == nil
	if created {
		rec.ID = args.Get(1).(uuid.UUID)
	} else {
		rec.ID = existing.ID
	}
	m.saved = append(m.saved, rec)
	return &rec, created, nil
}

func (m *MockCaregiverRepository) UpdatePhoto(ctx context.Context, id uuid.UUID, photoURL string) error {
	return m.Called(ctx, id, photoURL).Error(0)
}

type MockCarereceiverRepository struct {
	mock.Mock
}

func (m *MockCarereceiverRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Carereceiver, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Carereceiver), args.Error(1)
}

func (m *MockCarereceiverRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Carereceiver, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Carereceiver), args.Error(1)
}

func (m *MockCarereceiverRepository) Upsert(ctx context.Context, userID uuid.UUID, fn repository.CarereceiverUpsertFunc) (*domain.CarereceiverRecord, bool, error) {
	args := m.Called(ctx, userID)
	existing, _ := args.Get(0).(*domain.CarereceiverRecord)

	rec, err := fn(existing)
	if err != nil {
		return nil, false, err
	}

	if existing == nil {
		rec.ID = args.Get(1).(uuid.UUID)
		return &rec, true, nil
	}
	rec.ID = existing.ID
	return &rec, false, nil
}

type MockQualificationRepository struct {
	mock.Mock
}

func (m *MockQualificationRepository) Create(ctx context.Context, dto domain.CreateReferenceDTO) (*domain.Qualification, error) {
	args := m.Called(ctx, dto)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Qualification), args.Error(1)
}

func (m *MockQualificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Qualification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Qualification), args.Error(1)
}

func (m *MockQualificationRepository) Update(ctx context.Context, id uuid.UUID, dto domain.UpdateReferenceDTO) (*domain.Qualification, error) {
	args := m.Called(ctx, id, dto)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Qualification), args.Error(1)
}

func (m *MockQualificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockQualificationRepository) List(ctx context.Context, filter domain.ReferenceFilter) ([]domain.Qualification, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Qualification), args.Int(1), args.Error(2)
}

func (m *MockQualificationRepository) Missing(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type MockSpecializationRepository struct {
	mock.Mock
}

func (m *MockSpecializationRepository) Create(ctx context.Context, dto domain.CreateReferenceDTO) (*domain.Specialization, error) {
	args := m.Called(ctx, dto)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Specialization), args.Error(1)
}

func (m *MockSpecializationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Specialization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Specialization), args.Error(1)
}

func (m *MockSpecializationRepository) Update(ctx context.Context, id uuid.UUID, dto domain.UpdateReferenceDTO) (*domain.Specialization, error) {
	args := m.Called(ctx, id, dto)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Specialization), args.Error(1)
}

func (m *MockSpecializationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSpecializationRepository) List(ctx context.Context, filter domain.ReferenceFilter) ([]domain.Specialization, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Specialization), args.Int(1), args.Error(2)
}

func (m *MockSpecializationRepository) Missing(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type MockRatingRepository struct {
	mock.Mock
}

func (m *MockRatingRepository) CountEligibility(ctx context.Context, caregiverID, carereceiverID uuid.UUID) (int, int, error) {
	args := m.Called(ctx, caregiverID, carereceiverID)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockRatingRepository) CreateForOldestUnrated(ctx context.Context, caregiverID, carereceiverID uuid.UUID, score int, comment string) (*domain.Rating, error) {
	args := m.Called(ctx, caregiverID, carereceiverID, score, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rating), args.Error(1)
}

func (m *MockRatingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Rating, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rating), args.Error(1)
}

func (m *MockRatingRepository) ListByCaregiver(ctx context.Context, filter domain.RatingFilter) ([]domain.Rating, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Rating), args.Int(1), args.Error(2)
}

type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) FetchNext(ctx context.Context) (*domain.OutboxEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OutboxEntry), args.Error(1)
}

func (m *MockOutboxRepository) MarkDone(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOutboxRepository) Reschedule(ctx context.Context, id int64, attempts int, nextTry time.Time, lastError string) error {
	return m.Called(ctx, id, attempts, nextTry, lastError).Error(0)
}

func (m *MockOutboxRepository) MarkDead(ctx context.Context, id int64, attempts int, lastError string) error {
	return m.Called(ctx, id, attempts, lastError).Error(0)
}

func (m *MockOutboxRepository) EnqueueAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockFileStorage struct {
	mock.Mock
}

func (m *MockFileStorage) UploadImage(ctx context.Context, dir string, data []byte, filename string) (string, error) {
	args := m.Called(ctx, dir, data, filename)
	return args.String(0), args.Error(1)
}

func (m *MockFileStorage) DeleteFile(ctx context.Context, fileURL string) error {
	return m.Called(ctx, fileURL).Error(0)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Upsert(ctx context.Context, doc mirror.Document) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *MockStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStore) Search(ctx context.Context, q domain.CaregiverSearch) ([]domain.CaregiverListItem, int, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.CaregiverListItem), args.Int(1), args.Error(2)
}

// countingNotifier считает пробуждения воркеров.
type countingNotifier struct {
	calls int
	err   error
}

func (n *countingNotifier) Notify(context.Context) error {
	n.calls++
	return n.err
}

func (n *countingNotifier) Wakeups(ctx context.Context) <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch
}
