package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"twocare/internal/domain"
	"twocare/internal/mirror"
	apperrors "twocare/pkg/errors"
)

type caregiverFixture struct {
	svc             *CaregiverServiceImpl
	repo            *MockCaregiverRepository
	qualifications  *MockQualificationRepository
	specializations *MockSpecializationRepository
	outbox          *MockOutboxRepository
	files           *MockFileStorage
	store           *MockStore
	notifier        *countingNotifier
	actor           domain.Actor
}

func newCaregiverFixture() *caregiverFixture {
	f := &caregiverFixture{
		repo:            new(MockCaregiverRepository),
		qualifications:  new(MockQualificationRepository),
		specializations: new(MockSpecializationRepository),
		outbox:          new(MockOutboxRepository),
		files:           new(MockFileStorage),
		store:           new(MockStore),
		notifier:        &countingNotifier{},
		actor:           domain.Actor{UserID: uuid.New(), Role: domain.UserRoleCaregiver},
	}
	f.svc = NewCaregiverService(f.repo, f.qualifications, f.specializations, f.outbox, f.files, f.store, f.notifier, zap.NewNop())
	return f
}

func ptr[T any](v T) *T { return &v }

func TestCaregiverService_UpsertRejectsOtherRoles(t *testing.T) {
	f := newCaregiverFixture()

	_, _, err := f.svc.Upsert(context.Background(), domain.Actor{UserID: uuid.New(), Role: domain.UserRoleCarereceiver}, domain.UpsertCaregiverDTO{}, domain.UpsertCreate)

	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeValidation))
	f.repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestCaregiverService_UpsertCreateThenUpdate(t *testing.T) {
	f := newCaregiverFixture()
	id := uuid.New()
	dto := domain.UpsertCaregiverDTO{Description: ptr("опыт 10 лет"), DayPrice: ptr(3000.0)}

	f.repo.On("Upsert", mock.Anything, f.actor.UserID).Return((*domain.CaregiverRecord)(nil), id).Once()
	f.repo.On("GetByID", mock.Anything, id).Return(&domain.Caregiver{ID: id, UserID: f.actor.UserID, Description: "опыт 10 лет"}, nil)

	caregiver, created, err := f.svc.Upsert(context.Background(), f.actor, dto, domain.UpsertCreate)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, id, caregiver.ID)

	existing := &domain.CaregiverRecord{ID: id, UserID: f.actor.UserID, Description: "опыт 10 лет"}
	f.repo.On("Upsert", mock.Anything, f.actor.UserID).Return(existing).Once()

	caregiver, created, err = f.svc.Upsert(context.Background(), f.actor, dto, domain.UpsertCreate)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id, caregiver.ID)

	assert.Equal(t, 2, f.notifier.calls)
}

func TestCaregiverService_UpsertWithoutProfile(t *testing.T) {
	for _, mode := range []domain.UpsertMode{domain.UpsertReplace, domain.UpsertMerge} {
		f := newCaregiverFixture()
		f.repo.On("Upsert", mock.Anything, f.actor.UserID).Return((*domain.CaregiverRecord)(nil))

		_, _, err := f.svc.Upsert(context.Background(), f.actor, domain.UpsertCaregiverDTO{}, mode)

		assert.True(t, apperrors.IsNotFound(err), "mode %d", mode)
		assert.Zero(t, f.notifier.calls)
	}
}

func TestCaregiverService_UpsertValidatesCalendar(t *testing.T) {
	f := newCaregiverFixture()
	dto := domain.UpsertCaregiverDTO{
		FixedUnavailableDays:  &[]int{1, 9},
		FixedUnavailableHours: &[]string{"25:00"},
	}

	_, _, err := f.svc.Upsert(context.Background(), f.actor, dto, domain.UpsertCreate)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	assert.Contains(t, appErr.Fields, "fixed_unavailable_days.1")
	assert.Contains(t, appErr.Fields, "fixed_unavailable_hours.0")
	f.repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestCaregiverService_UpsertValidatesReferences(t *testing.T) {
	f := newCaregiverFixture()
	known, unknown := uuid.New(), uuid.New()
	dto := domain.UpsertCaregiverDTO{Qualifications: &[]uuid.UUID{known, unknown}}
	f.qualifications.On("Missing", mock.Anything, []uuid.UUID{known, unknown}).Return([]uuid.UUID{unknown}, nil)

	_, _, err := f.svc.Upsert(context.Background(), f.actor, dto, domain.UpsertMerge)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields["qualifications"], unknown.String())
	f.repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestCaregiverService_UpsertModes(t *testing.T) {
	id := uuid.New()
	existing := domain.CaregiverRecord{
		ID:                id,
		Description:       "старое",
		DayPrice:          1000,
		HourPrice:         200,
		PhotoURL:          "http://s3/bucket/caregivers/a.jpg",
		SpecializationIDs: []uuid.UUID{uuid.New()},
	}
	dto := domain.UpsertCaregiverDTO{HourPrice: ptr(250.0)}

	cases := map[domain.UpsertMode]func(t *testing.T, saved domain.CaregiverRecord){
		domain.UpsertMerge: func(t *testing.T, saved domain.CaregiverRecord) {
			assert.Equal(t, "старое", saved.Description)
			assert.Equal(t, 1000.0, saved.DayPrice)
			assert.Len(t, saved.SpecializationIDs, 1)
		},
		domain.UpsertReplace: func(t *testing.T, saved domain.CaregiverRecord) {
			assert.Empty(t, saved.Description)
			assert.Zero(t, saved.DayPrice)
			assert.Empty(t, saved.SpecializationIDs)
		},
	}

	for mode, check := range cases {
		f := newCaregiverFixture()
		current := existing
		current.UserID = f.actor.UserID
		f.repo.On("Upsert", mock.Anything, f.actor.UserID).Return(&current)
		f.repo.On("GetByID", mock.Anything, id).Return(&domain.Caregiver{ID: id}, nil)

		_, created, err := f.svc.Upsert(context.Background(), f.actor, dto, mode)
		require.NoError(t, err)
		assert.False(t, created)

		require.Len(t, f.repo.saved, 1)
		saved := f.repo.saved[0]
		assert.Equal(t, id, saved.ID)
		assert.Equal(t, 250.0, saved.HourPrice)
		assert.Equal(t, existing.PhotoURL, saved.PhotoURL)
		check(t, saved)
	}
}

func TestCaregiverService_Calendars(t *testing.T) {
	f := newCaregiverFixture()
	own := &domain.Calendar{FixedUnavailableDays: []int{0, 6}}
	f.repo.On("GetCalendarByUserID", mock.Anything, f.actor.UserID).Return(own, nil)

	cal, err := f.svc.SelfCalendar(context.Background(), f.actor)
	require.NoError(t, err)
	assert.Equal(t, own, cal)

	stranger := domain.Actor{UserID: uuid.New(), Role: domain.UserRoleCarereceiver}
	f.repo.On("GetCalendarByUserID", mock.Anything, stranger.UserID).Return(nil, apperrors.NewNotFoundError("профиль сиделки не найден"))

	_, err = f.svc.SelfCalendar(context.Background(), stranger)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCaregiverService_SearchDisabled(t *testing.T) {
	f := newCaregiverFixture()
	f.svc.search = mirror.DisabledStore{}

	_, _, err := f.svc.Search(context.Background(), domain.CaregiverSearch{})

	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeInternal))
	assert.ErrorIs(t, err, mirror.ErrDisabled)
}

func TestCaregiverService_UploadPhotoReplacesOld(t *testing.T) {
	f := newCaregiverFixture()
	profile := &domain.Caregiver{ID: uuid.New(), UserID: f.actor.UserID, PhotoURL: "http://s3/bucket/caregivers/old.jpg"}
	data := []byte("image")
	f.repo.On("GetByUserID", mock.Anything, f.actor.UserID).Return(profile, nil)
	f.files.On("UploadImage", mock.Anything, caregiverPhotoDir, data, "me.jpg").Return("http://s3/bucket/caregivers/new.jpg", nil)
	f.repo.On("UpdatePhoto", mock.Anything, profile.ID, "http://s3/bucket/caregivers/new.jpg").Return(nil)
	f.files.On("DeleteFile", mock.Anything, "http://s3/bucket/caregivers/old.jpg").Return(nil)

	updated, err := f.svc.UploadPhoto(context.Background(), f.actor, data, "me.jpg")

	require.NoError(t, err)
	assert.Equal(t, "http://s3/bucket/caregivers/new.jpg", updated.PhotoURL)
	f.files.AssertExpectations(t)
	assert.Equal(t, 1, f.notifier.calls)
}

func TestCaregiverService_UploadPhotoRollsBackFile(t *testing.T) {
	f := newCaregiverFixture()
	profile := &domain.Caregiver{ID: uuid.New(), UserID: f.actor.UserID}
	f.repo.On("GetByUserID", mock.Anything, f.actor.UserID).Return(profile, nil)
	f.files.On("UploadImage", mock.Anything, caregiverPhotoDir, mock.Anything, "me.png").Return("http://s3/bucket/caregivers/new.png", nil)
	f.repo.On("UpdatePhoto", mock.Anything, profile.ID, "http://s3/bucket/caregivers/new.png").Return(apperrors.NewInternalError("ошибка обновления фото сиделки", errors.New("db down")))
	f.files.On("DeleteFile", mock.Anything, "http://s3/bucket/caregivers/new.png").Return(nil)

	_, err := f.svc.UploadPhoto(context.Background(), f.actor, []byte("png"), "me.png")

	assert.Error(t, err)
	f.files.AssertExpectations(t)
}

func TestCaregiverService_DeletePhoto(t *testing.T) {
	f := newCaregiverFixture()
	profile := &domain.Caregiver{ID: uuid.New(), UserID: f.actor.UserID, PhotoURL: "http://s3/bucket/caregivers/a.jpg"}
	f.repo.On("GetByUserID", mock.Anything, f.actor.UserID).Return(profile, nil)
	f.repo.On("UpdatePhoto", mock.Anything, profile.ID, "").Return(nil)
	f.files.On("DeleteFile", mock.Anything, profile.PhotoURL).Return(nil)

	require.NoError(t, f.svc.DeletePhoto(context.Background(), f.actor))
	f.repo.AssertExpectations(t)
	f.files.AssertExpectations(t)
}

func TestCaregiverService_ReindexIgnoresNotifyFailure(t *testing.T) {
	f := newCaregiverFixture()
	f.notifier.err = errors.New("redis down")
	f.outbox.On("EnqueueAll", mock.Anything).Return(int64(3), nil)

	n, err := f.svc.Reindex(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, 1, f.notifier.calls)
}
