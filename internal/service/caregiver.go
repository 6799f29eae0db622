package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"twocare/internal/domain"
	"twocare/internal/mirror"
	"twocare/internal/repository"
	"twocare/internal/storage"
	apperrors "twocare/pkg/errors"
	"twocare/pkg/validator"
)

const caregiverPhotoDir = "caregivers"

type CaregiverServiceImpl struct {
	repo               repository.CaregiverRepository
	qualificationRepo  repository.QualificationRepository
	specializationRepo repository.SpecializationRepository
	outboxRepo         repository.OutboxRepository
	fileStorage        storage.FileStorage
	search             mirror.Store
	notifier           mirror.Notifier
	logger             *zap.Logger
}

func NewCaregiverService(
	repo repository.CaregiverRepository,
	qualificationRepo repository.QualificationRepository,
	specializationRepo repository.SpecializationRepository,
	outboxRepo repository.OutboxRepository,
	fileStorage storage.FileStorage,
	search mirror.Store,
	notifier mirror.Notifier,
	logger *zap.Logger,
) *CaregiverServiceImpl {
	return &CaregiverServiceImpl{
		repo:               repo,
		qualificationRepo:  qualificationRepo,
		specializationRepo: specializationRepo,
		outboxRepo:         outboxRepo,
		fileStorage:        fileStorage,
		search:             search,
		notifier:           notifier,
		logger:             logger,
	}
}

func (s *CaregiverServiceImpl) Upsert(ctx context.Context, actor domain.Actor, dto domain.UpsertCaregiverDTO, mode domain.UpsertMode) (*domain.Caregiver, bool, error) {
	if actor.Role != domain.UserRoleCaregiver {
		return nil, false, apperrors.NewValidationError("пользователь не является сиделкой")
	}

	if err := s.validateProfile(ctx, dto); err != nil {
		return nil, false, err
	}

	rec, created, err := s.repo.Upsert(ctx, actor.UserID, func(existing *domain.CaregiverRecord) (domain.CaregiverRecord, error) {
		if existing == nil {
			if mode != domain.UpsertCreate {
				return domain.CaregiverRecord{}, apperrors.NewNotFoundError("профиль сиделки не найден")
			}
			return domain.CaregiverRecord{UserID: actor.UserID}.Apply(dto, mode), nil
		}
		return existing.Apply(dto, mode), nil
	})
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrorTypeNotFound) && !apperrors.Is(err, apperrors.ErrorTypeValidation) {
			s.logger.Error("ошибка сохранения профиля сиделки", zap.String("userId", actor.UserID.String()), zap.Error(err))
		}
		return nil, false, err
	}

	s.wakeMirror(ctx)

	caregiver, err := s.repo.GetByID(ctx, rec.ID)
	if err != nil {
		s.logger.Error("ошибка получения сохраненного профиля", zap.String("caregiverId", rec.ID.String()), zap.Error(err))
		return nil, false, err
	}

	return caregiver, created, nil
}

// validateProfile проверяет только переданные поля: сохраненные значения уже прошли проверку.
func (s *CaregiverServiceImpl) validateProfile(ctx context.Context, dto domain.UpsertCaregiverDTO) error {
	calendar := make(map[string]interface{})
	if dto.FixedUnavailableDays != nil {
		calendar["fixed_unavailable_days"] = *dto.FixedUnavailableDays
	}
	if dto.FixedUnavailableHours != nil {
		calendar["fixed_unavailable_hours"] = *dto.FixedUnavailableHours
	}
	if dto.CustomUnavailableDays != nil {
		calendar["custom_unavailable_days"] = *dto.CustomUnavailableDays
	}

	doc, err := json.Marshal(calendar)
	if err != nil {
		return apperrors.NewInternalError("ошибка проверки календаря", err)
	}

	fields, err := validator.ValidateCalendar(ctx, doc)
	if err != nil {
		s.logger.Error("ошибка проверки календаря", zap.Error(err))
		return apperrors.NewInternalError("ошибка проверки календаря", err)
	}

	if dto.Qualifications != nil && len(*dto.Qualifications) > 0 {
		missing, err := s.qualificationRepo.Missing(ctx, *dto.Qualifications)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			fields["qualifications"] = "не найдены квалификации: " + joinIDs(missing)
		}
	}

	if dto.Specializations != nil && len(*dto.Specializations) > 0 {
		missing, err := s.specializationRepo.Missing(ctx, *dto.Specializations)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			fields["specializations"] = "не найдены специализации: " + joinIDs(missing)
		}
	}

	if len(fields) > 0 {
		return apperrors.NewFieldValidationError("ошибка валидации профиля", fields)
	}

	return nil
}

func (s *CaregiverServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.Caregiver, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CaregiverServiceImpl) Calendar(ctx context.Context, id uuid.UUID) (*domain.Calendar, error) {
	return s.repo.GetCalendarByID(ctx, id)
}

func (s *CaregiverServiceImpl) SelfCalendar(ctx context.Context, actor domain.Actor) (*domain.Calendar, error) {
	return s.repo.GetCalendarByUserID(ctx, actor.UserID)
}

func (s *CaregiverServiceImpl) Search(ctx context.Context, q domain.CaregiverSearch) ([]domain.CaregiverListItem, int, error) {
	items, total, err := s.search.Search(ctx, q)
	if err != nil {
		if errors.Is(err, mirror.ErrDisabled) {
			return nil, 0, apperrors.NewInternalError("поиск сиделок недоступен", err)
		}
		s.logger.Error("ошибка поиска сиделок", zap.String("query", q.Query), zap.Error(err))
		return nil, 0, apperrors.NewInternalError("ошибка поиска сиделок", err)
	}

	return items, total, nil
}

func (s *CaregiverServiceImpl) UploadPhoto(ctx context.Context, actor domain.Actor, photo []byte, filename string) (*domain.Caregiver, error) {
	if s.fileStorage == nil {
		return nil, apperrors.NewInternalError("хранилище файлов не настроено", nil)
	}

	caregiver, err := s.repo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	photoURL, err := s.fileStorage.UploadImage(ctx, caregiverPhotoDir, photo, filename)
	if err != nil {
		if errors.Is(err, storage.ErrEmptyFile) || errors.Is(err, storage.ErrNotAnImage) {
			return nil, apperrors.NewFieldValidationError("некорректный файл", map[string]string{"photo": err.Error()})
		}
		s.logger.Error("ошибка загрузки фото", zap.String("caregiverId", caregiver.ID.String()), zap.Error(err))
		return nil, apperrors.NewInternalError("ошибка загрузки фото", err)
	}

	if err := s.repo.UpdatePhoto(ctx, caregiver.ID, photoURL); err != nil {
		s.logger.Error("ошибка сохранения фото", zap.String("caregiverId", caregiver.ID.String()), zap.Error(err))
		s.deletePhotoFile(ctx, photoURL)
		return nil, err
	}

	if caregiver.PhotoURL != "" {
		s.deletePhotoFile(ctx, caregiver.PhotoURL)
	}

	s.wakeMirror(ctx)

	caregiver.PhotoURL = photoURL
	return caregiver, nil
}

func (s *CaregiverServiceImpl) DeletePhoto(ctx context.Context, actor domain.Actor) error {
	caregiver, err := s.repo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return err
	}

	if caregiver.PhotoURL == "" {
		return nil
	}

	if err := s.repo.UpdatePhoto(ctx, caregiver.ID, ""); err != nil {
		s.logger.Error("ошибка удаления фото", zap.String("caregiverId", caregiver.ID.String()), zap.Error(err))
		return err
	}

	s.deletePhotoFile(ctx, caregiver.PhotoURL)
	s.wakeMirror(ctx)

	return nil
}

func (s *CaregiverServiceImpl) Reindex(ctx context.Context) (int64, error) {
	n, err := s.outboxRepo.EnqueueAll(ctx)
	if err != nil {
		s.logger.Error("ошибка постановки сиделок в очередь индексации", zap.Error(err))
		return 0, err
	}

	s.logger.Info("сиделки поставлены в очередь индексации", zap.Int64("count", n))
	s.wakeMirror(ctx)

	return n, nil
}

func (s *CaregiverServiceImpl) deletePhotoFile(ctx context.Context, photoURL string) {
	if s.fileStorage == nil {
		return
	}
	if err := s.fileStorage.DeleteFile(ctx, photoURL); err != nil {
		s.logger.Warn("ошибка удаления файла фото", zap.String("url", photoURL), zap.Error(err))
	}
}

// wakeMirror будит воркеры индексации. Запись уже в очереди, поэтому ошибка не возвращается.
func (s *CaregiverServiceImpl) wakeMirror(ctx context.Context) {
	if err := s.notifier.Notify(ctx); err != nil {
		s.logger.Warn("ошибка уведомления воркеров индексации", zap.Error(err))
	}
}

func joinIDs(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ", ")
}
