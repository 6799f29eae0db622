package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"twocare/internal/domain"
	"twocare/internal/mirror"
	"twocare/internal/repository"
	apperrors "twocare/pkg/errors"
)

type RatingServiceImpl struct {
	repo             repository.RatingRepository
	caregiverRepo    repository.CaregiverRepository
	carereceiverRepo repository.CarereceiverRepository
	notifier         mirror.Notifier
	logger           *zap.Logger
}

func NewRatingService(repo repository.RatingRepository, caregiverRepo repository.CaregiverRepository, carereceiverRepo repository.CarereceiverRepository, notifier mirror.Notifier, logger *zap.Logger) *RatingServiceImpl {
	return &RatingServiceImpl{
		repo:             repo,
		caregiverRepo:    caregiverRepo,
		carereceiverRepo: carereceiverRepo,
		notifier:         notifier,
		logger:           logger,
	}
}

// pair находит профили сторон: caregiverUserID - идентификатор пользователя сиделки.
func (s *RatingServiceImpl) pair(ctx context.Context, actor domain.Actor, caregiverUserID uuid.UUID) (*domain.Caregiver, *domain.Carereceiver, error) {
	caregiver, err := s.caregiverRepo.GetByUserID(ctx, caregiverUserID)
	if err != nil {
		return nil, nil, err
	}

	carereceiver, err := s.carereceiverRepo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, nil, err
	}

	return caregiver, carereceiver, nil
}

func (s *RatingServiceImpl) CanRate(ctx context.Context, actor domain.Actor, caregiverID *uuid.UUID) (bool, error) {
	if caregiverID == nil {
		return false, nil
	}

	caregiver, carereceiver, err := s.pair(ctx, actor, *caregiverID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	accepted, rated, err := s.repo.CountEligibility(ctx, caregiver.ID, carereceiver.ID)
	if err != nil {
		s.logger.Error("ошибка проверки права на оценку",
			zap.String("caregiverId", caregiver.ID.String()),
			zap.String("carereceiverId", carereceiver.ID.String()),
			zap.Error(err))
		return false, err
	}

	return domain.CanRate(accepted, rated), nil
}

func (s *RatingServiceImpl) Create(ctx context.Context, actor domain.Actor, dto domain.CreateRatingDTO) (*domain.Rating, error) {
	if dto.CaregiverID == nil {
		return nil, apperrors.NewNotFoundError("сиделка не определена")
	}

	caregiver, carereceiver, err := s.pair(ctx, actor, *dto.CaregiverID)
	if err != nil {
		return nil, err
	}

	rating, err := s.repo.CreateForOldestUnrated(ctx, caregiver.ID, carereceiver.ID, dto.Score, dto.Comment)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			s.logger.Error("ошибка создания оценки",
				zap.String("caregiverId", caregiver.ID.String()),
				zap.String("carereceiverId", carereceiver.ID.String()),
				zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("создана оценка", zap.String("id", rating.ID.String()), zap.String("careRequestId", rating.CareRequestID.String()))

	if err := s.notifier.Notify(ctx); err != nil {
		s.logger.Warn("ошибка уведомления воркеров индексации", zap.Error(err))
	}

	return rating, nil
}

func (s *RatingServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.Rating, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *RatingServiceImpl) ListMine(ctx context.Context, actor domain.Actor, limit, offset int) ([]domain.Rating, int, error) {
	caregiver, err := s.caregiverRepo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, 0, err
	}

	return s.repo.ListByCaregiver(ctx, domain.RatingFilter{
		CaregiverID: caregiver.ID,
		Limit:       limit,
		Offset:      offset,
	})
}
