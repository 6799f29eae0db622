package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"twocare/internal/domain"
	"twocare/internal/repository"
	apperrors "twocare/pkg/errors"
)

type CarereceiverServiceImpl struct {
	repo   repository.CarereceiverRepository
	logger *zap.Logger
}

func NewCarereceiverService(repo repository.CarereceiverRepository, logger *zap.Logger) *CarereceiverServiceImpl {
	return &CarereceiverServiceImpl{
		repo:   repo,
		logger: logger,
	}
}

func (s *CarereceiverServiceImpl) Upsert(ctx context.Context, actor domain.Actor, dto domain.UpsertCarereceiverDTO, mode domain.UpsertMode) (*domain.Carereceiver, bool, error) {
	if actor.Role != domain.UserRoleCarereceiver {
		return nil, false, apperrors.NewValidationError("пользователь не является получателем ухода")
	}

	rec, created, err := s.repo.Upsert(ctx, actor.UserID, func(existing *domain.CarereceiverRecord) (domain.CarereceiverRecord, error) {
		if existing == nil {
			if mode != domain.UpsertCreate {
				return domain.CarereceiverRecord{}, apperrors.NewNotFoundError("профиль получателя ухода не найден")
			}
			return domain.CarereceiverRecord{UserID: actor.UserID}.Apply(dto, mode), nil
		}
		return existing.Apply(dto, mode), nil
	})
	if err != nil {
		if !apperrors.IsNotFound(err) {
			s.logger.Error("ошибка сохранения профиля получателя ухода", zap.String("userId", actor.UserID.String()), zap.Error(err))
		}
		return nil, false, err
	}

	carereceiver, err := s.repo.GetByID(ctx, rec.ID)
	if err != nil {
		return nil, false, err
	}

	return carereceiver, created, nil
}

func (s *CarereceiverServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.Carereceiver, error) {
	return s.repo.GetByID(ctx, id)
}
