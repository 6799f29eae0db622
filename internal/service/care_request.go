package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"twocare/internal/domain"
	"twocare/internal/repository"
	apperrors "twocare/pkg/errors"
)

type CareRequestServiceImpl struct {
	repo             repository.CareRequestRepository
	caregiverRepo    repository.CaregiverRepository
	carereceiverRepo repository.CarereceiverRepository
	logger           *zap.Logger
	now              func() time.Time
}

func NewCareRequestService(repo repository.CareRequestRepository, caregiverRepo repository.CaregiverRepository, carereceiverRepo repository.CarereceiverRepository, logger *zap.Logger) *CareRequestServiceImpl {
	return &CareRequestServiceImpl{
		repo:             repo,
		caregiverRepo:    caregiverRepo,
		carereceiverRepo: carereceiverRepo,
		logger:           logger,
		now:              time.Now,
	}
}

func (s *CareRequestServiceImpl) Create(ctx context.Context, actor domain.Actor, dto domain.CreateCareRequestDTO) (*domain.CareRequest, error) {
	if actor.Role != domain.UserRoleCarereceiver {
		return nil, apperrors.NewForbiddenError("создавать заявки может только получатель ухода")
	}

	carereceiver, err := s.carereceiverRepo.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	caregiver, err := s.caregiverRepo.GetByID(ctx, dto.CaregiverID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	req := domain.CareRequest{
		ID:                 uuid.New(),
		CaregiverID:        caregiver.ID,
		CarereceiverID:     carereceiver.ID,
		Date:               dto.Date,
		Message:            dto.Message,
		Status:             domain.CareRequestStatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
		CaregiverUserID:    caregiver.UserID,
		CarereceiverUserID: carereceiver.UserID,
	}

	if err := s.repo.Create(ctx, req); err != nil {
		s.logger.Error("ошибка создания заявки",
			zap.String("caregiverId", caregiver.ID.String()),
			zap.String("carereceiverId", carereceiver.ID.String()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("создана заявка", zap.String("id", req.ID.String()), zap.String("caregiverId", caregiver.ID.String()))

	return &req, nil
}

func (s *CareRequestServiceImpl) GetByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.CareRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() && !req.IsParty(actor.UserID) {
		return nil, apperrors.NewForbiddenError("нет доступа к заявке")
	}

	return req, nil
}

func (s *CareRequestServiceImpl) List(ctx context.Context, actor domain.Actor, status *domain.CareRequestStatus, limit, offset int) ([]domain.CareRequest, int, error) {
	filter := domain.CareRequestFilter{
		Status: status,
		Limit:  limit,
		Offset: offset,
	}

	if !actor.IsAdmin() {
		if caregiver, err := s.caregiverRepo.GetByUserID(ctx, actor.UserID); err == nil {
			filter.CaregiverID = &caregiver.ID
		} else if !apperrors.IsNotFound(err) {
			return nil, 0, err
		}

		if carereceiver, err := s.carereceiverRepo.GetByUserID(ctx, actor.UserID); err == nil {
			filter.CarereceiverID = &carereceiver.ID
		} else if !apperrors.IsNotFound(err) {
			return nil, 0, err
		}

		if filter.CaregiverID == nil && filter.CarereceiverID == nil {
			return []domain.CareRequest{}, 0, nil
		}
	}

	return s.repo.List(ctx, filter)
}

func (s *CareRequestServiceImpl) Accept(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.CareRequest, error) {
	return s.transition(ctx, actor, id, (*domain.CareRequest).Accept)
}

func (s *CareRequestServiceImpl) Decline(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.CareRequest, error) {
	return s.transition(ctx, actor, id, (*domain.CareRequest).Decline)
}

// transition меняет статус заявки. Решение по заявке принимает только сиделка-сторона или администратор.
func (s *CareRequestServiceImpl) transition(ctx context.Context, actor domain.Actor, id uuid.UUID, apply func(*domain.CareRequest)) (*domain.CareRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() && req.CaregiverUserID != actor.UserID {
		s.logger.Warn("попытка изменить чужую заявку", zap.String("id", id.String()), zap.String("userId", actor.UserID.String()))
		return nil, apperrors.NewForbiddenError("изменить статус заявки может только сиделка")
	}

	apply(req)

	if err := s.repo.UpdateStatus(ctx, req.ID, req.Status); err != nil {
		if !apperrors.IsNotFound(err) {
			s.logger.Error("ошибка обновления статуса заявки", zap.String("id", id.String()), zap.Error(err))
		}
		return nil, err
	}

	req.UpdatedAt = s.now()

	s.logger.Info("статус заявки изменен", zap.String("id", id.String()), zap.String("status", req.Status.String()))

	return req, nil
}
