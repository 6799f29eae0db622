package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"twocare/internal/domain"
	"twocare/internal/repository"
	apperrors "twocare/pkg/errors"
)

func requireCapability(actor domain.Actor, capability domain.Capability) error {
	if !actor.Role.Can(capability) {
		return apperrors.NewForbiddenError("недостаточно прав для изменения справочника")
	}
	return nil
}

type QualificationServiceImpl struct {
	repo   repository.QualificationRepository
	logger *zap.Logger
}

func NewQualificationService(repo repository.QualificationRepository, logger *zap.Logger) *QualificationServiceImpl {
	return &QualificationServiceImpl{
		repo:   repo,
		logger: logger,
	}
}

func (s *QualificationServiceImpl) Create(ctx context.Context, actor domain.Actor, dto domain.CreateReferenceDTO) (*domain.Qualification, error) {
	if err := requireCapability(actor, domain.CapabilityReferenceCreate); err != nil {
		return nil, err
	}

	q, err := s.repo.Create(ctx, dto)
	if err != nil {
		s.logger.Error("ошибка создания квалификации", zap.String("name", dto.Name), zap.Error(err))
		return nil, err
	}

	return q, nil
}

func (s *QualificationServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.Qualification, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *QualificationServiceImpl) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, dto domain.UpdateReferenceDTO) (*domain.Qualification, error) {
	if err := requireCapability(actor, domain.CapabilityReferenceEdit); err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, id, dto)
}

func (s *QualificationServiceImpl) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	if err := requireCapability(actor, domain.CapabilityReferenceEdit); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("удалена квалификация", zap.String("id", id.String()), zap.String("userId", actor.UserID.String()))
	return nil
}

func (s *QualificationServiceImpl) List(ctx context.Context, filter domain.ReferenceFilter) ([]domain.Qualification, int, error) {
	return s.repo.List(ctx, filter)
}

type SpecializationServiceImpl struct {
	repo   repository.SpecializationRepository
	logger *zap.Logger
}

func NewSpecializationService(repo repository.SpecializationRepository, logger *zap.Logger) *SpecializationServiceImpl {
	return &SpecializationServiceImpl{
		repo:   repo,
		logger: logger,
	}
}

func (s *SpecializationServiceImpl) Create(ctx context.Context, actor domain.Actor, dto domain.CreateReferenceDTO) (*domain.Specialization, error) {
	if err := requireCapability(actor, domain.CapabilityReferenceCreate); err != nil {
		return nil, err
	}

	sp, err := s.repo.Create(ctx, dto)
	if err != nil {
		s.logger.Error("ошибка создания специализации", zap.String("name", dto.Name), zap.Error(err))
		return nil, err
	}

	return sp, nil
}

func (s *SpecializationServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.Specialization, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *SpecializationServiceImpl) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, dto domain.UpdateReferenceDTO) (*domain.Specialization, error) {
	if err := requireCapability(actor, domain.CapabilityReferenceEdit); err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, id, dto)
}

func (s *SpecializationServiceImpl) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	if err := requireCapability(actor, domain.CapabilityReferenceEdit); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("удалена специализация", zap.String("id", id.String()), zap.String("userId", actor.UserID.String()))
	return nil
}

func (s *SpecializationServiceImpl) List(ctx context.Context, filter domain.ReferenceFilter) ([]domain.Specialization, int, error) {
	return s.repo.List(ctx, filter)
}
