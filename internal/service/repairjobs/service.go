package repairjobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
	repairJobRepo "github.com/m04kA/SMC-RepairSlotService/internal/infra/storage/repairjob"
	"github.com/m04kA/SMC-RepairSlotService/internal/service/repairjobs/models"
)

// Service сервис для чтения заявок на ремонт
type Service struct {
	repairJobRepo RepairJobRepository
	loc           *time.Location
	logger        Logger
}

// NewService создает новый экземпляр сервиса заявок
func NewService(
	repairJobRepo RepairJobRepository,
	loc *time.Location,
	logger Logger,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repairJobRepo: repairJobRepo,
		loc:           loc,
		logger:        logger,
	}
}

// GetByID получает заявку по ID
// Клиент видит только свою заявку, администратор мастерской видит любую
func (s *Service) GetByID(ctx context.Context, id uuid.UUID, actorID string, privileged bool) (*models.RepairJobResponse, error) {
	s.logger.Info("GetByID: fetching repair job id=%s for actor=%s", id, actorID)

	job, err := s.repairJobRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repairJobRepo.ErrRepairJobNotFound) {
			s.logger.Warn("GetByID: repair job id=%s not found", id)
			return nil, ErrRepairJobNotFound
		}
		s.logger.Error("GetByID: repository error for repair job id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %w", ErrInternal, err)
	}

	if !privileged && !job.IsOwnedBy(actorID) {
		s.logger.Warn("GetByID: access denied for actor=%s to repair job id=%s", actorID, id)
		return nil, ErrAccessDenied
	}

	s.logger.Info("GetByID: successfully fetched repair job id=%s", id)
	return models.FromDomainRepairJob(job), nil
}

// ListByCustomer получает историю заявок клиента
// Опционально фильтрует по статусу
func (s *Service) ListByCustomer(ctx context.Context, req *models.ListByCustomerRequest) (*models.RepairJobListResponse, error) {
	s.logger.Info("ListByCustomer: fetching repair jobs for customer=%s, status=%v", req.CustomerID, req.Status)

	if req.CustomerID == "" {
		return nil, fmt.Errorf("%w: customerId is required", ErrInvalidInput)
	}

	var domainStatus *domain.RepairJobStatus
	if req.Status != nil {
		status, err := models.ToDomainRepairJobStatus(*req.Status)
		if err != nil {
			s.logger.Warn("ListByCustomer: invalid status=%s for customer=%s", *req.Status, req.CustomerID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	jobs, err := s.repairJobRepo.ListByCustomer(ctx, req.CustomerID, domainStatus)
	if err != nil {
		s.logger.Error("ListByCustomer: repository error for customer=%s: %v", req.CustomerID, err)
		return nil, fmt.Errorf("%w: ListByCustomer - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("ListByCustomer: successfully fetched %d repair jobs for customer=%s", len(jobs), req.CustomerID)
	return models.FromDomainRepairJobList(jobs), nil
}

// ListBySlot получает заявки, занимающие места в слоте
// Доступно только администраторам мастерской
func (s *Service) ListBySlot(ctx context.Context, req *models.ListBySlotRequest) (*models.RepairJobListResponse, error) {
	s.logger.Info("ListBySlot: fetching repair jobs for slot=%s, includeInactive=%t", req.SlotID, req.IncludeInactive)

	if !req.Privileged {
		s.logger.Warn("ListBySlot: access denied for slot=%s", req.SlotID)
		return nil, ErrAccessDenied
	}

	slotID, _, err := domain.ParseSlotID(req.SlotID, s.loc)
	if err != nil {
		s.logger.Warn("ListBySlot: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	jobs, err := s.repairJobRepo.ListBySlot(ctx, slotID, req.IncludeInactive)
	if err != nil {
		s.logger.Error("ListBySlot: repository error for slot=%s: %v", slotID, err)
		return nil, fmt.Errorf("%w: ListBySlot - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("ListBySlot: successfully fetched %d repair jobs for slot=%s", len(jobs), slotID)
	return models.FromDomainRepairJobList(jobs), nil
}

// UpdateStatus переводит заявку на следующий шаг работы мастерской (pending -> confirmed -> in_progress -> completed)
// Доступно только администраторам мастерской. Занятость слота не меняется: отмена идет через release_slot.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req *models.UpdateStatusRequest) (*models.RepairJobResponse, error) {
	s.logger.Info("UpdateStatus: updating repair job id=%s to status=%s", id, req.Status)

	// Проверяем права доступа (только администратор)
	if !req.Privileged {
		s.logger.Warn("UpdateStatus: access denied for repair job id=%s", id)
		return nil, ErrAccessDenied
	}

	// Валидируем и конвертируем статус
	newStatus, err := models.ToDomainRepairJobStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for repair job id=%s", req.Status, id)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	// Получаем заявку
	job, err := s.repairJobRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repairJobRepo.ErrRepairJobNotFound) {
			s.logger.Warn("UpdateStatus: repair job id=%s not found", id)
			return nil, ErrRepairJobNotFound
		}
		s.logger.Error("UpdateStatus: repository error for repair job id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: UpdateStatus - repository error: %w", ErrInternal, err)
	}

	// Проверяем переход
	if !job.CanTransitionTo(newStatus) {
		s.logger.Warn("UpdateStatus: repair job id=%s cannot move from %s to %s", id, job.Status, newStatus)
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, job.Status, newStatus)
	}

	// Условное обновление: статус должен остаться тем, что мы прочитали
	if err := s.repairJobRepo.UpdateStatus(ctx, id, job.Status, newStatus); err != nil {
		if errors.Is(err, repairJobRepo.ErrRepairJobNotFound) {
			s.logger.Warn("UpdateStatus: repair job id=%s changed concurrently, expected status=%s", id, job.Status)
			return nil, fmt.Errorf("%w: status changed concurrently", ErrInvalidTransition)
		}
		s.logger.Error("UpdateStatus: repository error for repair job id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: UpdateStatus - repository error: %w", ErrInternal, err)
	}

	job.Status = newStatus
	s.logger.Info("UpdateStatus: successfully updated repair job id=%s to status=%s", id, newStatus)
	return models.FromDomainRepairJob(job), nil
}
