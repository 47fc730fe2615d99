package release_slot

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
	repairJobRepo "github.com/m04kA/SMC-RepairSlotService/internal/infra/storage/repairjob"
	slotRepo "github.com/m04kA/SMC-RepairSlotService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-RepairSlotService/pkg/metrics"
	"github.com/m04kA/SMC-RepairSlotService/pkg/txmanager"
)

// UseCase use case для отмены заявки с освобождением места в слоте
type UseCase struct {
	slotRepo      SlotRepository
	repairJobRepo RepairJobRepository
	txManager     TransactionManager
	publisher     EventPublisher
	metrics       Metrics
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	repairJobRepo RepairJobRepository,
	txManager TransactionManager,
	publisher EventPublisher,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		slotRepo:      slotRepo,
		repairJobRepo: repairJobRepo,
		txManager:     txManager,
		publisher:     publisher,
		metrics:       metrics,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// Execute выполняет use case отмены
// Уменьшение занятости слота и смена статуса заявки выполняются в одной сериализуемой транзакции
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ReleaseSlot: repair job id=%s, actor=%s, privileged=%t", req.RepairJobID, req.ActorID, req.Privileged)

	resp, err := uc.execute(ctx, req)
	uc.metrics.ObserveRelease(outcomeOf(err))
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, resp)
	return resp, nil
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if req.RepairJobID == uuid.Nil {
		return nil, fmt.Errorf("%w: repairJobId is required", ErrInvalidInput)
	}
	if req.Reason != nil && utf8.RuneCountInString(*req.Reason) > domain.MaxCancellationReasonLength {
		return nil, fmt.Errorf("%w: reason is longer than %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	// 2. Статус отмены зависит от того, кто отменяет
	cancelStatus := domain.StatusCancelledByCustomer
	if req.Privileged {
		cancelStatus = domain.StatusCancelledByShop
	}

	now := uc.timeProvider.Now()
	var resp *Response

	// 3. Выполняем изменения в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 3.1. Читаем заявку с блокировкой
		job, err := uc.repairJobRepo.GetForUpdate(txCtx, req.RepairJobID)
		if err != nil {
			if errors.Is(err, repairJobRepo.ErrRepairJobNotFound) {
				return ErrRepairJobNotFound
			}
			return fmt.Errorf("%w: failed to get repair job: %w", ErrInternal, err)
		}

		// 3.2. Проверяем права доступа
		if !req.Privileged && !job.IsOwnedBy(req.ActorID) {
			return ErrAccessDenied
		}

		// 3.3. Проверяем, можно ли отменить заявку
		if !job.CanBeCancelled() {
			return fmt.Errorf("%w: status is %s", ErrCannotCancel, job.Status)
		}

		// 3.4. Читаем слот заявки с блокировкой
		slot, err := uc.slotRepo.GetForUpdate(txCtx, job.PreferredSlot)
		if err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				return fmt.Errorf("%w: slot %s does not exist", ErrInconsistentSlot, job.PreferredSlot)
			}
			return fmt.Errorf("%w: failed to get slot: %w", ErrInternal, err)
		}

		// Без брони уменьшать нечего
		if !slot.CanRelease() {
			return fmt.Errorf("%w: slot %s has booked=%d", ErrInconsistentSlot, slot.ID, slot.Booked)
		}

		// 3.5. Освобождаем место
		slot.Booked--
		saved, err := uc.slotRepo.Upsert(txCtx, slot)
		if err != nil {
			return fmt.Errorf("%w: failed to save slot: %w", ErrInternal, err)
		}

		// 3.6. Отменяем заявку
		if err := uc.repairJobRepo.Cancel(txCtx, job.ID, cancelStatus, req.Reason, now); err != nil {
			return fmt.Errorf("%w: failed to cancel repair job: %w", ErrInternal, err)
		}

		resp = &Response{
			RepairJobID: job.ID,
			CustomerID:  job.CustomerID,
			SlotID:      saved.ID,
			Status:      cancelStatus,
			Booked:      saved.Booked,
			Capacity:    saved.Capacity,
			CancelledAt: now,
		}
		return nil
	})

	if err != nil {
		return nil, uc.translateTxError(req.RepairJobID, err)
	}

	uc.logger.Info("ReleaseSlot: successfully cancelled repair job id=%s with status=%s, slot=%s now %d/%d",
		resp.RepairJobID, resp.Status, resp.SlotID, resp.Booked, resp.Capacity)
	return resp, nil
}

// translateTxError приводит ошибку транзакции к ошибкам use case
func (uc *UseCase) translateTxError(id uuid.UUID, err error) error {
	switch {
	case errors.Is(err, ErrRepairJobNotFound):
		uc.logger.Warn("ReleaseSlot: repair job id=%s not found", id)
		return err
	case errors.Is(err, ErrAccessDenied), errors.Is(err, ErrCannotCancel):
		uc.logger.Warn("ReleaseSlot: repair job id=%s: %v", id, err)
		return err
	case errors.Is(err, ErrInconsistentSlot):
		uc.logger.Error("ReleaseSlot: repair job id=%s: %v", id, err)
		return err
	case errors.Is(err, txmanager.ErrTransient):
		uc.logger.Warn("ReleaseSlot: transient store failure for repair job id=%s: %v", id, err)
		return fmt.Errorf("%w: %v", ErrTransientStore, err)
	case errors.Is(err, ErrInternal):
		uc.logger.Error("ReleaseSlot: repair job id=%s: %v", id, err)
		return err
	default:
		uc.logger.Error("ReleaseSlot: transaction failed for repair job id=%s: %v", id, err)
		return fmt.Errorf("%w: transaction failed: %v", ErrInternal, err)
	}
}

// publish отправляет событие об отмене. Ошибка не откатывает отмену.
func (uc *UseCase) publish(ctx context.Context, resp *Response) {
	event := domain.RepairJobEvent{
		Type:        domain.EventRepairJobCancelled,
		RepairJobID: resp.RepairJobID,
		CustomerID:  resp.CustomerID,
		SlotID:      resp.SlotID,
		Status:      resp.Status,
		Booked:      resp.Booked,
		Capacity:    resp.Capacity,
		OccurredAt:  resp.CancelledAt,
	}
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Warn("ReleaseSlot: failed to publish %s for repair job id=%s: %v", event.Type, event.RepairJobID, err)
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, ErrRepairJobNotFound), errors.Is(err, ErrAccessDenied),
		errors.Is(err, ErrCannotCancel), errors.Is(err, ErrInvalidInput):
		return metrics.OutcomeRejected
	case errors.Is(err, ErrTransientStore):
		return metrics.OutcomeTransient
	default:
		return metrics.OutcomeError
	}
}
