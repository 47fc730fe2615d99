package reserve_slot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
	slotRepo "github.com/m04kA/SMC-RepairSlotService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-RepairSlotService/pkg/metrics"
	"github.com/m04kA/SMC-RepairSlotService/pkg/txmanager"
	"github.com/m04kA/SMC-RepairSlotService/pkg/types"
)

// UseCase use case для атомарного бронирования места в слоте
type UseCase struct {
	slotRepo         SlotRepository
	repairJobRepo    RepairJobRepository
	scheduleResolver ScheduleResolver
	txManager        TransactionManager
	publisher        EventPublisher
	metrics          Metrics
	loc              *time.Location
	timeProvider     TimeProvider
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	repairJobRepo RepairJobRepository,
	scheduleResolver ScheduleResolver,
	txManager TransactionManager,
	publisher EventPublisher,
	metrics Metrics,
	loc *time.Location,
	logger Logger,
) *UseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &UseCase{
		slotRepo:         slotRepo,
		repairJobRepo:    repairJobRepo,
		scheduleResolver: scheduleResolver,
		txManager:        txManager,
		publisher:        publisher,
		metrics:          metrics,
		loc:              loc,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// Execute выполняет use case бронирования
// Увеличение занятости слота и создание заявки выполняются в одной сериализуемой транзакции:
// либо применяются оба изменения, либо ни одного
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ReserveSlot: slot=%s, customer=%s, capacityDefault=%d",
		req.SlotID, req.Job.CustomerID, req.CapacityDefault)

	resp, err := uc.execute(ctx, req)
	uc.metrics.ObserveReservation(outcomeOf(err))
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, resp)
	return resp, nil
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Разбираем ID слота
	slotID, ts, err := domain.ParseSlotID(req.SlotID, uc.loc)
	if err != nil {
		uc.logger.Warn("ReserveSlot: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidSlot, err)
	}

	// 2. Прошедший слот забронировать нельзя
	now := uc.timeProvider.Now()
	if ts.Before(now) {
		uc.logger.Warn("ReserveSlot: slot=%s is in the past (now=%s)", slotID, now.In(uc.loc).Format(domain.SlotIDFormat))
		return nil, fmt.Errorf("%w: slot %s is in the past", ErrInvalidSlot, slotID)
	}

	// 3. Валидация данных заявки
	if err := validateJob(&req.Job); err != nil {
		uc.logger.Warn("ReserveSlot: validation failed: %v", err)
		return nil, err
	}
	if req.CapacityDefault > domain.MaxCapacity {
		return nil, fmt.Errorf("%w: capacityDefault must not exceed %d", ErrInvalidInput, domain.MaxCapacity)
	}

	// 4. Слот должен лежать на сетке рабочего расписания
	schedule, err := uc.scheduleResolver.Resolve(ctx, ts)
	if err != nil {
		if txmanager.IsUnavailable(err) {
			uc.logger.Warn("ReserveSlot: store is unavailable while resolving schedule: %v", err)
			return nil, fmt.Errorf("%w: failed to resolve schedule: %v", ErrTransientStore, err)
		}
		uc.logger.Error("ReserveSlot: failed to resolve schedule: %v", err)
		return nil, fmt.Errorf("%w: failed to resolve schedule: %v", ErrInternal, err)
	}
	if !schedule.Contains(types.TimeString(slotID.TimeLabel())) {
		uc.logger.Warn("ReserveSlot: slot=%s is outside schedule %s (%s-%s every %d min, closed=%t)",
			slotID, schedule.Key, schedule.OpenTime, schedule.CloseTime, schedule.IntervalMinutes, schedule.IsClosed)
		return nil, fmt.Errorf("%w: slot %s is outside working hours", ErrInvalidSlot, slotID)
	}

	capacityDefault := req.CapacityDefault
	if capacityDefault <= 0 {
		capacityDefault = schedule.Capacity
	}

	var (
		slot *domain.Slot
		job  *domain.RepairJob
	)

	// 5. Выполняем изменения в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 5.1. Читаем слот с блокировкой, отсутствующий слот создается лениво
		current, err := uc.slotRepo.GetForUpdate(txCtx, slotID)
		switch {
		case errors.Is(err, slotRepo.ErrSlotNotFound):
			current = domain.NewEmptySlot(slotID, ts, capacityDefault)
		case err != nil:
			return fmt.Errorf("%w: failed to get slot: %w", ErrInternal, err)
		}

		// 5.2. Проверяем, что место есть
		if current.Booked+1 > current.Capacity {
			uc.logger.Warn("ReserveSlot: slot=%s is full, %d/%d", slotID, current.Booked, current.Capacity)
			return ErrSlotFull
		}

		// 5.3. Увеличиваем занятость
		current.Booked++
		saved, err := uc.slotRepo.Upsert(txCtx, current)
		if err != nil {
			return fmt.Errorf("%w: failed to save slot: %w", ErrInternal, err)
		}

		// 5.4. Создаем заявку, ссылающуюся на слот
		created, err := uc.repairJobRepo.Create(txCtx, &domain.RepairJob{
			ID:               uuid.New(),
			CustomerID:       req.Job.CustomerID,
			PreferredSlot:    slotID,
			Status:           domain.StatusPending,
			DeviceType:       req.Job.DeviceType,
			DeviceBrand:      req.Job.DeviceBrand,
			DeviceModel:      req.Job.DeviceModel,
			IssueDescription: req.Job.IssueDescription,
			ContactPhone:     req.Job.ContactPhone,
			Notes:            req.Job.Notes,
		})
		if err != nil {
			return fmt.Errorf("%w: failed to create repair job: %w", ErrInternal, err)
		}

		slot = saved
		job = created
		return nil
	})

	if err != nil {
		return nil, uc.translateTxError(slotID, err)
	}

	uc.logger.Info("ReserveSlot: successfully reserved slot=%s (%d/%d), repair job id=%s",
		slotID, slot.Booked, slot.Capacity, job.ID)

	return &Response{
		SlotID:      slotID,
		RepairJobID: job.ID,
		Booked:      slot.Booked,
		Capacity:    slot.Capacity,
		Job:         job,
	}, nil
}

// translateTxError приводит ошибку транзакции к ошибкам use case
func (uc *UseCase) translateTxError(slotID domain.SlotID, err error) error {
	switch {
	case errors.Is(err, ErrSlotFull):
		return ErrSlotFull
	case errors.Is(err, txmanager.ErrTransient):
		uc.logger.Warn("ReserveSlot: transient store failure for slot=%s: %v", slotID, err)
		return fmt.Errorf("%w: %v", ErrTransientStore, err)
	case errors.Is(err, ErrInternal):
		uc.logger.Error("ReserveSlot: slot=%s: %v", slotID, err)
		return err
	default:
		uc.logger.Error("ReserveSlot: transaction failed for slot=%s: %v", slotID, err)
		return fmt.Errorf("%w: transaction failed: %v", ErrInternal, err)
	}
}

// publish отправляет событие о новой заявке. Ошибка не отменяет бронирование.
func (uc *UseCase) publish(ctx context.Context, resp *Response) {
	event := domain.RepairJobEvent{
		Type:        domain.EventRepairJobCreated,
		RepairJobID: resp.RepairJobID,
		CustomerID:  resp.Job.CustomerID,
		SlotID:      resp.SlotID,
		Status:      resp.Job.Status,
		Booked:      resp.Booked,
		Capacity:    resp.Capacity,
		OccurredAt:  uc.timeProvider.Now(),
	}
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Warn("ReserveSlot: failed to publish %s for repair job id=%s: %v", event.Type, event.RepairJobID, err)
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, ErrSlotFull):
		return metrics.OutcomeSlotFull
	case errors.Is(err, ErrInvalidSlot):
		return metrics.OutcomeInvalidSlot
	case errors.Is(err, ErrInvalidInput):
		return metrics.OutcomeRejected
	case errors.Is(err, ErrTransientStore):
		return metrics.OutcomeTransient
	default:
		return metrics.OutcomeError
	}
}
