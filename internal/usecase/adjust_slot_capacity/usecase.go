package adjust_slot_capacity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
	slotRepo "github.com/m04kA/SMC-RepairSlotService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-RepairSlotService/pkg/txmanager"
	"github.com/m04kA/SMC-RepairSlotService/pkg/types"
)

// UseCase use case для изменения емкости слота администратором
type UseCase struct {
	slotRepo         SlotRepository
	scheduleResolver ScheduleResolver
	txManager        TransactionManager
	loc              *time.Location
	timeProvider     TimeProvider
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	scheduleResolver ScheduleResolver,
	txManager TransactionManager,
	loc *time.Location,
	logger Logger,
) *UseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &UseCase{
		slotRepo:         slotRepo,
		scheduleResolver: scheduleResolver,
		txManager:        txManager,
		loc:              loc,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// Execute выполняет use case изменения емкости
// Пишет слот через ту же сериализуемую транзакцию, что и бронирование
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("AdjustSlotCapacity: slot=%s, capacity=%d", req.SlotID, req.Capacity)

	// 1. Проверяем права доступа
	if !req.Privileged {
		uc.logger.Warn("AdjustSlotCapacity: access denied for slot=%s", req.SlotID)
		return nil, ErrAccessDenied
	}

	// 2. Валидация емкости
	if req.Capacity < domain.MinCapacity || req.Capacity > domain.MaxCapacity {
		return nil, fmt.Errorf("%w: capacity must be between %d and %d", ErrInvalidInput, domain.MinCapacity, domain.MaxCapacity)
	}

	// 3. Разбираем ID слота и проверяем, что он в будущем
	slotID, ts, err := domain.ParseSlotID(req.SlotID, uc.loc)
	if err != nil {
		uc.logger.Warn("AdjustSlotCapacity: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidSlot, err)
	}
	if ts.Before(uc.timeProvider.Now()) {
		uc.logger.Warn("AdjustSlotCapacity: slot=%s is in the past", slotID)
		return nil, fmt.Errorf("%w: slot %s is in the past", ErrInvalidSlot, slotID)
	}

	// 4. Слот должен лежать на сетке рабочего расписания
	schedule, err := uc.scheduleResolver.Resolve(ctx, ts)
	if err != nil {
		if txmanager.IsUnavailable(err) {
			uc.logger.Warn("AdjustSlotCapacity: store is unavailable while resolving schedule: %v", err)
			return nil, fmt.Errorf("%w: failed to resolve schedule: %v", ErrTransientStore, err)
		}
		uc.logger.Error("AdjustSlotCapacity: failed to resolve schedule: %v", err)
		return nil, fmt.Errorf("%w: failed to resolve schedule: %v", ErrInternal, err)
	}
	if !schedule.Contains(types.TimeString(slotID.TimeLabel())) {
		uc.logger.Warn("AdjustSlotCapacity: slot=%s is outside schedule %s", slotID, schedule.Key)
		return nil, fmt.Errorf("%w: slot %s is outside working hours", ErrInvalidSlot, slotID)
	}

	var saved *domain.Slot

	// 5. Меняем емкость в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		slot, err := uc.slotRepo.GetForUpdate(txCtx, slotID)
		switch {
		case errors.Is(err, slotRepo.ErrSlotNotFound):
			slot = domain.NewEmptySlot(slotID, ts, req.Capacity)
		case err != nil:
			return fmt.Errorf("%w: failed to get slot: %w", ErrInternal, err)
		}

		if req.Capacity < slot.Booked {
			return fmt.Errorf("%w: %d seats are booked, requested capacity %d", ErrCapacityBelowBooked, slot.Booked, req.Capacity)
		}

		slot.Capacity = req.Capacity
		saved, err = uc.slotRepo.Upsert(txCtx, slot)
		if err != nil {
			return fmt.Errorf("%w: failed to save slot: %w", ErrInternal, err)
		}
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, ErrCapacityBelowBooked):
			uc.logger.Warn("AdjustSlotCapacity: slot=%s: %v", slotID, err)
			return nil, err
		case errors.Is(err, txmanager.ErrTransient):
			uc.logger.Warn("AdjustSlotCapacity: transient store failure for slot=%s: %v", slotID, err)
			return nil, fmt.Errorf("%w: %v", ErrTransientStore, err)
		case errors.Is(err, ErrInternal):
			uc.logger.Error("AdjustSlotCapacity: slot=%s: %v", slotID, err)
			return nil, err
		default:
			uc.logger.Error("AdjustSlotCapacity: transaction failed for slot=%s: %v", slotID, err)
			return nil, fmt.Errorf("%w: transaction failed: %v", ErrInternal, err)
		}
	}

	uc.logger.Info("AdjustSlotCapacity: slot=%s now %d/%d", saved.ID, saved.Booked, saved.Capacity)
	return &Response{
		SlotID:   saved.ID,
		Booked:   saved.Booked,
		Capacity: saved.Capacity,
	}, nil
}
