package get_day_calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
	"github.com/m04kA/SMC-RepairSlotService/pkg/txmanager"
)

// UseCase use case для получения календаря слотов на день
type UseCase struct {
	slotRepo         SlotRepository
	scheduleResolver ScheduleResolver
	loc              *time.Location
	timeProvider     TimeProvider
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	scheduleResolver ScheduleResolver,
	loc *time.Location,
	logger Logger,
) *UseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &UseCase{
		slotRepo:         slotRepo,
		scheduleResolver: scheduleResolver,
		loc:              loc,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// Execute выполняет use case получения календаря дня
// Сетка строится по расписанию, занятость берется одним запросом по диапазону дня
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if req == nil || req.Date.IsZero() {
		uc.logger.Warn("GetDayCalendar: date is required")
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	y, m, d := req.Date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, uc.loc)
	uc.logger.Info("GetDayCalendar: date=%s, privileged=%t", day.Format(domain.DateFormat), req.Privileged)

	// 2. Получаем расписание на дату
	schedule, err := uc.scheduleResolver.Resolve(ctx, day)
	if err != nil {
		return nil, uc.storeError("failed to resolve schedule", err)
	}

	resp := &Response{
		Date:     day,
		Schedule: schedule,
		Slots:    []domain.SlotView{},
	}

	// 3. Выходной день - слотов нет
	if schedule.IsClosed {
		uc.logger.Info("GetDayCalendar: shop is closed on %s (schedule %s)", day.Format(domain.DateFormat), schedule.Key)
		return resp, nil
	}

	generator := NewGenerator(schedule, uc.loc)
	if err := generator.Validate(); err != nil {
		uc.logger.Error("GetDayCalendar: schedule %s is unusable: %v", schedule.Key, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	// 4. Получаем сохраненную занятость за день
	stored, err := uc.slotRepo.ListByRange(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, uc.storeError("failed to list slots", err)
	}

	// 5. Накладываем занятость на сетку
	resp.Slots = merge(generator.Slots(day), stored, uc.timeProvider.Now(), req.Privileged)

	uc.logger.Info("GetDayCalendar: returning %d slots for %s (%d stored)",
		len(resp.Slots), day.Format(domain.DateFormat), len(stored))
	return resp, nil
}

// storeError отделяет недоступность хранилища (клиент может повторить) от внутренних ошибок
func (uc *UseCase) storeError(msg string, err error) error {
	if txmanager.IsUnavailable(err) {
		uc.logger.Warn("GetDayCalendar: store is unavailable: %s: %v", msg, err)
		return fmt.Errorf("%w: %s: %v", ErrTransientStore, msg, err)
	}
	uc.logger.Error("GetDayCalendar: %s: %v", msg, err)
	return fmt.Errorf("%w: %s: %v", ErrInternal, msg, err)
}
