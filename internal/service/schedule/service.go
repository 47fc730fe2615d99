package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
	scheduleRepo "github.com/m04kA/SMC-RepairSlotService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-RepairSlotService/internal/service/schedule/models"
)

// Service сервис расписаний: разрешение рабочих часов на дату и управление переопределениями
type Service struct {
	scheduleRepo ScheduleRepository
	defaults     domain.Schedule
	logger       Logger
}

// NewService создает новый экземпляр сервиса расписаний.
// defaults используется, когда в хранилище нет ни одного подходящего расписания.
func NewService(scheduleRepo ScheduleRepository, defaults domain.Schedule, logger Logger) *Service {
	defaults.Key = domain.ScheduleKeyDefault
	return &Service{
		scheduleRepo: scheduleRepo,
		defaults:     defaults,
		logger:       logger,
	}
}

// Defaults возвращает встроенное расписание по умолчанию
func (s *Service) Defaults() domain.Schedule {
	return s.defaults
}

// Resolve возвращает расписание на дату с учетом иерархии приоритетов:
// date:YYYY-MM-DD > weekday:N > default из хранилища > default из конфигурации
func (s *Service) Resolve(ctx context.Context, date time.Time) (*domain.Schedule, error) {
	schedule, err := s.scheduleRepo.GetWithHierarchy(ctx, domain.ScheduleKeysFor(date))
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			d := s.defaults
			return &d, nil
		}
		s.logger.Error("Resolve: repository error for date=%s: %v", date.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: Resolve - repository error: %w", ErrInternal, err)
	}

	return schedule, nil
}

// Get получает сохраненное расписание по ключу
func (s *Service) Get(ctx context.Context, key string) (*models.ScheduleResponse, error) {
	if err := domain.ValidateScheduleKey(key); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	schedule, err := s.scheduleRepo.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			s.logger.Warn("Get: schedule key=%s not found", key)
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("Get: repository error for key=%s: %v", key, err)
		return nil, fmt.Errorf("%w: Get - repository error: %w", ErrInternal, err)
	}

	return models.FromDomainSchedule(schedule), nil
}

// List получает все сохраненные расписания. Публичный метод.
func (s *Service) List(ctx context.Context) (*models.ScheduleListResponse, error) {
	schedules, err := s.scheduleRepo.List(ctx)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d schedules", len(schedules))
	return models.FromDomainScheduleList(&s.defaults, schedules), nil
}

// Upsert создает или заменяет расписание. Доступно только администраторам мастерской.
func (s *Service) Upsert(ctx context.Context, req *models.UpsertScheduleRequest) (*models.ScheduleResponse, error) {
	s.logger.Info("Upsert: key=%s open=%s close=%s interval=%d capacity=%d closed=%t",
		req.Key, req.OpenTime, req.CloseTime, req.IntervalMinutes, req.Capacity, req.IsClosed)

	if !req.Privileged {
		s.logger.Warn("Upsert: access denied for key=%s", req.Key)
		return nil, ErrAccessDenied
	}

	schedule := req.ToDomainSchedule()
	s.fillClosedDay(schedule)

	if err := validateSchedule(schedule); err != nil {
		s.logger.Warn("Upsert: validation failed: %v", err)
		return nil, err
	}

	saved, err := s.scheduleRepo.Upsert(ctx, schedule)
	if err != nil {
		s.logger.Error("Upsert: repository error for key=%s: %v", req.Key, err)
		return nil, fmt.Errorf("%w: Upsert - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("Upsert: successfully saved schedule key=%s (level: %s)", saved.Key, saved.Level())
	return models.FromDomainSchedule(saved), nil
}

// Delete удаляет расписание по ключу. Доступно только администраторам мастерской.
func (s *Service) Delete(ctx context.Context, key string, privileged bool) error {
	s.logger.Info("Delete: deleting schedule key=%s", key)

	if !privileged {
		s.logger.Warn("Delete: access denied for key=%s", key)
		return ErrAccessDenied
	}

	if err := domain.ValidateScheduleKey(key); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.scheduleRepo.Delete(ctx, key); err != nil {
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			s.logger.Warn("Delete: schedule key=%s not found", key)
			return ErrScheduleNotFound
		}
		s.logger.Error("Delete: repository error for key=%s: %v", key, err)
		return fmt.Errorf("%w: Delete - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("Delete: successfully deleted schedule key=%s", key)
	return nil
}

// у выходного дня часы необязательны, подставляем часы по умолчанию
func (s *Service) fillClosedDay(schedule *domain.Schedule) {
	if !schedule.IsClosed {
		return
	}
	if schedule.OpenTime.IsZero() && schedule.CloseTime.IsZero() {
		schedule.OpenTime = s.defaults.OpenTime
		schedule.CloseTime = s.defaults.CloseTime
	}
	if schedule.IntervalMinutes == 0 {
		schedule.IntervalMinutes = s.defaults.IntervalMinutes
	}
	if schedule.Capacity == 0 {
		schedule.Capacity = s.defaults.Capacity
	}
}

// validateSchedule валидирует параметры расписания
func validateSchedule(schedule *domain.Schedule) error {
	if err := domain.ValidateScheduleKey(schedule.Key); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := schedule.OpenTime.Validate(); err != nil {
		return fmt.Errorf("%w: openTime: %v", ErrInvalidInput, err)
	}
	if err := schedule.CloseTime.Validate(); err != nil {
		return fmt.Errorf("%w: closeTime: %v", ErrInvalidInput, err)
	}
	if !schedule.OpenTime.IsBefore(schedule.CloseTime) {
		return fmt.Errorf("%w: openTime must be before closeTime", ErrInvalidInput)
	}

	if schedule.IntervalMinutes < domain.MinIntervalMinutes || schedule.IntervalMinutes > domain.MaxIntervalMinutes {
		return fmt.Errorf("%w: intervalMinutes must be between %d and %d",
			ErrInvalidInput, domain.MinIntervalMinutes, domain.MaxIntervalMinutes)
	}

	if schedule.Capacity < domain.MinCapacity || schedule.Capacity > domain.MaxCapacity {
		return fmt.Errorf("%w: capacity must be between %d and %d",
			ErrInvalidInput, domain.MinCapacity, domain.MaxCapacity)
	}

	return nil
}
