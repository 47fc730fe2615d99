package reserve_slot

import (
	"context"
	"time"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	GetForUpdate(ctx context.Context, id domain.SlotID) (*domain.Slot, error)
	Upsert(ctx context.Context, slot *domain.Slot) (*domain.Slot, error)
}

// RepairJobRepository интерфейс репозитория заявок на ремонт
type RepairJobRepository interface {
	Create(ctx context.Context, job *domain.RepairJob) (*domain.RepairJob, error)
}

// ScheduleResolver возвращает действующее расписание на дату
type ScheduleResolver interface {
	Resolve(ctx context.Context, date time.Time) (*domain.Schedule, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher публикует события о заявках после коммита
type EventPublisher interface {
	Publish(ctx context.Context, event domain.RepairJobEvent) error
}

// Metrics учитывает исходы бронирования
type Metrics interface {
	ObserveReservation(outcome string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
