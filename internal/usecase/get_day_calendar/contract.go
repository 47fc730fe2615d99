package get_day_calendar

import (
	"context"
	"time"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	ListByRange(ctx context.Context, from, to time.Time) ([]*domain.Slot, error)
}

// ScheduleResolver возвращает действующее расписание на дату
type ScheduleResolver interface {
	Resolve(ctx context.Context, date time.Time) (*domain.Schedule, error)
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
