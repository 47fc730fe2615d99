package schedule

import (
	"context"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
)

// ScheduleRepository интерфейс репозитория расписаний
type ScheduleRepository interface {
	GetByKey(ctx context.Context, key string) (*domain.Schedule, error)
	GetWithHierarchy(ctx context.Context, keys []string) (*domain.Schedule, error)
	List(ctx context.Context) ([]*domain.Schedule, error)
	Upsert(ctx context.Context, s *domain.Schedule) (*domain.Schedule, error)
	Delete(ctx context.Context, key string) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
