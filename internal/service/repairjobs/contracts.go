package repairjobs

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
)

// RepairJobRepository интерфейс репозитория заявок на ремонт
type RepairJobRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RepairJob, error)
	ListBySlot(ctx context.Context, slotID domain.SlotID, includeInactive bool) ([]*domain.RepairJob, error)
	ListByCustomer(ctx context.Context, customerID string, status *domain.RepairJobStatus) ([]*domain.RepairJob, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.RepairJobStatus) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
