package get_repair_job

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-RepairSlotService/internal/service/repairjobs/models"
)

type RepairJobService interface {
	GetByID(ctx context.Context, id uuid.UUID, actorID string, privileged bool) (*models.RepairJobResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
