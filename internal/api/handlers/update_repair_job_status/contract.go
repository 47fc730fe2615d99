package update_repair_job_status

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-RepairSlotService/internal/service/repairjobs/models"
)

type RepairJobService interface {
	UpdateStatus(ctx context.Context, id uuid.UUID, req *models.UpdateStatusRequest) (*models.RepairJobResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
