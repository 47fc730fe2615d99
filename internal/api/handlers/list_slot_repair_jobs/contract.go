package list_slot_repair_jobs

import (
	"context"

	"github.com/m04kA/SMC-RepairSlotService/internal/service/repairjobs/models"
)

type RepairJobService interface {
	ListBySlot(ctx context.Context, req *models.ListBySlotRequest) (*models.RepairJobListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
