package list_schedules

import (
	"context"

	"github.com/m04kA/SMC-RepairSlotService/internal/service/schedule/models"
)

type ScheduleService interface {
	List(ctx context.Context) (*models.ScheduleListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
