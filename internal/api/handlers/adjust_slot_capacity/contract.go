package adjust_slot_capacity

import (
	"context"

	adjustSlotCapacity "github.com/m04kA/SMC-RepairSlotService/internal/usecase/adjust_slot_capacity"
)

type AdjustSlotCapacityUseCase interface {
	Execute(ctx context.Context, req *adjustSlotCapacity.Request) (*adjustSlotCapacity.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
