package release_slot

import (
	"context"

	releaseSlot "github.com/m04kA/SMC-RepairSlotService/internal/usecase/release_slot"
)

type ReleaseSlotUseCase interface {
	Execute(ctx context.Context, req *releaseSlot.Request) (*releaseSlot.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
