package list_schedules

import (
	"net/http"

	"github.com/m04kA/SMC-RepairSlotService/internal/api/handlers"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/schedules
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("GET /schedules - Failed to list schedules: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /schedules - Schedules retrieved: count=%d", len(result.Schedules))
	handlers.RespondJSON(w, http.StatusOK, result)
}
