package delete_schedule

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-RepairSlotService/internal/api/handlers"
	"github.com/m04kA/SMC-RepairSlotService/internal/api/middleware"
	"github.com/m04kA/SMC-RepairSlotService/internal/service/schedule"
)

const (
	msgForbidden  = "доступ запрещен"
	msgNotFound   = "расписание не найдено"
	msgInvalidKey = "некорректный ключ расписания"
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

// Handle DELETE /api/v1/schedules/{key}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	if err := h.service.Delete(r.Context(), key, middleware.IsPrivileged(r.Context())); err != nil {
		switch {
		case errors.Is(err, schedule.ErrAccessDenied):
			h.logger.Warn("DELETE /schedules/{key} - Access denied: key=%s", key)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, schedule.ErrScheduleNotFound):
			h.logger.Warn("DELETE /schedules/{key} - Schedule not found: key=%s", key)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, schedule.ErrInvalidInput):
			h.logger.Warn("DELETE /schedules/{key} - Invalid key: %s", key)
			handlers.RespondBadRequest(w, msgInvalidKey)

		default:
			h.logger.Error("DELETE /schedules/{key} - Failed to delete schedule: key=%s, error=%v", key, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /schedules/{key} - Schedule deleted: key=%s", key)
	w.WriteHeader(http.StatusNoContent)
}
