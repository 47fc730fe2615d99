package upsert_schedule

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-RepairSlotService/internal/api/handlers"
	"github.com/m04kA/SMC-RepairSlotService/internal/api/middleware"
	"github.com/m04kA/SMC-RepairSlotService/internal/service/schedule"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgForbidden          = "доступ запрещен"
	msgInvalidData        = "некорректные параметры расписания"
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

// Handle PUT /api/v1/schedules/{key}
// key: default | weekday:N | date:YYYY-MM-DD
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	var req UpsertScheduleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /schedules/{key} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Upsert(r.Context(), req.ToServiceRequest(key, middleware.IsPrivileged(r.Context())))
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrAccessDenied):
			h.logger.Warn("PUT /schedules/{key} - Access denied: key=%s", key)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, schedule.ErrInvalidInput):
			h.logger.Warn("PUT /schedules/{key} - Invalid data: key=%s, error=%v", key, err)
			handlers.RespondBadRequest(w, msgInvalidData)

		default:
			h.logger.Error("PUT /schedules/{key} - Failed to save schedule: key=%s, error=%v", key, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /schedules/{key} - Schedule saved: key=%s", result.Key)
	handlers.RespondJSON(w, http.StatusOK, result)
}
