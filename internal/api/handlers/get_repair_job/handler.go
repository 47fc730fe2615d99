package get_repair_job

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-RepairSlotService/internal/api/handlers"
	"github.com/m04kA/SMC-RepairSlotService/internal/api/middleware"
	"github.com/m04kA/SMC-RepairSlotService/internal/service/repairjobs"
)

const (
	msgInvalidRepairJobID = "некорректный ID заявки"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotFound           = "заявка не найдена"
	msgForbidden          = "доступ запрещен"
)

type Handler struct {
	service RepairJobService
	logger  Logger
}

func NewHandler(service RepairJobService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/repair-jobs/{jobId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	jobIDStr := mux.Vars(r)["jobId"]

	jobID, err := uuid.Parse(jobIDStr)
	if err != nil {
		h.logger.Warn("GET /repair-jobs/{id} - Invalid repair job ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRepairJobID)
		return
	}

	// Получаем userID из контекста (через middleware Auth)
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /repair-jobs/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Сервис сам проверит права доступа
	job, err := h.service.GetByID(r.Context(), jobID, userID, middleware.IsPrivileged(r.Context()))
	if err != nil {
		switch {
		case errors.Is(err, repairjobs.ErrRepairJobNotFound):
			h.logger.Warn("GET /repair-jobs/{id} - Repair job not found: id=%s", jobID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, repairjobs.ErrAccessDenied):
			h.logger.Warn("GET /repair-jobs/{id} - Access denied: id=%s, user_id=%s", jobID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /repair-jobs/{id} - Failed to get repair job: id=%s, error=%v", jobID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /repair-jobs/{id} - Repair job retrieved: id=%s, user_id=%s", jobID, userID)
	handlers.RespondJSON(w, http.StatusOK, job)
}
