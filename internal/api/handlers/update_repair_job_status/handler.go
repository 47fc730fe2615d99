package update_repair_job_status

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
	msgInvalidRequest     = "некорректный формат запроса"
	msgInvalidStatus      = "некорректный статус заявки"
	msgNotFound           = "заявка не найдена"
	msgForbidden          = "менять статус заявки может только администратор мастерской"
	msgInvalidTransition  = "заявку нельзя перевести в этот статус"
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

// Handle PATCH /api/v1/repair-jobs/{jobId}/status
// Администратор ведет заявку по шагам pending -> confirmed -> in_progress -> completed.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	jobIDStr := mux.Vars(r)["jobId"]

	jobID, err := uuid.Parse(jobIDStr)
	if err != nil {
		h.logger.Warn("PATCH /repair-jobs/{id}/status - Invalid repair job ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRepairJobID)
		return
	}

	var req UpdateStatusRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /repair-jobs/{id}/status - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequest)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())

	job, err := h.service.UpdateStatus(r.Context(), jobID, req.ToServiceRequest(middleware.IsPrivileged(r.Context())))
	if err != nil {
		switch {
		case errors.Is(err, repairjobs.ErrAccessDenied):
			h.logger.Warn("PATCH /repair-jobs/{id}/status - Access denied: id=%s, user_id=%s", jobID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, repairjobs.ErrInvalidInput):
			h.logger.Warn("PATCH /repair-jobs/{id}/status - Invalid status: id=%s, status=%s", jobID, req.Status)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		case errors.Is(err, repairjobs.ErrRepairJobNotFound):
			h.logger.Warn("PATCH /repair-jobs/{id}/status - Repair job not found: id=%s", jobID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, repairjobs.ErrInvalidTransition):
			h.logger.Warn("PATCH /repair-jobs/{id}/status - Invalid transition: id=%s, error=%v", jobID, err)
			handlers.RespondError(w, http.StatusConflict, msgInvalidTransition)

		default:
			h.logger.Error("PATCH /repair-jobs/{id}/status - Failed to update status: id=%s, error=%v", jobID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /repair-jobs/{id}/status - Status updated: id=%s, status=%s, user_id=%s", jobID, job.Status, userID)
	handlers.RespondJSON(w, http.StatusOK, job)
}
