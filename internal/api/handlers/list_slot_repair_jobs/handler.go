package list_slot_repair_jobs

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-RepairSlotService/internal/api/handlers"
	"github.com/m04kA/SMC-RepairSlotService/internal/api/middleware"
	"github.com/m04kA/SMC-RepairSlotService/internal/service/repairjobs"
	"github.com/m04kA/SMC-RepairSlotService/internal/service/repairjobs/models"
)

const (
	msgInvalidSlotID       = "некорректный ID слота, ожидается YYYY-MM-DD_HH:MM"
	msgInvalidIncludeParam = "параметр includeInactive должен быть true или false"
	msgForbidden           = "доступ запрещен"
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

// Handle GET /api/v1/slots/{slotId}/repair-jobs
// Query params: includeInactive (optional, bool)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slotID := mux.Vars(r)["slotId"]

	includeInactive := false
	if v := r.URL.Query().Get("includeInactive"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			h.logger.Warn("GET /slots/{id}/repair-jobs - Invalid includeInactive: %v", err)
			handlers.RespondBadRequest(w, msgInvalidIncludeParam)
			return
		}
		includeInactive = parsed
	}

	result, err := h.service.ListBySlot(r.Context(), &models.ListBySlotRequest{
		SlotID:          slotID,
		IncludeInactive: includeInactive,
		Privileged:      middleware.IsPrivileged(r.Context()),
	})
	if err != nil {
		switch {
		case errors.Is(err, repairjobs.ErrAccessDenied):
			h.logger.Warn("GET /slots/{id}/repair-jobs - Access denied: slot_id=%s", slotID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, repairjobs.ErrInvalidInput):
			h.logger.Warn("GET /slots/{id}/repair-jobs - Invalid slot ID: %s", slotID)
			handlers.RespondBadRequest(w, msgInvalidSlotID)

		default:
			h.logger.Error("GET /slots/{id}/repair-jobs - Failed to list repair jobs: slot_id=%s, error=%v", slotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /slots/{id}/repair-jobs - Repair jobs retrieved: slot_id=%s, count=%d",
		slotID, len(result.RepairJobs))
	handlers.RespondJSON(w, http.StatusOK, result)
}
