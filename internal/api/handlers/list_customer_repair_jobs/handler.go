package list_customer_repair_jobs

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-RepairSlotService/internal/api/handlers"
	"github.com/m04kA/SMC-RepairSlotService/internal/api/middleware"
	"github.com/m04kA/SMC-RepairSlotService/internal/service/repairjobs"
	"github.com/m04kA/SMC-RepairSlotService/internal/service/repairjobs/models"
)

const (
	msgMissingUserID = "отсутствует ID пользователя"
	msgForbidden     = "доступ запрещен"
	msgInvalidStatus = "некорректный статус заявки"
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

// Handle GET /api/v1/customers/{customerId}/repair-jobs
// Query params: status (optional)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	customerID := mux.Vars(r)["customerId"]

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /customers/{id}/repair-jobs - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Клиент видит только свои заявки
	if customerID != userID && !middleware.IsPrivileged(r.Context()) {
		h.logger.Warn("GET /customers/{id}/repair-jobs - Access denied: customer_id=%s, user_id=%s", customerID, userID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	// Получаем status из query параметров (опционально)
	var statusPtr *string
	if status := r.URL.Query().Get("status"); status != "" {
		statusPtr = &status
	}

	result, err := h.service.ListByCustomer(r.Context(), &models.ListByCustomerRequest{
		CustomerID: customerID,
		Status:     statusPtr,
	})
	if err != nil {
		switch {
		case errors.Is(err, repairjobs.ErrInvalidInput):
			h.logger.Warn("GET /customers/{id}/repair-jobs - Invalid input: customer_id=%s, error=%v", customerID, err)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		default:
			h.logger.Error("GET /customers/{id}/repair-jobs - Failed to list repair jobs: customer_id=%s, error=%v",
				customerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /customers/{id}/repair-jobs - Repair jobs retrieved: customer_id=%s, count=%d",
		customerID, len(result.RepairJobs))
	handlers.RespondJSON(w, http.StatusOK, result)
}
