package adjust_slot_capacity

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-RepairSlotService/internal/api/handlers"
	"github.com/m04kA/SMC-RepairSlotService/internal/api/middleware"
	adjustSlotCapacity "github.com/m04kA/SMC-RepairSlotService/internal/usecase/adjust_slot_capacity"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgForbidden          = "доступ запрещен"
	msgInvalidSlot        = "слот недоступен для изменения"
	msgBelowBooked        = "емкость меньше числа занятых мест"
	msgInvalidInput       = "некорректная емкость слота"

	retryAfterSec = 1
)

type Handler struct {
	useCase AdjustSlotCapacityUseCase
	logger  Logger
}

func NewHandler(useCase AdjustSlotCapacityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PUT /api/v1/slots/{slotId}/capacity
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slotID := mux.Vars(r)["slotId"]

	var req UpdateCapacityRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /slots/{id}/capacity - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(slotID, middleware.IsPrivileged(r.Context())))
	if err != nil {
		switch {
		case errors.Is(err, adjustSlotCapacity.ErrAccessDenied):
			h.logger.Warn("PUT /slots/{id}/capacity - Access denied: slot_id=%s", slotID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, adjustSlotCapacity.ErrInvalidSlot):
			h.logger.Warn("PUT /slots/{id}/capacity - Invalid slot: slot_id=%s, error=%v", slotID, err)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgInvalidSlot)

		case errors.Is(err, adjustSlotCapacity.ErrCapacityBelowBooked):
			h.logger.Warn("PUT /slots/{id}/capacity - Capacity below booked: slot_id=%s, capacity=%d", slotID, req.Capacity)
			handlers.RespondError(w, http.StatusConflict, msgBelowBooked)

		case errors.Is(err, adjustSlotCapacity.ErrInvalidInput):
			h.logger.Warn("PUT /slots/{id}/capacity - Invalid input: slot_id=%s, error=%v", slotID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, adjustSlotCapacity.ErrTransientStore):
			h.logger.Warn("PUT /slots/{id}/capacity - Store busy: slot_id=%s, error=%v", slotID, err)
			handlers.RespondServiceUnavailable(w, retryAfterSec)

		default:
			h.logger.Error("PUT /slots/{id}/capacity - Failed to adjust capacity: slot_id=%s, error=%v", slotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /slots/{id}/capacity - Capacity updated: slot_id=%s, booked=%d/%d",
		result.SlotID, result.Booked, result.Capacity)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
