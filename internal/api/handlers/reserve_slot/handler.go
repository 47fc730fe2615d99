package reserve_slot

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-RepairSlotService/internal/api/handlers"
	"github.com/m04kA/SMC-RepairSlotService/internal/api/middleware"
	reserveSlot "github.com/m04kA/SMC-RepairSlotService/internal/usecase/reserve_slot"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgSlotFull           = "в выбранном слоте нет свободных мест"
	msgInvalidSlot        = "выбранный слот недоступен для записи"
	msgInvalidInput       = "некорректные данные заявки"

	// retryAfterSec подсказка клиенту при конфликте транзакций
	retryAfterSec = 1
)

type Handler struct {
	useCase ReserveSlotUseCase
	logger  Logger
}

func NewHandler(useCase ReserveSlotUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/repair-jobs
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /repair-jobs - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	privileged := middleware.IsPrivileged(r.Context())

	var req ReserveSlotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /repair-jobs - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(userID, privileged))
	if err != nil {
		switch {
		case errors.Is(err, reserveSlot.ErrSlotFull):
			h.logger.Warn("POST /repair-jobs - Slot full: slot_id=%s, user_id=%s", req.SlotID, userID)
			handlers.RespondError(w, http.StatusConflict, msgSlotFull)

		case errors.Is(err, reserveSlot.ErrInvalidSlot):
			h.logger.Warn("POST /repair-jobs - Invalid slot: slot_id=%s, user_id=%s, error=%v", req.SlotID, userID, err)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgInvalidSlot)

		case errors.Is(err, reserveSlot.ErrInvalidInput):
			h.logger.Warn("POST /repair-jobs - Invalid input: user_id=%s, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, reserveSlot.ErrTransientStore):
			h.logger.Warn("POST /repair-jobs - Store busy: slot_id=%s, error=%v", req.SlotID, err)
			handlers.RespondServiceUnavailable(w, retryAfterSec)

		default:
			h.logger.Error("POST /repair-jobs - Failed to reserve slot: slot_id=%s, user_id=%s, error=%v",
				req.SlotID, userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /repair-jobs - Repair job created: id=%s, slot_id=%s, booked=%d/%d",
		result.RepairJobID, result.SlotID, result.Booked, result.Capacity)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
