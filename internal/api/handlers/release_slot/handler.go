package release_slot

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-RepairSlotService/internal/api/handlers"
	"github.com/m04kA/SMC-RepairSlotService/internal/api/middleware"
	releaseSlot "github.com/m04kA/SMC-RepairSlotService/internal/usecase/release_slot"
)

const (
	msgInvalidRepairJobID = "некорректный ID заявки"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotFound           = "заявка не найдена"
	msgForbidden          = "доступ запрещен"
	msgCannotCancel       = "заявка не может быть отменена"
	msgInvalidInput       = "некорректные данные запроса"

	retryAfterSec = 1
)

type Handler struct {
	useCase ReleaseSlotUseCase
	logger  Logger
}

func NewHandler(useCase ReleaseSlotUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/repair-jobs/{jobId}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(mux.Vars(r)["jobId"])
	if err != nil {
		h.logger.Warn("PATCH /repair-jobs/{id}/cancel - Invalid repair job ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRepairJobID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /repair-jobs/{id}/cancel - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Тело с причиной отмены необязательно
	var req CancelRepairJobRequest
	if err := handlers.DecodeJSON(r, &req); err != nil && !errors.Is(err, handlers.ErrEmptyBody) {
		h.logger.Warn("PATCH /repair-jobs/{id}/cancel - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(jobID, userID, middleware.IsPrivileged(r.Context())))
	if err != nil {
		switch {
		case errors.Is(err, releaseSlot.ErrRepairJobNotFound):
			h.logger.Warn("PATCH /repair-jobs/{id}/cancel - Repair job not found: id=%s", jobID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, releaseSlot.ErrAccessDenied):
			h.logger.Warn("PATCH /repair-jobs/{id}/cancel - Access denied: id=%s, user_id=%s", jobID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, releaseSlot.ErrCannotCancel):
			h.logger.Warn("PATCH /repair-jobs/{id}/cancel - Cannot cancel: id=%s", jobID)
			handlers.RespondError(w, http.StatusConflict, msgCannotCancel)

		case errors.Is(err, releaseSlot.ErrInvalidInput):
			h.logger.Warn("PATCH /repair-jobs/{id}/cancel - Invalid input: id=%s, error=%v", jobID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, releaseSlot.ErrTransientStore):
			h.logger.Warn("PATCH /repair-jobs/{id}/cancel - Store busy: id=%s, error=%v", jobID, err)
			handlers.RespondServiceUnavailable(w, retryAfterSec)

		default:
			h.logger.Error("PATCH /repair-jobs/{id}/cancel - Failed to cancel repair job: id=%s, error=%v", jobID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /repair-jobs/{id}/cancel - Repair job cancelled: id=%s, slot_id=%s, status=%s",
		jobID, result.SlotID, result.Status)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
