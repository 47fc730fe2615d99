package get_day_calendar

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-RepairSlotService/internal/api/handlers"
	"github.com/m04kA/SMC-RepairSlotService/internal/api/middleware"
	getDayCalendar "github.com/m04kA/SMC-RepairSlotService/internal/usecase/get_day_calendar"
)

const (
	msgInvalidDate = "некорректный формат даты, ожидается YYYY-MM-DD"

	// retryAfterSec подсказка клиенту, когда повторить запрос при недоступном хранилище
	retryAfterSec = 1
)

type Handler struct {
	useCase GetDayCalendarUseCase
	logger  Logger
}

func NewHandler(useCase GetDayCalendarUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/calendar/{date}
// Клиент видит только свободные будущие слоты, администратор (X-User-Role: admin) видит все.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	dateStr := mux.Vars(r)["date"]
	privileged := middleware.IsPrivileged(r.Context())

	useCaseReq, err := ToUseCaseRequest(dateStr, privileged)
	if err != nil {
		h.logger.Warn("GET /calendar/{date} - Invalid date: %s, error=%v", dateStr, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getDayCalendar.ErrInvalidInput):
			h.logger.Warn("GET /calendar/{date} - Invalid input: date=%s, error=%v", dateStr, err)
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, getDayCalendar.ErrTransientStore):
			h.logger.Warn("GET /calendar/{date} - Store unavailable: date=%s, error=%v", dateStr, err)
			handlers.RespondServiceUnavailable(w, retryAfterSec)

		default:
			h.logger.Error("GET /calendar/{date} - Failed to build calendar: date=%s, error=%v", dateStr, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /calendar/{date} - Calendar built: date=%s, privileged=%t, slots_count=%d",
		dateStr, privileged, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
