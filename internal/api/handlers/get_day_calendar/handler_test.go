package get_day_calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RepairSlotService/internal/api/middleware"
	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
	getDayCalendar "github.com/m04kA/SMC-RepairSlotService/internal/usecase/get_day_calendar"
	"github.com/m04kA/SMC-RepairSlotService/pkg/logger"
)

type stubUseCase struct {
	got *getDayCalendar.Request
	err error
}

func (s *stubUseCase) Execute(_ context.Context, req *getDayCalendar.Request) (*getDayCalendar.Response, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}

	ts := time.Date(2030, 6, 1, 10, 0, 0, 0, time.UTC)
	return &getDayCalendar.Response{
		Date: req.Date,
		Schedule: &domain.Schedule{
			Key:             domain.ScheduleKeyDefault,
			OpenTime:        "10:00",
			CloseTime:       "11:00",
			IntervalMinutes: 30,
			Capacity:        2,
		},
		Slots: []domain.SlotView{
			{ID: domain.NewSlotID(ts), TimeLabel: "10:00", Timestamp: ts, Booked: 1, Capacity: 2},
		},
	}, nil
}

func serve(h *Handler, path string, privileged bool) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/calendar/{date}", h.Handle)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req = req.WithContext(middleware.WithIdentity(req.Context(), "", privileged))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandle_OK(t *testing.T) {
	uc := &stubUseCase{}
	rec := serve(NewHandler(uc, logger.Nop{}), "/calendar/2030-06-01", true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, uc.got.Privileged)

	var resp DayCalendarResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2030-06-01", resp.Date)
	require.Len(t, resp.Slots, 1)
	assert.Equal(t, "2030-06-01_10:00", resp.Slots[0].ID)
	assert.Equal(t, 1, resp.Slots[0].Remaining)
	assert.Equal(t, "default", resp.Schedule.Key)
}

func TestHandle_InvalidDate(t *testing.T) {
	uc := &stubUseCase{}
	rec := serve(NewHandler(uc, logger.Nop{}), "/calendar/01-06-2030", false)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, uc.got)
}

func TestHandle_InternalError(t *testing.T) {
	rec := serve(NewHandler(&stubUseCase{err: getDayCalendar.ErrInternal}, logger.Nop{}), "/calendar/2030-06-01", false)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandle_StoreUnavailable(t *testing.T) {
	rec := serve(NewHandler(&stubUseCase{err: getDayCalendar.ErrTransientStore}, logger.Nop{}), "/calendar/2030-06-01", false)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}
