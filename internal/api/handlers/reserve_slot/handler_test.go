package reserve_slot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RepairSlotService/internal/api/middleware"
	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
	reserveSlot "github.com/m04kA/SMC-RepairSlotService/internal/usecase/reserve_slot"
	"github.com/m04kA/SMC-RepairSlotService/pkg/logger"
)

type stubUseCase struct {
	got  *reserveSlot.Request
	resp *reserveSlot.Response
	err  error
}

func (s *stubUseCase) Execute(_ context.Context, req *reserveSlot.Request) (*reserveSlot.Response, error) {
	s.got = req
	return s.resp, s.err
}

const body = `{"slotId":"2030-06-01_10:00","capacity":5,"customerId":"other","deviceType":"phone","issueDescription":"broken screen"}`

func newRequest(userID string, privileged bool, payload string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/repair-jobs", strings.NewReader(payload))
	return req.WithContext(middleware.WithIdentity(req.Context(), userID, privileged))
}

func TestHandle_Created(t *testing.T) {
	jobID := uuid.New()
	uc := &stubUseCase{resp: &reserveSlot.Response{
		SlotID:      "2030-06-01_10:00",
		RepairJobID: jobID,
		Booked:      1,
		Capacity:    2,
		Job: &domain.RepairJob{
			ID:               jobID,
			CustomerID:       "customer-1",
			Status:           domain.StatusPending,
			DeviceType:       "phone",
			IssueDescription: "broken screen",
		},
	}}
	h := NewHandler(uc, logger.Nop{})

	rec := httptest.NewRecorder()
	h.Handle(rec, newRequest("customer-1", false, body))

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp RepairJobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, jobID.String(), resp.ID)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, 1, resp.Booked)

	// клиент не может записать другого клиента и задать емкость
	assert.Equal(t, "customer-1", uc.got.Job.CustomerID)
	assert.Zero(t, uc.got.CapacityDefault)
}

func TestHandle_PrivilegedMayBookForCustomer(t *testing.T) {
	uc := &stubUseCase{resp: &reserveSlot.Response{Job: &domain.RepairJob{}}}
	h := NewHandler(uc, logger.Nop{})

	rec := httptest.NewRecorder()
	h.Handle(rec, newRequest("shop-1", true, body))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "other", uc.got.Job.CustomerID)
	assert.Equal(t, 5, uc.got.CapacityDefault)
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "full", err: reserveSlot.ErrSlotFull, wantStatus: http.StatusConflict},
		{name: "invalid slot", err: fmt.Errorf("%w: slot is in the past", reserveSlot.ErrInvalidSlot), wantStatus: http.StatusUnprocessableEntity},
		{name: "invalid input", err: reserveSlot.ErrInvalidInput, wantStatus: http.StatusBadRequest},
		{name: "transient", err: reserveSlot.ErrTransientStore, wantStatus: http.StatusServiceUnavailable},
		{name: "internal", err: reserveSlot.ErrInternal, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&stubUseCase{err: tt.err}, logger.Nop{})

			rec := httptest.NewRecorder()
			h.Handle(rec, newRequest("customer-1", false, body))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusServiceUnavailable {
				assert.Equal(t, "1", rec.Header().Get("Retry-After"))
			}
		})
	}
}

func TestHandle_BadBody(t *testing.T) {
	uc := &stubUseCase{}
	h := NewHandler(uc, logger.Nop{})

	rec := httptest.NewRecorder()
	h.Handle(rec, newRequest("customer-1", false, `{"slotId":`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, uc.got)
}

func TestHandle_MissingUser(t *testing.T) {
	h := NewHandler(&stubUseCase{}, logger.Nop{})

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodPost, "/api/v1/repair-jobs", strings.NewReader(body)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
