package release_slot

import (
	"time"

	"github.com/google/uuid"

	releaseSlot "github.com/m04kA/SMC-RepairSlotService/internal/usecase/release_slot"
)

// CancelRepairJobRequest HTTP request model (тело необязательно)
type CancelRepairJobRequest struct {
	CancellationReason *string `json:"cancellationReason,omitempty"`
}

// CancelRepairJobResponse HTTP response model
type CancelRepairJobResponse struct {
	ID          string `json:"id"`
	CustomerID  string `json:"customerId"`
	SlotID      string `json:"slotId"`
	Status      string `json:"status"`
	Booked      int    `json:"booked"`
	Capacity    int    `json:"capacity"`
	CancelledAt string `json:"cancelledAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CancelRepairJobRequest) ToUseCaseRequest(jobID uuid.UUID, actorID string, privileged bool) *releaseSlot.Request {
	return &releaseSlot.Request{
		RepairJobID: jobID,
		ActorID:     actorID,
		Privileged:  privileged,
		Reason:      r.CancellationReason,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *releaseSlot.Response) *CancelRepairJobResponse {
	return &CancelRepairJobResponse{
		ID:          resp.RepairJobID.String(),
		CustomerID:  resp.CustomerID,
		SlotID:      resp.SlotID.String(),
		Status:      string(resp.Status),
		Booked:      resp.Booked,
		Capacity:    resp.Capacity,
		CancelledAt: resp.CancelledAt.Format(time.RFC3339),
	}
}
