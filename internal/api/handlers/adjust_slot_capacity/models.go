package adjust_slot_capacity

import (
	adjustSlotCapacity "github.com/m04kA/SMC-RepairSlotService/internal/usecase/adjust_slot_capacity"
)

// UpdateCapacityRequest HTTP request model
type UpdateCapacityRequest struct {
	Capacity int `json:"capacity"`
}

// SlotCapacityResponse HTTP response model
type SlotCapacityResponse struct {
	SlotID    string `json:"slotId"`
	Booked    int    `json:"booked"`
	Capacity  int    `json:"capacity"`
	Remaining int    `json:"remaining"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *UpdateCapacityRequest) ToUseCaseRequest(slotID string, privileged bool) *adjustSlotCapacity.Request {
	return &adjustSlotCapacity.Request{
		SlotID:     slotID,
		Capacity:   r.Capacity,
		Privileged: privileged,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *adjustSlotCapacity.Response) *SlotCapacityResponse {
	return &SlotCapacityResponse{
		SlotID:    resp.SlotID.String(),
		Booked:    resp.Booked,
		Capacity:  resp.Capacity,
		Remaining: resp.Capacity - resp.Booked,
	}
}
