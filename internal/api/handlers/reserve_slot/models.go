package reserve_slot

import (
	"time"

	reserveSlot "github.com/m04kA/SMC-RepairSlotService/internal/usecase/reserve_slot"
)

// ReserveSlotRequest HTTP request model
type ReserveSlotRequest struct {
	SlotID           string  `json:"slotId"`             // "2024-06-01_10:30"
	Capacity         int     `json:"capacity,omitempty"` // емкость нового слота (только администратор)
	CustomerID       string  `json:"customerId,omitempty"`
	DeviceType       string  `json:"deviceType"`
	DeviceBrand      *string `json:"deviceBrand,omitempty"`
	DeviceModel      *string `json:"deviceModel,omitempty"`
	IssueDescription string  `json:"issueDescription"`
	ContactPhone     *string `json:"contactPhone,omitempty"`
	Notes            *string `json:"notes,omitempty"`
}

// RepairJobResponse HTTP response model
type RepairJobResponse struct {
	ID               string  `json:"id"`
	CustomerID       string  `json:"customerId"`
	SlotID           string  `json:"slotId"`
	Status           string  `json:"status"`
	Booked           int     `json:"booked"`
	Capacity         int     `json:"capacity"`
	DeviceType       string  `json:"deviceType"`
	DeviceBrand      *string `json:"deviceBrand,omitempty"`
	DeviceModel      *string `json:"deviceModel,omitempty"`
	IssueDescription string  `json:"issueDescription"`
	ContactPhone     *string `json:"contactPhone,omitempty"`
	Notes            *string `json:"notes,omitempty"`
	CreatedAt        string  `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case.
// Клиент бронирует только на себя; администратор может указать customerId и емкость слота.
func (r *ReserveSlotRequest) ToUseCaseRequest(actorID string, privileged bool) *reserveSlot.Request {
	customerID := actorID
	capacity := 0
	if privileged {
		if r.CustomerID != "" {
			customerID = r.CustomerID
		}
		capacity = r.Capacity
	}

	return &reserveSlot.Request{
		SlotID:          r.SlotID,
		CapacityDefault: capacity,
		Job: reserveSlot.JobInput{
			CustomerID:       customerID,
			DeviceType:       r.DeviceType,
			DeviceBrand:      r.DeviceBrand,
			DeviceModel:      r.DeviceModel,
			IssueDescription: r.IssueDescription,
			ContactPhone:     r.ContactPhone,
			Notes:            r.Notes,
		},
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *reserveSlot.Response) *RepairJobResponse {
	result := &RepairJobResponse{
		ID:       resp.RepairJobID.String(),
		SlotID:   resp.SlotID.String(),
		Booked:   resp.Booked,
		Capacity: resp.Capacity,
	}

	if job := resp.Job; job != nil {
		result.CustomerID = job.CustomerID
		result.Status = string(job.Status)
		result.DeviceType = job.DeviceType
		result.DeviceBrand = job.DeviceBrand
		result.DeviceModel = job.DeviceModel
		result.IssueDescription = job.IssueDescription
		result.ContactPhone = job.ContactPhone
		result.Notes = job.Notes
		result.CreatedAt = job.CreatedAt.Format(time.RFC3339)
	}

	return result
}
