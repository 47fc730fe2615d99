package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid repair job status")
)

// Request модели

// ListByCustomerRequest запрос на получение заявок клиента
type ListByCustomerRequest struct {
	CustomerID string  `json:"customerId"`
	Status     *string `json:"status,omitempty"`
}

// ListBySlotRequest запрос на получение заявок слота
type ListBySlotRequest struct {
	SlotID          string `json:"slotId"`
	IncludeInactive bool   `json:"includeInactive,omitempty"` // Включить отменённые заявки
	Privileged      bool   `json:"-"`
}

// UpdateStatusRequest запрос на смену статуса заявки администратором
type UpdateStatusRequest struct {
	Status     string `json:"status"`
	Privileged bool   `json:"-"`
}

// Response модели

// RepairJobResponse ответ с данными заявки на ремонт
type RepairJobResponse struct {
	ID            string `json:"id"`
	CustomerID    string `json:"customerId"`
	PreferredSlot string `json:"preferredSlot"` // "2024-06-01_10:30"
	Status        string `json:"status"`

	DeviceType       string  `json:"deviceType"`
	DeviceBrand      *string `json:"deviceBrand,omitempty"`
	DeviceModel      *string `json:"deviceModel,omitempty"`
	IssueDescription string  `json:"issueDescription"`
	ContactPhone     *string `json:"contactPhone,omitempty"`
	Notes            *string `json:"notes,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RepairJobListResponse ответ со списком заявок
type RepairJobListResponse struct {
	RepairJobs []RepairJobResponse `json:"repairJobs"`
}

// Методы конвертации

// FromDomainRepairJob конвертирует domain модель в DTO
func FromDomainRepairJob(j *domain.RepairJob) *RepairJobResponse {
	if j == nil {
		return nil
	}

	resp := &RepairJobResponse{
		ID:                 j.ID.String(),
		CustomerID:         j.CustomerID,
		PreferredSlot:      j.PreferredSlot.String(),
		Status:             string(j.Status),
		DeviceType:         j.DeviceType,
		DeviceBrand:        j.DeviceBrand,
		DeviceModel:        j.DeviceModel,
		IssueDescription:   j.IssueDescription,
		ContactPhone:       j.ContactPhone,
		Notes:              j.Notes,
		CancellationReason: j.CancellationReason,
		CreatedAt:          j.CreatedAt,
		UpdatedAt:          j.UpdatedAt,
	}

	if j.CancelledAt != nil {
		cancelledAt := j.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledAt
	}

	return resp
}

// FromDomainRepairJobList конвертирует список domain моделей в DTO
func FromDomainRepairJobList(jobs []*domain.RepairJob) *RepairJobListResponse {
	resp := &RepairJobListResponse{
		RepairJobs: make([]RepairJobResponse, 0, len(jobs)),
	}

	for _, j := range jobs {
		if jr := FromDomainRepairJob(j); jr != nil {
			resp.RepairJobs = append(resp.RepairJobs, *jr)
		}
	}

	return resp
}

// ToDomainRepairJobStatus конвертирует строку в domain статус
func ToDomainRepairJobStatus(s string) (domain.RepairJobStatus, error) {
	status := domain.RepairJobStatus(s)
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}
