package mongostore

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
	"github.com/m04kA/SMC-RepairSlotService/pkg/types"
)

type slotDocument struct {
	ID        string    `bson:"_id"`
	StartsAt  time.Time `bson:"starts_at"`
	Capacity  int       `bson:"capacity"`
	Booked    int       `bson:"booked"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (d *slotDocument) toDomain(loc *time.Location) *domain.Slot {
	return &domain.Slot{
		ID:        domain.SlotID(d.ID),
		Timestamp: d.StartsAt.In(loc),
		Capacity:  d.Capacity,
		Booked:    d.Booked,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type repairJobDocument struct {
	ID            string `bson:"_id"`
	CustomerID    string `bson:"customer_id"`
	PreferredSlot string `bson:"preferred_slot"`
	Status        string `bson:"status"`

	DeviceType       string  `bson:"device_type"`
	DeviceBrand      *string `bson:"device_brand,omitempty"`
	DeviceModel      *string `bson:"device_model,omitempty"`
	IssueDescription string  `bson:"issue_description"`
	ContactPhone     *string `bson:"contact_phone,omitempty"`
	Notes            *string `bson:"notes,omitempty"`

	CancellationReason *string    `bson:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time `bson:"cancelled_at,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func fromDomainRepairJob(j *domain.RepairJob) *repairJobDocument {
	return &repairJobDocument{
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
		CancelledAt:        j.CancelledAt,
		CreatedAt:          j.CreatedAt,
		UpdatedAt:          j.UpdatedAt,
	}
}

func (d *repairJobDocument) toDomain() (*domain.RepairJob, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("repair job id %q: %w", d.ID, err)
	}
	return &domain.RepairJob{
		ID:                 id,
		CustomerID:         d.CustomerID,
		PreferredSlot:      domain.SlotID(d.PreferredSlot),
		Status:             domain.RepairJobStatus(d.Status),
		DeviceType:         d.DeviceType,
		DeviceBrand:        d.DeviceBrand,
		DeviceModel:        d.DeviceModel,
		IssueDescription:   d.IssueDescription,
		ContactPhone:       d.ContactPhone,
		Notes:              d.Notes,
		CancellationReason: d.CancellationReason,
		CancelledAt:        d.CancelledAt,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}, nil
}

type scheduleDocument struct {
	Key             string    `bson:"_id"`
	OpenTime        string    `bson:"open_time"`
	CloseTime       string    `bson:"close_time"`
	IntervalMinutes int       `bson:"interval_minutes"`
	Capacity        int       `bson:"capacity"`
	IsClosed        bool      `bson:"is_closed"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

func (d *scheduleDocument) toDomain() *domain.Schedule {
	return &domain.Schedule{
		Key:             d.Key,
		OpenTime:        types.TimeString(d.OpenTime),
		CloseTime:       types.TimeString(d.CloseTime),
		IntervalMinutes: d.IntervalMinutes,
		Capacity:        d.Capacity,
		IsClosed:        d.IsClosed,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}
