package domain

import (
	"time"

	"github.com/google/uuid"
)

// RepairJobEventType is the routing name of a repair job event
type RepairJobEventType string

const (
	EventRepairJobCreated   RepairJobEventType = "repair_job.created"
	EventRepairJobCancelled RepairJobEventType = "repair_job.cancelled"
)

// RepairJobEvent is published after a reservation or a release is committed
type RepairJobEvent struct {
	Type        RepairJobEventType `json:"type"`
	RepairJobID uuid.UUID          `json:"repairJobId"`
	CustomerID  string             `json:"customerId"`
	SlotID      SlotID             `json:"slotId"`
	Status      RepairJobStatus    `json:"status"`
	Booked      int                `json:"booked"`
	Capacity    int                `json:"capacity"`
	OccurredAt  time.Time          `json:"occurredAt"`
}
