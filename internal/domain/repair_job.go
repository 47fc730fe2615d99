package domain

import (
	"time"

	"github.com/google/uuid"
)

// RepairJobStatus represents the status of a repair job
type RepairJobStatus string

const (
	StatusPending             RepairJobStatus = "pending"
	StatusConfirmed           RepairJobStatus = "confirmed"
	StatusInProgress          RepairJobStatus = "in_progress"
	StatusCompleted           RepairJobStatus = "completed"
	StatusCancelledByCustomer RepairJobStatus = "cancelled_by_customer"
	StatusCancelledByShop     RepairJobStatus = "cancelled_by_shop"
)

// IsValid returns true for known statuses
func (s RepairJobStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted,
		StatusCancelledByCustomer, StatusCancelledByShop:
		return true
	}
	return false
}

// RepairJob is the record created together with a seat reservation.
// PreferredSlot points back to the slot whose seat it holds.
type RepairJob struct {
	ID            uuid.UUID
	CustomerID    string
	PreferredSlot SlotID
	Status        RepairJobStatus

	DeviceType       string
	DeviceBrand      *string
	DeviceModel      *string
	IssueDescription string
	ContactPhone     *string
	Notes            *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the job still holds a seat
func (j *RepairJob) IsActive() bool {
	return j.Status != StatusCancelledByCustomer && j.Status != StatusCancelledByShop
}

// CanBeCancelled returns true if the job can be cancelled and its seat released
func (j *RepairJob) CanBeCancelled() bool {
	return j.Status == StatusPending || j.Status == StatusConfirmed
}

// nextStatuses is the workshop progression of an active job.
// Cancellation is not listed: it releases the seat and goes through the release flow.
var nextStatuses = map[RepairJobStatus]RepairJobStatus{
	StatusPending:    StatusConfirmed,
	StatusConfirmed:  StatusInProgress,
	StatusInProgress: StatusCompleted,
}

// CanTransitionTo reports whether the job may move to next.
// Only one step forward along pending -> confirmed -> in_progress -> completed is allowed.
func (j *RepairJob) CanTransitionTo(next RepairJobStatus) bool {
	want, ok := nextStatuses[j.Status]
	return ok && want == next
}

// IsCancelled returns true if the job has been cancelled
func (j *RepairJob) IsCancelled() bool {
	return !j.IsActive()
}

// IsOwnedBy returns true if the job was created by the customer
func (j *RepairJob) IsOwnedBy(customerID string) bool {
	return customerID != "" && j.CustomerID == customerID
}
