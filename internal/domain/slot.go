package domain

import "time"

// Slot is the persisted occupancy of one time slot.
// It exists only after the first reservation into it (or a capacity adjustment).
// Invariant: 0 <= Booked <= Capacity.
type Slot struct {
	ID        SlotID
	Timestamp time.Time
	Capacity  int
	Booked    int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewEmptySlot returns an unbooked slot used when nothing is stored yet
func NewEmptySlot(id SlotID, ts time.Time, capacity int) *Slot {
	return &Slot{
		ID:        id,
		Timestamp: ts,
		Capacity:  capacity,
	}
}

// IsFull returns true if no seats are left
func (s *Slot) IsFull() bool {
	return s.Booked >= s.Capacity
}

// Remaining returns the number of free seats
func (s *Slot) Remaining() int {
	if s.Booked >= s.Capacity {
		return 0
	}
	return s.Capacity - s.Booked
}

// CanReserve returns true if one more seat fits
func (s *Slot) CanReserve() bool {
	return s.Booked+1 <= s.Capacity
}

// CanRelease returns true if there is a booked seat to give back
func (s *Slot) CanRelease() bool {
	return s.Booked > 0
}

// SlotView is one calendar entry: a generated slot merged with stored occupancy
type SlotView struct {
	ID        SlotID
	TimeLabel string
	Timestamp time.Time
	Booked    int
	Capacity  int
	IsFull    bool
	IsPast    bool
}

// Remaining returns the number of free seats
func (v SlotView) Remaining() int {
	if v.Booked >= v.Capacity {
		return 0
	}
	return v.Capacity - v.Booked
}

// IsBookable returns true if the slot is shown to regular customers
func (v SlotView) IsBookable() bool {
	return !v.IsFull && !v.IsPast
}
