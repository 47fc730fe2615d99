package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrMalformedSlotID is returned when a string is not a canonical slot id
var ErrMalformedSlotID = errors.New("domain: malformed slot id")

// SlotID is the natural key of a slot: "YYYY-MM-DD_HH:MM" in the shop's local time.
// Within one day lexicographic order equals chronological order.
type SlotID string

// NewSlotID formats the slot id for t. The caller converts t to the shop location.
func NewSlotID(t time.Time) SlotID {
	return SlotID(t.Format(SlotIDFormat))
}

// ParseSlotID parses a canonical slot id in loc.
// Only ids that format back to themselves are accepted, so "2024-6-1_9:00" is rejected.
func ParseSlotID(s string, loc *time.Location) (SlotID, time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	ts, err := time.ParseInLocation(SlotIDFormat, s, loc)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %q", ErrMalformedSlotID, s)
	}
	id := NewSlotID(ts)
	if string(id) != s {
		return "", time.Time{}, fmt.Errorf("%w: %q is not canonical", ErrMalformedSlotID, s)
	}
	return id, ts, nil
}

// String returns the id as is
func (id SlotID) String() string {
	return string(id)
}

// Date returns the "YYYY-MM-DD" part of the id
func (id SlotID) Date() string {
	if len(id) < len(DateFormat) {
		return ""
	}
	return string(id[:len(DateFormat)])
}

// TimeLabel returns the "HH:MM" part of the id
func (id SlotID) TimeLabel() string {
	if len(id) != len(SlotIDFormat) {
		return ""
	}
	return string(id[len(DateFormat)+1:])
}
