package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/m04kA/SMC-RepairSlotService/pkg/types"
)

// ErrInvalidScheduleKey is returned for keys other than default, weekday:N, date:YYYY-MM-DD
var ErrInvalidScheduleKey = errors.New("domain: invalid schedule key")

const (
	ScheduleKeyDefault       = "default"
	scheduleKeyWeekdayPrefix = "weekday:"
	scheduleKeyDatePrefix    = "date:"
)

// Schedule is the working-hour window the calendar is generated from.
// Resolution priority:
// 1. A specific date (date:2024-06-01)
// 2. A day of week (weekday:0 is Sunday ... weekday:6 is Saturday)
// 3. The shop default (default)
type Schedule struct {
	Key             string
	OpenTime        types.TimeString
	CloseTime       types.TimeString
	IntervalMinutes int
	Capacity        int
	IsClosed        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// WeekdayScheduleKey returns the key of a weekday override
func WeekdayScheduleKey(d time.Weekday) string {
	return scheduleKeyWeekdayPrefix + strconv.Itoa(int(d))
}

// DateScheduleKey returns the key of a date override
func DateScheduleKey(date time.Time) string {
	return scheduleKeyDatePrefix + date.Format(DateFormat)
}

// ScheduleKeysFor returns the keys that apply to date, highest priority first
func ScheduleKeysFor(date time.Time) []string {
	return []string{
		DateScheduleKey(date),
		WeekdayScheduleKey(date.Weekday()),
		ScheduleKeyDefault,
	}
}

// ValidateScheduleKey checks the key format
func ValidateScheduleKey(key string) error {
	switch {
	case key == ScheduleKeyDefault:
		return nil
	case strings.HasPrefix(key, scheduleKeyWeekdayPrefix):
		n, err := strconv.Atoi(strings.TrimPrefix(key, scheduleKeyWeekdayPrefix))
		if err != nil || n < int(time.Sunday) || n > int(time.Saturday) {
			return fmt.Errorf("%w: %q", ErrInvalidScheduleKey, key)
		}
		return nil
	case strings.HasPrefix(key, scheduleKeyDatePrefix):
		raw := strings.TrimPrefix(key, scheduleKeyDatePrefix)
		d, err := time.Parse(DateFormat, raw)
		if err != nil || d.Format(DateFormat) != raw {
			return fmt.Errorf("%w: %q", ErrInvalidScheduleKey, key)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidScheduleKey, key)
	}
}

// IsDefault returns true for the shop-wide schedule
func (s *Schedule) IsDefault() bool {
	return s.Key == ScheduleKeyDefault
}

// IsWeekdayOverride returns true for a day-of-week override
func (s *Schedule) IsWeekdayOverride() bool {
	return strings.HasPrefix(s.Key, scheduleKeyWeekdayPrefix)
}

// IsDateOverride returns true for a single-date override
func (s *Schedule) IsDateOverride() bool {
	return strings.HasPrefix(s.Key, scheduleKeyDatePrefix)
}

// Level returns a human readable resolution level
func (s *Schedule) Level() string {
	switch {
	case s.IsDateOverride():
		return "date"
	case s.IsWeekdayOverride():
		return "weekday"
	default:
		return "default"
	}
}

// Contains returns true if a slot starting at t (HH:MM) lies on the grid of this schedule:
// OpenTime <= t < CloseTime and (t - OpenTime) is a multiple of IntervalMinutes.
func (s *Schedule) Contains(t types.TimeString) bool {
	if s.IsClosed || s.IntervalMinutes <= 0 {
		return false
	}
	start, err := t.Minutes()
	if err != nil {
		return false
	}
	open, err := s.OpenTime.Minutes()
	if err != nil {
		return false
	}
	closing, err := s.CloseTime.Minutes()
	if err != nil {
		return false
	}
	if start < open || start >= closing {
		return false
	}
	return (start-open)%s.IntervalMinutes == 0
}
