package get_day_calendar

import (
	"fmt"
	"iter"
	"time"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
	"github.com/m04kA/SMC-RepairSlotService/pkg/types"
)

// SlotDescriptor слот сетки без данных о занятости
type SlotDescriptor struct {
	ID        domain.SlotID
	Timestamp time.Time
	TimeLabel string
	Capacity  int
}

// Generator строит сетку слотов дня: [Open, Close) с шагом IntervalMinutes.
// Слот включается, если его начало строго раньше Close.
type Generator struct {
	Open            types.TimeString
	Close           types.TimeString
	IntervalMinutes int
	Capacity        int
	Location        *time.Location
}

// NewGenerator создает генератор по расписанию
func NewGenerator(schedule *domain.Schedule, loc *time.Location) *Generator {
	return &Generator{
		Open:            schedule.OpenTime,
		Close:           schedule.CloseTime,
		IntervalMinutes: schedule.IntervalMinutes,
		Capacity:        schedule.Capacity,
		Location:        loc,
	}
}

// Validate проверяет, что по параметрам можно построить сетку
func (g *Generator) Validate() error {
	if _, _, err := g.bounds(); err != nil {
		return err
	}
	if g.IntervalMinutes <= 0 {
		return fmt.Errorf("%w: interval must be positive, got %d", ErrInvalidSchedule, g.IntervalMinutes)
	}
	if g.Capacity < 0 {
		return fmt.Errorf("%w: capacity must not be negative, got %d", ErrInvalidSchedule, g.Capacity)
	}
	return nil
}

// Slots возвращает ленивую конечную последовательность слотов на дату.
// Последовательность можно обходить повторно, результат всегда одинаков.
// Время считается по настенным часам Location, поэтому переход на летнее время не сдвигает сетку.
func (g *Generator) Slots(date time.Time) iter.Seq[SlotDescriptor] {
	return func(yield func(SlotDescriptor) bool) {
		if g.Validate() != nil {
			return
		}
		open, closing, _ := g.bounds()
		loc := g.location()
		y, m, d := date.Date()

		for minute := open; minute < closing; minute += g.IntervalMinutes {
			ts := time.Date(y, m, d, minute/60, minute%60, 0, 0, loc)
			// несуществующее локальное время (переход на летнее) пропускаем
			if ts.Hour()*60+ts.Minute() != minute {
				continue
			}
			desc := SlotDescriptor{
				ID:        domain.NewSlotID(ts),
				Timestamp: ts,
				TimeLabel: ts.Format(domain.TimeFormat),
				Capacity:  g.Capacity,
			}
			if !yield(desc) {
				return
			}
		}
	}
}

func (g *Generator) bounds() (int, int, error) {
	open, err := g.Open.Minutes()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: open: %v", ErrInvalidSchedule, err)
	}
	closing, err := g.Close.Minutes()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: close: %v", ErrInvalidSchedule, err)
	}
	if open >= closing {
		return 0, 0, fmt.Errorf("%w: open %s is not before close %s", ErrInvalidSchedule, g.Open, g.Close)
	}
	return open, closing, nil
}

func (g *Generator) location() *time.Location {
	if g.Location == nil {
		return time.UTC
	}
	return g.Location
}
