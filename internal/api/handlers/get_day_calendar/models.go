package get_day_calendar

import (
	"time"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
	getDayCalendar "github.com/m04kA/SMC-RepairSlotService/internal/usecase/get_day_calendar"
)

// DayCalendarResponse HTTP response model
type DayCalendarResponse struct {
	Date     string         `json:"date"`
	IsClosed bool           `json:"isClosed"`
	Schedule *ScheduleInfo  `json:"schedule,omitempty"`
	Slots    []CalendarSlot `json:"slots"`
}

// ScheduleInfo действующее расписание дня
type ScheduleInfo struct {
	Key             string `json:"key"`
	OpenTime        string `json:"openTime"`
	CloseTime       string `json:"closeTime"`
	IntervalMinutes int    `json:"intervalMinutes"`
	Capacity        int    `json:"capacity"`
}

// CalendarSlot слот календаря
type CalendarSlot struct {
	ID        string `json:"id"`        // "2024-06-01_10:30"
	Time      string `json:"time"`      // "10:30"
	Timestamp string `json:"timestamp"` // RFC3339
	Booked    int    `json:"booked"`
	Capacity  int    `json:"capacity"`
	Remaining int    `json:"remaining"`
	IsFull    bool   `json:"isFull"`
	IsPast    bool   `json:"isPast"`
}

// ToUseCaseRequest конвертирует параметры HTTP запроса в модель use case
func ToUseCaseRequest(dateStr string, privileged bool) (*getDayCalendar.Request, error) {
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		return nil, err
	}

	return &getDayCalendar.Request{
		Date:       date,
		Privileged: privileged,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getDayCalendar.Response) *DayCalendarResponse {
	result := &DayCalendarResponse{
		Date:  resp.Date.Format(domain.DateFormat),
		Slots: make([]CalendarSlot, 0, len(resp.Slots)),
	}

	if resp.Schedule != nil {
		result.IsClosed = resp.Schedule.IsClosed
		result.Schedule = &ScheduleInfo{
			Key:             resp.Schedule.Key,
			OpenTime:        resp.Schedule.OpenTime.String(),
			CloseTime:       resp.Schedule.CloseTime.String(),
			IntervalMinutes: resp.Schedule.IntervalMinutes,
			Capacity:        resp.Schedule.Capacity,
		}
	}

	for _, s := range resp.Slots {
		result.Slots = append(result.Slots, CalendarSlot{
			ID:        s.ID.String(),
			Time:      s.TimeLabel,
			Timestamp: s.Timestamp.Format(time.RFC3339),
			Booked:    s.Booked,
			Capacity:  s.Capacity,
			Remaining: s.Remaining(),
			IsFull:    s.IsFull,
			IsPast:    s.IsPast,
		})
	}

	return result
}
