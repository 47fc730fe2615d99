package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

const timeStringLayout = "15:04"

// ErrInvalidTimeString возвращается при некорректном формате времени
var ErrInvalidTimeString = errors.New("invalid time string format")

// TimeString время суток в формате HH:MM (без даты и часового пояса)
type TimeString string

// NewTimeString создает TimeString из time.Time (секунды отбрасываются)
func NewTimeString(t time.Time) TimeString {
	return TimeString(t.Format(timeStringLayout))
}

// NewTimeStringFromString парсит строку HH:MM
func NewTimeStringFromString(s string) (TimeString, error) {
	ts := TimeString(s)
	if err := ts.Validate(); err != nil {
		return "", err
	}
	return ts, nil
}

// Validate проверяет формат HH:MM
func (t TimeString) Validate() error {
	if len(t) != len(timeStringLayout) {
		return fmt.Errorf("%w: %q", ErrInvalidTimeString, string(t))
	}
	if _, err := time.Parse(timeStringLayout, string(t)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimeString, string(t))
	}
	return nil
}

// IsZero возвращает true для пустого значения
func (t TimeString) IsZero() bool {
	return t == ""
}

// String возвращает строковое представление
func (t TimeString) String() string {
	return string(t)
}

// Minutes возвращает количество минут от начала суток
func (t TimeString) Minutes() (int, error) {
	parsed, err := time.Parse(timeStringLayout, string(t))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeString, string(t))
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// AddMinutes прибавляет минуты. Выход за пределы суток - ошибка.
func (t TimeString) AddMinutes(minutes int) (TimeString, error) {
	total, err := t.Minutes()
	if err != nil {
		return "", err
	}
	total += minutes
	if total < 0 || total >= 24*60 {
		return "", fmt.Errorf("%w: %s%+d minutes is out of day bounds", ErrInvalidTimeString, t, minutes)
	}
	return TimeString(fmt.Sprintf("%02d:%02d", total/60, total%60)), nil
}

// IsBefore строгое сравнение: t < other
func (t TimeString) IsBefore(other TimeString) bool {
	return t.compare(other) < 0
}

// IsAfter строгое сравнение: t > other
func (t TimeString) IsAfter(other TimeString) bool {
	return t.compare(other) > 0
}

// On возвращает момент времени на указанную дату в указанном часовом поясе
func (t TimeString) On(date time.Time, loc *time.Location) (time.Time, error) {
	total, err := t.Minutes()
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, total/60, total%60, 0, 0, loc), nil
}

// HH:MM фиксированной ширины сравнивается лексикографически
func (t TimeString) compare(other TimeString) int {
	switch {
	case t < other:
		return -1
	case t > other:
		return 1
	default:
		return 0
	}
}

// Value реализует driver.Valuer
func (t TimeString) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return string(t), nil
}

// Scan реализует sql.Scanner. Postgres TIME приходит как "HH:MM:SS".
func (t *TimeString) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*t = ""
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case time.Time:
		*t = NewTimeString(v)
		return nil
	default:
		return fmt.Errorf("%w: unsupported scan type %T", ErrInvalidTimeString, src)
	}

	if len(raw) >= len(timeStringLayout) {
		raw = raw[:len(timeStringLayout)]
	}
	parsed, err := NewTimeStringFromString(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
