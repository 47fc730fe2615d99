package get_day_calendar

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_day_calendar: invalid input data")

	// ErrInvalidSchedule возвращается, когда расписание не позволяет построить сетку слотов
	ErrInvalidSchedule = errors.New("get_day_calendar: invalid schedule")

	// ErrTransientStore возвращается, когда хранилище недоступно. Клиент может повторить запрос.
	ErrTransientStore = errors.New("get_day_calendar: store is temporarily unavailable")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_day_calendar: internal error")
)
