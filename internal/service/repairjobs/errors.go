package repairjobs

import "errors"

var (
	// ErrRepairJobNotFound возвращается, когда заявка не найдена
	ErrRepairJobNotFound = errors.New("repair job not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInvalidTransition возвращается, когда заявку нельзя перевести в запрошенный статус
	ErrInvalidTransition = errors.New("invalid repair job status transition")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
