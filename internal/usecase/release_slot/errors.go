package release_slot

import "errors"

var (
	// ErrRepairJobNotFound возвращается, когда заявка не найдена
	ErrRepairJobNotFound = errors.New("release_slot: repair job not found")

	// ErrAccessDenied возвращается, когда заявку отменяет не владелец и не администратор
	ErrAccessDenied = errors.New("release_slot: access denied")

	// ErrCannotCancel возвращается, когда заявка в статусе, из которого отмена невозможна
	ErrCannotCancel = errors.New("release_slot: repair job cannot be cancelled")

	// ErrInconsistentSlot возвращается, когда у слота нет брони, соответствующей заявке
	ErrInconsistentSlot = errors.New("release_slot: slot has no matching booking")

	// ErrTransientStore возвращается, когда хранилище не смогло выполнить транзакцию после всех повторов
	ErrTransientStore = errors.New("release_slot: store is temporarily unavailable")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("release_slot: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("release_slot: internal error")
)
