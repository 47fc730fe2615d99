package reserve_slot

import "errors"

var (
	// ErrSlotFull возвращается, когда в слоте не осталось мест
	ErrSlotFull = errors.New("reserve_slot: slot is full")

	// ErrInvalidSlot возвращается для некорректного, прошедшего или нерабочего слота
	ErrInvalidSlot = errors.New("reserve_slot: invalid slot")

	// ErrTransientStore возвращается, когда хранилище не смогло выполнить транзакцию после всех повторов.
	// Клиент может повторить запрос.
	ErrTransientStore = errors.New("reserve_slot: store is temporarily unavailable")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reserve_slot: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reserve_slot: internal error")
)
