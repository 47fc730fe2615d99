package adjust_slot_capacity

import "errors"

var (
	// ErrAccessDenied возвращается, когда емкость меняет не администратор
	ErrAccessDenied = errors.New("adjust_slot_capacity: access denied")

	// ErrInvalidSlot возвращается для некорректного, прошедшего или нерабочего слота
	ErrInvalidSlot = errors.New("adjust_slot_capacity: invalid slot")

	// ErrCapacityBelowBooked возвращается, когда новая емкость меньше числа занятых мест
	ErrCapacityBelowBooked = errors.New("adjust_slot_capacity: capacity is below booked seats")

	// ErrTransientStore возвращается, когда хранилище не смогло выполнить транзакцию после всех повторов
	ErrTransientStore = errors.New("adjust_slot_capacity: store is temporarily unavailable")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("adjust_slot_capacity: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("adjust_slot_capacity: internal error")
)
