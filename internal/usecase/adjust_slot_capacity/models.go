package adjust_slot_capacity

import "github.com/m04kA/SMC-RepairSlotService/internal/domain"

// Request модель запроса на изменение емкости слота
type Request struct {
	SlotID     string // "YYYY-MM-DD_HH:MM"
	Capacity   int    // Новая емкость
	Privileged bool   // Только администратор мастерской
}

// Response модель ответа с сохраненным слотом
type Response struct {
	SlotID   domain.SlotID
	Booked   int
	Capacity int
}
