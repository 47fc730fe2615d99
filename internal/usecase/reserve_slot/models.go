package reserve_slot

import (
	"github.com/google/uuid"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
)

// Request модель запроса на бронирование места в слоте
type Request struct {
	SlotID          string   // "YYYY-MM-DD_HH:MM" в часовом поясе мастерской
	CapacityDefault int      // Емкость нового слота; <= 0 - емкость из расписания
	Job             JobInput // Данные заявки на ремонт
}

// JobInput данные заявки, создаваемой вместе с бронированием
type JobInput struct {
	CustomerID       string  // ID клиента
	DeviceType       string  // Тип устройства (phone, laptop, ...)
	DeviceBrand      *string // Производитель (опционально)
	DeviceModel      *string // Модель (опционально)
	IssueDescription string  // Описание неисправности
	ContactPhone     *string // Контактный телефон (опционально)
	Notes            *string // Дополнительные заметки (опционально)
}

// Response модель ответа с результатом бронирования
type Response struct {
	SlotID      domain.SlotID     // ID слота
	RepairJobID uuid.UUID         // ID созданной заявки
	Booked      int               // Занято мест после бронирования
	Capacity    int               // Емкость слота
	Job         *domain.RepairJob // Созданная заявка
}
