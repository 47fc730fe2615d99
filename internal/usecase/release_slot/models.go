package release_slot

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
)

// Request модель запроса на отмену заявки и освобождение места
type Request struct {
	RepairJobID uuid.UUID // ID заявки
	ActorID     string    // Кто отменяет
	Privileged  bool      // Администратор мастерской может отменить любую заявку
	Reason      *string   // Причина отмены (опционально)
}

// Response модель ответа с результатом отмены
type Response struct {
	RepairJobID uuid.UUID              // ID заявки
	CustomerID  string                 // Владелец заявки
	SlotID      domain.SlotID          // Освобожденный слот
	Status      domain.RepairJobStatus // Новый статус заявки
	Booked      int                    // Занято мест после освобождения
	Capacity    int                    // Емкость слота
	CancelledAt time.Time              // Время отмены
}
