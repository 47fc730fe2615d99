package get_day_calendar

import (
	"time"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
)

// Request модель запроса на получение календаря дня
type Request struct {
	Date       time.Time // Дата (время суток игнорируется)
	Privileged bool      // Администратор видит все слоты, клиент только доступные
}

// Response модель ответа с календарем дня
type Response struct {
	Date     time.Time         // Начало дня в часовом поясе мастерской
	Schedule *domain.Schedule  // Действующее расписание
	Slots    []domain.SlotView // Слоты по возрастанию времени
}
