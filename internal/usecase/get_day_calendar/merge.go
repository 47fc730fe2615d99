package get_day_calendar

import (
	"iter"
	"time"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
)

// merge накладывает сохраненную занятость на сетку слотов.
// Отсутствующий в хранилище слот считается пустым с емкостью из расписания.
// Для клиента полные и прошедшие слоты отбрасываются.
func merge(grid iter.Seq[SlotDescriptor], stored []*domain.Slot, now time.Time, privileged bool) []domain.SlotView {
	byID := make(map[domain.SlotID]*domain.Slot, len(stored))
	for _, s := range stored {
		byID[s.ID] = s
	}

	views := make([]domain.SlotView, 0)
	for desc := range grid {
		view := domain.SlotView{
			ID:        desc.ID,
			TimeLabel: desc.TimeLabel,
			Timestamp: desc.Timestamp,
			Capacity:  desc.Capacity,
		}
		if s, ok := byID[desc.ID]; ok {
			view.Booked = s.Booked
			view.Capacity = s.Capacity
		}
		view.IsFull = view.Booked >= view.Capacity
		view.IsPast = desc.Timestamp.Before(now)

		if !privileged && (view.IsFull || view.IsPast) {
			continue
		}
		views = append(views, view)
	}

	return views
}
