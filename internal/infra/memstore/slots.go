package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
	slotRepo "github.com/m04kA/SMC-RepairSlotService/internal/infra/storage/slot"
)

// SlotRepository слоты в памяти. Ошибки совпадают с postgres-репозиторием.
type SlotRepository struct {
	store *Store
}

func (r *SlotRepository) GetByID(ctx context.Context, id domain.SlotID) (*domain.Slot, error) {
	var result *domain.Slot
	err := r.store.run(ctx, func(st *state) error {
		slot, ok := st.slots.get(id)
		if !ok {
			return slotRepo.ErrSlotNotFound
		}
		result = &slot
		return nil
	})
	return result, err
}

// GetForUpdate то же, что GetByID: внутри транзакции store уже заблокирован целиком
func (r *SlotRepository) GetForUpdate(ctx context.Context, id domain.SlotID) (*domain.Slot, error) {
	return r.GetByID(ctx, id)
}

func (r *SlotRepository) ListByRange(ctx context.Context, from, to time.Time) ([]*domain.Slot, error) {
	slots := make([]*domain.Slot, 0)
	err := r.store.run(ctx, func(st *state) error {
		st.slots.each(func(_ domain.SlotID, slot domain.Slot) {
			if !slot.Timestamp.Before(from) && slot.Timestamp.Before(to) {
				s := slot
				slots = append(slots, &s)
			}
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(slots, func(i, j int) bool {
		return slots[i].Timestamp.Before(slots[j].Timestamp)
	})
	return slots, nil
}

func (r *SlotRepository) Upsert(ctx context.Context, slot *domain.Slot) (*domain.Slot, error) {
	err := r.store.run(ctx, func(st *state) error {
		now := r.store.now()
		if existing, ok := st.slots.get(slot.ID); ok {
			slot.CreatedAt = existing.CreatedAt
		} else {
			slot.CreatedAt = now
		}
		slot.UpdatedAt = now
		st.slots.put(slot.ID, *slot)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return slot, nil
}
