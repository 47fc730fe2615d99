package memstore

import (
	"context"
	"sort"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
	scheduleRepo "github.com/m04kA/SMC-RepairSlotService/internal/infra/storage/schedule"
)

// ScheduleRepository расписания в памяти. Ошибки совпадают с postgres-репозиторием.
type ScheduleRepository struct {
	store *Store
}

func (r *ScheduleRepository) GetByKey(ctx context.Context, key string) (*domain.Schedule, error) {
	var result *domain.Schedule
	err := r.store.run(ctx, func(st *state) error {
		s, ok := st.schedules.get(key)
		if !ok {
			return scheduleRepo.ErrScheduleNotFound
		}
		result = &s
		return nil
	})
	return result, err
}

func (r *ScheduleRepository) GetWithHierarchy(ctx context.Context, keys []string) (*domain.Schedule, error) {
	var result *domain.Schedule
	err := r.store.run(ctx, func(st *state) error {
		for _, key := range keys {
			if s, ok := st.schedules.get(key); ok {
				result = &s
				return nil
			}
		}
		return scheduleRepo.ErrScheduleNotFound
	})
	return result, err
}

func (r *ScheduleRepository) List(ctx context.Context) ([]*domain.Schedule, error) {
	schedules := make([]*domain.Schedule, 0)
	_ = r.store.run(ctx, func(st *state) error {
		st.schedules.each(func(_ string, s domain.Schedule) {
			sc := s
			schedules = append(schedules, &sc)
		})
		return nil
	})
	sort.Slice(schedules, func(i, j int) bool {
		return schedules[i].Key < schedules[j].Key
	})
	return schedules, nil
}

func (r *ScheduleRepository) Upsert(ctx context.Context, s *domain.Schedule) (*domain.Schedule, error) {
	err := r.store.run(ctx, func(st *state) error {
		now := r.store.now()
		if existing, ok := st.schedules.get(s.Key); ok {
			s.CreatedAt = existing.CreatedAt
		} else {
			s.CreatedAt = now
		}
		s.UpdatedAt = now
		st.schedules.put(s.Key, *s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *ScheduleRepository) Delete(ctx context.Context, key string) error {
	return r.store.run(ctx, func(st *state) error {
		if _, ok := st.schedules.get(key); !ok {
			return scheduleRepo.ErrScheduleNotFound
		}
		st.schedules.del(key)
		return nil
	})
}
