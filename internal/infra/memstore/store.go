// Package memstore хранилище в памяти процесса с теми же контрактами, что и postgres/mongo.
// Транзакции сериализуются мьютексом, записи копятся в overlay и применяются только при commit.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
)

// Store общее состояние для репозиториев memstore
type Store struct {
	mu        sync.Mutex
	slots     map[domain.SlotID]domain.Slot
	jobs      map[uuid.UUID]domain.RepairJob
	schedules map[string]domain.Schedule
	now       func() time.Time
}

// New создает пустое хранилище
func New() *Store {
	return &Store{
		slots:     make(map[domain.SlotID]domain.Slot),
		jobs:      make(map[uuid.UUID]domain.RepairJob),
		schedules: make(map[string]domain.Schedule),
		now:       time.Now,
	}
}

// Slots репозиторий слотов
func (s *Store) Slots() *SlotRepository {
	return &SlotRepository{store: s}
}

// RepairJobs репозиторий заявок
func (s *Store) RepairJobs() *RepairJobRepository {
	return &RepairJobRepository{store: s}
}

// Schedules репозиторий расписаний
func (s *Store) Schedules() *ScheduleRepository {
	return &ScheduleRepository{store: s}
}

// TxManager менеджер транзакций
func (s *Store) TxManager() *TxManager {
	return &TxManager{store: s}
}

// state набор overlay-ов одной транзакции
type state struct {
	store     *Store
	slots     *overlay[domain.SlotID, domain.Slot]
	jobs      *overlay[uuid.UUID, domain.RepairJob]
	schedules *overlay[string, domain.Schedule]
}

func (s *Store) newState() *state {
	return &state{
		store:     s,
		slots:     newOverlay(s.slots),
		jobs:      newOverlay(s.jobs),
		schedules: newOverlay(s.schedules),
	}
}

func (st *state) commit() {
	st.slots.commit()
	st.jobs.commit()
	st.schedules.commit()
}

type stateKey struct{}

func (s *Store) stateFrom(ctx context.Context) (*state, bool) {
	st, ok := ctx.Value(stateKey{}).(*state)
	if !ok || st.store != s {
		return nil, false
	}
	return st, true
}

// run выполняет fn в текущей транзакции или, если ее нет, в отдельной автокоммит-транзакции
func (s *Store) run(ctx context.Context, fn func(st *state) error) error {
	if st, ok := s.stateFrom(ctx); ok {
		return fn(st)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.newState()
	if err := fn(st); err != nil {
		return err
	}
	st.commit()
	return nil
}

// TxManager сериализует транзакции: в каждый момент открыта не более чем одна
type TxManager struct {
	store *Store
}

// DoSerializable выполняет fn атомарно. При ошибке все записи fn отбрасываются.
func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := m.store.stateFrom(ctx); ok {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	st := m.store.newState()
	if err := fn(context.WithValue(ctx, stateKey{}, st)); err != nil {
		return err
	}
	st.commit()
	return nil
}

// overlay незакоммиченные изменения поверх base
type overlay[K comparable, V any] struct {
	base    map[K]V
	staged  map[K]V
	deleted map[K]struct{}
}

func newOverlay[K comparable, V any](base map[K]V) *overlay[K, V] {
	return &overlay[K, V]{
		base:    base,
		staged:  make(map[K]V),
		deleted: make(map[K]struct{}),
	}
}

func (o *overlay[K, V]) get(k K) (V, bool) {
	if v, ok := o.staged[k]; ok {
		return v, true
	}
	if _, ok := o.deleted[k]; ok {
		var zero V
		return zero, false
	}
	v, ok := o.base[k]
	return v, ok
}

func (o *overlay[K, V]) put(k K, v V) {
	delete(o.deleted, k)
	o.staged[k] = v
}

func (o *overlay[K, V]) del(k K) {
	delete(o.staged, k)
	o.deleted[k] = struct{}{}
}

func (o *overlay[K, V]) each(fn func(k K, v V)) {
	for k, v := range o.base {
		if _, ok := o.staged[k]; ok {
			continue
		}
		if _, ok := o.deleted[k]; ok {
			continue
		}
		fn(k, v)
	}
	for k, v := range o.staged {
		fn(k, v)
	}
}

func (o *overlay[K, V]) commit() {
	for k := range o.deleted {
		delete(o.base, k)
	}
	for k, v := range o.staged {
		o.base[k] = v
	}
}
