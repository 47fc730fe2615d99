package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
	"github.com/m04kA/SMC-RepairSlotService/pkg/dbmetrics"
	"github.com/m04kA/SMC-RepairSlotService/pkg/psqlbuilder"
)

const tableSlots = "slots"

var slotColumns = []string{
	"id",
	"starts_at",
	"capacity",
	"booked",
	"created_at",
	"updated_at",
}

// Repository репозиторий занятости слотов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает слот по ID без блокировки
func (r *Repository) GetByID(ctx context.Context, id domain.SlotID) (*domain.Slot, error) {
	return r.get(ctx, "GetByID", id, false)
}

// GetForUpdate получает слот по ID.
// Внутри транзакции строка блокируется (FOR UPDATE) до commit/rollback.
func (r *Repository) GetForUpdate(ctx context.Context, id domain.SlotID) (*domain.Slot, error) {
	return r.get(ctx, "GetForUpdate", id, dbmetrics.IsInTransaction(ctx))
}

func (r *Repository) get(ctx context.Context, op string, id domain.SlotID, lock bool) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(slotColumns...).
		From(tableSlots).
		Where(squirrel.Eq{"id": string(id)})

	if lock {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %w", ErrBuildQuery, op, err)
	}

	slot, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan slot: %w", ErrScanRow, op, err)
	}
	return slot, nil
}

// ListByRange возвращает материализованные слоты с from <= starts_at < to, по возрастанию времени
func (r *Repository) ListByRange(ctx context.Context, from, to time.Time) ([]*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From(tableSlots).
		Where(squirrel.GtOrEq{"starts_at": from}).
		Where(squirrel.Lt{"starts_at": to}).
		OrderBy("starts_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByRange - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByRange - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	slots := make([]*domain.Slot, 0)
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListByRange - scan row: %w", ErrScanRow, err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByRange - rows error: %w", ErrScanRow, err)
	}

	return slots, nil
}

// Upsert создает слот или перезаписывает его capacity и booked.
// Проверка booked <= capacity выполняется вызывающим use case, в БД продублирована CHECK-ограничением.
func (r *Repository) Upsert(ctx context.Context, slot *domain.Slot) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableSlots).
		Columns("id", "starts_at", "capacity", "booked").
		Values(string(slot.ID), slot.Timestamp, slot.Capacity, slot.Booked).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			capacity = EXCLUDED.capacity,
			booked = EXCLUDED.booked,
			updated_at = NOW()
		RETURNING created_at, updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %w", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute upsert: %w", ErrExecQuery, err)
	}

	slot.CreatedAt = createdAt.Time
	slot.UpdatedAt = updatedAt.Time
	return slot, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSlot(row rowScanner) (*domain.Slot, error) {
	var (
		slot                 domain.Slot
		id                   string
		createdAt, updatedAt sql.NullTime
	)

	if err := row.Scan(&id, &slot.Timestamp, &slot.Capacity, &slot.Booked, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	slot.ID = domain.SlotID(id)
	slot.CreatedAt = createdAt.Time
	slot.UpdatedAt = updatedAt.Time
	return &slot, nil
}
