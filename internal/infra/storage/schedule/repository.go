package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
	"github.com/m04kA/SMC-RepairSlotService/pkg/dbmetrics"
	"github.com/m04kA/SMC-RepairSlotService/pkg/psqlbuilder"
)

const tableSchedules = "schedules"

var scheduleColumns = []string{
	"key",
	"open_time",
	"close_time",
	"interval_minutes",
	"capacity",
	"is_closed",
	"created_at",
	"updated_at",
}

// Repository репозиторий расписаний (рабочие часы, интервал, вместимость)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByKey получает расписание по ключу (default, weekday:N, date:YYYY-MM-DD)
func (r *Repository) GetByKey(ctx context.Context, key string) (*domain.Schedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(scheduleColumns...).
		From(tableSchedules).
		Where(squirrel.Eq{"key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByKey - build select query: %w", ErrBuildQuery, err)
	}

	s, err := scanSchedule(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByKey - scan schedule: %w", ErrScanRow, err)
	}
	return s, nil
}

// GetWithHierarchy возвращает первое найденное расписание из keys.
// keys передаются в порядке приоритета (см. domain.ScheduleKeysFor).
// Если не найдено ни одного, возвращает ErrScheduleNotFound.
func (r *Repository) GetWithHierarchy(ctx context.Context, keys []string) (*domain.Schedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(scheduleColumns...).
		From(tableSchedules).
		Where(squirrel.Eq{"key": keys}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetWithHierarchy - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetWithHierarchy - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	found, err := r.scanSchedules(rows)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]*domain.Schedule, len(found))
	for _, s := range found {
		byKey[s.Key] = s
	}
	for _, key := range keys {
		if s, ok := byKey[key]; ok {
			return s, nil
		}
	}
	return nil, ErrScheduleNotFound
}

// List получает все сохраненные расписания
func (r *Repository) List(ctx context.Context) ([]*domain.Schedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(scheduleColumns...).
		From(tableSchedules).
		OrderBy("key ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanSchedules(rows)
}

// Upsert создает или заменяет расписание с ключом s.Key
func (r *Repository) Upsert(ctx context.Context, s *domain.Schedule) (*domain.Schedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableSchedules).
		Columns("key", "open_time", "close_time", "interval_minutes", "capacity", "is_closed").
		Values(s.Key, s.OpenTime, s.CloseTime, s.IntervalMinutes, s.Capacity, s.IsClosed).
		Suffix(`ON CONFLICT (key) DO UPDATE SET
			open_time = EXCLUDED.open_time,
			close_time = EXCLUDED.close_time,
			interval_minutes = EXCLUDED.interval_minutes,
			capacity = EXCLUDED.capacity,
			is_closed = EXCLUDED.is_closed,
			updated_at = NOW()
		RETURNING created_at, updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %w", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute upsert: %w", ErrExecQuery, err)
	}

	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time
	return s, nil
}

// Delete удаляет расписание по ключу
func (r *Repository) Delete(ctx context.Context, key string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(tableSchedules).
		Where(squirrel.Eq{"key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %w", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

func (r *Repository) scanSchedules(rows *sql.Rows) ([]*domain.Schedule, error) {
	schedules := make([]*domain.Schedule, 0)

	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanSchedules - scan row: %w", ErrScanRow, err)
		}
		schedules = append(schedules, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanSchedules - rows error: %w", ErrScanRow, err)
	}
	return schedules, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSchedule(row rowScanner) (*domain.Schedule, error) {
	var (
		s                    domain.Schedule
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&s.Key,
		&s.OpenTime,
		&s.CloseTime,
		&s.IntervalMinutes,
		&s.Capacity,
		&s.IsClosed,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time
	return &s, nil
}
