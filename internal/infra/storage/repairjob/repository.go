package repairjob

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
	"github.com/m04kA/SMC-RepairSlotService/pkg/dbmetrics"
	"github.com/m04kA/SMC-RepairSlotService/pkg/psqlbuilder"
)

const tableRepairJobs = "repair_jobs"

var repairJobColumns = []string{
	"id",
	"customer_id",
	"preferred_slot",
	"status",
	"device_type",
	"device_brand",
	"device_model",
	"issue_description",
	"contact_phone",
	"notes",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий заявок на ремонт
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория заявок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает заявку.
// Вызывается в одной транзакции с увеличением booked у слота (см. reserve_slot).
func (r *Repository) Create(ctx context.Context, job *domain.RepairJob) (*domain.RepairJob, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}

	query, args, err := psqlbuilder.Insert(tableRepairJobs).
		Columns(
			"id",
			"customer_id",
			"preferred_slot",
			"status",
			"device_type",
			"device_brand",
			"device_model",
			"issue_description",
			"contact_phone",
			"notes",
		).
		Values(
			job.ID,
			job.CustomerID,
			string(job.PreferredSlot),
			job.Status,
			job.DeviceType,
			job.DeviceBrand,
			job.DeviceModel,
			job.IssueDescription,
			job.ContactPhone,
			job.Notes,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	job.CreatedAt = createdAt.Time
	job.UpdatedAt = updatedAt.Time
	return job, nil
}

// GetByID получает заявку по ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RepairJob, error) {
	return r.get(ctx, "GetByID", id, false)
}

// GetForUpdate получает заявку по ID с блокировкой строки внутри транзакции
func (r *Repository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.RepairJob, error) {
	return r.get(ctx, "GetForUpdate", id, dbmetrics.IsInTransaction(ctx))
}

func (r *Repository) get(ctx context.Context, op string, id uuid.UUID, lock bool) (*domain.RepairJob, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(repairJobColumns...).
		From(tableRepairJobs).
		Where(squirrel.Eq{"id": id})

	if lock {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %w", ErrBuildQuery, op, err)
	}

	job, err := scanRepairJob(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRepairJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan repair job: %w", ErrScanRow, op, err)
	}
	return job, nil
}

// ListBySlot получает заявки слота. По умолчанию только активные (держащие место).
func (r *Repository) ListBySlot(ctx context.Context, slotID domain.SlotID, includeInactive bool) ([]*domain.RepairJob, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(repairJobColumns...).
		From(tableRepairJobs).
		Where(squirrel.Eq{"preferred_slot": string(slotID)}).
		OrderBy("created_at ASC")

	if !includeInactive {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": inactiveStatusStrings()})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListBySlot - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListBySlot - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanRepairJobs(rows)
}

// ListByCustomer получает заявки клиента, опционально с фильтром по статусу
func (r *Repository) ListByCustomer(ctx context.Context, customerID string, status *domain.RepairJobStatus) ([]*domain.RepairJob, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(repairJobColumns...).
		From(tableRepairJobs).
		Where(squirrel.Eq{"customer_id": customerID}).
		OrderBy("preferred_slot DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByCustomer - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByCustomer - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanRepairJobs(rows)
}

// UpdateStatus переводит заявку из статуса from в статус to.
// Обновление условное: если статус уже изменился (например, заявку отменили), строка не меняется и возвращается ErrRepairJobNotFound.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.RepairJobStatus) error {
	if !to.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableRepairJobs).
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": from}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %w", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "UpdateStatus", query, args)
}

// Cancel переводит заявку в отмененный статус с указанием причины
func (r *Repository) Cancel(ctx context.Context, id uuid.UUID, status domain.RepairJobStatus, reason *string, cancelledAt time.Time) error {
	if status != domain.StatusCancelledByCustomer && status != domain.StatusCancelledByShop {
		return fmt.Errorf("%w: %q is not a cancellation status", ErrInvalidStatus, status)
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableRepairJobs).
		Set("status", status).
		Set("cancellation_reason", reason).
		Set("cancelled_at", cancelledAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %w", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, executor, "Cancel", query, args)
}

func (r *Repository) execAffectingOne(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %w", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrRepairJobNotFound
	}
	return nil
}

// scanRepairJobs сканирует результаты запроса в слайс заявок
func (r *Repository) scanRepairJobs(rows *sql.Rows) ([]*domain.RepairJob, error) {
	jobs := make([]*domain.RepairJob, 0)

	for rows.Next() {
		job, err := scanRepairJob(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanRepairJobs - scan row: %w", ErrScanRow, err)
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanRepairJobs - rows error: %w", ErrScanRow, err)
	}

	return jobs, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRepairJob(row rowScanner) (*domain.RepairJob, error) {
	var (
		job                  domain.RepairJob
		preferredSlot        string
		cancelledAt          sql.NullTime
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&job.ID,
		&job.CustomerID,
		&preferredSlot,
		&job.Status,
		&job.DeviceType,
		&job.DeviceBrand,
		&job.DeviceModel,
		&job.IssueDescription,
		&job.ContactPhone,
		&job.Notes,
		&job.CancellationReason,
		&cancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	job.PreferredSlot = domain.SlotID(preferredSlot)
	if cancelledAt.Valid {
		t := cancelledAt.Time
		job.CancelledAt = &t
	}
	job.CreatedAt = createdAt.Time
	job.UpdatedAt = updatedAt.Time
	return &job, nil
}

func inactiveStatusStrings() []string {
	statuses := make([]string, len(domain.InactiveStatuses))
	for i, s := range domain.InactiveStatuses {
		statuses[i] = string(s)
	}
	return statuses
}
