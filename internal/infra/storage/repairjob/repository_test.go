package repairjob

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
	"github.com/m04kA/SMC-RepairSlotService/pkg/dbmetrics"
	"github.com/m04kA/SMC-RepairSlotService/pkg/txmanager"
)

func newMockRepository(t *testing.T) (*Repository, *dbmetrics.PlainDB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	plain := dbmetrics.NewPlainDB(db)
	return NewRepository(plain), plain, mock
}

func jobRow(id uuid.UUID, status domain.RepairJobStatus) *sqlmock.Rows {
	ts := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(repairJobColumns).AddRow(
		id.String(), "customer-1", "2024-06-01_10:30", string(status),
		"phone", nil, nil, "broken screen", nil, nil,
		nil, nil, ts, ts,
	)
}

func TestCreate_ReturnsTimestamps(t *testing.T) {
	repo, _, mock := newMockRepository(t)
	created := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO repair_jobs (id,customer_id,preferred_slot,status,")+
		".*"+regexp.QuoteMeta("RETURNING created_at, updated_at")).
		WithArgs(sqlmock.AnyArg(), "customer-1", "2024-06-01_10:30", "pending",
			"phone", nil, nil, "broken screen", nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(created, created))

	job, err := repo.Create(context.Background(), &domain.RepairJob{
		CustomerID:       "customer-1",
		PreferredSlot:    "2024-06-01_10:30",
		Status:           domain.StatusPending,
		DeviceType:       "phone",
		IssueDescription: "broken screen",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, job.ID)
	assert.Equal(t, created, job.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetForUpdate_LocksOnlyInsideTransaction(t *testing.T) {
	repo, plain, mock := newMockRepository(t)
	ctx := context.Background()
	id := uuid.New()
	selectByID := regexp.QuoteMeta("FROM repair_jobs WHERE id = $1")

	mock.ExpectQuery(selectByID + "$").WithArgs(id.String()).WillReturnRows(jobRow(id, domain.StatusPending))
	mock.ExpectBegin()
	mock.ExpectQuery(selectByID + regexp.QuoteMeta(" FOR UPDATE") + "$").WithArgs(id.String()).WillReturnRows(jobRow(id, domain.StatusConfirmed))
	mock.ExpectRollback()

	job, err := repo.GetForUpdate(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, job.Status)
	assert.Equal(t, domain.SlotID("2024-06-01_10:30"), job.PreferredSlot)
	assert.Nil(t, job.CancelledAt)

	tx, err := plain.BeginTx(ctx, nil)
	require.NoError(t, err)
	job, err = repo.GetForUpdate(dbmetrics.WithTx(ctx, tx), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, job.Status)

	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	repo, _, mock := newMockRepository(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM repair_jobs WHERE id = $1")).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows(repairJobColumns))

	_, err := repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrRepairJobNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_ConditionalOnCurrentStatus(t *testing.T) {
	updateStatus := regexp.QuoteMeta("UPDATE repair_jobs SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3")

	t.Run("applied", func(t *testing.T) {
		repo, _, mock := newMockRepository(t)
		id := uuid.New()

		mock.ExpectExec(updateStatus).
			WithArgs("confirmed", id.String(), "pending").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.UpdateStatus(context.Background(), id, domain.StatusPending, domain.StatusConfirmed))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("status moved on", func(t *testing.T) {
		repo, _, mock := newMockRepository(t)
		id := uuid.New()

		mock.ExpectExec(updateStatus).
			WithArgs("confirmed", id.String(), "pending").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(context.Background(), id, domain.StatusPending, domain.StatusConfirmed)
		assert.ErrorIs(t, err, ErrRepairJobNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid target status", func(t *testing.T) {
		repo, _, mock := newMockRepository(t)

		err := repo.UpdateStatus(context.Background(), uuid.New(), domain.StatusPending, "archived")
		assert.ErrorIs(t, err, ErrInvalidStatus)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCancel_RejectsNonCancellationStatus(t *testing.T) {
	repo, _, mock := newMockRepository(t)

	err := repo.Cancel(context.Background(), uuid.New(), domain.StatusCompleted, nil, time.Now())
	assert.ErrorIs(t, err, ErrInvalidStatus)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListBySlot_ExcludesInactiveByDefault(t *testing.T) {
	repo, _, mock := newMockRepository(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM repair_jobs WHERE preferred_slot = $1 AND status NOT IN ($2,$3) ORDER BY created_at ASC")).
		WithArgs("2024-06-01_10:30", "cancelled_by_customer", "cancelled_by_shop").
		WillReturnRows(jobRow(id, domain.StatusPending))

	jobs, err := repo.ListBySlot(context.Background(), "2024-06-01_10:30", false)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, id, jobs[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecErrorsStayClassifiable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{name: "serialization failure", err: &pq.Error{Code: "40001"}, retryable: true},
		{name: "connection does not exist", err: &pq.Error{Code: "08003"}, retryable: true},
		{name: "cannot connect now", err: &pq.Error{Code: "57P03"}, retryable: true},
		{name: "foreign key violation", err: &pq.Error{Code: "23503"}},
		{name: "plain error", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _, mock := newMockRepository(t)
			mock.ExpectExec(regexp.QuoteMeta("UPDATE repair_jobs")).WillReturnError(tt.err)

			err := repo.UpdateStatus(context.Background(), uuid.New(), domain.StatusPending, domain.StatusConfirmed)
			require.ErrorIs(t, err, ErrExecQuery)

			_, retryable := txmanager.Classify(err)
			assert.Equal(t, tt.retryable, retryable)
		})
	}
}
