package schedule

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
	"github.com/m04kA/SMC-RepairSlotService/pkg/dbmetrics"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewRepository(dbmetrics.NewPlainDB(db)), mock
}

func scheduleRows() *sqlmock.Rows {
	return sqlmock.NewRows(scheduleColumns)
}

func TestGetWithHierarchy_PrefersMostSpecificKey(t *testing.T) {
	repo, mock := newMockRepository(t)
	ts := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	keys := []string{"date:2024-06-01", "weekday:6", "default"}

	// строки приходят в порядке БД, приоритет задает порядок keys
	rows := scheduleRows().
		AddRow("default", "09:00", "18:00", 30, 2, false, ts, ts).
		AddRow("weekday:6", "10:00", "14:00", 60, 1, false, ts, ts)

	mock.ExpectQuery(regexp.QuoteMeta("FROM schedules WHERE key IN ($1,$2,$3)")).
		WithArgs("date:2024-06-01", "weekday:6", "default").
		WillReturnRows(rows)

	s, err := repo.GetWithHierarchy(context.Background(), keys)
	require.NoError(t, err)
	assert.Equal(t, "weekday:6", s.Key)
	assert.Equal(t, 60, s.IntervalMinutes)
	assert.EqualValues(t, "10:00", s.OpenTime)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetWithHierarchy_NothingConfigured(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM schedules WHERE key IN ($1,$2)")).
		WillReturnRows(scheduleRows())

	_, err := repo.GetWithHierarchy(context.Background(), []string{"weekday:1", "default"})
	assert.ErrorIs(t, err, ErrScheduleNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByKey_NotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM schedules WHERE key = $1")).
		WithArgs("date:2024-06-01").
		WillReturnRows(scheduleRows())

	_, err := repo.GetByKey(context.Background(), "date:2024-06-01")
	assert.ErrorIs(t, err, ErrScheduleNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_ReplacesByKey(t *testing.T) {
	repo, mock := newMockRepository(t)
	created := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO schedules (key,open_time,close_time,interval_minutes,capacity,is_closed) VALUES ($1,$2,$3,$4,$5,$6) ON CONFLICT (key) DO UPDATE SET")+
		".*"+regexp.QuoteMeta("RETURNING created_at, updated_at")).
		WithArgs(domain.ScheduleKeyDefault, "09:00", "18:00", 30, 2, false).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(created, updated))

	s, err := repo.Upsert(context.Background(), &domain.Schedule{
		Key:             domain.ScheduleKeyDefault,
		OpenTime:        "09:00",
		CloseTime:       "18:00",
		IntervalMinutes: 30,
		Capacity:        2,
	})
	require.NoError(t, err)
	assert.Equal(t, created, s.CreatedAt)
	assert.Equal(t, updated, s.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	deleteByKey := regexp.QuoteMeta("DELETE FROM schedules WHERE key = $1")

	t.Run("deleted", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectExec(deleteByKey).WithArgs("weekday:0").WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Delete(context.Background(), "weekday:0"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectExec(deleteByKey).WithArgs("weekday:0").WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(context.Background(), "weekday:0"), ErrScheduleNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
