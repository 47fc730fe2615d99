package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
	"github.com/m04kA/SMC-RepairSlotService/internal/infra/memstore"
	"github.com/m04kA/SMC-RepairSlotService/internal/service/schedule/models"
	"github.com/m04kA/SMC-RepairSlotService/pkg/logger"
)

func newTestService(t *testing.T) (*Service, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	defaults := domain.Schedule{
		OpenTime:        "10:00",
		CloseTime:       "19:00",
		IntervalMinutes: 30,
		Capacity:        2,
	}
	return NewService(store.Schedules(), defaults, logger.Nop{}), store
}

func TestResolve_FallsBackToConfiguredDefaults(t *testing.T) {
	svc, _ := newTestService(t)

	got, err := svc.Resolve(context.Background(), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, domain.ScheduleKeyDefault, got.Key)
	assert.Equal(t, 2, got.Capacity)
	assert.Equal(t, 30, got.IntervalMinutes)
}

func TestResolve_Priority(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	saturday := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	for _, req := range []*models.UpsertScheduleRequest{
		{Key: "default", OpenTime: "09:00", CloseTime: "18:00", IntervalMinutes: 60, Capacity: 3, Privileged: true},
		{Key: "weekday:6", OpenTime: "11:00", CloseTime: "15:00", IntervalMinutes: 30, Capacity: 1, Privileged: true},
	} {
		_, err := svc.Upsert(ctx, req)
		require.NoError(t, err)
	}

	got, err := svc.Resolve(ctx, saturday)
	require.NoError(t, err)
	assert.Equal(t, "weekday:6", got.Key)

	_, err = svc.Upsert(ctx, &models.UpsertScheduleRequest{Key: "date:2024-06-01", IsClosed: true, Privileged: true})
	require.NoError(t, err)

	got, err = svc.Resolve(ctx, saturday)
	require.NoError(t, err)
	assert.Equal(t, "date:2024-06-01", got.Key)
	assert.True(t, got.IsClosed)

	// другой день недели берет сохраненный default
	got, err = svc.Resolve(ctx, saturday.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, "default", got.Key)
	assert.Equal(t, 3, got.Capacity)
}

func TestUpsert_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	tests := []struct {
		name string
		req  models.UpsertScheduleRequest
	}{
		{name: "bad key", req: models.UpsertScheduleRequest{Key: "monday", OpenTime: "10:00", CloseTime: "19:00", IntervalMinutes: 30, Capacity: 2}},
		{name: "open after close", req: models.UpsertScheduleRequest{Key: "default", OpenTime: "19:00", CloseTime: "10:00", IntervalMinutes: 30, Capacity: 2}},
		{name: "bad time", req: models.UpsertScheduleRequest{Key: "default", OpenTime: "9:00", CloseTime: "19:00", IntervalMinutes: 30, Capacity: 2}},
		{name: "tiny interval", req: models.UpsertScheduleRequest{Key: "default", OpenTime: "10:00", CloseTime: "19:00", IntervalMinutes: 1, Capacity: 2}},
		{name: "zero capacity", req: models.UpsertScheduleRequest{Key: "default", OpenTime: "10:00", CloseTime: "19:00", IntervalMinutes: 30}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			req.Privileged = true
			_, err := svc.Upsert(ctx, &req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestUpsertAndDelete_RequirePrivilege(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Upsert(ctx, &models.UpsertScheduleRequest{Key: "default", OpenTime: "10:00", CloseTime: "19:00", IntervalMinutes: 30, Capacity: 2})
	assert.ErrorIs(t, err, ErrAccessDenied)

	assert.ErrorIs(t, svc.Delete(ctx, "default", false), ErrAccessDenied)
}

func TestDelete_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	assert.ErrorIs(t, svc.Delete(context.Background(), "weekday:1", true), ErrScheduleNotFound)
}

type failingRepo struct {
	ScheduleRepository
}

func (failingRepo) GetWithHierarchy(context.Context, []string) (*domain.Schedule, error) {
	return nil, errors.New("connection refused")
}

func TestResolve_RepositoryError(t *testing.T) {
	svc := NewService(failingRepo{}, domain.Schedule{}, logger.Nop{})

	_, err := svc.Resolve(context.Background(), time.Now())
	assert.ErrorIs(t, err, ErrInternal)
}
