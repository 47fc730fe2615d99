package repairjobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
	"github.com/m04kA/SMC-RepairSlotService/internal/infra/memstore"
	"github.com/m04kA/SMC-RepairSlotService/internal/service/repairjobs/models"
	"github.com/m04kA/SMC-RepairSlotService/pkg/logger"
	"github.com/m04kA/SMC-RepairSlotService/pkg/ptr"
)

func seedJob(t *testing.T, store *memstore.Store, customerID string, slotID domain.SlotID, status domain.RepairJobStatus) *domain.RepairJob {
	t.Helper()
	job, err := store.RepairJobs().Create(context.Background(), &domain.RepairJob{
		ID:               uuid.New(),
		CustomerID:       customerID,
		PreferredSlot:    slotID,
		Status:           status,
		DeviceType:       "phone",
		IssueDescription: "cracked screen",
	})
	require.NoError(t, err)
	return job
}

func TestGetByID_Access(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := NewService(store.RepairJobs(), time.UTC, logger.Nop{})
	job := seedJob(t, store, "alice", "2024-06-01_10:00", domain.StatusPending)

	got, err := svc.GetByID(ctx, job.ID, "alice", false)
	require.NoError(t, err)
	assert.Equal(t, job.ID.String(), got.ID)
	assert.Equal(t, "2024-06-01_10:00", got.PreferredSlot)

	_, err = svc.GetByID(ctx, job.ID, "bob", false)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.GetByID(ctx, job.ID, "bob", true)
	assert.NoError(t, err)

	_, err = svc.GetByID(ctx, uuid.New(), "alice", false)
	assert.ErrorIs(t, err, ErrRepairJobNotFound)
}

func TestListByCustomer(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := NewService(store.RepairJobs(), time.UTC, logger.Nop{})
	seedJob(t, store, "alice", "2024-06-01_10:00", domain.StatusPending)
	seedJob(t, store, "alice", "2024-06-02_10:00", domain.StatusCancelledByCustomer)
	seedJob(t, store, "bob", "2024-06-01_10:00", domain.StatusPending)

	all, err := svc.ListByCustomer(ctx, &models.ListByCustomerRequest{CustomerID: "alice"})
	require.NoError(t, err)
	assert.Len(t, all.RepairJobs, 2)

	pending, err := svc.ListByCustomer(ctx, &models.ListByCustomerRequest{CustomerID: "alice", Status: ptr.Ptr("pending")})
	require.NoError(t, err)
	require.Len(t, pending.RepairJobs, 1)
	assert.Equal(t, "pending", pending.RepairJobs[0].Status)

	_, err = svc.ListByCustomer(ctx, &models.ListByCustomerRequest{CustomerID: "alice", Status: ptr.Ptr("lost")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListBySlot(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := NewService(store.RepairJobs(), time.UTC, logger.Nop{})
	seedJob(t, store, "alice", "2024-06-01_10:00", domain.StatusPending)
	seedJob(t, store, "bob", "2024-06-01_10:00", domain.StatusCancelledByShop)

	_, err := svc.ListBySlot(ctx, &models.ListBySlotRequest{SlotID: "2024-06-01_10:00"})
	assert.ErrorIs(t, err, ErrAccessDenied)

	active, err := svc.ListBySlot(ctx, &models.ListBySlotRequest{SlotID: "2024-06-01_10:00", Privileged: true})
	require.NoError(t, err)
	assert.Len(t, active.RepairJobs, 1)

	all, err := svc.ListBySlot(ctx, &models.ListBySlotRequest{SlotID: "2024-06-01_10:00", IncludeInactive: true, Privileged: true})
	require.NoError(t, err)
	assert.Len(t, all.RepairJobs, 2)

	_, err = svc.ListBySlot(ctx, &models.ListBySlotRequest{SlotID: "2024-6-1_10:00", Privileged: true})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateStatus_Progression(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := NewService(store.RepairJobs(), time.UTC, logger.Nop{})
	job := seedJob(t, store, "alice", "2024-06-01_10:00", domain.StatusPending)

	for _, next := range []string{"confirmed", "in_progress", "completed"} {
		resp, err := svc.UpdateStatus(ctx, job.ID, &models.UpdateStatusRequest{Status: next, Privileged: true})
		require.NoError(t, err)
		assert.Equal(t, next, resp.Status)
	}

	stored, err := store.RepairJobs().GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
	assert.True(t, stored.IsActive())
}

func TestUpdateStatus_Rejections(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := NewService(store.RepairJobs(), time.UTC, logger.Nop{})
	pending := seedJob(t, store, "alice", "2024-06-01_10:00", domain.StatusPending)
	cancelled := seedJob(t, store, "bob", "2024-06-01_10:00", domain.StatusCancelledByCustomer)

	tests := []struct {
		name    string
		id      uuid.UUID
		req     models.UpdateStatusRequest
		wantErr error
	}{
		{name: "not admin", id: pending.ID, req: models.UpdateStatusRequest{Status: "confirmed"}, wantErr: ErrAccessDenied},
		{name: "unknown status", id: pending.ID, req: models.UpdateStatusRequest{Status: "lost", Privileged: true}, wantErr: ErrInvalidInput},
		{name: "skips a step", id: pending.ID, req: models.UpdateStatusRequest{Status: "completed", Privileged: true}, wantErr: ErrInvalidTransition},
		{name: "cancellation goes through release", id: pending.ID, req: models.UpdateStatusRequest{Status: "cancelled_by_shop", Privileged: true}, wantErr: ErrInvalidTransition},
		{name: "cancelled job", id: cancelled.ID, req: models.UpdateStatusRequest{Status: "confirmed", Privileged: true}, wantErr: ErrInvalidTransition},
		{name: "missing job", id: uuid.New(), req: models.UpdateStatusRequest{Status: "confirmed", Privileged: true}, wantErr: ErrRepairJobNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := svc.UpdateStatus(ctx, tt.id, &req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	stored, err := store.RepairJobs().GetByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
}

// staleJobs отдает заявку в том статусе, в котором ее прочитали до параллельной отмены
type staleJobs struct {
	*memstore.RepairJobRepository
	status domain.RepairJobStatus
}

func (r staleJobs) GetByID(ctx context.Context, id uuid.UUID) (*domain.RepairJob, error) {
	job, err := r.RepairJobRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	job.Status = r.status
	return job, nil
}

func TestUpdateStatus_DoesNotReviveCancelledJob(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	job := seedJob(t, store, "alice", "2024-06-01_10:00", domain.StatusCancelledByCustomer)

	svc := NewService(staleJobs{RepairJobRepository: store.RepairJobs(), status: domain.StatusPending}, time.UTC, logger.Nop{})

	_, err := svc.UpdateStatus(ctx, job.ID, &models.UpdateStatusRequest{Status: "confirmed", Privileged: true})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	stored, err := store.RepairJobs().GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelledByCustomer, stored.Status)
}
