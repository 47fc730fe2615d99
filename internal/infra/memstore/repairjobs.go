package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
	repairJobRepo "github.com/m04kA/SMC-RepairSlotService/internal/infra/storage/repairjob"
)

// RepairJobRepository заявки в памяти. Ошибки совпадают с postgres-репозиторием.
type RepairJobRepository struct {
	store *Store
}

func (r *RepairJobRepository) Create(ctx context.Context, job *domain.RepairJob) (*domain.RepairJob, error) {
	err := r.store.run(ctx, func(st *state) error {
		if job.ID == uuid.Nil {
			job.ID = uuid.New()
		}
		if _, exists := st.jobs.get(job.ID); exists {
			return fmt.Errorf("%w: Create - duplicate id %s", repairJobRepo.ErrExecQuery, job.ID)
		}
		now := r.store.now()
		job.CreatedAt = now
		job.UpdatedAt = now
		st.jobs.put(job.ID, *job)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (r *RepairJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RepairJob, error) {
	var result *domain.RepairJob
	err := r.store.run(ctx, func(st *state) error {
		job, ok := st.jobs.get(id)
		if !ok {
			return repairJobRepo.ErrRepairJobNotFound
		}
		result = &job
		return nil
	})
	return result, err
}

func (r *RepairJobRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.RepairJob, error) {
	return r.GetByID(ctx, id)
}

func (r *RepairJobRepository) ListBySlot(ctx context.Context, slotID domain.SlotID, includeInactive bool) ([]*domain.RepairJob, error) {
	jobs := r.filter(ctx, func(j domain.RepairJob) bool {
		return j.PreferredSlot == slotID && (includeInactive || j.IsActive())
	})
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
	})
	return jobs, nil
}

func (r *RepairJobRepository) ListByCustomer(ctx context.Context, customerID string, status *domain.RepairJobStatus) ([]*domain.RepairJob, error) {
	jobs := r.filter(ctx, func(j domain.RepairJob) bool {
		return j.CustomerID == customerID && (status == nil || j.Status == *status)
	})
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].PreferredSlot > jobs[j].PreferredSlot
	})
	return jobs, nil
}

func (r *RepairJobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.RepairJobStatus) error {
	if !to.IsValid() {
		return fmt.Errorf("%w: %q", repairJobRepo.ErrInvalidStatus, to)
	}
	return r.store.run(ctx, func(st *state) error {
		job, ok := st.jobs.get(id)
		if !ok || job.Status != from {
			return repairJobRepo.ErrRepairJobNotFound
		}
		job.Status = to
		job.UpdatedAt = r.store.now()
		st.jobs.put(id, job)
		return nil
	})
}

func (r *RepairJobRepository) Cancel(ctx context.Context, id uuid.UUID, status domain.RepairJobStatus, reason *string, cancelledAt time.Time) error {
	if status != domain.StatusCancelledByCustomer && status != domain.StatusCancelledByShop {
		return fmt.Errorf("%w: %q is not a cancellation status", repairJobRepo.ErrInvalidStatus, status)
	}
	return r.update(ctx, id, func(j *domain.RepairJob) {
		j.Status = status
		j.CancellationReason = reason
		at := cancelledAt
		j.CancelledAt = &at
	})
}

func (r *RepairJobRepository) update(ctx context.Context, id uuid.UUID, apply func(j *domain.RepairJob)) error {
	return r.store.run(ctx, func(st *state) error {
		job, ok := st.jobs.get(id)
		if !ok {
			return repairJobRepo.ErrRepairJobNotFound
		}
		apply(&job)
		job.UpdatedAt = r.store.now()
		st.jobs.put(id, job)
		return nil
	})
}

func (r *RepairJobRepository) filter(ctx context.Context, match func(j domain.RepairJob) bool) []*domain.RepairJob {
	jobs := make([]*domain.RepairJob, 0)
	_ = r.store.run(ctx, func(st *state) error {
		st.jobs.each(func(_ uuid.UUID, j domain.RepairJob) {
			if match(j) {
				job := j
				jobs = append(jobs, &job)
			}
		})
		return nil
	})
	return jobs
}
