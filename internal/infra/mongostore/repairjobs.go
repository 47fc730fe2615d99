package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
	repairJobRepo "github.com/m04kA/SMC-RepairSlotService/internal/infra/storage/repairjob"
)

// RepairJobRepository заявки в коллекции repair_jobs, _id - uuid заявки строкой
type RepairJobRepository struct {
	store *Store
}

// Create создает заявку
func (r *RepairJobRepository) Create(ctx context.Context, job *domain.RepairJob) (*domain.RepairJob, error) {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	now := r.store.now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	if _, err := r.store.jobs.InsertOne(ctx, fromDomainRepairJob(job)); err != nil {
		return nil, fmt.Errorf("%w: Create - insert: %w", repairJobRepo.ErrExecQuery, markUnavailable(err))
	}
	return job, nil
}

// GetByID получает заявку по ID
func (r *RepairJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RepairJob, error) {
	var doc repairJobDocument
	err := r.store.jobs.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repairJobRepo.ErrRepairJobNotFound
		}
		return nil, fmt.Errorf("%w: GetByID - find: %w", repairJobRepo.ErrExecQuery, markUnavailable(err))
	}

	job, err := doc.toDomain()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - %w", repairJobRepo.ErrScanRow, err)
	}
	return job, nil
}

// GetForUpdate читает заявку внутри транзакции (см. SlotRepository.GetForUpdate)
func (r *RepairJobRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.RepairJob, error) {
	return r.GetByID(ctx, id)
}

// ListBySlot получает заявки слота, по умолчанию только активные
func (r *RepairJobRepository) ListBySlot(ctx context.Context, slotID domain.SlotID, includeInactive bool) ([]*domain.RepairJob, error) {
	filter := bson.M{"preferred_slot": slotID.String()}
	if !includeInactive {
		filter["status"] = bson.M{"$nin": statusStrings(domain.InactiveStatuses)}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	return r.find(ctx, "ListBySlot", filter, opts)
}

// ListByCustomer получает заявки клиента, новые слоты первыми
func (r *RepairJobRepository) ListByCustomer(ctx context.Context, customerID string, status *domain.RepairJobStatus) ([]*domain.RepairJob, error) {
	filter := bson.M{"customer_id": customerID}
	if status != nil {
		filter["status"] = string(*status)
	}
	opts := options.Find().SetSort(bson.D{{Key: "preferred_slot", Value: -1}})

	return r.find(ctx, "ListByCustomer", filter, opts)
}

// UpdateStatus переводит заявку из статуса from в to одним условным updateOne
func (r *RepairJobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.RepairJobStatus) error {
	if !to.IsValid() {
		return fmt.Errorf("%w: %q", repairJobRepo.ErrInvalidStatus, to)
	}
	filter := bson.M{"_id": id.String(), "status": string(from)}
	return r.updateWhere(ctx, "UpdateStatus", filter, bson.M{
		"status":     string(to),
		"updated_at": r.store.now().UTC(),
	})
}

// Cancel переводит заявку в статус отмены с причиной и временем
func (r *RepairJobRepository) Cancel(ctx context.Context, id uuid.UUID, status domain.RepairJobStatus, reason *string, cancelledAt time.Time) error {
	if status != domain.StatusCancelledByCustomer && status != domain.StatusCancelledByShop {
		return fmt.Errorf("%w: %q is not a cancellation status", repairJobRepo.ErrInvalidStatus, status)
	}
	return r.update(ctx, "Cancel", id, bson.M{
		"status":              string(status),
		"cancellation_reason": reason,
		"cancelled_at":        cancelledAt.UTC(),
		"updated_at":          r.store.now().UTC(),
	})
}

func (r *RepairJobRepository) update(ctx context.Context, op string, id uuid.UUID, set bson.M) error {
	return r.updateWhere(ctx, op, bson.M{"_id": id.String()}, set)
}

func (r *RepairJobRepository) updateWhere(ctx context.Context, op string, filter, set bson.M) error {
	res, err := r.store.jobs.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("%w: %s - update: %w", repairJobRepo.ErrExecQuery, op, markUnavailable(err))
	}
	if res.MatchedCount == 0 {
		return repairJobRepo.ErrRepairJobNotFound
	}
	return nil
}

func (r *RepairJobRepository) find(ctx context.Context, op string, filter bson.M, opts *options.FindOptions) ([]*domain.RepairJob, error) {
	cursor, err := r.store.jobs.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - find: %w", repairJobRepo.ErrExecQuery, op, markUnavailable(err))
	}

	var docs []repairJobDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: %s - decode: %w", repairJobRepo.ErrScanRow, op, markUnavailable(err))
	}

	jobs := make([]*domain.RepairJob, 0, len(docs))
	for i := range docs {
		job, err := docs[i].toDomain()
		if err != nil {
			return nil, fmt.Errorf("%w: %s - %w", repairJobRepo.ErrScanRow, op, err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func statusStrings(statuses []domain.RepairJobStatus) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}
