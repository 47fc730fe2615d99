package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
	scheduleRepo "github.com/m04kA/SMC-RepairSlotService/internal/infra/storage/schedule"
)

// ScheduleRepository расписания в коллекции schedules, _id - ключ расписания
type ScheduleRepository struct {
	store *Store
}

// GetByKey получает расписание по ключу
func (r *ScheduleRepository) GetByKey(ctx context.Context, key string) (*domain.Schedule, error) {
	var doc scheduleDocument
	err := r.store.schedules.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, scheduleRepo.ErrScheduleNotFound
		}
		return nil, fmt.Errorf("%w: GetByKey - find: %w", scheduleRepo.ErrExecQuery, markUnavailable(err))
	}
	return doc.toDomain(), nil
}

// GetWithHierarchy получает первое существующее расписание из keys (ключи по убыванию приоритета)
func (r *ScheduleRepository) GetWithHierarchy(ctx context.Context, keys []string) (*domain.Schedule, error) {
	docs, err := r.find(ctx, "GetWithHierarchy", bson.M{"_id": bson.M{"$in": keys}})
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]*domain.Schedule, len(docs))
	for _, s := range docs {
		byKey[s.Key] = s
	}
	for _, key := range keys {
		if s, ok := byKey[key]; ok {
			return s, nil
		}
	}
	return nil, scheduleRepo.ErrScheduleNotFound
}

// List получает все расписания, отсортированные по ключу
func (r *ScheduleRepository) List(ctx context.Context) ([]*domain.Schedule, error) {
	return r.find(ctx, "List", bson.M{})
}

// Upsert создает или заменяет расписание
func (r *ScheduleRepository) Upsert(ctx context.Context, s *domain.Schedule) (*domain.Schedule, error) {
	now := r.store.now().UTC()
	update := bson.M{
		"$set": bson.M{
			"open_time":        s.OpenTime.String(),
			"close_time":       s.CloseTime.String(),
			"interval_minutes": s.IntervalMinutes,
			"capacity":         s.Capacity,
			"is_closed":        s.IsClosed,
			"updated_at":       now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc scheduleDocument
	if err := r.store.schedules.FindOneAndUpdate(ctx, bson.M{"_id": s.Key}, update, opts).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: Upsert - find and update: %w", scheduleRepo.ErrExecQuery, markUnavailable(err))
	}
	return doc.toDomain(), nil
}

// Delete удаляет расписание по ключу
func (r *ScheduleRepository) Delete(ctx context.Context, key string) error {
	res, err := r.store.schedules.DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		return fmt.Errorf("%w: Delete - delete: %w", scheduleRepo.ErrExecQuery, markUnavailable(err))
	}
	if res.DeletedCount == 0 {
		return scheduleRepo.ErrScheduleNotFound
	}
	return nil
}

func (r *ScheduleRepository) find(ctx context.Context, op string, filter bson.M) ([]*domain.Schedule, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.store.schedules.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - find: %w", scheduleRepo.ErrExecQuery, op, markUnavailable(err))
	}

	var docs []scheduleDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: %s - decode: %w", scheduleRepo.ErrScanRow, op, markUnavailable(err))
	}

	schedules := make([]*domain.Schedule, 0, len(docs))
	for i := range docs {
		schedules = append(schedules, docs[i].toDomain())
	}
	return schedules, nil
}
