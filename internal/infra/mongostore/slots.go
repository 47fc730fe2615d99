package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
	slotRepo "github.com/m04kA/SMC-RepairSlotService/internal/infra/storage/slot"
)

// SlotRepository слоты в коллекции slots, _id - ID слота
type SlotRepository struct {
	store *Store
}

// GetByID получает слот по ID
func (r *SlotRepository) GetByID(ctx context.Context, id domain.SlotID) (*domain.Slot, error) {
	var doc slotDocument
	err := r.store.slots.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, slotRepo.ErrSlotNotFound
		}
		return nil, fmt.Errorf("%w: GetByID - find: %w", slotRepo.ErrExecQuery, markUnavailable(err))
	}
	return doc.toDomain(r.store.loc), nil
}

// GetForUpdate читает слот внутри транзакции.
// Блокировки нет: конкурентная запись того же документа завершится WriteConflict и транзакция повторится.
func (r *SlotRepository) GetForUpdate(ctx context.Context, id domain.SlotID) (*domain.Slot, error) {
	return r.GetByID(ctx, id)
}

// ListByRange получает слоты с началом в [from, to) по возрастанию времени
func (r *SlotRepository) ListByRange(ctx context.Context, from, to time.Time) ([]*domain.Slot, error) {
	filter := bson.M{"starts_at": bson.M{"$gte": from, "$lt": to}}
	opts := options.Find().SetSort(bson.D{{Key: "starts_at", Value: 1}})

	cursor, err := r.store.slots.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByRange - find: %w", slotRepo.ErrExecQuery, markUnavailable(err))
	}

	var docs []slotDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: ListByRange - decode: %w", slotRepo.ErrScanRow, markUnavailable(err))
	}

	slots := make([]*domain.Slot, 0, len(docs))
	for i := range docs {
		slots = append(slots, docs[i].toDomain(r.store.loc))
	}
	return slots, nil
}

// Upsert создает слот или перезаписывает его емкость и занятость
func (r *SlotRepository) Upsert(ctx context.Context, slot *domain.Slot) (*domain.Slot, error) {
	now := r.store.now().UTC()
	update := bson.M{
		"$set": bson.M{
			"starts_at":  slot.Timestamp,
			"capacity":   slot.Capacity,
			"booked":     slot.Booked,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc slotDocument
	err := r.store.slots.FindOneAndUpdate(ctx, bson.M{"_id": slot.ID.String()}, update, opts).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - find and update: %w", slotRepo.ErrExecQuery, markUnavailable(err))
	}
	return doc.toDomain(r.store.loc), nil
}
