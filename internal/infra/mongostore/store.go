// Package mongostore хранилище на MongoDB с теми же контрактами, что и postgres-репозитории.
// Транзакции идут через сессию, сессия передается в репозитории через context.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	collectionSlots      = "slots"
	collectionRepairJobs = "repair_jobs"
	collectionSchedules  = "schedules"
)

// Store коллекции сервиса в одной базе
type Store struct {
	client    *mongo.Client
	slots     *mongo.Collection
	jobs      *mongo.Collection
	schedules *mongo.Collection
	loc       *time.Location
	now       func() time.Time
}

// Connect подключается к MongoDB и проверяет соединение
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	clientOpts := options.Client().ApplyURI(uri).SetConnectTimeout(timeout)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongostore: ping: %w", err)
	}

	return client, nil
}

// New создает хранилище поверх базы database.
// loc - часовой пояс мастерской, в нем возвращаются времена слотов.
func New(client *mongo.Client, database string, loc *time.Location) *Store {
	if loc == nil {
		loc = time.UTC
	}
	db := client.Database(database)
	return &Store{
		client:    client,
		slots:     db.Collection(collectionSlots),
		jobs:      db.Collection(collectionRepairJobs),
		schedules: db.Collection(collectionSchedules),
		loc:       loc,
		now:       time.Now,
	}
}

// EnsureIndexes создает индексы для запросов по диапазону и по заявкам
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.slots.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "starts_at", Value: 1}},
	}); err != nil {
		return fmt.Errorf("mongostore: slots index: %w", err)
	}

	if _, err := s.jobs.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "preferred_slot", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "preferred_slot", Value: -1}}},
	}); err != nil {
		return fmt.Errorf("mongostore: repair_jobs indexes: %w", err)
	}

	return nil
}

// Slots репозиторий слотов
func (s *Store) Slots() *SlotRepository {
	return &SlotRepository{store: s}
}

// RepairJobs репозиторий заявок
func (s *Store) RepairJobs() *RepairJobRepository {
	return &RepairJobRepository{store: s}
}

// Schedules репозиторий расписаний
func (s *Store) Schedules() *ScheduleRepository {
	return &ScheduleRepository{store: s}
}
