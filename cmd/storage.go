package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-RepairSlotService/internal/config"
	"github.com/m04kA/SMC-RepairSlotService/internal/domain"
	"github.com/m04kA/SMC-RepairSlotService/internal/infra/memstore"
	"github.com/m04kA/SMC-RepairSlotService/internal/infra/mongostore"
	repairJobRepo "github.com/m04kA/SMC-RepairSlotService/internal/infra/storage/repairjob"
	scheduleRepo "github.com/m04kA/SMC-RepairSlotService/internal/infra/storage/schedule"
	slotRepo "github.com/m04kA/SMC-RepairSlotService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-RepairSlotService/pkg/dbmetrics"
	"github.com/m04kA/SMC-RepairSlotService/pkg/logger"
	"github.com/m04kA/SMC-RepairSlotService/pkg/metrics"
	"github.com/m04kA/SMC-RepairSlotService/pkg/txmanager"
)

// Общий набор методов, который нужен usecases и сервисам от любого хранилища

type slotStore interface {
	GetForUpdate(ctx context.Context, id domain.SlotID) (*domain.Slot, error)
	Upsert(ctx context.Context, slot *domain.Slot) (*domain.Slot, error)
	ListByRange(ctx context.Context, from, to time.Time) ([]*domain.Slot, error)
}

type repairJobStore interface {
	Create(ctx context.Context, job *domain.RepairJob) (*domain.RepairJob, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RepairJob, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.RepairJob, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.RepairJobStatus) error
	Cancel(ctx context.Context, id uuid.UUID, status domain.RepairJobStatus, reason *string, cancelledAt time.Time) error
	ListBySlot(ctx context.Context, slotID domain.SlotID, includeInactive bool) ([]*domain.RepairJob, error)
	ListByCustomer(ctx context.Context, customerID string, status *domain.RepairJobStatus) ([]*domain.RepairJob, error)
}

type scheduleStore interface {
	GetByKey(ctx context.Context, key string) (*domain.Schedule, error)
	GetWithHierarchy(ctx context.Context, keys []string) (*domain.Schedule, error)
	List(ctx context.Context) ([]*domain.Schedule, error)
	Upsert(ctx context.Context, s *domain.Schedule) (*domain.Schedule, error)
	Delete(ctx context.Context, key string) error
}

type txManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// backend выбранное хранилище и функция его закрытия
type backend struct {
	slots      slotStore
	repairJobs repairJobStore
	schedules  scheduleStore
	tx         txManager
	close      func()
}

func openBackend(ctx context.Context, cfg *config.Config, loc *time.Location, m *metrics.Metrics, stopCh <-chan struct{}, log *logger.Logger) (*backend, error) {
	backoff := time.Duration(cfg.Store.RetryBackoffMsec) * time.Millisecond

	switch cfg.Store.Backend {
	case config.StorePostgres:
		return openPostgres(cfg, m, backoff, stopCh, log)

	case config.StoreMongo:
		connectTimeout := time.Duration(cfg.Mongo.ConnectTimeout) * time.Second
		client, err := mongostore.Connect(ctx, cfg.Mongo.URI, connectTimeout)
		if err != nil {
			return nil, err
		}

		store := mongostore.New(client, cfg.Mongo.Database, loc)
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		log.Info("Successfully connected to MongoDB (db=%s)", cfg.Mongo.Database)

		return &backend{
			slots:      store.Slots(),
			repairJobs: store.RepairJobs(),
			schedules:  store.Schedules(),
			tx:         mongostore.NewTxManager(client, cfg.Store.MaxRetries, backoff, m.ObserveTxRetry),
			close: func() {
				disconnectCtx, cancel := context.WithTimeout(context.Background(), connectTimeout)
				defer cancel()
				if err := client.Disconnect(disconnectCtx); err != nil {
					log.Error("Failed to disconnect from MongoDB: %v", err)
				}
			},
		}, nil

	case config.StoreMemory:
		log.Warn("Using in-memory store: data is lost on restart")
		store := memstore.New()
		return &backend{
			slots:      store.Slots(),
			repairJobs: store.RepairJobs(),
			schedules:  store.Schedules(),
			tx:         store.TxManager(),
			close:      func() {},
		}, nil
	}

	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

func openPostgres(cfg *config.Config, m *metrics.Metrics, backoff time.Duration, stopCh <-chan struct{}, log *logger.Logger) (*backend, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	txOpts := []txmanager.Option{
		txmanager.WithMaxRetries(cfg.Store.MaxRetries),
		txmanager.WithBaseBackoff(backoff),
		txmanager.WithRetryObserver(m.ObserveTxRetry),
	}

	b := &backend{
		close: func() {
			if err := db.Close(); err != nil {
				log.Error("Failed to close database: %v", err)
			}
		},
	}

	// С метриками репозитории работают через обёртку, которая меряет запросы и пул соединений
	if m != nil {
		wrappedDB := dbmetrics.WrapWithDefault(db, m, cfg.Metrics.ServiceName, stopCh)
		log.Info("Database metrics collection started")

		b.slots = slotRepo.NewRepository(wrappedDB)
		b.repairJobs = repairJobRepo.NewRepository(wrappedDB)
		b.schedules = scheduleRepo.NewRepository(wrappedDB)
		b.tx = txmanager.NewTransactionManager(wrappedDB, txOpts...)
		return b, nil
	}

	plainDB := dbmetrics.NewPlainDB(db)
	b.slots = slotRepo.NewRepository(plainDB)
	b.repairJobs = repairJobRepo.NewRepository(plainDB)
	b.schedules = scheduleRepo.NewRepository(plainDB)
	b.tx = txmanager.NewTransactionManager(plainDB, txOpts...)
	return b, nil
}
