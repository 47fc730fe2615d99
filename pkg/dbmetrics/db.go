package dbmetrics

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/m04kA/SMC-RepairSlotService/pkg/metrics"
)

// DefaultStatsInterval период сбора статистики connection pool
const DefaultStatsInterval = 15 * time.Second

// DB обёртка над *sql.DB, которая пишет длительность запросов и статистику пула
type DB struct {
	db          *sql.DB
	metrics     *metrics.Metrics
	serviceName string
}

// Wrap оборачивает *sql.DB без фонового сбора статистики пула
func Wrap(db *sql.DB, m *metrics.Metrics, serviceName string) *DB {
	return &DB{
		db:          db,
		metrics:     m,
		serviceName: serviceName,
	}
}

// WrapWithDefault оборачивает *sql.DB и запускает сбор статистики пула до закрытия stopCh
func WrapWithDefault(db *sql.DB, m *metrics.Metrics, serviceName string, stopCh <-chan struct{}) *DB {
	wrapped := Wrap(db, m, serviceName)
	go wrapped.collectStats(DefaultStatsInterval, stopCh)
	return wrapped
}

// Unwrap возвращает исходный *sql.DB
func (d *DB) Unwrap() *sql.DB {
	return d.db
}

func (d *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	defer d.observe(query, time.Now())
	return d.db.ExecContext(ctx, query, args...)
}

func (d *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	defer d.observe(query, time.Now())
	return d.db.QueryContext(ctx, query, args...)
}

func (d *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	defer d.observe(query, time.Now())
	return d.db.QueryRowContext(ctx, query, args...)
}

// BeginTx начинает транзакцию, запросы внутри которой тоже попадают в метрики
func (d *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (TxExecutor, error) {
	tx, err := d.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &SqlTxWrapper{tx: tx, db: d}, nil
}

func (d *DB) observe(query string, start time.Time) {
	if d.metrics == nil {
		return
	}
	d.metrics.DBQueryDuration.
		WithLabelValues(d.serviceName, operationOf(query)).
		Observe(time.Since(start).Seconds())
}

func (d *DB) collectStats(interval time.Duration, stopCh <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.recordStats()
	for {
		select {
		case <-ticker.C:
			d.recordStats()
		case <-stopCh:
			return
		}
	}
}

func (d *DB) recordStats() {
	if d.metrics == nil {
		return
	}
	stats := d.db.Stats()
	d.metrics.DBOpenConnections.WithLabelValues(d.serviceName).Set(float64(stats.OpenConnections))
	d.metrics.DBInUse.WithLabelValues(d.serviceName).Set(float64(stats.InUse))
	d.metrics.DBIdle.WithLabelValues(d.serviceName).Set(float64(stats.Idle))
	d.metrics.DBWaitCount.WithLabelValues(d.serviceName).Set(float64(stats.WaitCount))
	d.metrics.DBWaitDuration.WithLabelValues(d.serviceName).Set(stats.WaitDuration.Seconds())
}

// SqlTxWrapper транзакция с метриками
type SqlTxWrapper struct {
	tx *sql.Tx
	db *DB
}

func (t *SqlTxWrapper) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	defer t.db.observe(query, time.Now())
	return t.tx.ExecContext(ctx, query, args...)
}

func (t *SqlTxWrapper) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	defer t.db.observe(query, time.Now())
	return t.tx.QueryContext(ctx, query, args...)
}

func (t *SqlTxWrapper) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	defer t.db.observe(query, time.Now())
	return t.tx.QueryRowContext(ctx, query, args...)
}

func (t *SqlTxWrapper) Commit() error {
	return t.tx.Commit()
}

func (t *SqlTxWrapper) Rollback() error {
	return t.tx.Rollback()
}

// operationOf первое слово запроса в нижнем регистре: select, insert, update, delete
func operationOf(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "unknown"
	}
	return strings.ToLower(fields[0])
}
