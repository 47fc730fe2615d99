package txmanager

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"time"

	"github.com/lib/pq"

	"github.com/m04kA/SMC-RepairSlotService/pkg/dbmetrics"
)

const (
	DefaultMaxRetries  = 5
	DefaultBaseBackoff = 10 * time.Millisecond
	maxBackoff         = 500 * time.Millisecond
)

// SQLSTATE коды, при которых транзакцию можно безопасно повторить
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"

	// класс 08 - ошибки соединения, 57P01-57P03 - сервер останавливается или еще не принимает подключения
	classConnectionException = "08"
	codeAdminShutdown        = "57P01"
	codeCrashShutdown        = "57P02"
	codeCannotConnectNow     = "57P03"
)

// Причины повтора (метка метрики tx_retries)
const (
	ReasonSerializationFailure = "serialization_failure"
	ReasonDeadlockDetected     = "deadlock_detected"
	ReasonBadConnection        = "bad_connection"
	ReasonConnection           = "connection"
	ReasonUnavailable          = "unavailable"
)

// Manager менеджер транзакций поверх database/sql.
// Транзакция передается в репозитории через context (см. dbmetrics.GetExecutor).
type Manager struct {
	db          dbmetrics.TxBeginner
	maxRetries  int
	baseBackoff time.Duration
	onRetry     func(reason string)
}

// Option настройка менеджера
type Option func(*Manager)

// WithMaxRetries количество повторов после первой попытки
func WithMaxRetries(n int) Option {
	return func(m *Manager) {
		if n >= 0 {
			m.maxRetries = n
		}
	}
}

// WithBaseBackoff базовая пауза между попытками (растет экспоненциально)
func WithBaseBackoff(d time.Duration) Option {
	return func(m *Manager) {
		if d >= 0 {
			m.baseBackoff = d
		}
	}
}

// WithRetryObserver вызывается перед каждым повтором (например, для метрик)
func WithRetryObserver(fn func(reason string)) Option {
	return func(m *Manager) {
		m.onRetry = fn
	}
}

// NewTransactionManager создает менеджер транзакций
func NewTransactionManager(db dbmetrics.TxBeginner, opts ...Option) *Manager {
	m := &Manager{
		db:          db,
		maxRetries:  DefaultMaxRetries,
		baseBackoff: DefaultBaseBackoff,
		onRetry:     func(string) {},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DoSerializable выполняет fn в SERIALIZABLE транзакции.
// Конфликты сериализации, дедлоки и недоступность БД (в том числе на begin) повторяются с backoff.
// Когда попытки исчерпаны, возвращается ошибка, оборачивающая ErrTransient.
// fn должна быть идемпотентной: при повторе она выполняется заново целиком.
func (m *Manager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	// Вложенный вызов выполняется в уже открытой транзакции
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}

	for attempt := 0; ; attempt++ {
		err := m.run(ctx, opts, fn)
		if err == nil {
			return nil
		}

		reason, retryable := Classify(err)
		if !retryable {
			return err
		}
		if attempt >= m.maxRetries {
			return fmt.Errorf("%w: %d attempts, last error: %w", ErrTransient, attempt+1, err)
		}

		m.onRetry(reason)

		if err := sleep(ctx, m.backoff(attempt)); err != nil {
			return err
		}
	}
}

func (m *Manager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) (err error) {
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrTransaction, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(dbmetrics.WithTx(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		// Соединение оборвалось на commit: результат неизвестен, повтор мог бы применить изменения дважды
		if IsUnavailable(err) {
			return fmt.Errorf("%w: commit result unknown: %v", ErrTransaction, err)
		}
		return fmt.Errorf("%w: commit: %w", ErrTransaction, err)
	}
	return nil
}

func (m *Manager) backoff(attempt int) time.Duration {
	if m.baseBackoff <= 0 {
		return 0
	}
	d := m.baseBackoff << attempt
	if d > maxBackoff || d <= 0 {
		d = maxBackoff
	}
	// jitter в пределах половины интервала, чтобы конкурирующие запросы разошлись
	return d/2 + rand.N(d/2+1)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Classify определяет, можно ли повторить транзакцию после ошибки err
func Classify(err error) (reason string, retryable bool) {
	if err == nil {
		return "", false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == codeSerializationFailure:
			return ReasonSerializationFailure, true
		case pqErr.Code == codeDeadlockDetected:
			return ReasonDeadlockDetected, true
		case pqErr.Code.Class() == classConnectionException,
			pqErr.Code == codeAdminShutdown,
			pqErr.Code == codeCrashShutdown,
			pqErr.Code == codeCannotConnectNow:
			return ReasonConnection, true
		}
		return "", false
	}

	switch {
	case errors.Is(err, driver.ErrBadConn):
		return ReasonBadConnection, true
	case errors.Is(err, ErrUnavailable):
		return ReasonUnavailable, true
	}

	// отказ в соединении, обрыв, таймаут dial
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ReasonConnection, true
	}
	return "", false
}

// IsUnavailable true, если err означает недоступность хранилища, а не конфликт транзакций
func IsUnavailable(err error) bool {
	reason, retryable := Classify(err)
	return retryable && reason != ReasonSerializationFailure && reason != ReasonDeadlockDetected
}
