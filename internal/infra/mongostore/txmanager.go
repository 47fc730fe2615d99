package mongostore

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"

	"github.com/m04kA/SMC-RepairSlotService/pkg/txmanager"
)

const (
	labelTransientTransaction = "TransientTransactionError"
	labelUnknownCommitResult  = "UnknownTransactionCommitResult"
	labelNetworkError         = "NetworkError"

	maxCommitRetries = 3
	maxBackoff       = 500 * time.Millisecond
)

// TxManager выполняет функцию в транзакции MongoDB (snapshot read, majority write).
// Повторы ограничены maxRetries, после чего возвращается ошибка, оборачивающая txmanager.ErrTransient.
type TxManager struct {
	client      *mongo.Client
	maxRetries  int
	baseBackoff time.Duration
	onRetry     func(reason string)
}

// NewTxManager создает менеджер транзакций. maxRetries < 0 - значение по умолчанию.
func NewTxManager(client *mongo.Client, maxRetries int, baseBackoff time.Duration, onRetry func(reason string)) *TxManager {
	if maxRetries < 0 {
		maxRetries = txmanager.DefaultMaxRetries
	}
	if onRetry == nil {
		onRetry = func(string) {}
	}
	return &TxManager{
		client:      client,
		maxRetries:  maxRetries,
		baseBackoff: baseBackoff,
		onRetry:     onRetry,
	}
}

// DoSerializable выполняет fn в транзакции. Вложенный вызов выполняется в уже открытой сессии.
func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	for attempt := 0; ; attempt++ {
		err := m.runOnce(ctx, fn)
		if err == nil {
			return nil
		}

		reason, retryable := Classify(err)
		if !retryable {
			return err
		}
		if attempt >= m.maxRetries {
			return fmt.Errorf("%w: %d attempts, last error: %w", txmanager.ErrTransient, attempt+1, err)
		}

		m.onRetry(reason)

		if err := sleep(ctx, m.backoff(attempt)); err != nil {
			return err
		}
	}
}

func (m *TxManager) runOnce(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("%w: start session: %w", txmanager.ErrTransaction, err)
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	return mongo.WithSession(ctx, session, func(sc mongo.SessionContext) error {
		if err := session.StartTransaction(txnOpts); err != nil {
			return fmt.Errorf("%w: start transaction: %w", txmanager.ErrTransaction, err)
		}

		if err := fn(sc); err != nil {
			_ = session.AbortTransaction(context.WithoutCancel(sc))
			return err
		}

		return commit(sc, session)
	})
}

// commit повторяет только сам коммит, если его результат неизвестен:
// повтор всей транзакции мог бы применить изменения дважды
func commit(ctx context.Context, session mongo.Session) error {
	var err error
	for i := 0; i < maxCommitRetries; i++ {
		err = session.CommitTransaction(ctx)
		if err == nil {
			return nil
		}
		if !hasLabel(err, labelUnknownCommitResult) {
			break
		}
	}
	// Транзакция не отменена сервером, а результат commit неизвестен: всю транзакцию не повторяем
	if !hasLabel(err, labelTransientTransaction) && (hasLabel(err, labelUnknownCommitResult) || IsUnavailable(err)) {
		return fmt.Errorf("%w: commit result unknown: %v", txmanager.ErrTransaction, err)
	}
	return fmt.Errorf("%w: commit: %w", txmanager.ErrTransaction, err)
}

// Classify определяет, можно ли повторить транзакцию после ошибки err
func Classify(err error) (reason string, retryable bool) {
	switch {
	case hasLabel(err, labelTransientTransaction):
		return "transient_transaction", true
	case mongo.IsDuplicateKeyError(err):
		// параллельная транзакция успела создать тот же слот
		return "duplicate_key", true
	case hasLabel(err, labelNetworkError):
		return "network", true
	case IsUnavailable(err):
		return txmanager.ReasonUnavailable, true
	}
	return "", false
}

// IsUnavailable true, если сервер не выбран, соединение потеряно или истек таймаут операции
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}

	switch {
	case errors.As(err, &topology.ServerSelectionError{}),
		errors.Is(err, mongo.ErrClientDisconnected),
		errors.Is(err, txmanager.ErrUnavailable),
		hasLabel(err, labelNetworkError),
		mongo.IsTimeout(err):
		return true
	}
	return false
}

// markUnavailable добавляет к ошибке драйвера txmanager.ErrUnavailable,
// чтобы use case без знания о mongo отличил недоступность от прочих ошибок
func markUnavailable(err error) error {
	if err == nil || errors.Is(err, txmanager.ErrUnavailable) || !IsUnavailable(err) {
		return err
	}
	return fmt.Errorf("%w: %w", txmanager.ErrUnavailable, err)
}

func hasLabel(err error, label string) bool {
	var labeled interface{ HasErrorLabel(string) bool }
	return errors.As(err, &labeled) && labeled.HasErrorLabel(label)
}

func (m *TxManager) backoff(attempt int) time.Duration {
	if m.baseBackoff <= 0 {
		return 0
	}
	d := m.baseBackoff << attempt
	if d > maxBackoff || d <= 0 {
		d = maxBackoff
	}
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
