package txmanager

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RepairSlotService/pkg/dbmetrics"
)

type fakeTx struct {
	dbmetrics.DBExecutor
	commitErr  error
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit() error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback() error {
	t.rolledBack = true
	return nil
}

type fakeBeginner struct {
	txs  []*fakeTx
	opts []*sql.TxOptions

	// beginErrs возвращаются по очереди первыми вызовами BeginTx
	beginErrs []error
	begins    int
	commitErr error
}

func (b *fakeBeginner) BeginTx(_ context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	b.begins++
	if len(b.beginErrs) > 0 {
		err := b.beginErrs[0]
		b.beginErrs = b.beginErrs[1:]
		return nil, err
	}

	tx := &fakeTx{commitErr: b.commitErr}
	b.txs = append(b.txs, tx)
	b.opts = append(b.opts, opts)
	return tx, nil
}

func connectionRefused() error {
	return &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
}

func serializationFailure() error {
	return fmt.Errorf("slot.repository: failed to execute query: %w", &pq.Error{Code: "40001"})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		reason    string
		retryable bool
	}{
		{name: "serialization failure", err: &pq.Error{Code: "40001"}, reason: "serialization_failure", retryable: true},
		{name: "deadlock", err: &pq.Error{Code: "40P01"}, reason: "deadlock_detected", retryable: true},
		{name: "wrapped serialization failure", err: serializationFailure(), reason: "serialization_failure", retryable: true},
		{name: "bad connection", err: fmt.Errorf("exec: %w", driver.ErrBadConn), reason: "bad_connection", retryable: true},
		{name: "connection refused on begin", err: fmt.Errorf("%w: begin: %w", ErrTransaction, connectionRefused()), reason: "connection", retryable: true},
		{name: "connection failure class", err: &pq.Error{Code: "08006"}, reason: "connection", retryable: true},
		{name: "admin shutdown", err: &pq.Error{Code: "57P01"}, reason: "connection", retryable: true},
		{name: "cannot connect now", err: &pq.Error{Code: "57P03"}, reason: "connection", retryable: true},
		{name: "marked unavailable", err: fmt.Errorf("%w: no reachable servers", ErrUnavailable), reason: "unavailable", retryable: true},
		{name: "unique violation", err: &pq.Error{Code: "23505"}},
		{name: "query canceled", err: &pq.Error{Code: "57014"}},
		{name: "plain error", err: errors.New("boom")},
		{name: "nil", err: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, retryable := Classify(tt.err)
			assert.Equal(t, tt.reason, reason)
			assert.Equal(t, tt.retryable, retryable)
		})
	}
}

func TestDoSerializable_RetriesConflicts(t *testing.T) {
	db := &fakeBeginner{}
	var retries []string
	m := NewTransactionManager(db, WithBaseBackoff(0), WithRetryObserver(func(reason string) {
		retries = append(retries, reason)
	}))

	calls := 0
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		calls++
		require.True(t, dbmetrics.IsInTransaction(ctx))
		if calls < 3 {
			return serializationFailure()
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []string{"serialization_failure", "serialization_failure"}, retries)
	require.Len(t, db.txs, 3)
	assert.True(t, db.txs[0].rolledBack)
	assert.True(t, db.txs[1].rolledBack)
	assert.True(t, db.txs[2].committed)
	assert.Equal(t, sql.LevelSerializable, db.opts[0].Isolation)
}

func TestDoSerializable_ExhaustedRetriesAreTransient(t *testing.T) {
	db := &fakeBeginner{}
	m := NewTransactionManager(db, WithMaxRetries(2), WithBaseBackoff(0))

	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		return serializationFailure()
	})

	require.ErrorIs(t, err, ErrTransient)
	assert.Len(t, db.txs, 3)
	for _, tx := range db.txs {
		assert.False(t, tx.committed)
	}
}

func TestDoSerializable_BusinessErrorIsNotRetried(t *testing.T) {
	db := &fakeBeginner{}
	m := NewTransactionManager(db, WithBaseBackoff(0))
	errFull := errors.New("slot full")

	calls := 0
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		calls++
		return errFull
	})

	require.ErrorIs(t, err, errFull)
	assert.NotErrorIs(t, err, ErrTransient)
	assert.Equal(t, 1, calls)
	assert.True(t, db.txs[0].rolledBack)
}

func TestDoSerializable_NestedReusesTransaction(t *testing.T) {
	db := &fakeBeginner{}
	m := NewTransactionManager(db)

	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		return m.DoSerializable(ctx, func(ctx context.Context) error {
			return nil
		})
	})

	require.NoError(t, err)
	assert.Len(t, db.txs, 1)
}

func TestDoSerializable_StopsOnContextCancel(t *testing.T) {
	db := &fakeBeginner{}
	m := NewTransactionManager(db)
	ctx, cancel := context.WithCancel(context.Background())

	err := m.DoSerializable(ctx, func(ctx context.Context) error {
		cancel()
		return serializationFailure()
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsUnavailable(t *testing.T) {
	assert.True(t, IsUnavailable(fmt.Errorf("slot.repository: failed to execute query: %w", connectionRefused())))
	assert.True(t, IsUnavailable(&pq.Error{Code: "08001"}))
	assert.False(t, IsUnavailable(serializationFailure()))
	assert.False(t, IsUnavailable(&pq.Error{Code: "40P01"}))
	assert.False(t, IsUnavailable(errors.New("slot full")))
}

func TestDoSerializable_RetriesRefusedConnectionOnBegin(t *testing.T) {
	db := &fakeBeginner{beginErrs: []error{connectionRefused(), connectionRefused()}}
	var retries []string
	m := NewTransactionManager(db, WithBaseBackoff(0), WithRetryObserver(func(reason string) {
		retries = append(retries, reason)
	}))

	calls := 0
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, db.begins)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"connection", "connection"}, retries)
}

func TestDoSerializable_UnreachableDatabaseIsTransient(t *testing.T) {
	db := &fakeBeginner{beginErrs: []error{connectionRefused(), connectionRefused(), connectionRefused()}}
	m := NewTransactionManager(db, WithMaxRetries(2), WithBaseBackoff(0))

	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		t.Fatal("fn must not run without a transaction")
		return nil
	})

	require.ErrorIs(t, err, ErrTransient)
	assert.ErrorIs(t, err, ErrTransaction)
	assert.Equal(t, 3, db.begins)
}

func TestDoSerializable_ConnectionLostOnCommitIsNotRetried(t *testing.T) {
	db := &fakeBeginner{commitErr: connectionRefused()}
	m := NewTransactionManager(db, WithBaseBackoff(0))

	calls := 0
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	require.ErrorIs(t, err, ErrTransaction)
	assert.NotErrorIs(t, err, ErrTransient)
	assert.Equal(t, 1, calls)
}

func TestDoSerializable_SerializationFailureOnCommitIsRetried(t *testing.T) {
	db := &fakeBeginner{commitErr: &pq.Error{Code: "40001"}}
	m := NewTransactionManager(db, WithMaxRetries(1), WithBaseBackoff(0))

	calls := 0
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	require.ErrorIs(t, err, ErrTransient)
	assert.Equal(t, 2, calls)
}
