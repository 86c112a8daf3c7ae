package test

import (
	"context"
	"database/sql"

	"github.com/stretchr/testify/mock"

	"github.com/tigerroll/tamato/pkg/taric/core/tx"
)

// MockTx mocks tx.Tx.
type MockTx struct {
	mock.Mock
}

// Savepoint records the call.
func (m *MockTx) Savepoint(name string) error {
	return m.Called(name).Error(0)
}

// RollbackToSavepoint records the call.
func (m *MockTx) RollbackToSavepoint(name string) error {
	return m.Called(name).Error(0)
}

// MockTxManager mocks tx.TransactionManager.
type MockTxManager struct {
	mock.Mock
}

// Begin returns the configured Tx, or the configured error.
func (m *MockTxManager) Begin(ctx context.Context, opts ...*sql.TxOptions) (tx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(tx.Tx), args.Error(1)
}

// Commit records the call.
func (m *MockTxManager) Commit(t tx.Tx) error {
	return m.Called(t).Error(0)
}

// Rollback records the call.
func (m *MockTxManager) Rollback(t tx.Tx) error {
	return m.Called(t).Error(0)
}
