package gorm

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"

	"github.com/tigerroll/tamato/pkg/taric/core/tx"
)

// GormTx implements tx.Tx over a gorm transaction handle.
type GormTx struct {
	db *gorm.DB
}

// GormDB returns the transaction handle.
func (t *GormTx) GormDB() *gorm.DB {
	return t.db
}

// Savepoint implements tx.Tx.
func (t *GormTx) Savepoint(name string) error {
	return t.db.SavePoint(name).Error
}

// RollbackToSavepoint implements tx.Tx.
func (t *GormTx) RollbackToSavepoint(name string) error {
	return t.db.RollbackTo(name).Error
}

// TransactionManager implements tx.TransactionManager for one gorm pool.
type TransactionManager struct {
	db *gorm.DB
}

// NewTransactionManager returns a manager over db.
func NewTransactionManager(db *gorm.DB) *TransactionManager {
	return &TransactionManager{db: db}
}

// Begin implements tx.TransactionManager.
func (m *TransactionManager) Begin(ctx context.Context, opts ...*sql.TxOptions) (tx.Tx, error) {
	var txOpts *sql.TxOptions
	if len(opts) > 0 {
		txOpts = opts[0]
	}
	gormTx := m.db.WithContext(ctx).Begin(txOpts)
	if gormTx.Error != nil {
		return nil, fmt.Errorf("begin transaction: %w", gormTx.Error)
	}
	return &GormTx{db: gormTx}, nil
}

// Commit implements tx.TransactionManager.
func (m *TransactionManager) Commit(t tx.Tx) error {
	g, ok := t.(*GormTx)
	if !ok {
		return fmt.Errorf("commit: unexpected transaction type %T", t)
	}
	return g.db.Commit().Error
}

// Rollback implements tx.TransactionManager.
func (m *TransactionManager) Rollback(t tx.Tx) error {
	g, ok := t.(*GormTx)
	if !ok {
		return fmt.Errorf("rollback: unexpected transaction type %T", t)
	}
	return g.db.Rollback().Error
}

// DB returns the gorm handle repositories should use: the transaction in
// ctx when there is one, otherwise fallback bound to ctx.
func DB(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if t, ok := tx.FromContext(ctx); ok {
		if g, ok := t.(*GormTx); ok {
			return g.db.WithContext(ctx)
		}
	}
	return fallback.WithContext(ctx)
}

var _ tx.TransactionManager = (*TransactionManager)(nil)
