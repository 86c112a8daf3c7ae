// Package tx abstracts the storage transaction that wraps one commit.
// The active Tx travels in the context so repositories pick it up without
// extra parameters.
package tx

import (
	"context"
	"database/sql"
)

// Tx is an open transaction.
type Tx interface {
	// Savepoint marks a point that RollbackToSavepoint can return to.
	Savepoint(name string) error
	// RollbackToSavepoint undoes everything after the named savepoint.
	RollbackToSavepoint(name string) error
}

// TransactionManager begins and ends transactions.
type TransactionManager interface {
	Begin(ctx context.Context, opts ...*sql.TxOptions) (Tx, error)
	Commit(tx Tx) error
	Rollback(tx Tx) error
}

type ctxKey struct{}

// WithTx returns a context carrying t.
func WithTx(ctx context.Context, t Tx) context.Context {
	return context.WithValue(ctx, ctxKey{}, t)
}

// FromContext returns the Tx carried by ctx, if any.
func FromContext(ctx context.Context) (Tx, bool) {
	t, ok := ctx.Value(ctxKey{}).(Tx)
	return t, ok
}
