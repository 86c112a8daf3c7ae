// Package test holds helpers shared by package tests: a migrated in-memory
// SQLite database and testify mocks for the transaction interfaces.
package test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	dbconfig "github.com/tigerroll/tamato/pkg/taric/adapter/database/config"
	gormadapter "github.com/tigerroll/tamato/pkg/taric/adapter/database/gorm"
	_ "github.com/tigerroll/tamato/pkg/taric/adapter/database/gorm/sqlite"
	"github.com/tigerroll/tamato/pkg/taric/component/migration"
)

var dbCounter atomic.Int64

// NewSQLiteDB opens a private in-memory database with the importer schema
// applied. The pool holds a single connection so every statement sees the
// same memory database; code under test must therefore route statements
// through the transaction in its context while one is open.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := fmt.Sprintf("file:tamato_test_%d?mode=memory&cache=private", dbCounter.Add(1))
	db, err := gormadapter.Open(dbconfig.DatabaseConfig{
		Type:     "sqlite",
		Database: name,
		Pool:     dbconfig.PoolConfig{MaxOpenConns: 1, MaxIdleConns: 1},
	}, "SILENT")
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, migration.NewMigrator(sqlDB, "sqlite").Up(context.Background()))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}
