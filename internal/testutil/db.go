package testutil

import (
	"testing"

	"github.com/helixtrack/core/internal/database"
	"github.com/helixtrack/core/internal/logger"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenDB opens a migrated in-memory SQLite database and registers it as the default.
// The pool is pinned to one connection so every goroutine sees the same database.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db, logger.Nop()))
	database.SetDB(db)

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}
