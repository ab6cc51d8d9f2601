package testutil

import (
	"testing"

	"github.com/kendall-kelly/legacy-storefront-api/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a migrated in-memory SQLite database. A single connection
// keeps concurrent goroutines on the same database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "Failed to connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...), "Failed to migrate test database")
	return db
}

// ResetTables deletes every row, for suites that share one database
func ResetTables(db *gorm.DB) {
	db.Exec("DELETE FROM legacy_records")
	db.Exec("DELETE FROM legacy_issuances")
	db.Exec("DELETE FROM stock_counters")
	db.Exec("DELETE FROM orders")
}
