package persistence

import (
	"path/filepath"
	"testing"

	"github.com/farmsaathi/backend/internal/infrastructure/config"
	"github.com/farmsaathi/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNewDatabase_SQLite(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "farm.db"),
	}

	db, err := NewDatabase(cfg)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, config.DriverSQLite, db.Driver())
	require.NoError(t, db.Ping())
	require.NoError(t, db.AutoMigrate())

	for _, table := range []string{"users", "inventory_items", "stock_movements", "crops", "livestock",
		"livestock_health_records", "equipment", "employees", "finance_transactions", "activity_logs"} {
		assert.True(t, db.DB.Migrator().HasTable(table), table)
	}
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	_, err := NewDatabase(&config.DatabaseConfig{Driver: "mysql"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported database driver "mysql"`)
}

func TestDatabase_Transaction(t *testing.T) {
	m := testutil.NewMockDB(t)
	db := &Database{DB: m.DB, driver: config.DriverPostgres}

	m.Mock.ExpectBegin()
	m.Mock.ExpectCommit()
	require.NoError(t, db.Transaction(func(*gorm.DB) error { return nil }))

	m.Mock.ExpectBegin()
	m.Mock.ExpectRollback()
	assert.ErrorIs(t, db.Transaction(func(*gorm.DB) error { return gorm.ErrInvalidData }), gorm.ErrInvalidData)

	m.ExpectationsWereMet(t)
}

func TestDatabase_Close(t *testing.T) {
	m := testutil.NewMockDB(t)
	m.Mock.ExpectClose()

	require.NoError(t, (&Database{DB: m.DB}).Close())
	m.ExpectationsWereMet(t)
}
