package main

import (
	"context"
	"testing"

	"github.com/farmsaathi/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenDatabase_SQLiteIsAutoMigrated(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: ":memory:"},
		Log:      config.LogConfig{Level: "error"},
	}

	db := openDatabase(cfg, zap.NewNop())
	t.Cleanup(func() { _ = db.Close() })

	assert.Equal(t, config.DriverSQLite, db.Driver())
	require.NoError(t, db.Ping())
	for _, table := range []string{"users", "inventory_items", "stock_movements", "crops", "livestock_health_records", "activity_logs"} {
		assert.True(t, db.DB.Migrator().HasTable(table), table)
	}
}

func TestSetupTelemetry_DisabledProviders(t *testing.T) {
	cfg := &config.Config{
		Log:       config.LogConfig{Level: "info"},
		Telemetry: config.TelemetryConfig{ServiceName: "farm-backend"},
	}
	log := zap.NewNop()

	stack := setupTelemetry(context.Background(), cfg, log)

	assert.Same(t, log, stack.logger)
	assert.False(t, stack.tracer.IsEnabled())
	assert.False(t, stack.meters.IsEnabled())
	assert.False(t, stack.logs.IsEnabled())
	assert.False(t, stack.profiler.IsEnabled())
	stack.shutdown(log)
}
