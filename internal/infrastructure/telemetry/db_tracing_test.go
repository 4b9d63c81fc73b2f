package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/farmsaathi/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedCrop struct {
	ID   int `gorm:"primaryKey"`
	Name string
}

func openTracedDB(t *testing.T, cfg telemetry.DBTracingConfig) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, telemetry.NewDBTracingPlugin(cfg, zap.NewNop()).Register(db))
	require.NoError(t, db.AutoMigrate(&tracedCrop{}))
	return db
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	sr := setupTestTracer(t)
	db := openTracedDB(t, telemetry.DefaultDBTracingConfig())

	require.NoError(t, db.Create(&tracedCrop{Name: "wheat"}).Error)
	assert.Empty(t, sr.Ended())
}

func TestDBTracingPlugin_RecordsQuerySpans(t *testing.T) {
	sr := setupTestTracer(t)
	db := openTracedDB(t, telemetry.DBTracingConfig{Enabled: true, DBSystem: "sqlite", SlowQueryThresh: time.Hour})

	ctx, parent := telemetry.StartSpan(context.Background(), "crop.create")
	require.NoError(t, db.WithContext(ctx).Create(&tracedCrop{Name: "rice"}).Error)
	parent.End()

	var found bool
	for _, s := range sr.Ended() {
		for _, kv := range s.Attributes() {
			if kv.Key == "db.rows_affected" {
				found = true
				assert.Equal(t, int64(1), kv.Value.AsInt64())
			}
		}
	}
	assert.True(t, found, "expected a query span with db.rows_affected")
}

func TestDBTracingPlugin_SlowAndFailedQueries(t *testing.T) {
	sr := setupTestTracer(t)
	db := openTracedDB(t, telemetry.DBTracingConfig{Enabled: true, DBSystem: "sqlite", SlowQueryThresh: time.Nanosecond})

	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).Create(&tracedCrop{Name: "maize"}).Error)
	require.Error(t, db.WithContext(ctx).Exec("SELECT * FROM missing_table").Error)

	var slow, failed bool
	for _, s := range sr.Ended() {
		for _, kv := range s.Attributes() {
			if kv.Key == "db.slow_query" && kv.Value.AsBool() {
				slow = true
			}
		}
		if s.Status().Code == codes.Error {
			failed = true
		}
	}
	assert.True(t, slow)
	assert.True(t, failed)
}
