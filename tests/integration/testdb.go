// Package integration runs the backend against real PostgreSQL and Redis
// containers started with testcontainers. Every test skips under -short.
package integration

import (
	"context"
	"database/sql"
	"net/url"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/farmsaathi/backend/internal/domain/access"
	"github.com/farmsaathi/backend/internal/domain/identity"
	"github.com/farmsaathi/backend/internal/infrastructure/migration"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// Shared containers for all tests in the package
	sharedMu       sync.Mutex
	sharedPostgres testcontainers.Container
	sharedDSN      string
	sharedRedis    testcontainers.Container
	sharedRedisURL string
)

// TestDB is a migrated database private to one test
type TestDB struct {
	DB    *gorm.DB
	SqlDB *sql.DB
	DSN   string
	t     *testing.T
}

// skipShort skips integration tests when -short is set
func skipShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// NewTestDB returns a fresh database on the shared PostgreSQL container with
// the embedded migrations applied. The database is dropped on cleanup.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	skipShort(t)

	adminDSN := postgresDSN(t)
	ctx := context.Background()

	admin, err := sql.Open("postgres", adminDSN)
	require.NoError(t, err)
	defer admin.Close()

	name := "farm_" + uuid.NewString()[:8]
	_, err = admin.ExecContext(ctx, "CREATE DATABASE "+name)
	require.NoError(t, err, "Failed to create test database")

	dsn, err := withDatabase(adminDSN, name)
	require.NoError(t, err)

	migrateDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	m, err := migration.New(migrateDB, zap.NewNop())
	require.NoError(t, err, "Failed to create migrator")
	require.NoError(t, m.Up(), "Failed to run migrations")
	require.NoError(t, m.Close())

	db, sqlDB := connectToDatabase(t, dsn)
	tdb := &TestDB{DB: db, SqlDB: sqlDB, DSN: dsn, t: t}

	t.Cleanup(func() {
		_ = sqlDB.Close()
		admin, err := sql.Open("postgres", adminDSN)
		if err != nil {
			return
		}
		defer admin.Close()
		if _, err := admin.Exec("DROP DATABASE IF EXISTS " + name + " WITH (FORCE)"); err != nil {
			t.Logf("Warning: Failed to drop database %s: %v", name, err)
		}
	})
	return tdb
}

// TestPassword is the password of every account made by CreateUser
const TestPassword = "harvest-2026"

// CreateUser inserts an active account and returns its principal
func (tdb *TestDB) CreateUser(username string, role access.Role) access.Principal {
	tdb.t.Helper()

	user, err := identity.NewUser(username, TestPassword, role)
	require.NoError(tdb.t, err)
	require.NoError(tdb.t, tdb.DB.Create(user).Error, "Failed to create test user")

	p, err := access.NewPrincipal(user.ID, user.Username, user.Role)
	require.NoError(tdb.t, err)
	return p
}

// Count returns the number of rows in table
func (tdb *TestDB) Count(table string) int64 {
	tdb.t.Helper()

	var n int64
	require.NoError(tdb.t, tdb.DB.Table(table).Count(&n).Error)
	return n
}

func postgresDSN(t *testing.T) string {
	t.Helper()

	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedPostgres != nil {
		return sharedDSN
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("farm_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	sharedPostgres = container
	sharedDSN = dsn
	return dsn
}

// NewRedisClient returns a client on the shared Redis container, flushed
// before the test starts.
func NewRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	skipShort(t)

	sharedMu.Lock()
	if sharedRedis == nil {
		ctx := context.Background()
		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7-alpine",
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
			},
			Started: true,
		})
		if err != nil {
			sharedMu.Unlock()
			require.NoError(t, err, "Failed to start Redis container")
		}
		endpoint, err := container.Endpoint(ctx, "")
		if err != nil {
			sharedMu.Unlock()
			require.NoError(t, err, "Failed to get Redis endpoint")
		}
		sharedRedis = container
		sharedRedisURL = endpoint
	}
	addr := sharedRedisURL
	sharedMu.Unlock()

	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.FlushDB(context.Background()).Err())
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// terminateContainers stops the shared containers; TestMain calls it once
// the package is done.
func terminateContainers() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if sharedPostgres != nil {
		_ = sharedPostgres.Terminate(ctx)
	}
	if sharedRedis != nil {
		_ = sharedRedis.Terminate(ctx)
	}
}

func withDatabase(dsn, name string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", err
	}
	u.Path = "/" + name
	return u.String(), nil
}

func connectToDatabase(t *testing.T, dsn string) (*gorm.DB, *sql.DB) {
	t.Helper()

	gormConfig := &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	}
	if os.Getenv("TEST_DB_DEBUG") != "" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(gormpostgres.Open(dsn), gormConfig)
	require.NoError(t, err, "Failed to connect to database")

	sqlDB, err := db.DB()
	require.NoError(t, err, "Failed to get underlying SQL DB")
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, sqlDB
}
