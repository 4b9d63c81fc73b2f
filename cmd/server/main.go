package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	appactivity "github.com/farmsaathi/backend/internal/application/activity"
	"github.com/farmsaathi/backend/internal/application/dashboard"
	appfarm "github.com/farmsaathi/backend/internal/application/farm"
	appfinance "github.com/farmsaathi/backend/internal/application/finance"
	appidentity "github.com/farmsaathi/backend/internal/application/identity"
	appinventory "github.com/farmsaathi/backend/internal/application/inventory"
	"github.com/farmsaathi/backend/internal/domain/farm"
	"github.com/farmsaathi/backend/internal/infrastructure/auth"
	"github.com/farmsaathi/backend/internal/infrastructure/cache"
	"github.com/farmsaathi/backend/internal/infrastructure/config"
	"github.com/farmsaathi/backend/internal/infrastructure/logger"
	"github.com/farmsaathi/backend/internal/infrastructure/migration"
	"github.com/farmsaathi/backend/internal/infrastructure/persistence"
	"github.com/farmsaathi/backend/internal/infrastructure/telemetry"
	"github.com/farmsaathi/backend/internal/interfaces/http/handler"
	"github.com/farmsaathi/backend/internal/interfaces/http/middleware"
	"github.com/farmsaathi/backend/internal/interfaces/http/router"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Farm Management API
//	@version		1.0
//	@description	Crops, livestock, equipment, staff, finance and inventory for farm owners
//	@BasePath		/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel := setupTelemetry(ctx, cfg, log)
	log = tel.logger
	defer tel.shutdown(log)

	log.Info("Starting farm backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	db := openDatabase(cfg, log)
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	cropRepo := persistence.NewGormCropRepository(db.DB)
	livestockRepo := persistence.NewGormLivestockRepository(db.DB)
	equipmentRepo := persistence.NewGormEquipmentRepository(db.DB)
	employeeRepo := persistence.NewGormEmployeeRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	itemRepo := persistence.NewGormInventoryItemRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	activityRepo := persistence.NewGormActivityLogRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Application services
	activityService := appactivity.NewService(activityRepo)

	jwtService := auth.NewJWTService(cfg.JWT)
	blacklist := auth.NewTokenBlacklist(redisClient)
	authService := appidentity.NewAuthService(userRepo, jwtService, blacklist, activityService, log)
	userService := appidentity.NewUserService(userRepo, blacklist, cfg.JWT.RefreshTokenExpiration, activityService, log)

	cropService := appfarm.NewCropService(cropRepo, activityService)
	livestockService := appfarm.NewLivestockService(livestockRepo, appfarm.LivestockRecordRepositories{
		Health:     persistence.NewGormLivestockRecordRepository[farm.HealthRecord](db.DB),
		Breeding:   persistence.NewGormLivestockRecordRepository[farm.BreedingRecord](db.DB),
		Production: persistence.NewGormLivestockRecordRepository[farm.ProductionRecord](db.DB),
		Expense:    persistence.NewGormLivestockRecordRepository[farm.ExpenseRecord](db.DB),
	}, activityService)
	equipmentService := appfarm.NewEquipmentService(equipmentRepo, activityService)
	employeeService := appfarm.NewEmployeeService(employeeRepo, activityService)
	transactionService := appfinance.NewTransactionService(transactionRepo, activityService)

	itemService := appinventory.NewItemService(itemRepo, txScope, activityService)
	ledgerService := appinventory.NewLedgerService(itemRepo, movementRepo, txScope, activityService)
	ledgerService.SetIdempotencyStore(cache.NewIdempotencyStore(redisClient, log), cfg.Ledger.IdempotencyTTL)
	ledgerService.SetHistoryPageSize(cfg.Ledger.HistoryPageSize)

	ledgerMetrics, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter:  tel.meters.Meter("farm.inventory"),
		Logger: log,
		Source: itemRepo,
	})
	if err != nil {
		log.Warn("Ledger metrics unavailable", zap.Error(err))
	} else {
		ledgerService.SetMetrics(ledgerMetrics)
		if tel.meters.IsEnabled() {
			ledgerMetrics.StartPeriodicCollection(ctx, cfg.Ledger.LowStockCollectInterval)
			defer ledgerMetrics.Stop()
		}
	}

	userService.SetRecordCounter(appfarm.ModuleCrops, cropRepo)
	userService.SetRecordCounter(appfarm.ModuleLivestock, livestockRepo)
	userService.SetRecordCounter(appfarm.ModuleEquipment, equipmentRepo)
	userService.SetRecordCounter(appfarm.ModuleEmployees, employeeRepo)
	userService.SetRecordCounter(appfinance.ModuleFinance, transactionRepo)
	userService.SetRecordCounter(appinventory.ModuleInventory, itemRepo)

	dashboardService := dashboard.NewService(dashboard.Repositories{
		Crops:        cropRepo,
		Livestock:    livestockRepo,
		Employees:    employeeRepo,
		Inventory:    itemRepo,
		Transactions: transactionRepo,
		Users:        userRepo,
	})

	if cfg.Bootstrap.Enabled() {
		created, err := userService.EnsureAdmin(ctx, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword, cfg.Bootstrap.AdminEmail)
		if err != nil {
			log.Fatal("Failed to create bootstrap admin", zap.Error(err))
		}
		if created {
			log.Info("Bootstrap admin created", zap.String("username", cfg.Bootstrap.AdminUsername))
		}
	}

	middleware.SetupValidator()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine, err := router.New(router.Handlers{
		System:    handler.NewSystemHandler(db, cfg.App.Name, version),
		Auth:      handler.NewAuthHandler(authService),
		Crops:     handler.NewCropHandler(cropService),
		Livestock: handler.NewLivestockHandler(livestockService),
		Equipment: handler.NewEquipmentHandler(equipmentService),
		Employees: handler.NewEmployeeHandler(employeeService),
		Finance:   handler.NewFinanceHandler(transactionService),
		Inventory: handler.NewInventoryHandler(itemService, ledgerService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Users:     handler.NewUserHandler(userService),
		Activity:  handler.NewActivityHandler(activityService),
	}, router.Options{
		Logger:         log,
		JWTService:     jwtService,
		TokenChecker:   authService,
		MeterProvider:  tel.meters,
		ServiceName:    cfg.Telemetry.ServiceName,
		Tracing:        tel.tracer.IsEnabled(),
		Profiling:      tel.profiler.IsEnabled(),
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		CORS:           corsCfg,
		Security:       middleware.DefaultSecurityConfig(),
		TrustedProxies: cfg.HTTP.TrustedProxies,
		LoginLimit:     router.DefaultLoginLimit,
		LoginWindow:    time.Minute,
	})
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}

// telemetryStack holds the providers started at boot. Disabled providers are
// still non-nil and answer IsEnabled with false.
type telemetryStack struct {
	logger   *zap.Logger
	tracer   *telemetry.TracerProvider
	meters   *telemetry.MeterProvider
	logs     *telemetry.LoggerProvider
	profiler *telemetry.Profiler
}

func setupTelemetry(ctx context.Context, cfg *config.Config, log *zap.Logger) *telemetryStack {
	t := cfg.Telemetry
	stack := &telemetryStack{logger: log}
	var err error

	stack.tracer, err = telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           t.Enabled,
		CollectorEndpoint: t.CollectorEndpoint,
		SamplingRatio:     t.SamplingRatio,
		ServiceName:       t.ServiceName,
		Insecure:          t.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	stack.meters, err = telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           t.MetricsEnabled,
		CollectorEndpoint: t.CollectorEndpoint,
		ExportInterval:    t.MetricsInterval,
		ServiceName:       t.ServiceName,
		Insecure:          t.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	stack.logs, err = telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           t.LogsEnabled,
		CollectorEndpoint: t.CollectorEndpoint,
		ServiceName:       t.ServiceName,
		Insecure:          t.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	if stack.logs.IsEnabled() {
		stack.logger = stack.logs.Bridge(log, logger.ParseLevel(cfg.Log.Level))
	}

	stack.profiler, err = telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         t.ProfilingEnabled,
		ServerAddress:   t.PyroscopeAddress,
		ApplicationName: t.ServiceName,
		ProfileTypes:    t.ProfileTypes,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if t.SpanProfiles && stack.profiler.IsEnabled() {
		stack.tracer.EnableSpanProfiles()
	}

	return stack
}

func (s *telemetryStack) shutdown(log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.profiler.Stop(); err != nil {
		log.Error("Failed to stop profiler", zap.Error(err))
	}
	if err := s.meters.Shutdown(ctx); err != nil {
		log.Error("Failed to shutdown meter provider", zap.Error(err))
	}
	if err := s.tracer.Shutdown(ctx); err != nil {
		log.Error("Failed to shutdown tracer provider", zap.Error(err))
	}
	// last, so the messages above are still exported
	if err := s.logs.Shutdown(ctx); err != nil {
		log.Error("Failed to shutdown logger provider", zap.Error(err))
	}
}

// openDatabase connects, installs query tracing and brings the schema up to
// date: AutoMigrate for sqlite, the embedded SQL migrations for postgres.
func openDatabase(cfg *config.Config, log *zap.Logger) *persistence.Database {
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))

	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected", zap.String("driver", db.Driver()))

	dbSystem := "postgresql"
	if db.Driver() == config.DriverSQLite {
		dbSystem = "sqlite"
	}
	plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        dbSystem,
	}, log)
	if err := plugin.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	if cfg.Database.AutoMigrate || db.Driver() == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
		return db
	}

	if err := runMigrations(cfg.Database.DSN(), log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	return db
}

// runMigrations applies pending migrations over a dedicated connection,
// which the migrator closes when done.
func runMigrations(dsn string, log *zap.Logger) error {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, log)
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()
	return m.Up()
}
