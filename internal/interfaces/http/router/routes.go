package router

import (
	"net/http"
	"time"

	"github.com/farmsaathi/backend/internal/infrastructure/auth"
	"github.com/farmsaathi/backend/internal/infrastructure/logger"
	"github.com/farmsaathi/backend/internal/infrastructure/telemetry"
	"github.com/farmsaathi/backend/internal/interfaces/http/dto"
	"github.com/farmsaathi/backend/internal/interfaces/http/handler"
	"github.com/farmsaathi/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers groups every HTTP handler the API serves
type Handlers struct {
	System    *handler.SystemHandler
	Auth      *handler.AuthHandler
	Crops     *handler.CropHandler
	Livestock *handler.LivestockHandler
	Equipment *handler.EquipmentHandler
	Employees *handler.EmployeeHandler
	Finance   *handler.FinanceHandler
	Inventory *handler.InventoryHandler
	Dashboard *handler.DashboardHandler
	Users     *handler.UserHandler
	Activity  *handler.ActivityHandler
}

// Options configures the engine built by New
type Options struct {
	Logger         *zap.Logger
	JWTService     *auth.JWTService
	TokenChecker   middleware.TokenChecker
	MeterProvider  *telemetry.MeterProvider
	ServiceName    string
	Tracing        bool
	Profiling      bool
	MaxBodySize    int64
	CORS           middleware.CORSConfig
	Security       middleware.SecurityConfig
	TrustedProxies []string

	// LoginLimit caps login attempts per client within LoginWindow; zero disables it
	LoginLimit  int
	LoginWindow time.Duration
}

// DefaultLoginLimit is the login attempt budget per client and minute
const DefaultLoginLimit = 10

// New builds the gin engine with the middleware stack and every route
func New(h Handlers, opts Options) (*gin.Engine, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.TracingWithConfig(middleware.TracingConfig{ServiceName: opts.ServiceName, Enabled: opts.Tracing}),
		middleware.SpanErrorMarker(),
		logger.GinMiddleware(log),
		middleware.HTTPMetrics(opts.MeterProvider),
		middleware.CORSWithConfig(opts.CORS),
		middleware.SecureWithConfig(opts.Security),
		middleware.ClientIP(),
	)
	if opts.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(opts.MaxBodySize))
	}

	engine.GET("/health", h.System.Health)
	engine.NoRoute(func(c *gin.Context) {
		h.System.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, "Route not found")
	})

	jwtCfg := middleware.DefaultJWTConfig(opts.JWTService)
	jwtCfg.Checker = opts.TokenChecker
	jwtCfg.Logger = log

	r := NewRouter(engine, WithAPIVersion("v1")).Use(
		middleware.JWTAuthMiddlewareWithConfig(jwtCfg),
		middleware.TracingAttributeInjector(),
		middleware.Profiling(opts.Profiling),
	)

	var loginLimiter *middleware.RateLimiter
	if opts.LoginLimit > 0 {
		window := opts.LoginWindow
		if window <= 0 {
			window = time.Minute
		}
		loginLimiter = middleware.NewRateLimiter(opts.LoginLimit, window)
	}

	for _, g := range domainGroups(h, loginLimiter) {
		r.Register(g)
	}
	if err := r.Setup(); err != nil {
		return nil, err
	}
	return engine, nil
}

func domainGroups(h Handlers, loginLimiter *middleware.RateLimiter) []*DomainGroup {
	system := NewDomainGroup("system", "")
	system.GET("/health", h.System.Health)
	system.GET("/system/info", h.System.Info)

	authGroup := NewDomainGroup("auth", "/auth")
	if loginLimiter != nil {
		authGroup.POST("/login", middleware.RateLimit(loginLimiter), h.Auth.Login)
	} else {
		authGroup.POST("/login", h.Auth.Login)
	}
	authGroup.POST("/refresh", h.Auth.Refresh)
	authGroup.POST("/logout", h.Auth.Logout)
	authGroup.GET("/me", h.Auth.Me)

	crops := NewDomainGroup("crops", "/crops")
	crops.GET("", h.Crops.List)
	crops.POST("", h.Crops.Create)
	crops.GET("/:id", h.Crops.Get)
	crops.PUT("/:id", h.Crops.Update)
	crops.DELETE("/:id", h.Crops.Delete)

	livestock := NewDomainGroup("livestock", "/livestock")
	livestock.GET("", h.Livestock.List)
	livestock.POST("", h.Livestock.Create)
	livestock.GET("/health-tasks", h.Livestock.HealthTasks)
	livestock.GET("/:id", h.Livestock.Get)
	livestock.PUT("/:id", h.Livestock.Update)
	livestock.DELETE("/:id", h.Livestock.Delete)
	livestock.GET("/:id/health", h.Livestock.HealthRecords)
	livestock.POST("/:id/health", h.Livestock.AddHealthRecord)
	livestock.GET("/:id/breeding", h.Livestock.BreedingRecords)
	livestock.POST("/:id/breeding", h.Livestock.AddBreedingRecord)
	livestock.GET("/:id/production", h.Livestock.ProductionRecords)
	livestock.POST("/:id/production", h.Livestock.AddProductionRecord)
	livestock.GET("/:id/expense", h.Livestock.ExpenseRecords)
	livestock.POST("/:id/expense", h.Livestock.AddExpenseRecord)
	livestock.DELETE("/:id/:kind/:recordId", h.Livestock.DeleteRecord)

	equipment := NewDomainGroup("equipment", "/equipment")
	equipment.GET("", h.Equipment.List)
	equipment.POST("", h.Equipment.Create)
	equipment.GET("/:id", h.Equipment.Get)
	equipment.PUT("/:id", h.Equipment.Update)
	equipment.DELETE("/:id", h.Equipment.Delete)

	employees := NewDomainGroup("employees", "/employees")
	employees.GET("", h.Employees.List)
	employees.POST("", h.Employees.Create)
	employees.GET("/:id", h.Employees.Get)
	employees.PUT("/:id", h.Employees.Update)
	employees.DELETE("/:id", h.Employees.Delete)

	finance := NewDomainGroup("finance", "/finance")
	transactions := finance.Group("transactions", "/transactions")
	transactions.GET("", h.Finance.List)
	transactions.POST("", h.Finance.Create)
	transactions.GET("/:id", h.Finance.Get)
	transactions.PUT("/:id", h.Finance.Update)
	transactions.DELETE("/:id", h.Finance.Delete)
	finance.GET("/summary", h.Finance.Summary)
	finance.GET("/categories", h.Finance.Categories)

	inventory := NewDomainGroup("inventory", "/inventory")
	items := inventory.Group("items", "/items")
	items.GET("", h.Inventory.List)
	items.POST("", h.Inventory.Create)
	items.GET("/:id", h.Inventory.Get)
	items.PUT("/:id", h.Inventory.Update)
	items.DELETE("/:id", h.Inventory.Delete)
	items.POST("/:id/movements", h.Inventory.RecordMovement)
	items.GET("/:id/quantity", h.Inventory.Quantity)
	items.GET("/:id/balance-check", h.Inventory.BalanceCheck)
	movements := inventory.Group("movements", "/movements")
	movements.GET("", h.Inventory.Movements)
	movements.GET("/summary", h.Inventory.MovementSummary)
	inventory.GET("/low-stock", h.Inventory.LowStock)

	dashboard := NewDomainGroup("dashboard", "/dashboard")
	dashboard.GET("", h.Dashboard.Get)

	admin := NewDomainGroup("admin", "")
	admin.Use(middleware.RequireAdmin())
	users := admin.Group("users", "/users")
	users.GET("", h.Users.List)
	users.POST("", h.Users.Create)
	users.GET("/:id", h.Users.Get)
	users.PUT("/:id", h.Users.Update)
	users.GET("/:id/statistics", h.Users.Statistics)
	activityLogs := admin.Group("activity", "/activity-logs")
	activityLogs.GET("", h.Activity.List)

	return []*DomainGroup{system, authGroup, crops, livestock, equipment, employees, finance, inventory, dashboard, admin}
}
