package router

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/farmsaathi/backend/internal/domain/access"
	"github.com/farmsaathi/backend/internal/infrastructure/auth"
	"github.com/farmsaathi/backend/internal/infrastructure/config"
	"github.com/farmsaathi/backend/internal/interfaces/http/handler"
	"github.com/farmsaathi/backend/internal/interfaces/http/middleware"
	"github.com/farmsaathi/backend/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func() error

func (f pingerFunc) Ping() error { return f() }

// newTestEngine wires handlers without services; only requests rejected
// before reaching a service are sent through it.
func newTestEngine(t *testing.T, jwtService *auth.JWTService, loginLimit int) *gin.Engine {
	t.Helper()

	h := Handlers{
		System:    handler.NewSystemHandler(pingerFunc(func() error { return nil }), "farm-test", "test"),
		Auth:      handler.NewAuthHandler(nil),
		Crops:     handler.NewCropHandler(nil),
		Livestock: handler.NewLivestockHandler(nil),
		Equipment: handler.NewEquipmentHandler(nil),
		Employees: handler.NewEmployeeHandler(nil),
		Finance:   handler.NewFinanceHandler(nil),
		Inventory: handler.NewInventoryHandler(nil, nil),
		Dashboard: handler.NewDashboardHandler(nil),
		Users:     handler.NewUserHandler(nil),
		Activity:  handler.NewActivityHandler(nil),
	}
	engine, err := New(h, Options{
		JWTService:  jwtService,
		ServiceName: "farm-test",
		MaxBodySize: 1 << 20,
		CORS:        middleware.DefaultCORSConfig(),
		Security:    middleware.DefaultSecurityConfig(),
		LoginLimit:  loginLimit,
	})
	require.NoError(t, err)
	return engine
}

func testJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "router-test-secret-at-least-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "farm-test",
	})
}

func bearer(t *testing.T, svc *auth.JWTService, role access.Role) map[string]string {
	t.Helper()
	pair, err := svc.GenerateTokenPair(access.Principal{ID: uuid.New(), Username: "ravi", Role: role})
	require.NoError(t, err)
	return map[string]string{middleware.AuthHeaderKey: middleware.BearerPrefix + pair.AccessToken}
}

func TestNew_PublicAndProtectedRoutes(t *testing.T) {
	jwtService := testJWTService()
	engine := newTestEngine(t, jwtService, 0)
	manager := bearer(t, jwtService, access.RoleManager)

	testutil.RunHTTPTestCases(t, engine, []testutil.HTTPTestCase{
		{Name: "root health", Method: http.MethodGet, Path: "/health", ExpectedStatus: http.StatusOK},
		{Name: "versioned health", Method: http.MethodGet, Path: "/api/v1/health", ExpectedStatus: http.StatusOK},
		{
			Name:           "crops need a token",
			Method:         http.MethodGet,
			Path:           "/api/v1/crops",
			ExpectedStatus: http.StatusUnauthorized,
			ExpectedCode:   "UNAUTHORIZED",
		},
		{
			Name:           "garbage token",
			Method:         http.MethodGet,
			Path:           "/api/v1/dashboard",
			Headers:        map[string]string{middleware.AuthHeaderKey: "Bearer nope"},
			ExpectedStatus: http.StatusUnauthorized,
			ExpectedCode:   "TOKEN_INVALID",
		},
		{
			Name:           "users are admin only",
			Method:         http.MethodGet,
			Path:           "/api/v1/users",
			Headers:        manager,
			ExpectedStatus: http.StatusForbidden,
			ExpectedCode:   "FORBIDDEN",
		},
		{
			Name:           "activity logs are admin only",
			Method:         http.MethodGet,
			Path:           "/api/v1/activity-logs",
			Headers:        manager,
			ExpectedStatus: http.StatusForbidden,
		},
		{
			Name:           "malformed item id reaches the handler",
			Method:         http.MethodGet,
			Path:           "/api/v1/inventory/items/not-a-uuid/quantity",
			Headers:        manager,
			ExpectedStatus: http.StatusBadRequest,
			ExpectedCode:   "BAD_REQUEST",
		},
		{
			Name:           "unknown record kind",
			Method:         http.MethodDelete,
			Path:           "/api/v1/livestock/" + uuid.NewString() + "/vaccines/" + uuid.NewString(),
			Headers:        manager,
			ExpectedStatus: http.StatusBadRequest,
		},
		{
			Name:           "unknown route",
			Method:         http.MethodGet,
			Path:           "/api/v1/barns",
			Headers:        manager,
			ExpectedStatus: http.StatusNotFound,
			ExpectedCode:   "NOT_FOUND",
		},
		{
			Name:   "request id is echoed",
			Method: http.MethodGet,
			Path:   "/health",
			Validate: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
				assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
			},
		},
	})
}

func TestNew_LoginIsRateLimited(t *testing.T) {
	engine := newTestEngine(t, testJWTService(), 2)

	for i := 0; i < 2; i++ {
		w := testutil.Serve(t, engine, http.MethodPost, "/api/v1/auth/login", "{", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := testutil.Serve(t, engine, http.MethodPost, "/api/v1/auth/login", "{", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	testutil.AssertErrorCode(t, w, "RATE_LIMITED")
}

func TestNew_HealthReportsDatabaseDown(t *testing.T) {
	h := Handlers{
		System:    handler.NewSystemHandler(pingerFunc(func() error { return errors.New("refused") }), "farm-test", "test"),
		Auth:      handler.NewAuthHandler(nil),
		Crops:     handler.NewCropHandler(nil),
		Livestock: handler.NewLivestockHandler(nil),
		Equipment: handler.NewEquipmentHandler(nil),
		Employees: handler.NewEmployeeHandler(nil),
		Finance:   handler.NewFinanceHandler(nil),
		Inventory: handler.NewInventoryHandler(nil, nil),
		Dashboard: handler.NewDashboardHandler(nil),
		Users:     handler.NewUserHandler(nil),
		Activity:  handler.NewActivityHandler(nil),
	}
	engine, err := New(h, Options{JWTService: testJWTService()})
	require.NoError(t, err)

	w := testutil.Serve(t, engine, http.MethodGet, "/api/v1/health", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
