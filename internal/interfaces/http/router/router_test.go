package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func reply(body string) gin.HandlerFunc {
	return func(c *gin.Context) { c.String(http.StatusOK, body) }
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewRouter_Defaults(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestDomainGroup_MountsEveryMethod(t *testing.T) {
	engine := gin.New()
	crops := NewDomainGroup("crops", "/crops")
	crops.GET("", reply("list")).
		POST("", reply("create")).
		PUT("/:id", reply("update")).
		PATCH("/:id", reply("patch")).
		DELETE("/:id", reply("delete"))
	require.NoError(t, NewRouter(engine).Register(crops).Setup())

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/api/v1/crops", "list"},
		{http.MethodPost, "/api/v1/crops", "create"},
		{http.MethodPut, "/api/v1/crops/7", "update"},
		{http.MethodPatch, "/api/v1/crops/7", "patch"},
		{http.MethodDelete, "/api/v1/crops/7", "delete"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			w := serve(engine, tt.method, tt.path)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.body, w.Body.String())
		})
	}
}

func TestDomainGroup_SubgroupsInheritMiddleware(t *testing.T) {
	engine := gin.New()
	inventory := NewDomainGroup("inventory", "/inventory").Use(func(c *gin.Context) {
		c.Header("X-Module", "inventory")
		c.Next()
	})
	inventory.Group("items", "/items").GET("", reply("items"))
	inventory.Group("movements", "/movements").GET("/summary", reply("summary"))
	require.NoError(t, NewRouter(engine).Register(inventory).Setup())

	w := serve(engine, http.MethodGet, "/api/v1/inventory/items")
	assert.Equal(t, "items", w.Body.String())
	assert.Equal(t, "inventory", w.Header().Get("X-Module"))

	w = serve(engine, http.MethodGet, "/api/v1/inventory/movements/summary")
	assert.Equal(t, "summary", w.Body.String())
	assert.Equal(t, "inventory", w.Header().Get("X-Module"))
}

func TestRouterUse_AppliesToVersionedRoutesOnly(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", reply("up"))

	r := NewRouter(engine).Use(func(c *gin.Context) {
		c.Header("X-Api", "1")
		c.Next()
	})
	r.Register(NewDomainGroup("dashboard", "/dashboard").GET("", reply("dash")))
	require.NoError(t, r.Setup())

	assert.Equal(t, "1", serve(engine, http.MethodGet, "/api/v1/dashboard").Header().Get("X-Api"))

	w := serve(engine, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-Api"))
}

func TestRouterSetup_RejectsDuplicateRoutes(t *testing.T) {
	engine := gin.New()
	a := NewDomainGroup("livestock", "/livestock").GET("/health-tasks", reply("a"))
	b := NewDomainGroup("health", "/livestock").GET("/health-tasks", reply("b"))

	err := NewRouter(engine).Register(a).Register(b).Setup()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GET /livestock/health-tasks")

	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/v1/livestock/health-tasks").Code)
}

func TestDomainGroupRoutes(t *testing.T) {
	noop := func(c *gin.Context) {}
	g := NewDomainGroup("inventory", "/inventory")
	g.GET("/low-stock", noop)
	items := g.Group("items", "/items")
	items.GET("", noop)
	items.POST("/:id/movements", noop)

	routes := g.Routes()
	paths := make([]string, len(routes))
	for i, r := range routes {
		paths[i] = r.String()
	}
	assert.Equal(t, []string{
		"GET /inventory/low-stock",
		"GET /inventory/items",
		"POST /inventory/items/:id/movements",
	}, paths)
	assert.Equal(t, "items", routes[2].Group)
	assert.Equal(t, "crops", NewDomainGroup("crops", "/crops").Name())
	assert.Equal(t, "/crops", NewDomainGroup("crops", "/crops").Prefix())
}
