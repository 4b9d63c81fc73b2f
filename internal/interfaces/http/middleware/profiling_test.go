package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestControllerFromRoute(t *testing.T) {
	tests := map[string]string{
		"/api/v1/inventory/items/:id":  "inventory",
		"/api/v1/crops":                "crops",
		"/api/v2/livestock/:id/health": "livestock",
		"/health":                      "health",
		"":                             "",
	}
	for route, want := range tests {
		assert.Equal(t, want, controllerFromRoute(route), route)
	}
}

func TestProfiling_PassesThrough(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		called := false
		router := gin.New()
		router.Use(Profiling(enabled))
		router.GET("/api/v1/crops", func(c *gin.Context) {
			called = true
			c.Status(http.StatusOK)
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/crops", nil))

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
