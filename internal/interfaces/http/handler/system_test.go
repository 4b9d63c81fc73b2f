package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func() error

func (f pingerFunc) Ping() error { return f() }

func TestSystemHandler_Health(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		h := NewSystemHandler(pingerFunc(func() error { return nil }), "FarmSaathi API", "1.0.0")
		c, w := newContext(http.MethodGet, "/health")

		h.Health(c)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		assert.True(t, resp.Success)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "healthy", data["status"])
		assert.Equal(t, "ok", data["database"])
	})

	t.Run("database down", func(t *testing.T) {
		h := NewSystemHandler(pingerFunc(func() error { return errors.New("dial tcp: refused") }), "FarmSaathi API", "1.0.0")
		c, w := newContext(http.MethodGet, "/health")

		h.Health(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var body struct {
			Success bool           `json:"success"`
			Data    HealthResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.Equal(t, "unhealthy", body.Data.Status)
		assert.NotContains(t, w.Body.String(), "refused")
	})
}

func TestSystemHandler_Info(t *testing.T) {
	h := NewSystemHandler(pingerFunc(func() error { return nil }), "FarmSaathi API", "1.2.3")
	c, w := newContext(http.MethodGet, "/api/v1/system/info")

	h.Info(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]any)
	assert.Equal(t, "FarmSaathi API", data["name"])
	assert.Equal(t, "1.2.3", data["version"])
	assert.NotEmpty(t, data["go_version"])
	assert.NotEmpty(t, data["uptime"])
}
