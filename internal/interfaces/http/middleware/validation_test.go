package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/farmsaathi/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginBody struct {
	Username string `json:"username" binding:"required,max=5"`
	Role     string `json:"role" binding:"omitempty,oneof=admin manager"`
}

func bindingRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.Use(RequestID())
	router.POST("/", func(c *gin.Context) {
		var body loginBody
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleBindingError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})
	return router
}

func TestHandleBindingError_ListsFields(t *testing.T) {
	rec := httptest.NewRecorder()
	bindingRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/",
		strings.NewReader(`{"username":"toolongname","role":"owner"}`)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "username", resp.Error.Details[0].Field)
	assert.Equal(t, "Must be at most 5 characters", resp.Error.Details[0].Message)
	assert.Equal(t, "role", resp.Error.Details[1].Field)
}

func TestHandleBindingError_MalformedJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	bindingRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, dto.ErrCodeBadRequest, errorCode(t, rec))
}
