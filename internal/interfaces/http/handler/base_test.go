package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/farmsaathi/backend/internal/domain/access"
	"github.com/farmsaathi/backend/internal/domain/inventory"
	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/farmsaathi/backend/internal/interfaces/http/dto"
	"github.com/farmsaathi/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newContext(method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestBaseHandlerSuccess(t *testing.T) {
	h := &BaseHandler{}
	c, w := newContext(http.MethodGet, "/")

	h.Success(c, map[string]string{"key": "value"})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

func TestBaseHandlerCreated(t *testing.T) {
	h := &BaseHandler{}
	c, w := newContext(http.MethodPost, "/")

	h.Created(c, map[string]string{"id": "123"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decode(t, w).Success)
}

func TestBaseHandlerNoContent(t *testing.T) {
	h := &BaseHandler{}
	router := gin.New()
	router.DELETE("/test", func(c *gin.Context) { h.NoContent(c) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/test", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestWritePage_NilItemsBecomeEmptyArray(t *testing.T) {
	c, w := newContext(http.MethodGet, "/")

	writePage(c, shared.Paginated[string]{Total: 0, Page: 1, PageSize: 20})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
	resp := decode(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 20, resp.Meta.PageSize)
	assert.Equal(t, 0, resp.Meta.TotalPages)
}

func TestBaseHandlerPrincipal(t *testing.T) {
	h := &BaseHandler{}

	t.Run("missing principal answers 401", func(t *testing.T) {
		c, w := newContext(http.MethodGet, "/")
		_, ok := h.principal(c)
		assert.False(t, ok)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeUnauthorized, decode(t, w).Error.Code)
	})

	t.Run("principal from context", func(t *testing.T) {
		c, _ := newContext(http.MethodGet, "/")
		p, err := access.NewPrincipal(uuid.New(), "asha", access.RoleManager)
		require.NoError(t, err)
		c.Set(middleware.PrincipalKey, p)

		got, ok := h.principal(c)
		assert.True(t, ok)
		assert.Equal(t, p.ID, got.ID)
	})
}

func TestBaseHandlerPathID(t *testing.T) {
	h := &BaseHandler{}

	c, w := newContext(http.MethodGet, "/crops/not-a-uuid")
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}
	_, ok := h.pathID(c, "id")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
	assert.Equal(t, "Invalid id", resp.Error.Message)

	id := uuid.New()
	c, _ = newContext(http.MethodGet, "/crops/"+id.String())
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	got, ok := h.pathID(c, "id")
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

func TestBaseHandlerHandleError(t *testing.T) {
	owner := uuid.New()
	var verrs shared.ValidationErrors
	verrs.Add("crop_name", "Crop name is required.")
	verrs.Add("area_hectares", "Area must not be negative.")

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
		expectedMsg    string
		details        int
	}{
		{
			name:           "validation errors",
			err:            verrs,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   dto.ErrCodeValidation,
			expectedMsg:    "Please correct the highlighted fields.",
			details:        2,
		},
		{
			name:           "record missing",
			err:            &access.AccessError{Reason: access.ReasonNotFound},
			expectedStatus: http.StatusNotFound,
			expectedCode:   dto.ErrCodeNotFound,
			expectedMsg:    access.UserMessage,
		},
		{
			name:           "record owned by someone else looks missing",
			err:            fmt.Errorf("load crop: %w", &access.AccessError{Reason: access.ReasonAccessDenied, Owner: owner}),
			expectedStatus: http.StatusNotFound,
			expectedCode:   dto.ErrCodeNotFound,
			expectedMsg:    access.UserMessage,
		},
		{
			name:           "ledger violation",
			err:            inventory.InsufficientStockError(decimal.NewFromInt(150), "kg"),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   dto.ErrCodeLedger,
			expectedMsg:    "Cannot remove more than available stock (150 kg).",
			details:        1,
		},
		{
			name:           "duplicate request",
			err:            shared.ErrDuplicateRequest,
			expectedStatus: http.StatusConflict,
			expectedCode:   dto.ErrCodeDuplicateRequest,
		},
		{
			name:           "forbidden",
			err:            shared.ErrForbidden,
			expectedStatus: http.StatusForbidden,
			expectedCode:   dto.ErrCodeForbidden,
		},
		{
			name:           "unknown error is hidden",
			err:            errors.New("connection reset"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   dto.ErrCodeInternal,
			expectedMsg:    "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			c, w := newContext(http.MethodGet, "/")
			c.Set("request_id", "req-1")

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := decode(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectedCode, resp.Error.Code)
			assert.Equal(t, "req-1", resp.Error.RequestID)
			if tt.expectedMsg != "" {
				assert.Equal(t, tt.expectedMsg, resp.Error.Message)
			}
			assert.Len(t, resp.Error.Details, tt.details)
			assert.NotContains(t, w.Body.String(), "connection reset")
		})
	}
}

func TestBaseHandlerHandleError_LedgerDetailCodes(t *testing.T) {
	h := &BaseHandler{}
	c, w := newContext(http.MethodPost, "/")

	h.HandleError(c, inventory.InsufficientStockError(decimal.NewFromInt(3), "bags"))

	resp := decode(t, w)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, string(inventory.ViolationInsufficientStock), resp.Error.Details[0].Code)
	assert.Empty(t, resp.Error.Details[0].Field)
}
