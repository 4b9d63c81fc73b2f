package handler

import (
	"context"

	"github.com/farmsaathi/backend/internal/domain/access"
	"github.com/farmsaathi/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// crudService is the shape shared by the services of owned records. Every
// call is evaluated against the calling principal.
type crudService[Q, C, U, R any] interface {
	List(ctx context.Context, p access.Principal, q Q) (shared.Paginated[R], error)
	Get(ctx context.Context, p access.Principal, id uuid.UUID) (*R, error)
	Create(ctx context.Context, p access.Principal, req C) (*R, error)
	Update(ctx context.Context, p access.Principal, id uuid.UUID, req U) (*R, error)
	Delete(ctx context.Context, p access.Principal, id uuid.UUID) error
}

// CRUDHandler serves list/get/create/update/delete for one owned record
// type. Q is the query the listing binds, C and U the create and update
// bodies, R the response.
type CRUDHandler[Q, C, U, R any] struct {
	BaseHandler
	service crudService[Q, C, U, R]
}

// NewCRUDHandler creates a handler over svc
func NewCRUDHandler[Q, C, U, R any](svc crudService[Q, C, U, R]) *CRUDHandler[Q, C, U, R] {
	return &CRUDHandler[Q, C, U, R]{service: svc}
}

// List returns one page of the records visible to the caller
func (h *CRUDHandler[Q, C, U, R]) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var q Q
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.service.List(c.Request.Context(), p, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	writePage(c, page)
}

// Get returns one record
func (h *CRUDHandler[Q, C, U, R]) Get(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.service.Get(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Create stores a new record owned by the caller
func (h *CRUDHandler[Q, C, U, R]) Create(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req C
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.service.Create(c.Request.Context(), p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Update changes a record the caller may access
func (h *CRUDHandler[Q, C, U, R]) Update(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req U
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.service.Update(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete removes a record the caller may access
func (h *CRUDHandler[Q, C, U, R]) Delete(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), p, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
