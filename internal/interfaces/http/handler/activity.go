package handler

import (
	"github.com/farmsaathi/backend/internal/application/activity"
	"github.com/gin-gonic/gin"
)

// ActivityHandler serves the audit trail
type ActivityHandler struct {
	BaseHandler
	service *activity.Service
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(service *activity.Service) *ActivityHandler {
	return &ActivityHandler{service: service}
}

// List returns audit entries newest first, filtered by
// ?user_id=&module=&action=
func (h *ActivityHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var filter activity.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.service.List(c.Request.Context(), p, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	writePage(c, page)
}
