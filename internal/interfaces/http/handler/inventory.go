package handler

import (
	"strings"

	appinventory "github.com/farmsaathi/backend/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader lets clients retry a stock movement safely
const IdempotencyKeyHeader = "Idempotency-Key"

// maxIdempotencyKeyLength bounds the header before it reaches the store
const maxIdempotencyKeyLength = 128

// InventoryHandler serves /inventory: the items, their stock ledger and the
// low-stock listing.
type InventoryHandler struct {
	*CRUDHandler[appinventory.ItemQuery, appinventory.CreateItemRequest, appinventory.UpdateItemRequest, appinventory.ItemResponse]
	ledger *appinventory.LedgerService
}

// NewInventoryHandler creates the inventory handler
func NewInventoryHandler(items *appinventory.ItemService, ledger *appinventory.LedgerService) *InventoryHandler {
	return &InventoryHandler{
		CRUDHandler: NewCRUDHandler[appinventory.ItemQuery, appinventory.CreateItemRequest, appinventory.UpdateItemRequest, appinventory.ItemResponse](items),
		ledger:      ledger,
	}
}

// RecordMovement handles POST /inventory/items/:id/movements. A repeated
// Idempotency-Key is answered with 409 and leaves the stock untouched.
func (h *InventoryHandler) RecordMovement(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	itemID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	if len(key) > maxIdempotencyKeyLength {
		h.BadRequest(c, "Idempotency-Key is too long")
		return
	}
	var in appinventory.RecordMovementInput
	if !h.bindJSON(c, &in) {
		return
	}
	in.IdempotencyKey = key

	result, err := h.ledger.RecordMovement(c.Request.Context(), p, itemID, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Quantity handles GET /inventory/items/:id/quantity
func (h *InventoryHandler) Quantity(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	itemID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	qty, err := h.ledger.CurrentQuantity(c.Request.Context(), p, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"item_id": itemID, "quantity": qty})
}

// BalanceCheck handles GET /inventory/items/:id/balance-check
func (h *InventoryHandler) BalanceCheck(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	itemID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	check, err := h.ledger.VerifyBalance(c.Request.Context(), p, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, check)
}

// Movements handles GET /inventory/movements
func (h *InventoryHandler) Movements(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var q appinventory.MovementQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.ledger.MovementHistory(c.Request.Context(), p, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	writePage(c, page)
}

// MovementSummary handles GET /inventory/movements/summary
func (h *InventoryHandler) MovementSummary(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var q appinventory.MovementQuery
	if !h.bindQuery(c, &q) {
		return
	}
	summary, err := h.ledger.Summary(c.Request.Context(), p, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// LowStock handles GET /inventory/low-stock
func (h *InventoryHandler) LowStock(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	items, err := h.ledger.ListLowStock(c.Request.Context(), p)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if items == nil {
		items = []appinventory.ItemResponse{}
	}
	h.Success(c, items)
}
