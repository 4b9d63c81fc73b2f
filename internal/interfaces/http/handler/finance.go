package handler

import (
	appfinance "github.com/farmsaathi/backend/internal/application/finance"
	"github.com/gin-gonic/gin"
)

// FinanceHandler serves /finance: income and expense transactions plus
// their summary.
type FinanceHandler struct {
	*CRUDHandler[appfinance.TransactionQuery, appfinance.TransactionRequest, appfinance.TransactionRequest, appfinance.TransactionResponse]
	service *appfinance.TransactionService
}

// NewFinanceHandler creates the finance handler
func NewFinanceHandler(svc *appfinance.TransactionService) *FinanceHandler {
	return &FinanceHandler{
		CRUDHandler: NewCRUDHandler[appfinance.TransactionQuery, appfinance.TransactionRequest, appfinance.TransactionRequest, appfinance.TransactionResponse](svc),
		service:     svc,
	}
}

// Summary totals income and expense, optionally bounded by
// ?date_from=&date_to=
func (h *FinanceHandler) Summary(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var q appfinance.SummaryQuery
	if !h.bindQuery(c, &q) {
		return
	}
	summary, err := h.service.Summary(c.Request.Context(), p, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Categories returns the suggested categories per transaction type
func (h *FinanceHandler) Categories(c *gin.Context) {
	h.Success(c, h.service.Categories())
}
