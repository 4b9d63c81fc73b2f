package handler

import (
	"context"
	"strconv"

	appfarm "github.com/farmsaathi/backend/internal/application/farm"
	"github.com/farmsaathi/backend/internal/application/owned"
	"github.com/farmsaathi/backend/internal/domain/access"
	"github.com/farmsaathi/backend/internal/domain/farm"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CropHandler serves /crops
type CropHandler = CRUDHandler[owned.ListQuery, appfarm.CropRequest, appfarm.CropRequest, appfarm.CropResponse]

// NewCropHandler creates the crop handler
func NewCropHandler(svc *appfarm.CropService) *CropHandler {
	return NewCRUDHandler[owned.ListQuery, appfarm.CropRequest, appfarm.CropRequest, appfarm.CropResponse](svc)
}

// EquipmentHandler serves /equipment
type EquipmentHandler = CRUDHandler[owned.ListQuery, appfarm.EquipmentRequest, appfarm.EquipmentRequest, appfarm.EquipmentResponse]

// NewEquipmentHandler creates the equipment handler
func NewEquipmentHandler(svc *appfarm.EquipmentService) *EquipmentHandler {
	return NewCRUDHandler[owned.ListQuery, appfarm.EquipmentRequest, appfarm.EquipmentRequest, appfarm.EquipmentResponse](svc)
}

// EmployeeHandler serves /employees
type EmployeeHandler = CRUDHandler[owned.ListQuery, appfarm.EmployeeRequest, appfarm.EmployeeRequest, appfarm.EmployeeResponse]

// NewEmployeeHandler creates the employee handler
func NewEmployeeHandler(svc *appfarm.EmployeeService) *EmployeeHandler {
	return NewCRUDHandler[owned.ListQuery, appfarm.EmployeeRequest, appfarm.EmployeeRequest, appfarm.EmployeeResponse](svc)
}

// LivestockHandler serves /livestock and the history of each animal
type LivestockHandler struct {
	*CRUDHandler[owned.ListQuery, appfarm.LivestockRequest, appfarm.LivestockRequest, appfarm.LivestockResponse]
	service *appfarm.LivestockService
}

// NewLivestockHandler creates the livestock handler
func NewLivestockHandler(svc *appfarm.LivestockService) *LivestockHandler {
	return &LivestockHandler{
		CRUDHandler: NewCRUDHandler[owned.ListQuery, appfarm.LivestockRequest, appfarm.LivestockRequest, appfarm.LivestockResponse](svc),
		service:     svc,
	}
}

// HealthTasks lists health events due within ?days= (default 30)
func (h *LivestockHandler) HealthTasks(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	days := 0
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 365 {
			h.BadRequest(c, "days must be between 1 and 365")
			return
		}
		days = n
	}
	tasks, err := h.service.UpcomingHealthTasks(c.Request.Context(), p, days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if tasks == nil {
		tasks = []appfarm.HealthTaskResponse{}
	}
	h.Success(c, tasks)
}

// AddHealthRecord handles POST /livestock/:id/health
func (h *LivestockHandler) AddHealthRecord(c *gin.Context) {
	addRecord(h, c, h.service.AddHealthRecord)
}

// HealthRecords handles GET /livestock/:id/health
func (h *LivestockHandler) HealthRecords(c *gin.Context) {
	listRecords(h, c, h.service.HealthRecords)
}

// AddBreedingRecord handles POST /livestock/:id/breeding
func (h *LivestockHandler) AddBreedingRecord(c *gin.Context) {
	addRecord(h, c, h.service.AddBreedingRecord)
}

// BreedingRecords handles GET /livestock/:id/breeding
func (h *LivestockHandler) BreedingRecords(c *gin.Context) {
	listRecords(h, c, h.service.BreedingRecords)
}

// AddProductionRecord handles POST /livestock/:id/production
func (h *LivestockHandler) AddProductionRecord(c *gin.Context) {
	addRecord(h, c, h.service.AddProductionRecord)
}

// ProductionRecords handles GET /livestock/:id/production
func (h *LivestockHandler) ProductionRecords(c *gin.Context) {
	listRecords(h, c, h.service.ProductionRecords)
}

// AddExpenseRecord handles POST /livestock/:id/expense
func (h *LivestockHandler) AddExpenseRecord(c *gin.Context) {
	addRecord(h, c, h.service.AddExpenseRecord)
}

// ExpenseRecords handles GET /livestock/:id/expense
func (h *LivestockHandler) ExpenseRecords(c *gin.Context) {
	listRecords(h, c, h.service.ExpenseRecords)
}

// DeleteRecord handles DELETE /livestock/:id/:kind/:recordId
func (h *LivestockHandler) DeleteRecord(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	livestockID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	kind := farm.RecordKind(c.Param("kind"))
	if !kind.IsValid() {
		h.BadRequest(c, "Invalid record kind")
		return
	}
	recordID, ok := h.pathID(c, "recordId")
	if !ok {
		return
	}
	if err := h.service.DeleteRecord(c.Request.Context(), p, livestockID, kind, recordID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func addRecord[Req, Resp any](h *LivestockHandler, c *gin.Context, add func(context.Context, access.Principal, uuid.UUID, Req) (*Resp, error)) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	livestockID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req Req
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := add(c.Request.Context(), p, livestockID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

func listRecords[Resp any](h *LivestockHandler, c *gin.Context, list func(context.Context, access.Principal, uuid.UUID) ([]Resp, error)) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	livestockID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	records, err := list(c.Request.Context(), p, livestockID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if records == nil {
		records = []Resp{}
	}
	h.Success(c, records)
}
