package handler

import (
	"time"

	billingapp "github.com/aquaportal/backend/internal/application/billing"
	"github.com/aquaportal/backend/internal/domain/billing"
	"github.com/aquaportal/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillHandler handles bill requests
type BillHandler struct {
	BaseHandler
	billService *billingapp.BillService
}

// NewBillHandler creates a new bill handler
func NewBillHandler(billService *billingapp.BillService) *BillHandler {
	return &BillHandler{billService: billService}
}

// CreateBillRequest holds the admin-entered fields of a bill. Units and
// amount are derived and not accepted.
type CreateBillRequest struct {
	CustomerID      uuid.UUID        `json:"customer_id" binding:"required"`
	MeterNumber     *string          `json:"meter_number" binding:"omitempty,min=1,max=50"`
	PreviousReading *decimal.Decimal `json:"previous_reading"`
	CurrentReading  *decimal.Decimal `json:"current_reading" binding:"required"`
	RatePerUnit     *decimal.Decimal `json:"rate_per_unit"`
	BillingMonth    string           `json:"billing_month" binding:"required,max=50"`
	DueDate         *time.Time       `json:"due_date"`
}

// ReviseReadingsRequest replaces readings or rate. Omitted fields keep the stored value.
type ReviseReadingsRequest struct {
	PreviousReading *decimal.Decimal `json:"previous_reading"`
	CurrentReading  *decimal.Decimal `json:"current_reading"`
	RatePerUnit     *decimal.Decimal `json:"rate_per_unit"`
}

// ListBillsRequest holds bill listing filters
type ListBillsRequest struct {
	dto.ListRequest
	Status     string `form:"status" binding:"omitempty,bill_status"`
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
}

// ListBills godoc
// @Summary      List bills
// @Description  Customers see their own bills; admins may filter by customer
// @Tags         bills
// @Produce      json
// @Security     BearerAuth
// @Param        status      query string false "pending, paid or overdue"
// @Param        customer_id query string false "Customer profile ID"
// @Param        page        query int    false "Page number"
// @Param        page_size   query int    false "Page size"
// @Success      200 {object} dto.Response{data=[]billingapp.BillResponse}
// @Router       /api/v1/bills [get]
func (h *BillHandler) ListBills(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var req ListBillsRequest
	if !h.bindQuery(c, &req) {
		return
	}

	filter := billingapp.ListBillsFilter{ListOptions: req.ListOptions()}
	if req.Status != "" {
		status := billing.BillStatus(req.Status)
		filter.Status = &status
	}
	if req.CustomerID != "" {
		id := uuid.MustParse(req.CustomerID)
		filter.CustomerID = &id
	}

	result, err := h.billService.ListBills(c.Request.Context(), principal, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	writePage(c, *result)
}

// GetBill godoc
// @Summary      Get a bill
// @Tags         bills
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Bill ID"
// @Success      200 {object} dto.Response{data=billingapp.BillResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/bills/{id} [get]
func (h *BillHandler) GetBill(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	bill, err := h.billService.GetBill(c.Request.Context(), principal, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bill)
}

// CreateBill godoc
// @Summary      Issue a bill
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateBillRequest true "Bill readings"
// @Success      201 {object} dto.Response{data=billingapp.BillResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/admin/bills [post]
func (h *BillHandler) CreateBill(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var req CreateBillRequest
	if !h.bindJSON(c, &req) {
		return
	}

	bill, err := h.billService.CreateBill(c.Request.Context(), principal, billingapp.CreateBillInput{
		CustomerID:      req.CustomerID,
		MeterNumber:     req.MeterNumber,
		PreviousReading: req.PreviousReading,
		CurrentReading:  *req.CurrentReading,
		RatePerUnit:     req.RatePerUnit,
		BillingMonth:    req.BillingMonth,
		DueDate:         req.DueDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, bill)
}

// ReviseReadings godoc
// @Summary      Correct a bill's readings or rate
// @Description  Units and amount are recomputed. Paid bills cannot be revised.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string                true "Bill ID"
// @Param        request body ReviseReadingsRequest true "Replacement values"
// @Success      200 {object} dto.Response{data=billingapp.BillResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/admin/bills/{id}/readings [put]
func (h *BillHandler) ReviseReadings(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req ReviseReadingsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	bill, err := h.billService.ReviseReadings(c.Request.Context(), principal, id, billingapp.ReviseReadingsInput{
		PreviousReading: req.PreviousReading,
		CurrentReading:  req.CurrentReading,
		RatePerUnit:     req.RatePerUnit,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bill)
}
