package handler

import (
	"time"

	paymentapp "github.com/aquaportal/backend/internal/application/payment"
	"github.com/aquaportal/backend/internal/domain/payment"
	"github.com/aquaportal/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentHandler handles payment requests
type PaymentHandler struct {
	BaseHandler
	paymentService *paymentapp.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *paymentapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// RecordPaymentRequest holds the payment details asserted by the payer.
// Method is checked by the domain so an unknown value reports INVALID_METHOD.
type RecordPaymentRequest struct {
	Amount        *decimal.Decimal `json:"amount" binding:"required"`
	Method        string           `json:"payment_method" binding:"required"`
	TransactionID string           `json:"transaction_id" binding:"omitempty,max=100"`
	PaymentDate   *time.Time       `json:"payment_date"`
}

// ReviewPaymentRequest holds an admin's review outcome
type ReviewPaymentRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note" binding:"omitempty,max=1000"`
}

// ListPaymentsRequest holds payment listing filters
type ListPaymentsRequest struct {
	dto.ListRequest
	BillID     string `form:"bill_id" binding:"omitempty,uuid"`
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,payment_status"`
}

// RecordPayment godoc
// @Summary      Pay a bill
// @Description  Records a completed payment and marks the bill paid. Send an
// @Description  Idempotency-Key header to make retries safe.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id              path   string               true  "Bill ID"
// @Param        Idempotency-Key header string               false "Client request key"
// @Param        request         body   RecordPaymentRequest true  "Payment details"
// @Success      201 {object} dto.Response{data=paymentapp.RecordPaymentResult}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/bills/{id}/payments [post]
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	billID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req RecordPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.paymentService.RecordPayment(c.Request.Context(), principal, billID, paymentapp.RecordPaymentInput{
		Amount:        *req.Amount,
		Method:        payment.Method(req.Method),
		TransactionID: req.TransactionID,
		PaymentDate:   req.PaymentDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ListPayments godoc
// @Summary      List payments
// @Description  Customers see their own payments; admins see all
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        bill_id     query string false "Bill ID"
// @Param        customer_id query string false "Customer profile ID"
// @Param        status      query string false "Payment status"
// @Param        page        query int    false "Page number"
// @Param        page_size   query int    false "Page size"
// @Success      200 {object} dto.Response{data=[]paymentapp.PaymentResponse}
// @Router       /api/v1/payments [get]
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var req ListPaymentsRequest
	if !h.bindQuery(c, &req) {
		return
	}

	filter := paymentapp.ListPaymentsFilter{ListOptions: req.ListOptions()}
	if req.BillID != "" {
		id := uuid.MustParse(req.BillID)
		filter.BillID = &id
	}
	if req.CustomerID != "" {
		id := uuid.MustParse(req.CustomerID)
		filter.CustomerID = &id
	}
	if req.Status != "" {
		status := payment.Status(req.Status)
		filter.Status = &status
	}

	result, err := h.paymentService.ListPayments(c.Request.Context(), principal, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	writePage(c, *result)
}

// ReviewPayment godoc
// @Summary      Review a payment
// @Description  A failed payment returns a paid bill to pending
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string               true "Payment ID"
// @Param        request body ReviewPaymentRequest true "Review outcome"
// @Success      200 {object} dto.Response{data=paymentapp.ReviewPaymentResult}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/admin/payments/{id}/review [put]
func (h *PaymentHandler) ReviewPayment(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req ReviewPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.paymentService.ReviewPayment(c.Request.Context(), principal, id, paymentapp.ReviewPaymentInput{
		Status: payment.Status(req.Status),
		Note:   req.Note,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
