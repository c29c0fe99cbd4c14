package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	invoices := router.Group("/api/invoices")
	{
		invoices.POST("", middleware.RequireRole(model.RoleAdmin, model.RoleTechnician), h.CreateInvoice)
		invoices.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleTechnician), h.ListInvoices)
		invoices.GET("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleTechnician, model.RoleCustomer), h.GetInvoice)
		invoices.PUT("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleTechnician), h.UpdateInvoice)
		invoices.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteInvoice)
		invoices.POST("/:id/payments", middleware.RequireRole(model.RoleAdmin, model.RoleTechnician), h.AddPayment)
		invoices.POST("/:id/remind", middleware.RequireRole(model.RoleAdmin), h.AddReminder)
	}
}

// CreateInvoice creates a new invoice with computed totals
// @Summary      Create invoice
// @Description  Creates an invoice for a customer, computing subtotal, tax and total from the line items
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateInvoiceRequest  true  "Create Invoice Payload"
// @Success      201      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), scope, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invoice))
}

// ListInvoices returns a paginated list of the company's invoices
// @Summary      List invoices
// @Description  Retrieves a paginated list of invoices, optionally filtered by status, customer and issue date range
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        status       query     string  false  "Filter by status (draft, sent, viewed, paid, partial, overdue, cancelled)"
// @Param        customer_id  query     string  false  "Filter by customer"
// @Param        start_date   query     string  false  "Issued on or after (RFC3339)"
// @Param        end_date     query     string  false  "Issued on or before (RFC3339)"
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Number of items per page (default 20)"
// @Success      200          {object}  response.Response{data=object}
// @Failure      500          {object}  response.Response
// @Router       /api/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	p := pagination.Parse(c)
	query := service.InvoiceListQuery{
		Status:     c.Query("status"),
		CustomerID: c.Query("customer_id"),
		StartDate:  c.Query("start_date"),
		EndDate:    c.Query("end_date"),
		Page:       p.Page,
		Limit:      p.Limit,
	}

	invoices, total, err := h.invoiceService.ListInvoices(c.Request.Context(), scope, query)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.Envelope("invoices", invoices, total, p)))
}

// GetInvoice returns one invoice with its items, payments and reminders
// @Summary      Get invoice
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.InvoiceResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// UpdateInvoice updates an invoice, recomputing totals when items change
// @Summary      Update invoice
// @Description  Updates invoice fields; replacing line items recomputes totals while keeping payments counted
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Invoice ID"
// @Param        payload  body      service.UpdateInvoiceRequest  true  "Update Invoice Payload"
// @Success      200      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/invoices/{id} [put]
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	var req service.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.UpdateInvoice(c.Request.Context(), scope, c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// DeleteInvoice soft-deletes an invoice that has not been paid
// @Summary      Delete invoice
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/invoices/{id} [delete]
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), scope, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Invoice deleted"}))
}

// AddPayment records a payment and rolls the invoice status forward
// @Summary      Add payment
// @Description  Records a payment against the invoice; a duplicate transaction id is rejected with 409
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Invoice ID"
// @Param        payload  body      service.AddPaymentRequest  true  "Payment Payload"
// @Success      200      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/invoices/{id}/payments [post]
func (h *InvoiceHandler) AddPayment(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	var req service.AddPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.AddPayment(c.Request.Context(), scope, c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// AddReminder appends a reminder entry to the invoice
// @Summary      Send reminder
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Invoice ID"
// @Param        payload  body      service.AddReminderRequest  true  "Reminder Payload"
// @Success      200      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/invoices/{id}/remind [post]
func (h *InvoiceHandler) AddReminder(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	var req service.AddReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.invoiceService.AddReminder(c.Request.Context(), scope, c.Param("id"), req); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Reminder recorded"}))
}
