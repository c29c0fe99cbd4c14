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

type AppointmentHandler struct {
	appointmentService service.AppointmentService
}

func NewAppointmentHandler(appointmentService service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: appointmentService}
}

func (h *AppointmentHandler) RegisterRoutes(router *gin.RouterGroup) {
	appointments := router.Group("/api/appointments")
	{
		appointments.POST("", middleware.RequireRole(model.RoleAdmin, model.RoleTechnician), h.CreateAppointment)
		appointments.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleTechnician, model.RoleCustomer), h.ListAppointments)
		appointments.GET("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleTechnician, model.RoleCustomer), h.GetAppointment)
		appointments.PUT("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleTechnician), h.UpdateAppointment)
		appointments.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteAppointment)
		appointments.POST("/:id/checkin", middleware.RequireRole(model.RoleAdmin, model.RoleTechnician), h.CheckIn)
		appointments.POST("/:id/checkout", middleware.RequireRole(model.RoleAdmin, model.RoleTechnician), h.CheckOut)
		appointments.POST("/:id/cancel", middleware.RequireRole(model.RoleAdmin, model.RoleTechnician, model.RoleCustomer), h.Cancel)
	}
}

// CreateAppointment schedules a visit
// @Summary      Create appointment
// @Tags         appointments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateAppointmentRequest  true  "Create Appointment Payload"
// @Success      201      {object}  response.Response{data=model.Appointment}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/appointments [post]
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	var req service.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	appointment, err := h.appointmentService.CreateAppointment(c.Request.Context(), scope, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, appointment))
}

// ListAppointments returns the caller's visible appointments
// @Summary      List appointments
// @Description  Admins see all company appointments; technicians and customers only their own
// @Tags         appointments
// @Security     BearerAuth
// @Produce      json
// @Param        status         query     string  false  "Filter by status"
// @Param        technician_id  query     string  false  "Filter by technician (admin only)"
// @Param        customer_id    query     string  false  "Filter by customer (admin only)"
// @Param        start_date     query     string  false  "Scheduled on or after (RFC3339)"
// @Param        end_date       query     string  false  "Scheduled on or before (RFC3339)"
// @Param        page           query     int     false  "Page number (default 1)"
// @Param        limit          query     int     false  "Number of items per page (default 20)"
// @Success      200            {object}  response.Response{data=object}
// @Failure      500            {object}  response.Response
// @Router       /api/appointments [get]
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	p := pagination.Parse(c)
	query := service.AppointmentListQuery{
		Status:       c.Query("status"),
		TechnicianID: c.Query("technician_id"),
		CustomerID:   c.Query("customer_id"),
		StartDate:    c.Query("start_date"),
		EndDate:      c.Query("end_date"),
		Page:         p.Page,
		Limit:        p.Limit,
	}

	appointments, total, err := h.appointmentService.ListAppointments(c.Request.Context(), scope, query)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.Envelope("appointments", appointments, total, p)))
}

// GetAppointment returns one appointment with customer, technician and service
// @Summary      Get appointment
// @Tags         appointments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Appointment ID"
// @Success      200  {object}  response.Response{data=model.Appointment}
// @Failure      404  {object}  response.Response
// @Router       /api/appointments/{id} [get]
func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	appointment, err := h.appointmentService.GetAppointment(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, appointment))
}

// UpdateAppointment reschedules or edits an appointment
// @Summary      Update appointment
// @Tags         appointments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                            true  "Appointment ID"
// @Param        payload  body      service.UpdateAppointmentRequest  true  "Update Appointment Payload"
// @Success      200      {object}  response.Response{data=model.Appointment}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/appointments/{id} [put]
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	var req service.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	appointment, err := h.appointmentService.UpdateAppointment(c.Request.Context(), scope, c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, appointment))
}

// DeleteAppointment soft-deletes an appointment
// @Summary      Delete appointment
// @Tags         appointments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Appointment ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/appointments/{id} [delete]
func (h *AppointmentHandler) DeleteAppointment(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	if err := h.appointmentService.DeleteAppointment(c.Request.Context(), scope, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Appointment deleted"}))
}

// CheckIn marks the technician's arrival
// @Summary      Check in
// @Tags         appointments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Appointment ID"
// @Success      200  {object}  response.Response{data=model.Appointment}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/appointments/{id}/checkin [post]
func (h *AppointmentHandler) CheckIn(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	appointment, err := h.appointmentService.CheckIn(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, appointment))
}

// CheckOut closes the visit with its actual cost
// @Summary      Check out
// @Tags         appointments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                   true  "Appointment ID"
// @Param        payload  body      service.CheckOutRequest  true  "Check Out Payload"
// @Success      200      {object}  response.Response{data=model.Appointment}
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/appointments/{id}/checkout [post]
func (h *AppointmentHandler) CheckOut(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	var req service.CheckOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	appointment, err := h.appointmentService.CheckOut(c.Request.Context(), scope, c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, appointment))
}

// Cancel cancels an appointment with a reason
// @Summary      Cancel appointment
// @Tags         appointments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                            true  "Appointment ID"
// @Param        payload  body      service.CancelAppointmentRequest  true  "Cancel Payload"
// @Success      200      {object}  response.Response{data=model.Appointment}
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/appointments/{id}/cancel [post]
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	var req service.CancelAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	appointment, err := h.appointmentService.Cancel(c.Request.Context(), scope, c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, appointment))
}
