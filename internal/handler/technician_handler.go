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

type TechnicianHandler struct {
	technicianService service.TechnicianService
}

func NewTechnicianHandler(technicianService service.TechnicianService) *TechnicianHandler {
	return &TechnicianHandler{technicianService: technicianService}
}

func (h *TechnicianHandler) RegisterRoutes(router *gin.RouterGroup) {
	technicians := router.Group("/api/technicians")
	{
		technicians.POST("", middleware.RequireRole(model.RoleAdmin), h.CreateTechnician)
		technicians.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleTechnician), h.ListTechnicians)
		technicians.GET("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleTechnician), h.GetTechnician)
		technicians.PUT("/:id", middleware.RequireRole(model.RoleAdmin), h.UpdateTechnician)
		technicians.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteTechnician)
	}
}

// CreateTechnician creates a technician for the caller's company
// @Summary      Create technician
// @Tags         technicians
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateTechnicianRequest  true  "Create Technician Payload"
// @Success      201      {object}  response.Response{data=model.Technician}
// @Failure      400      {object}  response.Response
// @Router       /api/technicians [post]
func (h *TechnicianHandler) CreateTechnician(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	var req service.CreateTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	technician, err := h.technicianService.CreateTechnician(c.Request.Context(), scope, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, technician))
}

// ListTechnicians returns a paginated list of the company's technicians
// @Summary      List technicians
// @Tags         technicians
// @Security     BearerAuth
// @Produce      json
// @Param        active  query     bool    false  "Only active technicians"
// @Param        search  query     string  false  "Search by name or skills"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /api/technicians [get]
func (h *TechnicianHandler) ListTechnicians(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	p := pagination.Parse(c)
	query := service.TechnicianListQuery{
		ActiveOnly: c.Query("active") == "true",
		Search:     c.Query("search"),
		Page:       p.Page,
		Limit:      p.Limit,
	}

	technicians, total, err := h.technicianService.ListTechnicians(c.Request.Context(), scope, query)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.Envelope("technicians", technicians, total, p)))
}

// GetTechnician returns one technician
// @Summary      Get technician
// @Tags         technicians
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Technician ID"
// @Success      200  {object}  response.Response{data=model.Technician}
// @Failure      404  {object}  response.Response
// @Router       /api/technicians/{id} [get]
func (h *TechnicianHandler) GetTechnician(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	technician, err := h.technicianService.GetTechnician(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, technician))
}

// UpdateTechnician updates a technician
// @Summary      Update technician
// @Tags         technicians
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                           true  "Technician ID"
// @Param        payload  body      service.UpdateTechnicianRequest  true  "Update Technician Payload"
// @Success      200      {object}  response.Response{data=model.Technician}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/technicians/{id} [put]
func (h *TechnicianHandler) UpdateTechnician(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	var req service.UpdateTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	technician, err := h.technicianService.UpdateTechnician(c.Request.Context(), scope, c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, technician))
}

// DeleteTechnician soft-deletes a technician
// @Summary      Delete technician
// @Tags         technicians
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Technician ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/technicians/{id} [delete]
func (h *TechnicianHandler) DeleteTechnician(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	if err := h.technicianService.DeleteTechnician(c.Request.Context(), scope, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Technician deleted"}))
}
