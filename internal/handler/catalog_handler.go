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

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	services := router.Group("/api/services")
	{
		services.POST("", middleware.RequireRole(model.RoleAdmin), h.CreateOffering)
		services.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleTechnician, model.RoleCustomer), h.ListOfferings)
		services.GET("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleTechnician, model.RoleCustomer), h.GetOffering)
		services.PUT("/:id", middleware.RequireRole(model.RoleAdmin), h.UpdateOffering)
		services.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteOffering)
	}
}

// CreateOffering adds a service to the company's catalog
// @Summary      Create service
// @Tags         services
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateServiceOfferingRequest  true  "Create Service Payload"
// @Success      201      {object}  response.Response{data=model.ServiceOffering}
// @Failure      400      {object}  response.Response
// @Router       /api/services [post]
func (h *CatalogHandler) CreateOffering(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	var req service.CreateServiceOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	offering, err := h.catalogService.CreateOffering(c.Request.Context(), scope, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, offering))
}

// ListOfferings returns the company's service catalog
// @Summary      List services
// @Tags         services
// @Security     BearerAuth
// @Produce      json
// @Param        category  query     string  false  "Filter by category"
// @Param        active    query     bool    false  "Only active services"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Number of items per page (default 20)"
// @Success      200       {object}  response.Response{data=object}
// @Failure      500       {object}  response.Response
// @Router       /api/services [get]
func (h *CatalogHandler) ListOfferings(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	p := pagination.Parse(c)
	query := service.ServiceOfferingListQuery{
		Category:   c.Query("category"),
		ActiveOnly: c.Query("active") == "true",
		Page:       p.Page,
		Limit:      p.Limit,
	}

	offerings, total, err := h.catalogService.ListOfferings(c.Request.Context(), scope, query)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.Envelope("services", offerings, total, p)))
}

// GetOffering returns one catalog entry
// @Summary      Get service
// @Tags         services
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Service ID"
// @Success      200  {object}  response.Response{data=model.ServiceOffering}
// @Failure      404  {object}  response.Response
// @Router       /api/services/{id} [get]
func (h *CatalogHandler) GetOffering(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	offering, err := h.catalogService.GetOffering(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, offering))
}

// UpdateOffering updates a catalog entry
// @Summary      Update service
// @Tags         services
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                                true  "Service ID"
// @Param        payload  body      service.UpdateServiceOfferingRequest  true  "Update Service Payload"
// @Success      200      {object}  response.Response{data=model.ServiceOffering}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/services/{id} [put]
func (h *CatalogHandler) UpdateOffering(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	var req service.UpdateServiceOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	offering, err := h.catalogService.UpdateOffering(c.Request.Context(), scope, c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, offering))
}

// DeleteOffering soft-deletes a catalog entry
// @Summary      Delete service
// @Tags         services
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Service ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/services/{id} [delete]
func (h *CatalogHandler) DeleteOffering(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	if err := h.catalogService.DeleteOffering(c.Request.Context(), scope, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Service deleted"}))
}
