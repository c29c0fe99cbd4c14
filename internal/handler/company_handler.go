package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type CompanyHandler struct {
	companyService service.CompanyService
}

func NewCompanyHandler(companyService service.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

func (h *CompanyHandler) RegisterRoutes(router *gin.RouterGroup) {
	company := router.Group("/api/companies")
	{
		company.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleTechnician, model.RoleCustomer), h.GetCompany)
		company.PUT("", middleware.RequireRole(model.RoleAdmin), h.UpdateCompany)
	}
}

// GetCompany returns the caller's company profile
// @Summary      Get company
// @Tags         company
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.CompanyResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/companies [get]
func (h *CompanyHandler) GetCompany(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	company, err := h.companyService.GetCompany(c.Request.Context(), scope)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, company))
}

// UpdateCompany updates the caller's company profile
// @Summary      Update company
// @Tags         company
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.UpdateCompanyRequest  true  "Update Company Payload"
// @Success      200      {object}  response.Response{data=service.CompanyResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/companies [put]
func (h *CompanyHandler) UpdateCompany(c *gin.Context) {
	scope, ok := requestScope(c)
	if !ok {
		return
	}

	var req service.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	company, err := h.companyService.UpdateCompany(c.Request.Context(), scope, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, company))
}
