package handler

import (
	"net/http"

	"backend/internal/service"
	"backend/pkg/apperror"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// requestScope rebuilds the caller's scope from the claims the auth
// middleware stored in the context. Aborts with 401 when they are missing
// or malformed, which only happens if a route skipped the middleware.
func requestScope(c *gin.Context) (service.Scope, bool) {
	userIDRaw, _ := c.Get("userID")
	companyIDRaw, _ := c.Get("companyID")
	role := c.GetString("userRole")

	userIDStr, _ := userIDRaw.(string)
	companyIDStr, _ := companyIDRaw.(string)

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return service.Scope{}, false
	}
	companyID, err := uuid.Parse(companyIDStr)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return service.Scope{}, false
	}

	return service.Scope{CompanyID: companyID, UserID: userID, Role: role}, true
}

// writeError maps service errors onto HTTP status codes
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case apperror.IsValidation(err):
		status = http.StatusBadRequest
	case apperror.IsNotFound(err):
		status = http.StatusNotFound
	case apperror.IsConflict(err):
		status = http.StatusConflict
	}
	c.JSON(status, response.Error(status, err.Error()))
}
