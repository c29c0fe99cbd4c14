package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(GetJWTSecret())
	require.NoError(t, err)
	return signed
}

func newProtectedRouter(allowedRoles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", RequireRole(allowedRoles...), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":    c.GetString("userID"),
			"role":       c.GetString("userRole"),
			"company_id": c.GetString("companyID"),
		})
	})
	return router
}

func TestRequireRole_MissingAuthorization(t *testing.T) {
	router := newProtectedRouter("admin")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole_RejectsDisallowedRole(t *testing.T) {
	router := newProtectedRouter("admin")

	token := signToken(t, jwt.MapClaims{
		"sub":        uuid.NewString(),
		"role":       "customer",
		"company_id": uuid.NewString(),
		"exp":        time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRole_RejectsTokenWithoutCompany(t *testing.T) {
	router := newProtectedRouter("admin")

	token := signToken(t, jwt.MapClaims{
		"sub":  uuid.NewString(),
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRole_AllowsBearerHeader(t *testing.T) {
	router := newProtectedRouter("admin", "technician")

	userID := uuid.NewString()
	companyID := uuid.NewString()
	token := signToken(t, jwt.MapClaims{
		"sub":        userID,
		"role":       "technician",
		"company_id": companyID,
		"exp":        time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID)
	assert.Contains(t, w.Body.String(), companyID)
	assert.Contains(t, w.Body.String(), "technician")
}

func TestRequireRole_AllowsCookieToken(t *testing.T) {
	router := newProtectedRouter("admin")

	token := signToken(t, jwt.MapClaims{
		"sub":        uuid.NewString(),
		"role":       "admin",
		"company_id": uuid.NewString(),
		"exp":        time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
