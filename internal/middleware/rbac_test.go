package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/marktrack/marktrack-api/internal/models"
)

func guardedRequest(t *testing.T, claims *models.JWTClaims, mw ...gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	_, router := gin.CreateTestContext(w)
	if claims != nil {
		router.Use(func(c *gin.Context) { c.Set(ContextUserKey, claims) })
	}
	router.Use(mw...)
	router.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)
	return w
}

func TestRequireRolesAllowsMatchingRole(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleTeacher, Status: models.StatusActive}
	w := guardedRequest(t, claims, RequireRoles(models.RoleTeacher, models.RoleAdmin))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRolesRejectsOtherRole(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleStudent, Status: models.StatusActive}
	w := guardedRequest(t, claims, RequireRoles(models.RoleTeacher))
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRolesRejectsAnonymous(t *testing.T) {
	w := guardedRequest(t, nil, RequireRoles(models.RoleTeacher))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireActiveRejectsOnboardingAccounts(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleStudent, Status: models.StatusAwaitingDetails}
	w := guardedRequest(t, claims, RequireActive())
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireActiveAllowsActiveAccounts(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleStudent, Status: models.StatusActive}
	w := guardedRequest(t, claims, RequireActive())
	require.Equal(t, http.StatusOK, w.Code)
}
