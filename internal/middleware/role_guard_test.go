package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"app/internal/domain/model"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func runRoleGuard(t *testing.T, roleValue interface{}, allowed ...model.Role) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/admin/products", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if roleValue != nil {
		c.Set(CtxUserRoleKey, roleValue)
	}

	called := false
	h := RoleGuard(allowed...)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	assert.NoError(t, h(c))
	return rec, called
}

func TestRoleGuard_NoRoleInContext(t *testing.T) {
	rec, called := runRoleGuard(t, nil, model.RoleAdmin)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestRoleGuard_UnknownRole(t *testing.T) {
	rec, called := runRoleGuard(t, "ADMIN", model.RoleAdmin)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)
}

func TestRoleGuard_RoleNotAllowed(t *testing.T) {
	rec, called := runRoleGuard(t, "user", model.RoleAdmin, model.RoleSuperadmin)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)
}

func TestRoleGuard_AllowedRole(t *testing.T) {
	rec, called := runRoleGuard(t, "admin", model.RoleAdmin, model.RoleSuperadmin)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}
