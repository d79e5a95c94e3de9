package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"app/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func signTestToken(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(method, claims)
	signed, err := token.SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func runAuthJWT(t *testing.T, authz string) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := AuthJWT(config.Config{JWTSecret: "test-secret"})(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	assert.NoError(t, h(c))
	return rec, c, called
}

func TestAuthJWT_ValidToken(t *testing.T) {
	now := time.Now()
	raw := signTestToken(t, "test-secret", jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "42",
		"role": "user",
		"tv":   float64(3),
		"iat":  now.Unix(),
		"exp":  now.Add(15 * time.Minute).Unix(),
	})

	rec, c, called := runAuthJWT(t, "Bearer "+raw)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)

	//contextに識別情報が入っている
	assert.Equal(t, int64(42), c.Get(CtxUserIDKey))
	assert.Equal(t, "user", c.Get(CtxUserRoleKey))
	assert.Equal(t, 3, c.Get(CtxTokenVersionKey))
}

func TestAuthJWT_MissingHeader(t *testing.T) {
	rec, _, called := runAuthJWT(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestAuthJWT_NotBearer(t *testing.T) {
	rec, _, called := runAuthJWT(t, "Basic abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestAuthJWT_WrongSecret(t *testing.T) {
	now := time.Now()
	raw := signTestToken(t, "other-secret", jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "42",
		"role": "user",
		"tv":   float64(1),
		"iat":  now.Unix(),
		"exp":  now.Add(15 * time.Minute).Unix(),
	})

	rec, _, called := runAuthJWT(t, "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestAuthJWT_ExpiredToken(t *testing.T) {
	now := time.Now()
	raw := signTestToken(t, "test-secret", jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "42",
		"role": "user",
		"tv":   float64(1),
		"iat":  now.Add(-1 * time.Hour).Unix(),
		"exp":  now.Add(-45 * time.Minute).Unix(),
	})

	rec, _, called := runAuthJWT(t, "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestAuthJWT_MissingRoleClaim(t *testing.T) {
	now := time.Now()
	raw := signTestToken(t, "test-secret", jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42",
		"tv":  float64(1),
		"iat": now.Unix(),
		"exp": now.Add(15 * time.Minute).Unix(),
	})

	rec, _, called := runAuthJWT(t, "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}
