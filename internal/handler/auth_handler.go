package handler

import (
	"net/http"
	"os"
	"time"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/usecase"
	"app/internal/validator"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	cfg          config.Config
	uc           *usecase.AuthUsecase
	refreshTTL   time.Duration // refresh/csrf cookie の有効期限
	cookieSecure bool
}

// DIコンストラクタ
func NewAuthHandler(cfg config.Config, uc *usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{
		cfg:          cfg,
		uc:           uc,
		refreshTTL:   30 * 24 * time.Hour,
		cookieSecure: envBool("COOKIE_SECURE", true),
	}
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True":
		return true
	case "0", "false", "FALSE", "False":
		return false
	default:
		return def
	}
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo, userRepo repository.UserRepository) {
	e.POST("/auth/register", h.Register)
	e.POST("/auth/login", h.Login)
	e.POST("/auth/google", h.GoogleLogin)
	e.POST("/auth/refresh", h.Refresh)
	e.POST("/auth/logout", h.Logout)

	me := e.Group("/me")
	me.Use(middleware.AuthJWT(h.cfg))
	me.Use(middleware.TokenVersionGuard(userRepo))
	me.GET("", h.Me)
}

// RegisterはPOST /auth/registerのハンドラ
func (h *AuthHandler) Register(c echo.Context) error {
	var req usecase.AuthRegisterRequest
	if err := c.Bind(&req); err != nil {
		return authWriteError(c, http.StatusBadRequest, "validation error")
	}

	out, err := h.uc.Register(c.Request().Context(), req)
	if err != nil {
		return authWriteUsecaseError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

// LoginはPOST /auth/login のハンドラ
func (h *AuthHandler) Login(c echo.Context) error {
	var req usecase.AuthLoginRequest
	if err := c.Bind(&req); err != nil {
		return authWriteError(c, http.StatusBadRequest, "validation error")
	}

	// User-Agentを取得（refreshtokenに紐付ける）
	userAgent := c.Request().Header.Get("User-Agent")

	res, err := h.uc.Login(c.Request().Context(), req, userAgent)
	if err != nil {
		return authWriteUsecaseError(c, err)
	}

	h.setRefreshCookie(c, res.RefreshTokenPlain)
	h.setCsrfCookie(c, res.CsrfTokenPlain)

	//JSONレスポンス（user + token）
	return c.JSON(http.StatusOK, res.Body)
}

// GoogleLoginはPOST /auth/google のハンドラ
func (h *AuthHandler) GoogleLogin(c echo.Context) error {
	var req usecase.AuthGoogleLoginRequest
	if err := c.Bind(&req); err != nil {
		return authWriteError(c, http.StatusBadRequest, "validation error")
	}

	userAgent := c.Request().Header.Get("User-Agent")

	res, err := h.uc.GoogleLogin(c.Request().Context(), req, userAgent)
	if err != nil {
		return authWriteUsecaseError(c, err)
	}

	h.setRefreshCookie(c, res.RefreshTokenPlain)
	h.setCsrfCookie(c, res.CsrfTokenPlain)

	return c.JSON(http.StatusOK, res.Body)
}

// RefreshはPOST /auth/refresh のハンドラ。refresh cookieを回転させる。
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie("refresh")
	if err != nil || cookie.Value == "" {
		return authWriteError(c, http.StatusUnauthorized, "unauthorized")
	}

	userAgent := c.Request().Header.Get("User-Agent")

	res, uerr := h.uc.Refresh(c.Request().Context(), cookie.Value, userAgent)
	if uerr != nil {
		return authWriteUsecaseError(c, uerr)
	}

	h.setRefreshCookie(c, res.RefreshTokenPlain)
	h.setCsrfCookie(c, res.CsrfTokenPlain)

	return c.JSON(http.StatusOK, res.Body)
}

// LogoutはPOST /auth/logout のハンドラ
func (h *AuthHandler) Logout(c echo.Context) error {
	cookie, err := c.Cookie("refresh")
	if err != nil || cookie.Value == "" {
		return authWriteError(c, http.StatusUnauthorized, "unauthorized")
	}

	out, uerr := h.uc.Logout(c.Request().Context(), cookie.Value)
	if uerr != nil {
		return authWriteUsecaseError(c, uerr)
	}

	h.clearAuthCookies(c)

	return c.JSON(http.StatusOK, out)
}

// MeはGET /me のハンドラ
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return authWriteError(c, http.StatusUnauthorized, "unauthorized")
	}

	out, err := h.uc.Me(c.Request().Context(), userID)
	if err != nil {
		return authWriteUsecaseError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// refreshtoken をCookieにセット
func (h *AuthHandler) setRefreshCookie(c echo.Context, plainRefresh string) {
	exp := time.Now().Add(h.refreshTTL)

	c.SetCookie(&http.Cookie{
		Name:     "refresh",
		Value:    plainRefresh,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
}

// csrftokenをCookieにセット
func (h *AuthHandler) setCsrfCookie(c echo.Context, csrfToken string) {
	exp := time.Now().Add(h.refreshTTL)

	c.SetCookie(&http.Cookie{
		Name:     "csrf_token",
		Value:    csrfToken,
		Path:     "/",
		HttpOnly: false,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
}

func (h *AuthHandler) clearAuthCookies(c echo.Context) {
	for _, name := range []string{"refresh", "csrf_token"} {
		c.SetCookie(&http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: name == "refresh",
			Secure:   h.cookieSecure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}
}

func authWriteError(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}

func authWriteUsecaseError(c echo.Context, err error) error {
	switch err {
	case usecase.ErrValidation:
		return authWriteError(c, http.StatusBadRequest, "validation error")
	case usecase.ErrUnauthorized:
		return authWriteError(c, http.StatusUnauthorized, "unauthorized")
	case usecase.ErrForbidden:
		return authWriteError(c, http.StatusForbidden, "forbidden")
	case usecase.ErrSecurityIncident:
		return authWriteError(c, http.StatusUnauthorized, "unauthorized")
	case usecase.ErrConflict:
		return authWriteError(c, http.StatusConflict, "conflict")
	case usecase.ErrInternal:
		return authWriteError(c, http.StatusInternalServerError, "internal error")
	case validator.ErrEmailAlreadyUsed:
		return authWriteError(c, http.StatusConflict, "email already used")
	case validator.ErrInvalidRefresh:
		return authWriteError(c, http.StatusUnauthorized, "unauthorized")
	default:
		//validator由来はまとめて400
		return authWriteError(c, http.StatusBadRequest, "validation error")
	}
}
