package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminUserHandler struct {
	cfg      config.Config
	userRepo repository.UserRepository
	uc       *usecase.AdminUserUsecase
	authUC   *usecase.AuthUsecase
}

func NewAdminUserHandler(
	cfg config.Config,
	userRepo repository.UserRepository,
	uc *usecase.AdminUserUsecase,
	authUC *usecase.AuthUsecase,
) *AdminUserHandler {
	return &AdminUserHandler{cfg: cfg, userRepo: userRepo, uc: uc, authUC: authUC}
}

type UpdateUserRoleRequest struct {
	Role string `json:"role"`
}

type SetUserActiveRequest struct {
	IsActive bool `json:"is_active"`
}

func (h *AdminUserHandler) RegisterRoutes(e *echo.Echo) {
	// /admin/users 配下は「JWT必須 + token_version一致 + admin以上」
	admin := e.Group(
		"/admin",
		middleware.AuthJWT(h.cfg),
		middleware.TokenVersionGuard(h.userRepo),
		middleware.RoleGuard(model.RoleAdmin, model.RoleSuperadmin),
	)

	admin.GET("/users", h.List)
	admin.PATCH("/users/:id/active", h.SetActive)
	admin.POST("/users/:id/force-logout", h.ForceLogout)

	// ロール変更だけはsuperadmin限定
	super := e.Group(
		"/admin",
		middleware.AuthJWT(h.cfg),
		middleware.TokenVersionGuard(h.userRepo),
		middleware.RoleGuard(model.RoleSuperadmin),
	)

	super.PATCH("/users/:id/role", h.UpdateRole)
}

func (h *AdminUserHandler) List(c echo.Context) error {
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
		}
		page = p
	}

	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	out, err := h.uc.List(c.Request().Context(), page, limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminUserHandler) UpdateRole(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req UpdateUserRoleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.UpdateRole(c.Request().Context(), actorID, targetID, usecase.UpdateUserRoleInput{
		Role: req.Role,
	}); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "role updated"})
}

func (h *AdminUserHandler) SetActive(c echo.Context) error {
	actorID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req SetUserActiveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.SetActive(c.Request().Context(), actorID, targetID, req.IsActive); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}

func (h *AdminUserHandler) ForceLogout(c echo.Context) error {
	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || targetID <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user_id"})
	}

	res, uerr := h.authUC.ForceLogout(c.Request().Context(), targetID)
	if uerr != nil {
		return authWriteUsecaseError(c, uerr)
	}

	return c.JSON(http.StatusOK, res)
}
