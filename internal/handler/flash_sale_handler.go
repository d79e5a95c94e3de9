package handler

import (
	"net/http"
	"strconv"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type FlashSaleHandler struct {
	uc *usecase.FlashSaleUsecase
}

func NewFlashSaleHandler(uc *usecase.FlashSaleUsecase) *FlashSaleHandler {
	return &FlashSaleHandler{uc: uc}
}

type FlashSaleRequest struct {
	Name            string  `json:"name"`
	DiscountPercent int64   `json:"discount_percent"`
	StartsAt        string  `json:"starts_at"`
	EndsAt          string  `json:"ends_at"`
	ProductIDs      []int64 `json:"product_ids"`
}

type SetFlashSaleActiveRequest struct {
	IsActive bool `json:"is_active"`
}

func (h *FlashSaleHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	//公開中のセールだけ見せる
	e.GET("/flash-sales", h.listActive)

	admin := e.Group("/admin")
	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.TokenVersionGuard(userRepo))
	admin.Use(middleware.RoleGuard(model.RoleAdmin, model.RoleSuperadmin))

	admin.GET("/flash-sales/:id", h.adminGet)
	admin.POST("/flash-sales", h.create)
	admin.PUT("/flash-sales/:id", h.update)
	admin.PATCH("/flash-sales/:id/active", h.setActive)
}

func (h *FlashSaleHandler) listActive(c echo.Context) error {
	outs, err := h.uc.ListActive(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, outs)
}

func (h *FlashSaleHandler) adminGet(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.AdminGet(c.Request().Context(), adminID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *FlashSaleHandler) create(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req FlashSaleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	in, err := toFlashSaleInput(req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid period"})
	}

	out, uerr := h.uc.AdminCreate(c.Request().Context(), adminID, in)
	if uerr != nil {
		return writeError(c, uerr)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *FlashSaleHandler) update(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req FlashSaleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	in, err := toFlashSaleInput(req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid period"})
	}

	if err := h.uc.AdminUpdate(c.Request().Context(), adminID, id, in); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}

func (h *FlashSaleHandler) setActive(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req SetFlashSaleActiveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.AdminSetActive(c.Request().Context(), adminID, id, req.IsActive); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}

func toFlashSaleInput(req FlashSaleRequest) (usecase.FlashSaleInput, error) {
	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return usecase.FlashSaleInput{}, err
	}
	endsAt, err := time.Parse(time.RFC3339, req.EndsAt)
	if err != nil {
		return usecase.FlashSaleInput{}, err
	}

	return usecase.FlashSaleInput{
		Name:            req.Name,
		DiscountPercent: req.DiscountPercent,
		StartsAt:        startsAt,
		EndsAt:          endsAt,
		ProductIDs:      req.ProductIDs,
	}, nil
}
