package handler

import (
	"net/http"
	"strconv"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// Addressと同じ形。デフォルト切り替えだけパスワード再確認つき。
type PaymentOptionHandler struct {
	uc *usecase.PaymentOptionUsecase
}

func NewPaymentOptionHandler(uc *usecase.PaymentOptionUsecase) *PaymentOptionHandler {
	return &PaymentOptionHandler{uc: uc}
}

func (h *PaymentOptionHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/payment-options", h.List)
	g.POST("/payment-options", h.Create)
	g.DELETE("/payment-options/:id", h.Delete)
	g.POST("/payment-options/:id/default", h.SetDefault)
}

func (h *PaymentOptionHandler) List(c echo.Context) error {
	userID, ok := addrGetUserID(c)
	if !ok {
		return addrWriteError(c, http.StatusUnauthorized, "unauthorized")
	}

	list, err := h.uc.List(c.Request().Context(), userID)
	if err != nil {
		return addrWriteUsecaseError(c, err)
	}

	return c.JSON(http.StatusOK, list)
}

func (h *PaymentOptionHandler) Create(c echo.Context) error {
	userID, ok := addrGetUserID(c)
	if !ok {
		return addrWriteError(c, http.StatusUnauthorized, "unauthorized")
	}

	var req usecase.PaymentOptionCreateRequest
	if err := c.Bind(&req); err != nil {
		return addrWriteError(c, http.StatusBadRequest, "validation error")
	}

	created, err := h.uc.Create(c.Request().Context(), userID, req)
	if err != nil {
		return addrWriteUsecaseError(c, err)
	}

	return c.JSON(http.StatusOK, created)
}

func (h *PaymentOptionHandler) Delete(c echo.Context) error {
	userID, ok := addrGetUserID(c)
	if !ok {
		return addrWriteError(c, http.StatusUnauthorized, "unauthorized")
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return addrWriteError(c, http.StatusBadRequest, "validation error")
	}

	if err := h.uc.Delete(c.Request().Context(), userID, id); err != nil {
		return addrWriteUsecaseError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "deleted"})
}

func (h *PaymentOptionHandler) SetDefault(c echo.Context) error {
	userID, ok := addrGetUserID(c)
	if !ok {
		return addrWriteError(c, http.StatusUnauthorized, "unauthorized")
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return addrWriteError(c, http.StatusBadRequest, "validation error")
	}

	var req usecase.PaymentOptionSetDefaultRequest
	if err := c.Bind(&req); err != nil {
		return addrWriteError(c, http.StatusBadRequest, "validation error")
	}

	if err := h.uc.SetDefault(c.Request().Context(), userID, id, req); err != nil {
		return addrWriteUsecaseError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "default set"})
}
