package handler

import (
	"net/http"
	"strconv"
	"strings"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

const guestIDHeader = "X-Guest-Id"

// /guest/cart は未ログインのカート。guest_idはクライアントが採番して
// ヘッダで送ってくる（保存先はRedis）。認証ミドルウェアは通さない。
type GuestCartHandler struct {
	uc *usecase.CartUsecase
}

func NewGuestCartHandler(uc *usecase.CartUsecase) *GuestCartHandler {
	return &GuestCartHandler{uc: uc}
}

func (h *GuestCartHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/guest/cart")

	g.GET("", h.getCart)
	g.POST("", h.addToCart)
	g.DELETE("/:product_id", h.removeItem)
}

func (h *GuestCartHandler) getCart(c echo.Context) error {
	guestID, ok := getGuestID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing guest id"})
	}

	out, err := h.uc.GetGuestCart(c.Request().Context(), guestID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *GuestCartHandler) addToCart(c echo.Context) error {
	guestID, ok := getGuestID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing guest id"})
	}

	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.AddToGuestCart(c.Request().Context(), guestID, usecase.AddCartInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *GuestCartHandler) removeItem(c echo.Context) error {
	guestID, ok := getGuestID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing guest id"})
	}

	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
	}

	out, err := h.uc.RemoveFromGuestCart(c.Request().Context(), guestID, productID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func getGuestID(c echo.Context) (string, bool) {
	v := strings.TrimSpace(c.Request().Header.Get(guestIDHeader))
	if v == "" || len(v) > 128 {
		return "", false
	}
	return v, true
}
