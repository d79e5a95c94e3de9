package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 決済プロバイダからのコールバック受け口。
// 認証はJWTではなく共有キー（X-Api-Key）。
type PaymentHandler struct {
	uc *usecase.PaymentUsecase
}

func NewPaymentHandler(uc *usecase.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/payments")
	g.Use(middleware.WebhookGuard(cfg.PaymentWebhookKey))

	g.POST("/callback", h.callback)
}

func (h *PaymentHandler) callback(c echo.Context) error {
	var req usecase.PaymentCallbackInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Callback(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
