package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

const webhookKeyHeader = "X-Api-Key"

// 決済コールバック用の共有キー認証。
func WebhookGuard(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			got := c.Request().Header.Get(webhookKeyHeader)
			if got == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("missing api key"))
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				return c.JSON(http.StatusUnauthorized, errorJSON("invalid api key"))
			}
			return next(c)
		}
	}
}
