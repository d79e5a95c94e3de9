package server

import (
	"net/http"
	"time"

	"app/internal/logger"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// New はechoインスタンスを組み立てる。
// ルーティングはroutes.goのRegisterRoutesで行う。
func New(log *logger.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(requestLogger(log))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return e
}

// アクセスログ（zap）。1リクエスト1行。
func requestLogger(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info("request",
				"method", req.Method,
				"path", req.URL.Path,
				"status", res.Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_ip", c.RealIP(),
			)

			return nil
		}
	}
}

// Start はechoサーバーを起動する。
func Start(e *echo.Echo, addr string) error {
	return e.Start(addr)
}
