package middleware

import (
	"net/http"

	"app/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// contextのroleが許可リストに入っているかを確認する。
// 識別情報が無ければ401、ロールが許可外なら403で、ハンドラには進ませない。
func RoleGuard(allowed ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawRole := c.Get(CtxUserRoleKey)
			roleStr, ok := rawRole.(string)
			if !ok || roleStr == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//未知のロール文字列も403扱い
			role, ok := model.ParseRole(roleStr)
			if !ok {
				return c.JSON(http.StatusForbidden, errorJSON("forbidden"))
			}

			if !role.OneOf(allowed...) {
				return c.JSON(http.StatusForbidden, errorJSON("forbidden"))
			}

			return next(c)
		}
	}
}
