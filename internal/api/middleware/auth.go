package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-property-booking/internal/pkg/token"
)

const (
	// ContextKeyUserID は認証済みユーザーIDのコンテキストキー
	ContextKeyUserID = "auth_user_id"
	// ContextKeyRole は認証済みロールのコンテキストキー
	ContextKeyRole = "auth_role"
)

// RequireAuth はBearerトークンを検証して呼び出し元の認証情報をコンテキストに設定する
func RequireAuth(tm *token.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "認証が必要です")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorizationヘッダーの形式が不正です")
			}

			claims, err := tm.Parse(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "認証情報を検証できません")
			}

			c.Set(ContextKeyUserID, claims.UserID)
			c.Set(ContextKeyRole, claims.Role)
			return next(c)
		}
	}
}
