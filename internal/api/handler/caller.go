package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-property-booking/internal/api/middleware"
	"github.com/sanosuguru/go-property-booking/internal/application"
	"github.com/sanosuguru/go-property-booking/internal/domain/user"
)

// callerFrom は認証ミドルウェアが設定した呼び出し元情報を取り出す
func callerFrom(c echo.Context) (application.Caller, error) {
	userID, _ := c.Get(middleware.ContextKeyUserID).(string)
	roleStr, _ := c.Get(middleware.ContextKeyRole).(string)
	if userID == "" || roleStr == "" {
		return application.Caller{}, echo.NewHTTPError(http.StatusUnauthorized, "認証が必要です")
	}
	role, err := user.ParseRole(roleStr)
	if err != nil {
		return application.Caller{}, echo.NewHTTPError(http.StatusUnauthorized, "認証情報を検証できません")
	}
	return application.Caller{UserID: userID, Role: role}, nil
}

const dateLayout = "2006-01-02"

// parseDate はISO形式（YYYY-MM-DD）の日付文字列を解析する
func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}
