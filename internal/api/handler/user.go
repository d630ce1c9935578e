package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-property-booking/internal/application"
	"github.com/sanosuguru/go-property-booking/internal/domain/user"
)

type UserHandler struct {
	service UserServiceInterface
}

func NewUserHandler(s UserServiceInterface) *UserHandler {
	return &UserHandler{service: s}
}

type SignupRequest struct {
	Name     string `json:"name" validate:"required" example:"田中太郎"`
	Email    string `json:"email" validate:"required,email" example:"tanaka@example.com"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=guest host" example:"guest"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role)}
}

// Signup godoc
// @Summary ユーザー登録
// @Tags users
// @Accept json
// @Produce json
// @Param request body SignupRequest true "登録情報"
// @Success 201 {object} UserResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string "メールアドレスが登録済み"
// @Router /users/signup [post]
func (h *UserHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	u, err := h.service.Signup(c.Request().Context(), application.SignupInput{
		Name: req.Name, Email: req.Email, Password: req.Password, Role: req.Role,
	})
	if err != nil {
		return userErrorToHTTP(err)
	}
	return c.JSON(http.StatusCreated, toUserResponse(u))
}

// Login godoc
// @Summary ログイン
// @Tags users
// @Accept json
// @Produce json
// @Param request body LoginRequest true "認証情報"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} map[string]string
// @Router /users/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	result, err := h.service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return userErrorToHTTP(err)
	}
	return c.JSON(http.StatusOK, LoginResponse{
		AccessToken: result.AccessToken,
		User:        toUserResponse(result.User),
	})
}

// Me godoc
// @Summary ログイン中のユーザー情報を取得
// @Tags users
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} map[string]string
// @Router /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	u, err := h.service.GetUser(c.Request().Context(), caller.UserID)
	if err != nil {
		return userErrorToHTTP(err)
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}

// userErrorToHTTP はドメインエラーをHTTPステータスへ変換する
func userErrorToHTTP(err error) error {
	switch {
	case errors.Is(err, user.ErrEmailAlreadyRegistered):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, user.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, user.ErrInvalidRole):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, user.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
