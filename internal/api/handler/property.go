package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-property-booking/internal/application"
	"github.com/sanosuguru/go-property-booking/internal/domain/booking"
	"github.com/sanosuguru/go-property-booking/internal/domain/property"
)

type PropertyHandler struct {
	service PropertyServiceInterface
}

func NewPropertyHandler(s PropertyServiceInterface) *PropertyHandler {
	return &PropertyHandler{service: s}
}

type CreatePropertyRequest struct {
	Title       string   `json:"title" validate:"required" example:"海辺のコテージ"`
	Address     string   `json:"address" validate:"required" example:"1-2-3 Beach Road"`
	City        string   `json:"city" validate:"required" example:"Kamakura"`
	State       string   `json:"state" validate:"required" example:"Kanagawa"`
	PictureURLs []string `json:"picture_urls"`
}

type PropertyResponse struct {
	ID          string    `json:"id"`
	HostID      string    `json:"host_id"`
	Title       string    `json:"title"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	PictureURLs []string  `json:"picture_urls"`
	CreatedAt   time.Time `json:"created_at"`
}

func toPropertyResponse(p *property.Property) PropertyResponse {
	return PropertyResponse{
		ID: p.ID, HostID: p.HostID, Title: p.Title,
		Address: p.Address, City: p.City, State: p.State,
		PictureURLs: p.PictureURLs, CreatedAt: p.CreatedAt,
	}
}

// Create godoc
// @Summary 物件を登録
// @Description ホストが新しい物件を登録します
// @Tags properties
// @Accept json
// @Produce json
// @Param request body CreatePropertyRequest true "物件情報"
// @Success 201 {object} PropertyResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /properties [post]
func (h *PropertyHandler) Create(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req CreatePropertyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	p, err := h.service.CreateProperty(c.Request().Context(), caller, application.CreatePropertyInput{
		Title: req.Title, Address: req.Address, City: req.City,
		State: req.State, PictureURLs: req.PictureURLs,
	})
	if err != nil {
		return propertyErrorToHTTP(err)
	}
	return c.JSON(http.StatusCreated, toPropertyResponse(p))
}

// List godoc
// @Summary 物件一覧を取得
// @Tags properties
// @Produce json
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} PropertyResponse
// @Router /properties [get]
func (h *PropertyHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	properties, err := h.service.ListProperties(c.Request().Context(), limit, offset)
	if err != nil {
		return propertyErrorToHTTP(err)
	}
	resp := make([]PropertyResponse, len(properties))
	for i, p := range properties {
		resp[i] = toPropertyResponse(p)
	}
	return c.JSON(http.StatusOK, resp)
}

// Mine godoc
// @Summary 自分の物件一覧を取得
// @Tags properties
// @Produce json
// @Success 200 {array} PropertyResponse
// @Failure 403 {object} map[string]string
// @Router /properties/mine [get]
func (h *PropertyHandler) Mine(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	properties, err := h.service.ListMyProperties(c.Request().Context(), caller)
	if err != nil {
		return propertyErrorToHTTP(err)
	}
	resp := make([]PropertyResponse, len(properties))
	for i, p := range properties {
		resp[i] = toPropertyResponse(p)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetByID godoc
// @Summary 物件を取得
// @Tags properties
// @Produce json
// @Param id path string true "物件ID"
// @Success 200 {object} PropertyResponse
// @Failure 404 {object} map[string]string
// @Router /properties/{id} [get]
func (h *PropertyHandler) GetByID(c echo.Context) error {
	p, err := h.service.GetProperty(c.Request().Context(), c.Param("id"))
	if err != nil {
		return propertyErrorToHTTP(err)
	}
	return c.JSON(http.StatusOK, toPropertyResponse(p))
}

// Delete godoc
// @Summary 物件を削除
// @Description 所有者のみ削除可能。予約が存在する場合は削除できません
// @Tags properties
// @Param id path string true "物件ID"
// @Success 204
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "予約が存在する"
// @Router /properties/{id} [delete]
func (h *PropertyHandler) Delete(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteProperty(c.Request().Context(), caller, c.Param("id")); err != nil {
		return propertyErrorToHTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// propertyErrorToHTTP はドメインエラーをHTTPステータスへ変換する
func propertyErrorToHTTP(err error) error {
	switch {
	case errors.Is(err, property.ErrPropertyNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, property.ErrNotPropertyOwner):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, property.ErrPropertyHasBookings):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, booking.ErrForbiddenRole):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
