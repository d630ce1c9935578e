package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-property-booking/internal/domain/booking"
	"github.com/sanosuguru/go-property-booking/internal/domain/property"
)

type BookingHandler struct {
	service BookingServiceInterface
}

func NewBookingHandler(s BookingServiceInterface) *BookingHandler {
	return &BookingHandler{service: s}
}

type CreateBookingRequest struct {
	PropertyID string `json:"property_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	DateIn     string `json:"date_in" validate:"required" example:"2025-06-01"`
	DateOut    string `json:"date_out" validate:"required" example:"2025-06-05"`
}

type BookingResponse struct {
	ID         string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	GuestID    string    `json:"guest_id"`
	PropertyID string    `json:"property_id"`
	DateIn     string    `json:"date_in" example:"2025-06-01"`
	DateOut    string    `json:"date_out" example:"2025-06-05"`
	CreatedAt  time.Time `json:"created_at"`
}

type PropertySnapshotResponse struct {
	PropertyID  string   `json:"property_id"`
	Title       string   `json:"title"`
	City        string   `json:"city"`
	State       string   `json:"state"`
	PictureURLs []string `json:"picture_urls"`
	HostName    string   `json:"host_name"`
}

type BookingWithPropertyResponse struct {
	BookingResponse
	Property PropertySnapshotResponse `json:"property"`
}

type AvailabilityResponse struct {
	PropertyID string `json:"property_id"`
	DateIn     string `json:"date_in"`
	DateOut    string `json:"date_out"`
	Available  bool   `json:"available"`
}

func toBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID: b.ID, GuestID: b.GuestID, PropertyID: b.PropertyID,
		DateIn: b.DateIn.Format(dateLayout), DateOut: b.DateOut.Format(dateLayout),
		CreatedAt: b.CreatedAt,
	}
}

// Create godoc
// @Summary 予約を作成
// @Description 指定期間が空いていれば予約を確定します
// @Tags bookings
// @Accept json
// @Produce json
// @Param request body CreateBookingRequest true "予約情報"
// @Success 201 {object} BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string "ゲスト以外は予約不可"
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "期間が既に予約済み"
// @Router /bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	dateIn, err := parseDate(req.DateIn)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date_in はYYYY-MM-DD形式で指定してください")
	}
	dateOut, err := parseDate(req.DateOut)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date_out はYYYY-MM-DD形式で指定してください")
	}

	b, err := h.service.RequestBooking(c.Request().Context(), caller, req.PropertyID, dateIn, dateOut)
	if err != nil {
		return bookingErrorToHTTP(err)
	}
	return c.JSON(http.StatusCreated, toBookingResponse(b))
}

// MyBookings godoc
// @Summary 自分の予約一覧を取得
// @Description ログイン中のゲストの予約を物件情報付きで返します
// @Tags bookings
// @Produce json
// @Success 200 {array} BookingWithPropertyResponse
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /bookings/my-bookings [get]
func (h *BookingHandler) MyBookings(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	bookings, err := h.service.ListBookingsForGuest(c.Request().Context(), caller)
	if err != nil {
		return bookingErrorToHTTP(err)
	}
	resp := make([]BookingWithPropertyResponse, len(bookings))
	for i, bw := range bookings {
		resp[i] = BookingWithPropertyResponse{
			BookingResponse: toBookingResponse(bw.Booking),
			Property: PropertySnapshotResponse{
				PropertyID:  bw.Property.PropertyID,
				Title:       bw.Property.Title,
				City:        bw.Property.City,
				State:       bw.Property.State,
				PictureURLs: bw.Property.PictureURLs,
				HostName:    bw.Property.HostName,
			},
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// ListForProperty godoc
// @Summary 物件の予約一覧を取得
// @Description 所有ホストのみ物件の予約を参照できます
// @Tags bookings
// @Produce json
// @Param id path string true "物件ID"
// @Success 200 {array} BookingResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /properties/{id}/bookings [get]
func (h *BookingHandler) ListForProperty(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	propertyID := c.Param("id")
	bookings, err := h.service.ListBookingsForProperty(c.Request().Context(), caller, propertyID)
	if err != nil {
		return bookingErrorToHTTP(err)
	}
	resp := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = toBookingResponse(b)
	}
	return c.JSON(http.StatusOK, resp)
}

// Availability godoc
// @Summary 空き状況を照会
// @Description 指定期間が予約可能かを返す読み取り専用の照会
// @Tags bookings
// @Produce json
// @Param id path string true "物件ID"
// @Param date_in query string true "チェックイン日（YYYY-MM-DD）"
// @Param date_out query string true "チェックアウト日（YYYY-MM-DD）"
// @Success 200 {object} AvailabilityResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /properties/{id}/availability [get]
func (h *BookingHandler) Availability(c echo.Context) error {
	propertyID := c.Param("id")
	dateIn, err := parseDate(c.QueryParam("date_in"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date_in はYYYY-MM-DD形式で指定してください")
	}
	dateOut, err := parseDate(c.QueryParam("date_out"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date_out はYYYY-MM-DD形式で指定してください")
	}

	available, err := h.service.CheckAvailability(c.Request().Context(), propertyID, dateIn, dateOut)
	if err != nil {
		return bookingErrorToHTTP(err)
	}
	return c.JSON(http.StatusOK, AvailabilityResponse{
		PropertyID: propertyID,
		DateIn:     dateIn.Format(dateLayout),
		DateOut:    dateOut.Format(dateLayout),
		Available:  available,
	})
}

// bookingErrorToHTTP はドメインエラーをHTTPステータスへ変換する
func bookingErrorToHTTP(err error) error {
	switch {
	case errors.Is(err, booking.ErrForbiddenRole):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, booking.ErrInvalidDateRange):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, property.ErrPropertyNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrDateRangeConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, booking.ErrStoreContention):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, property.ErrNotPropertyOwner):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
