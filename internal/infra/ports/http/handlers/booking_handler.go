package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/qrave1/RoomBook/internal/domain/input"
	"github.com/qrave1/RoomBook/internal/infra/appctx"
	"github.com/qrave1/RoomBook/internal/infra/ports/http/dto"
	"github.com/qrave1/RoomBook/internal/usecase"
)

type BookingHandler struct {
	bookingUsecase usecase.BookingUsecase

	loc *time.Location
}

func NewBookingHandler(bookingUsecase usecase.BookingUsecase, loc *time.Location) *BookingHandler {
	return &BookingHandler{bookingUsecase: bookingUsecase, loc: loc}
}

// ListFutureBookings - все брони, которые ещё не закончились
func (h *BookingHandler) ListFutureBookings(c echo.Context) error {
	bookings, err := h.bookingUsecase.ListFutureBookings(c.Request().Context())
	if err != nil {
		return writeError(c, err, "list future bookings")
	}

	return c.JSON(http.StatusOK, dto.NewListBookingsResponse(bookings, h.loc))
}

func (h *BookingHandler) ListMyBookings(c echo.Context) error {
	email, ok := appctx.Email(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user"})
	}

	bookings, err := h.bookingUsecase.ListBookingsForUser(c.Request().Context(), email)
	if err != nil {
		return writeError(c, err, "list bookings for user")
	}

	return c.JSON(http.StatusOK, dto.NewListBookingsResponse(bookings, h.loc))
}

func (h *BookingHandler) ListRoomBookings(c echo.Context) error {
	bookings, err := h.bookingUsecase.ListBookingsForRoom(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err, "list bookings for room")
	}

	return c.JSON(http.StatusOK, dto.NewListBookingsResponse(bookings, h.loc))
}

func (h *BookingHandler) CreateBooking(c echo.Context) error {
	// Запрашивающий всегда берётся из токена
	email, ok := appctx.Email(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user"})
	}

	var req dto.CreateBookingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err, "create booking")
	}

	rng, err := req.Range(h.loc)
	if err != nil {
		return writeError(c, err, "create booking")
	}

	id, err := h.bookingUsecase.Create(
		c.Request().Context(),
		&input.CreateBookingInput{
			RoomID:         req.RoomID,
			Start:          rng.Start,
			End:            rng.End,
			RequesterEmail: email,
			Purpose:        req.Purpose,
		},
	)
	if err != nil {
		return writeError(c, err, "create booking")
	}

	return c.JSON(http.StatusCreated, dto.CreateBookingResponse{ID: id})
}

func (h *BookingHandler) CancelBooking(c echo.Context) error {
	email, ok := appctx.Email(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user"})
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid booking id"})
	}

	if err = h.bookingUsecase.Cancel(c.Request().Context(), bookingID, email); err != nil {
		return writeError(c, err, "cancel booking")
	}

	return c.NoContent(http.StatusNoContent)
}
