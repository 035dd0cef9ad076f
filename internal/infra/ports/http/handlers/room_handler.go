package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/qrave1/RoomBook/internal/application/constant"
	"github.com/qrave1/RoomBook/internal/domain/errs"
	"github.com/qrave1/RoomBook/internal/infra/ports/http/dto"
	"github.com/qrave1/RoomBook/internal/usecase"
)

type RoomHandler struct {
	roomUsecase         usecase.RoomUsecase
	statusUsecase       usecase.StatusUsecase
	availabilityUsecase usecase.AvailabilityUsecase

	loc *time.Location
	now func() time.Time
}

func NewRoomHandler(
	roomUsecase usecase.RoomUsecase,
	statusUsecase usecase.StatusUsecase,
	availabilityUsecase usecase.AvailabilityUsecase,
	loc *time.Location,
	now func() time.Time,
) *RoomHandler {
	if now == nil {
		now = time.Now
	}

	return &RoomHandler{
		roomUsecase:         roomUsecase,
		statusUsecase:       statusUsecase,
		availabilityUsecase: availabilityUsecase,
		loc:                 loc,
		now:                 now,
	}
}

func (h *RoomHandler) ListRooms(c echo.Context) error {
	rooms, err := h.roomUsecase.ListRooms(c.Request().Context())
	if err != nil {
		return writeError(c, err, "list rooms")
	}

	return c.JSON(http.StatusOK, dto.NewListRoomsResponse(rooms))
}

// ListAreas - комнаты, сгруппированные по зонам плана
func (h *RoomHandler) ListAreas(c echo.Context) error {
	groups, err := h.roomUsecase.RoomsByArea(c.Request().Context())
	if err != nil {
		return writeError(c, err, "list rooms by area")
	}

	return c.JSON(http.StatusOK, dto.NewListAreasResponse(groups))
}

func (h *RoomHandler) GetRoom(c echo.Context) error {
	room, err := h.roomUsecase.GetRoom(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err, "get room")
	}

	return c.JSON(http.StatusOK, dto.NewRoomResponseFromModel(room))
}

// RoomStatus - free/booked/unknown на момент ?at= (по умолчанию сейчас)
func (h *RoomHandler) RoomStatus(c echo.Context) error {
	at, err := dto.ParseInstant(c.QueryParam("at"), h.now())
	if err != nil {
		return writeError(c, err, "room status")
	}

	ctx := c.Request().Context()
	roomID := c.Param("id")

	// неизвестная комната - 404; сбой хранилища отдаём дальше как unknown
	if _, err = h.roomUsecase.GetRoom(ctx, roomID); errors.Is(err, errs.ErrNotFound) {
		return writeError(c, err, "room status")
	}

	status := h.statusUsecase.RoomStatus(ctx, roomID, at)

	return c.JSON(http.StatusOK, dto.NewRoomStatusResponse(status, at, h.loc))
}

// Availability при любой ошибке отвечает available=false.
// Если слот занят, в ответе перечислены мешающие брони.
func (h *RoomHandler) Availability(c echo.Context) error {
	ctx := c.Request().Context()
	roomID := c.Param("id")

	start, err := dto.ParseInstant(c.QueryParam("start"), time.Time{})
	if err != nil {
		return writeError(c, err, "availability")
	}
	end, err := dto.ParseInstant(c.QueryParam("end"), time.Time{})
	if err != nil {
		return writeError(c, err, "availability")
	}

	resp := dto.AvailabilityResponse{RoomID: roomID, Start: start.In(h.loc), End: end.In(h.loc)}

	available, err := h.availabilityUsecase.IsTimeSlotAvailable(ctx, roomID, start, end)
	if err != nil {
		if code := statusFor(err); code == http.StatusBadRequest || code == http.StatusNotFound {
			resp.Error = errs.Message(err)
			return c.JSON(code, resp)
		}

		slog.Warn("availability check failed", slog.Any(constant.Error, err), slog.String(constant.RoomID, roomID))
		resp.Error = "availability could not be checked"

		return c.JSON(http.StatusOK, resp)
	}

	resp.Available = available
	if available {
		return c.JSON(http.StatusOK, resp)
	}

	conflicts, err := h.availabilityUsecase.ConflictingBookings(ctx, roomID, start, end)
	if err != nil {
		slog.Warn("list conflicting bookings", slog.Any(constant.Error, err), slog.String(constant.RoomID, roomID))
		return c.JSON(http.StatusOK, resp)
	}

	resp.Conflicts = make([]dto.BookingResponse, 0, len(conflicts))
	for _, b := range conflicts {
		resp.Conflicts = append(resp.Conflicts, dto.NewBookingResponseFromModel(b, h.loc))
	}

	return c.JSON(http.StatusOK, resp)
}
