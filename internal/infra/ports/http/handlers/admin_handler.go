package handlers

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/qrave1/RoomBook/internal/application/constant"
	"github.com/qrave1/RoomBook/internal/infra/adapters/excel"
	"github.com/qrave1/RoomBook/internal/infra/ports/http/dto"
	"github.com/qrave1/RoomBook/internal/usecase"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxImportSize   = 5 << 20
)

type AdminHandler struct {
	roomUsecase usecase.RoomUsecase
}

func NewAdminHandler(roomUsecase usecase.RoomUsecase) *AdminHandler {
	return &AdminHandler{roomUsecase: roomUsecase}
}

func (h *AdminHandler) UpdateRoom(c echo.Context) error {
	var req dto.UpdateRoomRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err, "update room")
	}

	room, err := h.roomUsecase.UpdateRoom(c.Request().Context(), req.ToInput(c.Param("id")))
	if err != nil {
		return writeError(c, err, "update room")
	}

	return c.JSON(http.StatusOK, dto.NewRoomResponseFromModel(room))
}

// ImportRooms принимает xlsx в поле file и создаёт или обновляет комнаты построчно
func (h *AdminHandler) ImportRooms(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file is required"})
	}

	if fh.Size > maxImportSize {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": "file is too large"})
	}

	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "cannot open file"})
	}
	defer f.Close()

	rows, err := excel.ReadRooms(f)
	if err != nil {
		return writeError(c, err, "read rooms spreadsheet")
	}

	result, err := h.roomUsecase.ImportRooms(c.Request().Context(), rows)
	if err != nil {
		if result == nil {
			return writeError(c, err, "import rooms")
		}

		// строки до сбоя уже записаны, клиент должен знать какие
		status, msg := publicError(err, "import rooms")

		return c.JSON(status, dto.ImportErrorResponse{Error: msg, Result: result})
	}

	return c.JSON(http.StatusOK, result)
}

// RoomsTemplate отдаёт xlsx с заголовком и текущими комнатами, его же можно загрузить обратно
func (h *AdminHandler) RoomsTemplate(c echo.Context) error {
	rooms, err := h.roomUsecase.ListRooms(c.Request().Context())
	if err != nil {
		return writeError(c, err, "list rooms")
	}

	var buf bytes.Buffer
	if err = excel.WriteRooms(&buf, rooms); err != nil {
		slog.Error("write rooms spreadsheet", slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to build spreadsheet"})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="rooms.xlsx"`)

	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}
