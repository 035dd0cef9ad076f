package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/qrave1/RoomBook/internal/application/constant"
	"github.com/qrave1/RoomBook/internal/domain/errs"
)

// statusFor переводит вид ошибки в HTTP-статус
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrTransient):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError отвечает клиенту текстом ошибки. Детали 5xx остаются в логах.
func writeError(c echo.Context, err error, op string) error {
	status, msg := publicError(err, op)

	return c.JSON(status, map[string]string{"error": msg})
}

// publicError - статус и текст для клиента; 5xx пишутся в лог
func publicError(err error, op string) (int, string) {
	status := statusFor(err)

	msg := errs.Message(err)
	switch status {
	case http.StatusServiceUnavailable:
		slog.Warn(op, slog.Any(constant.Error, err))
		msg = "service temporarily unavailable, try again"
	case http.StatusInternalServerError:
		slog.Error(op, slog.Any(constant.Error, err))
		msg = "internal error"
	}

	return status, msg
}

// bindAndValidate - c.Bind + c.Validate с ответом 400
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errs.Validation("invalid request body")
	}

	if err := c.Validate(req); err != nil {
		return errs.Validation("%s", err.Error())
	}

	return nil
}
