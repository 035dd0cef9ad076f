package metric

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/qrave1/RoomBook/internal/application/constant"
)

const healthTimeout = 2 * time.Second

// Pinger - хранилище броней, которое проверяет /health
type Pinger interface {
	PingContext(ctx context.Context) error
}

// NewServer создает новый сервер метрик. /health отвечает 503, пока база броней недоступна.
func NewServer(db Pinger) *echo.Echo {
	e := echo.New()

	e.HideBanner = true
	e.HidePort = true

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/health", healthHandler(db))

	return e
}

func healthHandler(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			slog.Warn("health check: booking store unavailable", slog.Any(constant.Error, err))

			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "store": "down"})
		}

		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "store": "up"})
	}
}
