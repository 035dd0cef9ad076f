package server

import (
	"github.com/labstack/echo/v4"

	"github.com/qrave1/RoomBook/internal/application/config"
	"github.com/qrave1/RoomBook/internal/infra/ports/http/handlers"
	"github.com/qrave1/RoomBook/internal/infra/ports/http/middleware"
	"github.com/qrave1/RoomBook/internal/usecase"
)

func New(
	cfg *config.Config,
	identity usecase.IdentityResolver,
	bookingHandler *handlers.BookingHandler,
	roomHandler *handlers.RoomHandler,
	adminHandler *handlers.AdminHandler,
	wsHandler *handlers.WebSocketHandler,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewRequestValidator()

	e.Use(middleware.SlogLogger())
	e.Use(middleware.PrometheusMiddleware())

	api := e.Group("/api")
	{
		v1 := api.Group("/v1")
		v1.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
		{
			v1.GET("/ws", wsHandler.Handle)

			v1.GET("/rooms", roomHandler.ListRooms)
			v1.GET("/rooms/areas", roomHandler.ListAreas)
			v1.GET("/rooms/:id", roomHandler.GetRoom)
			v1.GET("/rooms/:id/status", roomHandler.RoomStatus)
			v1.GET("/rooms/:id/availability", roomHandler.Availability)
			v1.GET("/rooms/:id/bookings", bookingHandler.ListRoomBookings)

			v1.GET("/bookings", bookingHandler.ListFutureBookings)
			v1.GET("/bookings/me", bookingHandler.ListMyBookings)
			v1.POST("/bookings", bookingHandler.CreateBooking)
			v1.DELETE("/bookings/:id", bookingHandler.CancelBooking)

			admin := v1.Group("/admin")
			admin.Use(middleware.RequireAdmin(identity))
			{
				admin.PATCH("/rooms/:id", adminHandler.UpdateRoom)
				admin.POST("/rooms/import", adminHandler.ImportRooms)
				admin.GET("/rooms/template", adminHandler.RoomsTemplate)
			}
		}
	}

	return e
}
