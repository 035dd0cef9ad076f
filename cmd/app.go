package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qrave1/RoomBook/internal/application/config"
	"github.com/qrave1/RoomBook/internal/application/constant"
	"github.com/qrave1/RoomBook/internal/application/metric"
	"github.com/qrave1/RoomBook/internal/application/scheduler"
	"github.com/qrave1/RoomBook/internal/domain/events"
	"github.com/qrave1/RoomBook/internal/infra/adapters/memory"
	"github.com/qrave1/RoomBook/internal/infra/adapters/postgres"
	"github.com/qrave1/RoomBook/internal/infra/adapters/postgres/repository"
	"github.com/qrave1/RoomBook/internal/infra/adapters/redis"
	"github.com/qrave1/RoomBook/internal/infra/adapters/rest"
	"github.com/qrave1/RoomBook/internal/infra/ports/http/handlers"
	"github.com/qrave1/RoomBook/internal/infra/ports/http/server"
	"github.com/qrave1/RoomBook/internal/usecase"
)

func runApp() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.New()
	if err != nil {
		slog.Error("parse config", slog.Any(constant.Error, err))
		os.Exit(1)
	}

	slog.SetDefault(
		slog.New(
			slog.NewJSONHandler(
				os.Stdout,
				&slog.HandlerOptions{Level: cfg.LogLevel},
			),
		),
	)

	slog.Info("Running app", slog.Bool("debug", cfg.Debug), slog.String("timezone", cfg.Timezone))

	dbConn, err := postgres.NewPostgres(ctx, cfg.Postgres.DSN())
	if err != nil {
		slog.Error("connect to postgres", slog.Any(constant.Error, err))
		os.Exit(1)
	}
	defer dbConn.Close()

	bookingRepo := repository.NewBookingRepo(dbConn)
	roomRepo := repository.NewRoomRepo(dbConn)
	wsConnRepo := memory.NewWSConnectionRepository()

	var identity usecase.IdentityResolver = repository.NewProfileRepo(dbConn)
	if cfg.Identity.Source == config.IdentitySourceREST {
		identity = rest.NewProfileResolver(cfg.Identity.RESTURL, cfg.Identity.RESTKey, cfg.Booking.StoreTimeout)
	}

	// Без Redis события раздаются подключениям этого процесса.
	// С Redis каждый инстанс публикует в канал и рассылает своим подключениям всё, что из него пришло.
	var publisher usecase.EventPublisher = memory.NewLocalPublisher(wsConnRepo)
	if cfg.Redis.URL != "" {
		redisClient, err := redis.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			slog.Error("connect to redis", slog.Any(constant.Error, err))
			os.Exit(1)
		}
		defer redisClient.Close()

		bus := redis.NewEventBus(redisClient, cfg.Redis.Channel)
		publisher = bus

		go func() {
			err := bus.Subscribe(ctx, func(msg events.Message) {
				wsConnRepo.Broadcast(msg)
			})
			if err != nil {
				slog.Error("redis subscription stopped", slog.Any(constant.Error, err))
				cancel()
			}
		}()
	}

	availabilityUsecase := usecase.NewAvailabilityUsecase(bookingRepo, roomRepo, cfg.Booking.StoreTimeout)
	roomUsecase := usecase.NewRoomUsecase(roomRepo, cfg.Booking.StoreTimeout)
	bookingUsecase := usecase.NewBookingUsecase(
		usecase.BookingConfig{
			PastTolerance:  cfg.Booking.PastTolerance,
			DefaultPurpose: cfg.Booking.DefaultPurpose,
			StoreTimeout:   cfg.Booking.StoreTimeout,
		},
		bookingRepo,
		roomRepo,
		identity,
		availabilityUsecase,
		publisher,
	)
	statusUsecase := usecase.NewStatusUsecase(bookingUsecase, roomUsecase, publisher, time.Now)

	statusScheduler, err := scheduler.NewStatusScheduler(
		cfg.Location(),
		cfg.Booking.StatusInterval,
		cfg.Booking.StoreTimeout*2,
		statusUsecase,
	)
	if err != nil {
		slog.Error("create status scheduler", slog.Any(constant.Error, err))
		os.Exit(1)
	}

	bookingHandler := handlers.NewBookingHandler(bookingUsecase, cfg.Location())
	roomHandler := handlers.NewRoomHandler(roomUsecase, statusUsecase, availabilityUsecase, cfg.Location(), time.Now)
	adminHandler := handlers.NewAdminHandler(roomUsecase)
	wsHandler := handlers.NewWebSocketHandler(cfg, wsConnRepo, statusUsecase)

	echoSrv := server.New(cfg, identity, bookingHandler, roomHandler, adminHandler, wsHandler)

	metricsSrv := metric.NewServer(dbConn)

	echoSrvCh := make(chan error, 1)
	metricsSrvCh := make(chan error, 1)

	// Запускаем HTTP сервер
	go func() {
		echoSrvCh <- echoSrv.Start(":" + cfg.Port)
	}()

	// Запускаем сервер метрик
	go func() {
		metricsSrvCh <- metricsSrv.Start(":" + cfg.MetricPort)
	}()

	statusScheduler.Start()

	slog.Info("HTTP server started", slog.String("port", cfg.Port), slog.String("metric_port", cfg.MetricPort))

	// Ожидаем сигнал завершения или ошибку сервера
	select {
	case <-ctx.Done():
		slog.Info("Shutting down servers due to context cancel")
	case err := <-echoSrvCh:
		slog.Error(
			"HTTP server failed",
			slog.Any(constant.Error, err),
		)
		os.Exit(1)
	case err := <-metricsSrvCh:
		slog.Error(
			"Metrics server failed",
			slog.Any(constant.Error, err),
		)
		os.Exit(1)
	}

	if err := statusScheduler.Shutdown(); err != nil {
		slog.Error("Failed to stop status scheduler", slog.Any(constant.Error, err))
	}

	// Graceful shutdown
	timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer timeoutCancel()

	if err := echoSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown HTTP server", slog.Any(constant.Error, err))
	}

	if err := metricsSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown metric server", slog.Any(constant.Error, err))
	}
}
