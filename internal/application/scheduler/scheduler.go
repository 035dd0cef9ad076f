package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/qrave1/RoomBook/internal/application/constant"
	"github.com/qrave1/RoomBook/internal/usecase"
)

// StatusScheduler периодически рассылает срез занятости комнат, чтобы статусы
// менялись у клиентов и без новых броней (бронь началась или закончилась).
type StatusScheduler struct {
	s gocron.Scheduler
}

func NewStatusScheduler(loc *time.Location, interval, timeout time.Duration, statusUsecase usecase.StatusUsecase) (*StatusScheduler, error) {
	if timeout <= 0 {
		return nil, fmt.Errorf("room status timeout must be positive, got %s", timeout)
	}

	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			if err := statusUsecase.PublishSnapshot(ctx); err != nil {
				slog.Error("publish room status", slog.Any(constant.Error, err))
			}
		}),
		gocron.WithName("room-status"),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("create room status job: %w", err)
	}

	return &StatusScheduler{s: s}, nil
}

func (s *StatusScheduler) Start() {
	s.s.Start()
}

func (s *StatusScheduler) Shutdown() error {
	return s.s.Shutdown()
}
