package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/qrave1/RoomBook/internal/application/constant"
	"github.com/qrave1/RoomBook/internal/application/metric"
	"github.com/qrave1/RoomBook/internal/domain/events"
	"github.com/qrave1/RoomBook/internal/domain/models"
)

// StatusUsecase - занятость комнат для отображения.
// Ошибка хранилища даёт состояние unknown, а не free.
type StatusUsecase interface {
	RoomStatus(ctx context.Context, roomID string, at time.Time) models.RoomStatus
	Snapshot(ctx context.Context, at time.Time) ([]models.RoomStatus, error)
	PublishSnapshot(ctx context.Context) error
}

type statusUsecase struct {
	bookingUsecase BookingUsecase
	roomUsecase    RoomUsecase
	publisher      EventPublisher

	now func() time.Time
}

func NewStatusUsecase(bookingUsecase BookingUsecase, roomUsecase RoomUsecase, publisher EventPublisher, now func() time.Time) StatusUsecase {
	if now == nil {
		now = time.Now
	}

	return &statusUsecase{
		bookingUsecase: bookingUsecase,
		roomUsecase:    roomUsecase,
		publisher:      publisher,
		now:            now,
	}
}

func (uc *statusUsecase) RoomStatus(ctx context.Context, roomID string, at time.Time) models.RoomStatus {
	booking, err := uc.bookingUsecase.GetCurrentBookingForRoom(ctx, roomID, at)
	if err != nil {
		slog.Warn("room status unknown", slog.Any(constant.Error, err), slog.String(constant.RoomID, roomID))

		return models.RoomStatus{RoomID: roomID, State: models.StateUnknown}
	}

	if booking == nil {
		return models.RoomStatus{RoomID: roomID, State: models.StateFree}
	}

	return models.RoomStatus{RoomID: roomID, State: models.StateBooked, Booking: booking}
}

func (uc *statusUsecase) Snapshot(ctx context.Context, at time.Time) ([]models.RoomStatus, error) {
	rooms, err := uc.roomUsecase.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	statuses := make([]models.RoomStatus, 0, len(rooms))
	for _, room := range rooms {
		statuses = append(statuses, uc.RoomStatus(ctx, room.ID, at))
	}

	return statuses, nil
}

func (uc *statusUsecase) PublishSnapshot(ctx context.Context) (err error) {
	defer func() { metric.RecordStatusPublish(err == nil) }()

	statuses, err := uc.Snapshot(ctx, uc.now())
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	msg, err := events.New(events.TypeRoomStatus, events.RoomStatusEvent{Rooms: statuses})
	if err != nil {
		return err
	}

	if err := uc.publisher.Publish(ctx, msg); err != nil {
		return fmt.Errorf("publish room status: %w", err)
	}

	return nil
}
