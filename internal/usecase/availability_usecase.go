package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/qrave1/RoomBook/internal/domain/errs"
	"github.com/qrave1/RoomBook/internal/domain/models"
	"github.com/qrave1/RoomBook/internal/infra/adapters/postgres/repository"
)

// AvailabilityUsecase - только чтение, ничего не меняет в хранилище
type AvailabilityUsecase interface {
	// IsRoomBooked - есть ли бронь с start <= at < end
	IsRoomBooked(ctx context.Context, roomID string, at time.Time) (bool, error)
	// IsTimeSlotAvailable - нет ли брони, пересекающей [start, end).
	// При любой ошибке возвращает false.
	IsTimeSlotAvailable(ctx context.Context, roomID string, start, end time.Time) (bool, error)
	// ConflictingBookings - брони, пересекающие [start, end), по возрастанию start
	ConflictingBookings(ctx context.Context, roomID string, start, end time.Time) ([]*models.Booking, error)
}

type availabilityUsecase struct {
	bookingRepo  repository.BookingRepository
	roomRepo     repository.RoomRepository
	storeTimeout time.Duration
}

func NewAvailabilityUsecase(
	bookingRepo repository.BookingRepository,
	roomRepo repository.RoomRepository,
	storeTimeout time.Duration,
) AvailabilityUsecase {
	return &availabilityUsecase{bookingRepo: bookingRepo, roomRepo: roomRepo, storeTimeout: storeTimeout}
}

func (uc *availabilityUsecase) IsRoomBooked(ctx context.Context, roomID string, at time.Time) (bool, error) {
	ctx, cancel := withStoreTimeout(ctx, uc.storeTimeout)
	defer cancel()

	if err := roomExists(ctx, uc.roomRepo, roomID); err != nil {
		return false, err
	}

	booking, err := uc.bookingRepo.FindCovering(ctx, roomID, at)
	if err != nil {
		return false, errs.Classify(fmt.Errorf("find covering booking: %w", err))
	}

	return booking != nil, nil
}

func (uc *availabilityUsecase) IsTimeSlotAvailable(ctx context.Context, roomID string, start, end time.Time) (bool, error) {
	tr := models.NewTimeRange(start, end)
	if !tr.Valid() {
		return false, errs.Validation("end must be after start")
	}

	ctx, cancel := withStoreTimeout(ctx, uc.storeTimeout)
	defer cancel()

	if err := roomExists(ctx, uc.roomRepo, roomID); err != nil {
		return false, err
	}

	n, err := uc.bookingRepo.CountOverlapping(ctx, roomID, tr)
	if err != nil {
		return false, errs.Classify(fmt.Errorf("count overlapping bookings: %w", err))
	}

	return n == 0, nil
}

func (uc *availabilityUsecase) ConflictingBookings(ctx context.Context, roomID string, start, end time.Time) ([]*models.Booking, error) {
	tr := models.NewTimeRange(start, end)
	if !tr.Valid() {
		return nil, errs.Validation("end must be after start")
	}

	ctx, cancel := withStoreTimeout(ctx, uc.storeTimeout)
	defer cancel()

	if err := roomExists(ctx, uc.roomRepo, roomID); err != nil {
		return nil, err
	}

	bookings, err := uc.bookingRepo.ListOverlapping(ctx, roomID, tr)
	if err != nil {
		return nil, errs.Classify(fmt.Errorf("list overlapping bookings: %w", err))
	}

	return bookings, nil
}

// roomExists - по несуществующей комнате нельзя отвечать "свободно"
func roomExists(ctx context.Context, roomRepo repository.RoomRepository, roomID string) error {
	exists, err := roomRepo.Exists(ctx, roomID)
	if err != nil {
		return errs.Classify(fmt.Errorf("check room: %w", err))
	}

	if !exists {
		return errs.NotFound("room %q not found", roomID)
	}

	return nil
}

// withStoreTimeout не трогает ctx, если timeout не задан
func withStoreTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, timeout)
}
