package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/qrave1/RoomBook/internal/application/constant"
	"github.com/qrave1/RoomBook/internal/application/metric"
	"github.com/qrave1/RoomBook/internal/domain/errs"
	"github.com/qrave1/RoomBook/internal/domain/events"
	"github.com/qrave1/RoomBook/internal/domain/input"
	"github.com/qrave1/RoomBook/internal/domain/models"
	"github.com/qrave1/RoomBook/internal/infra/adapters/postgres/repository"
)

const msgSlotUnavailable = "slot unavailable"

type BookingUsecase interface {
	Create(ctx context.Context, in *input.CreateBookingInput) (uuid.UUID, error)
	Cancel(ctx context.Context, bookingID uuid.UUID, requesterEmail string) error

	ListFutureBookings(ctx context.Context) ([]*models.Booking, error)
	ListBookingsForRoom(ctx context.Context, roomID string) ([]*models.Booking, error)
	ListBookingsForUser(ctx context.Context, email string) ([]*models.Booking, error)
	GetCurrentBookingForRoom(ctx context.Context, roomID string, at time.Time) (*models.Booking, error)
}

type BookingConfig struct {
	// PastTolerance - насколько start может быть в прошлом (задержка формы, рассинхрон часов)
	PastTolerance  time.Duration
	DefaultPurpose string
	StoreTimeout   time.Duration

	Now func() time.Time
}

type bookingUsecase struct {
	cfg BookingConfig

	bookingRepo repository.BookingRepository
	roomRepo    repository.RoomRepository
	identity    IdentityResolver

	availability AvailabilityUsecase
	publisher    EventPublisher
}

func NewBookingUsecase(
	cfg BookingConfig,
	bookingRepo repository.BookingRepository,
	roomRepo repository.RoomRepository,
	identity IdentityResolver,
	availability AvailabilityUsecase,
	publisher EventPublisher,
) BookingUsecase {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &bookingUsecase{
		cfg:          cfg,
		bookingRepo:  bookingRepo,
		roomRepo:     roomRepo,
		identity:     identity,
		availability: availability,
		publisher:    publisher,
	}
}

func (uc *bookingUsecase) Create(ctx context.Context, in *input.CreateBookingInput) (id uuid.UUID, err error) {
	defer func() { recordOutcome("create", err) }()

	if err := uc.validateCreate(in); err != nil {
		return uuid.Nil, err
	}

	ctx, cancel := withStoreTimeout(ctx, uc.cfg.StoreTimeout)
	defer cancel()

	profile, err := uc.resolve(ctx, in.RequesterEmail)
	if err != nil {
		return uuid.Nil, err
	}

	roomID := strings.TrimSpace(in.RoomID)

	if err = roomExists(ctx, uc.roomRepo, roomID); err != nil {
		return uuid.Nil, err
	}

	available, err := uc.availability.IsTimeSlotAvailable(ctx, roomID, in.Start, in.End)
	if err != nil {
		return uuid.Nil, fmt.Errorf("check availability: %w", err)
	}
	if !available {
		return uuid.Nil, errs.New(errs.ErrConflict, msgSlotUnavailable)
	}

	booking := models.NewBooking(in, profile.ID, uc.cfg.DefaultPurpose)

	// между проверкой и вставкой слот могут занять, тогда сработает exclusion constraint
	id, err = uc.bookingRepo.Insert(ctx, booking)
	if err != nil {
		if errors.Is(err, errs.ErrConflict) {
			return uuid.Nil, errs.Wrap(errs.ErrConflict, err, msgSlotUnavailable)
		}

		return uuid.Nil, errs.Classify(fmt.Errorf("insert booking: %w", err))
	}

	uc.publish(ctx, events.TypeBookingCreated, events.BookingCreatedEvent{Booking: booking})

	slog.Info(
		"booking created",
		slog.Any(constant.BookingID, id),
		slog.String(constant.RoomID, booking.RoomID),
		slog.Any(constant.UserID, profile.ID),
	)

	return id, nil
}

func (uc *bookingUsecase) Cancel(ctx context.Context, bookingID uuid.UUID, requesterEmail string) (err error) {
	defer func() { recordOutcome("cancel", err) }()

	if strings.TrimSpace(requesterEmail) == "" {
		return errs.Validation("requester is required")
	}

	ctx, cancel := withStoreTimeout(ctx, uc.cfg.StoreTimeout)
	defer cancel()

	profile, err := uc.resolve(ctx, requesterEmail)
	if err != nil {
		return err
	}

	booking, err := uc.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errs.Wrap(errs.ErrNotFound, err, "booking not found")
		}

		return errs.Classify(fmt.Errorf("get booking: %w", err))
	}

	if !booking.OwnedBy(profile.ID) && !profile.IsAdmin() {
		return errs.Forbidden("only the owner or an admin can cancel this booking")
	}

	var ownerID *uuid.UUID
	if !profile.IsAdmin() {
		ownerID = &profile.ID
	}

	deleted, err := uc.bookingRepo.Delete(ctx, bookingID, ownerID)
	if err != nil {
		return errs.Classify(fmt.Errorf("delete booking: %w", err))
	}

	// кто-то успел удалить раньше нас
	if !deleted {
		return errs.NotFound("booking not found")
	}

	uc.publish(ctx, events.TypeBookingCancelled, events.BookingCancelledEvent{BookingID: bookingID, RoomID: booking.RoomID})

	slog.Info(
		"booking cancelled",
		slog.Any(constant.BookingID, bookingID),
		slog.String(constant.RoomID, booking.RoomID),
		slog.Any(constant.UserID, profile.ID),
		slog.Bool("admin_override", !booking.OwnedBy(profile.ID)),
	)

	return nil
}

func (uc *bookingUsecase) ListFutureBookings(ctx context.Context) ([]*models.Booking, error) {
	return uc.listFuture(ctx, repository.BookingFilter{})
}

func (uc *bookingUsecase) ListBookingsForRoom(ctx context.Context, roomID string) ([]*models.Booking, error) {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return nil, errs.Validation("room id is required")
	}

	ctx, cancel := withStoreTimeout(ctx, uc.cfg.StoreTimeout)
	defer cancel()

	if err := roomExists(ctx, uc.roomRepo, roomID); err != nil {
		return nil, err
	}

	return uc.listFuture(ctx, repository.BookingFilter{RoomID: roomID})
}

func (uc *bookingUsecase) ListBookingsForUser(ctx context.Context, email string) ([]*models.Booking, error) {
	if strings.TrimSpace(email) == "" {
		return nil, errs.Validation("requester is required")
	}

	ctx, cancel := withStoreTimeout(ctx, uc.cfg.StoreTimeout)
	defer cancel()

	profile, err := uc.resolve(ctx, email)
	if err != nil {
		return nil, err
	}

	return uc.listFuture(ctx, repository.BookingFilter{UserID: profile.ID})
}

func (uc *bookingUsecase) GetCurrentBookingForRoom(ctx context.Context, roomID string, at time.Time) (*models.Booking, error) {
	ctx, cancel := withStoreTimeout(ctx, uc.cfg.StoreTimeout)
	defer cancel()

	booking, err := uc.bookingRepo.FindCovering(ctx, roomID, at)
	if err != nil {
		return nil, errs.Classify(fmt.Errorf("find covering booking: %w", err))
	}

	return booking, nil
}

func (uc *bookingUsecase) listFuture(ctx context.Context, filter repository.BookingFilter) ([]*models.Booking, error) {
	ctx, cancel := withStoreTimeout(ctx, uc.cfg.StoreTimeout)
	defer cancel()

	bookings, err := uc.bookingRepo.ListFuture(ctx, filter, uc.cfg.Now())
	if err != nil {
		return nil, errs.Classify(fmt.Errorf("list future bookings: %w", err))
	}

	return bookings, nil
}

func (uc *bookingUsecase) validateCreate(in *input.CreateBookingInput) error {
	switch {
	case in == nil:
		return errs.Validation("booking is required")
	case strings.TrimSpace(in.RequesterEmail) == "":
		return errs.Validation("requester is required")
	case strings.TrimSpace(in.RoomID) == "":
		return errs.Validation("room id is required")
	case in.Start.IsZero() || in.End.IsZero():
		return errs.Validation("start and end are required")
	case !in.End.After(in.Start):
		return errs.Validation("end must be after start")
	case in.Start.Before(uc.cfg.Now().Add(-uc.cfg.PastTolerance)):
		return errs.Validation("start must not be in the past")
	}

	return nil
}

// resolve переводит email в профиль. Неизвестный email - NotFound "unknown requester".
func (uc *bookingUsecase) resolve(ctx context.Context, email string) (*models.Profile, error) {
	profile, err := uc.identity.Resolve(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.Wrap(errs.ErrNotFound, err, "unknown requester")
		}

		return nil, errs.Classify(fmt.Errorf("resolve requester: %w", err))
	}

	return profile, nil
}

// publish - доставка событий best effort, бронь уже сохранена
func (uc *bookingUsecase) publish(ctx context.Context, eventType string, payload any) {
	if uc.publisher == nil {
		return
	}

	msg, err := events.New(eventType, payload)
	if err == nil {
		err = uc.publisher.Publish(ctx, msg)
	}

	if err != nil {
		slog.Error("publish event", slog.Any(constant.Error, err), slog.String(constant.EventType, eventType))
	}
}

func recordOutcome(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if kind := errs.KindOf(err); kind != nil {
			outcome = kind.Error()
		}
	}

	metric.RecordBookingOperation(operation, outcome)
}
