package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/qrave1/RoomBook/internal/domain/models"
)

const bookingColumns = "id, room_id, user_id, start_time, end_time, purpose, created_at"

// BookingFilter сужает ListFuture. Пустые поля не фильтруют.
type BookingFilter struct {
	RoomID string
	UserID uuid.UUID
}

type BookingRepository interface {
	Insert(ctx context.Context, booking *models.Booking) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	// Delete удаляет бронь. Если ownerID задан, удаляется только бронь этого пользователя.
	Delete(ctx context.Context, id uuid.UUID, ownerID *uuid.UUID) (bool, error)

	ListFuture(ctx context.Context, filter BookingFilter, now time.Time) ([]*models.Booking, error)
	CountOverlapping(ctx context.Context, roomID string, r models.TimeRange) (int, error)
	ListOverlapping(ctx context.Context, roomID string, r models.TimeRange) ([]*models.Booking, error)
	FindCovering(ctx context.Context, roomID string, at time.Time) (*models.Booking, error)
}

type bookingRepo struct {
	db *sqlx.DB
}

func NewBookingRepo(db *sqlx.DB) BookingRepository {
	return &bookingRepo{db: db}
}

func (r *bookingRepo) Insert(ctx context.Context, booking *models.Booking) (uuid.UUID, error) {
	err := r.db.QueryRowxContext(
		ctx,
		`INSERT INTO bookings (room_id, user_id, start_time, end_time, purpose)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		booking.RoomID,
		booking.UserID,
		booking.StartTime,
		booking.EndTime,
		booking.Purpose,
	).Scan(&booking.ID, &booking.CreatedAt)
	if err != nil {
		return uuid.Nil, classify(err, "insert booking")
	}

	return booking.ID, nil
}

func (r *bookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking

	err := r.db.GetContext(ctx, &booking, "SELECT "+bookingColumns+" FROM bookings WHERE id = $1", id)
	if err != nil {
		return nil, classify(err, "get booking")
	}

	return &booking, nil
}

func (r *bookingRepo) Delete(ctx context.Context, id uuid.UUID, ownerID *uuid.UUID) (bool, error) {
	query := "DELETE FROM bookings WHERE id = $1"
	args := []any{id}

	if ownerID != nil {
		query += " AND user_id = $2"
		args = append(args, *ownerID)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, classify(err, "delete booking")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, classify(err, "delete booking")
	}

	return n > 0, nil
}

func (r *bookingRepo) ListFuture(ctx context.Context, filter BookingFilter, now time.Time) ([]*models.Booking, error) {
	query := "SELECT " + bookingColumns + " FROM bookings WHERE end_time >= $1"
	args := []any{now}

	if filter.RoomID != "" {
		args = append(args, filter.RoomID)
		query += fmt.Sprintf(" AND room_id = $%d", len(args))
	}

	if filter.UserID != uuid.Nil {
		args = append(args, filter.UserID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}

	query += " ORDER BY start_time ASC"

	bookings := make([]*models.Booking, 0)

	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, classify(err, "list future bookings")
	}

	return bookings, nil
}

func (r *bookingRepo) CountOverlapping(ctx context.Context, roomID string, tr models.TimeRange) (int, error) {
	var n int

	err := r.db.GetContext(
		ctx,
		&n,
		"SELECT count(*) FROM bookings WHERE room_id = $1 AND start_time < $2 AND end_time > $3",
		roomID,
		tr.End,
		tr.Start,
	)
	if err != nil {
		return 0, classify(err, "count overlapping bookings")
	}

	return n, nil
}

func (r *bookingRepo) ListOverlapping(ctx context.Context, roomID string, tr models.TimeRange) ([]*models.Booking, error) {
	bookings := make([]*models.Booking, 0)

	err := r.db.SelectContext(
		ctx,
		&bookings,
		"SELECT "+bookingColumns+" FROM bookings WHERE room_id = $1 AND start_time < $2 AND end_time > $3 ORDER BY start_time ASC",
		roomID,
		tr.End,
		tr.Start,
	)
	if err != nil {
		return nil, classify(err, "list overlapping bookings")
	}

	return bookings, nil
}

// FindCovering возвращает бронь, которая идёт в момент at, или nil.
func (r *bookingRepo) FindCovering(ctx context.Context, roomID string, at time.Time) (*models.Booking, error) {
	bookings := make([]*models.Booking, 0, 1)

	err := r.db.SelectContext(
		ctx,
		&bookings,
		"SELECT "+bookingColumns+" FROM bookings WHERE room_id = $1 AND start_time <= $2 AND end_time > $2 LIMIT 1",
		roomID,
		at,
	)
	if err != nil {
		return nil, classify(err, "find covering booking")
	}

	if len(bookings) == 0 {
		return nil, nil
	}

	return bookings[0], nil
}
