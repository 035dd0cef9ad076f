package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/qrave1/RoomBook/internal/domain/errs"
	"github.com/qrave1/RoomBook/internal/domain/models"
	"github.com/qrave1/RoomBook/internal/domain/preset"
)

const dateLayout = "2006-01-02"

// PresetRequest - быстрый выбор интервала из формы вместо явных start/end
type PresetRequest struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Kind      string `json:"kind" validate:"required,oneof=hours morning afternoon full_day"`
	StartHour int    `json:"start_hour"`
	Hours     int    `json:"hours"`
}

type CreateBookingRequest struct {
	RoomID  string         `json:"room_id" validate:"required,max=100"`
	Start   *time.Time     `json:"start" validate:"required_without=Preset"`
	End     *time.Time     `json:"end" validate:"required_without=Preset"`
	Preset  *PresetRequest `json:"preset" validate:"omitempty"`
	Purpose string         `json:"purpose" validate:"max=200"`
}

// Range превращает запрос в конкретный интервал. Пресет считается в локации loc.
func (r *CreateBookingRequest) Range(loc *time.Location) (models.TimeRange, error) {
	if r.Preset == nil {
		if r.Start == nil || r.End == nil {
			return models.TimeRange{}, errs.Validation("start and end are required")
		}

		return models.NewTimeRange(*r.Start, *r.End), nil
	}

	day, err := time.ParseInLocation(dateLayout, r.Preset.Date, loc)
	if err != nil {
		return models.TimeRange{}, errs.Validation("date must look like %s", dateLayout)
	}

	return preset.Resolve(preset.Kind(r.Preset.Kind), day, r.Preset.StartHour, r.Preset.Hours)
}

type CreateBookingResponse struct {
	ID uuid.UUID `json:"id"`
}

type BookingResponse struct {
	ID        uuid.UUID `json:"id"`
	RoomID    string    `json:"room_id"`
	UserID    uuid.UUID `json:"user_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Purpose   string    `json:"purpose"`
	CreatedAt time.Time `json:"created_at"`
}

func NewBookingResponseFromModel(b *models.Booking, loc *time.Location) BookingResponse {
	return BookingResponse{
		ID:        b.ID,
		RoomID:    b.RoomID,
		UserID:    b.UserID,
		StartTime: b.StartTime.In(loc),
		EndTime:   b.EndTime.In(loc),
		Purpose:   b.Purpose,
		CreatedAt: b.CreatedAt.In(loc),
	}
}

type ListBookingsResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

func NewListBookingsResponse(bookings []*models.Booking, loc *time.Location) ListBookingsResponse {
	resp := ListBookingsResponse{Bookings: make([]BookingResponse, 0, len(bookings))}
	for _, b := range bookings {
		resp.Bookings = append(resp.Bookings, NewBookingResponseFromModel(b, loc))
	}

	return resp
}

type AvailabilityResponse struct {
	RoomID    string    `json:"room_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`

	// Conflicts - брони, из-за которых слот занят
	Conflicts []BookingResponse `json:"conflicts,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// ParseInstant принимает RFC3339; пустая строка даёт fallback.
func ParseInstant(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback, nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errs.Validation("%q is not an RFC3339 time", s)
	}

	return t, nil
}
