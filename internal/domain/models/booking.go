package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/qrave1/RoomBook/internal/domain/input"
)

const DefaultPurpose = "Meeting"

type Booking struct {
	ID        uuid.UUID `json:"id" db:"id"`
	RoomID    string    `json:"room_id" db:"room_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	StartTime time.Time `json:"start_time" db:"start_time"`
	EndTime   time.Time `json:"end_time" db:"end_time"`
	Purpose   string    `json:"purpose" db:"purpose"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewBooking собирает несохранённую бронь пользователя userID. id выдаёт база.
func NewBooking(in *input.CreateBookingInput, userID uuid.UUID, defaultPurpose string) *Booking {
	purpose := strings.TrimSpace(in.Purpose)
	if purpose == "" {
		purpose = defaultPurpose
	}
	if purpose == "" {
		purpose = DefaultPurpose
	}

	return &Booking{
		RoomID:    strings.TrimSpace(in.RoomID),
		UserID:    userID,
		StartTime: in.Start.UTC(),
		EndTime:   in.End.UTC(),
		Purpose:   purpose,
	}
}

func (b *Booking) Range() TimeRange {
	return TimeRange{Start: b.StartTime, End: b.EndTime}
}

func (b *Booking) OwnedBy(userID uuid.UUID) bool {
	return b.UserID == userID
}
