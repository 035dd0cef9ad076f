package events

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/qrave1/RoomBook/internal/domain/models"
)

const (
	TypeBookingCreated   = "booking_created"
	TypeBookingCancelled = "booking_cancelled"
	TypeRoomStatus       = "room_status"

	// входящие от клиента
	TypePing     = "ping"
	TypePong     = "pong"
	TypeSnapshot = "snapshot"
)

// Message - общее событие
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// New упаковывает payload в Message
func New(eventType string, payload any) (Message, error) {
	if payload == nil {
		return Message{Type: eventType}, nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	return Message{Type: eventType, Data: data}, nil
}

// BookingCreatedEvent - новая бронь
type BookingCreatedEvent struct {
	Booking *models.Booking `json:"booking"`
}

// BookingCancelledEvent - бронь удалена
type BookingCancelledEvent struct {
	BookingID uuid.UUID `json:"booking_id"`
	RoomID    string    `json:"room_id"`
}

// RoomStatusEvent - срез занятости всех комнат
type RoomStatusEvent struct {
	Rooms []models.RoomStatus `json:"rooms"`
}
