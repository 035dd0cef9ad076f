package input

import (
	"time"
)

type CreateBookingInput struct {
	RoomID         string    `json:"room_id"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	RequesterEmail string    `json:"requester_email"`
	Purpose        string    `json:"purpose"`
}
