package models

type OccupancyState string

const (
	StateFree   OccupancyState = "free"
	StateBooked OccupancyState = "booked"
	// StateUnknown - базу спросить не удалось
	StateUnknown OccupancyState = "unknown"
)

type RoomStatus struct {
	RoomID  string         `json:"room_id"`
	State   OccupancyState `json:"state"`
	Booking *Booking       `json:"booking,omitempty"`
}
