package constant

// ключи атрибутов slog
const (
	Error     = "error"
	UserID    = "user_id"
	UserName  = "user_name"
	Email     = "email"
	RoomID    = "room_id"
	BookingID = "booking_id"
	ConnID    = "conn_id"
	EventType = "event_type"
	Count     = "count"
	Line      = "line"
)
