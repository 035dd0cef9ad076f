package dto

import (
	"time"

	"github.com/qrave1/RoomBook/internal/domain/input"
	"github.com/qrave1/RoomBook/internal/domain/models"
	"github.com/qrave1/RoomBook/internal/domain/output"
)

type LayoutDTO struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width" validate:"gt=0"`
	Height int `json:"height" validate:"gt=0"`
}

type RoomResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Capacity    int        `json:"capacity"`
	Area        string     `json:"area"`
	Amenities   []string   `json:"amenities"`
	Description string     `json:"description"`
	Layout      *LayoutDTO `json:"layout,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func NewRoomResponseFromModel(r *models.Room) RoomResponse {
	resp := RoomResponse{
		ID:          r.ID,
		Name:        r.Name,
		Capacity:    r.Capacity,
		Area:        string(r.Area),
		Amenities:   []string(r.Amenities),
		Description: r.Description,
		UpdatedAt:   r.UpdatedAt,
	}

	if resp.Amenities == nil {
		resp.Amenities = []string{}
	}

	if r.Layout != nil {
		resp.Layout = &LayoutDTO{X: r.Layout.X, Y: r.Layout.Y, Width: r.Layout.Width, Height: r.Layout.Height}
	}

	return resp
}

type ListRoomsResponse struct {
	Rooms []RoomResponse `json:"rooms"`
}

func NewListRoomsResponse(rooms []*models.Room) ListRoomsResponse {
	resp := ListRoomsResponse{Rooms: make([]RoomResponse, 0, len(rooms))}
	for _, r := range rooms {
		resp.Rooms = append(resp.Rooms, NewRoomResponseFromModel(r))
	}

	return resp
}

type AreaResponse struct {
	Area  string         `json:"area"`
	Rooms []RoomResponse `json:"rooms"`
}

type ListAreasResponse struct {
	Areas []AreaResponse `json:"areas"`
}

func NewListAreasResponse(groups []models.AreaRooms) ListAreasResponse {
	resp := ListAreasResponse{Areas: make([]AreaResponse, 0, len(groups))}
	for _, g := range groups {
		resp.Areas = append(resp.Areas, AreaResponse{
			Area:  string(g.Area),
			Rooms: NewListRoomsResponse(g.Rooms).Rooms,
		})
	}

	return resp
}

type RoomStatusResponse struct {
	RoomID  string           `json:"room_id"`
	At      time.Time        `json:"at"`
	State   string           `json:"state"`
	Booking *BookingResponse `json:"booking,omitempty"`
}

func NewRoomStatusResponse(s models.RoomStatus, at time.Time, loc *time.Location) RoomStatusResponse {
	resp := RoomStatusResponse{RoomID: s.RoomID, At: at.In(loc), State: string(s.State)}

	if s.Booking != nil {
		b := NewBookingResponseFromModel(s.Booking, loc)
		resp.Booking = &b
	}

	return resp
}

// UpdateRoomRequest - частичное обновление, отсутствующие поля не меняются
type UpdateRoomRequest struct {
	Name        *string    `json:"name" validate:"omitempty,min=1,max=100"`
	Capacity    *int       `json:"capacity" validate:"omitempty,gt=0"`
	Area        *string    `json:"area" validate:"omitempty,oneof=Pastorie Kerksaal Kerkgebou"`
	Amenities   []string   `json:"amenities" validate:"omitempty,dive,max=100"`
	Description *string    `json:"description" validate:"omitempty,max=1000"`
	Layout      *LayoutDTO `json:"layout" validate:"omitempty"`
	ClearLayout bool       `json:"clear_layout"`
}

func (r *UpdateRoomRequest) ToInput(id string) *input.UpdateRoomInput {
	in := &input.UpdateRoomInput{
		ID:          id,
		Name:        r.Name,
		Capacity:    r.Capacity,
		Area:        r.Area,
		Amenities:   r.Amenities,
		Description: r.Description,
		ClearLayout: r.ClearLayout,
	}

	if r.Layout != nil {
		in.Layout = &input.LayoutInput{X: r.Layout.X, Y: r.Layout.Y, Width: r.Layout.Width, Height: r.Layout.Height}
	}

	return in
}

// ImportErrorResponse - импорт прервался, Result показывает строки, записанные до сбоя
type ImportErrorResponse struct {
	Error  string               `json:"error"`
	Result *output.ImportResult `json:"result"`
}
