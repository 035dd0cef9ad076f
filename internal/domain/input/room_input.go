package input

// UpdateRoomInput - частичное обновление комнаты, nil-поля не меняются
type UpdateRoomInput struct {
	ID          string
	Name        *string
	Capacity    *int
	Area        *string
	Amenities   []string
	Description *string
	Layout      *LayoutInput
	ClearLayout bool
}

type LayoutInput struct {
	X      int
	Y      int
	Width  int
	Height int
}

// RoomImportRow - строка таблицы как есть, до нормализации
type RoomImportRow struct {
	Line        int
	ID          string
	Name        string
	Capacity    string
	Area        string
	Amenities   string
	Description string
	X           string
	Y           string
	Width       string
	Height      string
}
