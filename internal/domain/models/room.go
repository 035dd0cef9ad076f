package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/qrave1/RoomBook/internal/domain/errs"
)

type Area string

const (
	AreaPastorie  Area = "Pastorie"
	AreaKerksaal  Area = "Kerksaal"
	AreaKerkgebou Area = "Kerkgebou"
)

// Areas - все зоны в порядке отображения
var Areas = []Area{AreaPastorie, AreaKerksaal, AreaKerkgebou}

func ParseArea(s string) (Area, bool) {
	s = strings.TrimSpace(s)
	for _, a := range Areas {
		if strings.EqualFold(string(a), s) {
			return a, true
		}
	}

	return "", false
}

// Amenities хранится jsonb-массивом, порядок сохраняется
type Amenities []string

func (a Amenities) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}

	b, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}

	return string(b), nil
}

func (a *Amenities) Scan(src any) error {
	b, err := jsonBytes(src)
	if err != nil {
		return fmt.Errorf("scan amenities: %w", err)
	}
	if b == nil {
		*a = Amenities{}
		return nil
	}

	var out []string
	if err := json.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("scan amenities: %w", err)
	}
	*a = out

	return nil
}

// Layout - прямоугольник комнаты на плане
type Layout struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (l Layout) Value() (driver.Value, error) {
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}

	return string(b), nil
}

func (l *Layout) Scan(src any) error {
	b, err := jsonBytes(src)
	if err != nil {
		return fmt.Errorf("scan layout: %w", err)
	}
	if b == nil {
		return nil
	}

	return json.Unmarshal(b, l)
}

type Room struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Capacity    int       `json:"capacity" db:"capacity"`
	Area        Area      `json:"area" db:"area"`
	Amenities   Amenities `json:"amenities" db:"amenities"`
	Description string    `json:"description" db:"description"`
	Layout      *Layout   `json:"layout,omitempty" db:"layout"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

func (r *Room) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errs.Validation("room id is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return errs.Validation("room %q: name is required", r.ID)
	}
	if r.Capacity <= 0 {
		return errs.Validation("room %q: capacity must be positive", r.ID)
	}
	if _, ok := ParseArea(string(r.Area)); !ok {
		return errs.Validation("room %q: unknown area %q", r.ID, r.Area)
	}
	if r.Layout != nil && (r.Layout.Width <= 0 || r.Layout.Height <= 0) {
		return errs.Validation("room %q: layout width and height must be positive", r.ID)
	}

	return nil
}

// AreaRooms - комнаты одной зоны
type AreaRooms struct {
	Area  Area    `json:"area"`
	Rooms []*Room `json:"rooms"`
}

// GroupByArea группирует в порядке Areas, пустые зоны пропускает
func GroupByArea(rooms []*Room) []AreaRooms {
	byArea := make(map[Area][]*Room, len(Areas))
	for _, r := range rooms {
		byArea[r.Area] = append(byArea[r.Area], r)
	}

	out := make([]AreaRooms, 0, len(Areas))
	for _, a := range Areas {
		if len(byArea[a]) == 0 {
			continue
		}
		out = append(out, AreaRooms{Area: a, Rooms: byArea[a]})
	}

	return out
}

func jsonBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported type %T", src)
	}
}
