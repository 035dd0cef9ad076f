package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/qrave1/RoomBook/internal/application/constant"
	"github.com/qrave1/RoomBook/internal/domain/errs"
	"github.com/qrave1/RoomBook/internal/domain/input"
	"github.com/qrave1/RoomBook/internal/domain/models"
	"github.com/qrave1/RoomBook/internal/domain/output"
	"github.com/qrave1/RoomBook/internal/infra/adapters/postgres/repository"
)

// RoomUsecase - каталог комнат. Права администратора проверяются на уровне HTTP.
type RoomUsecase interface {
	ListRooms(ctx context.Context) ([]*models.Room, error)
	RoomsByArea(ctx context.Context) ([]models.AreaRooms, error)
	GetRoom(ctx context.Context, id string) (*models.Room, error)

	UpdateRoom(ctx context.Context, in *input.UpdateRoomInput) (*models.Room, error)
	ImportRooms(ctx context.Context, rows []input.RoomImportRow) (*output.ImportResult, error)
}

type roomUsecase struct {
	roomRepo     repository.RoomRepository
	storeTimeout time.Duration
}

func NewRoomUsecase(roomRepo repository.RoomRepository, storeTimeout time.Duration) RoomUsecase {
	return &roomUsecase{roomRepo: roomRepo, storeTimeout: storeTimeout}
}

func (uc *roomUsecase) ListRooms(ctx context.Context) ([]*models.Room, error) {
	ctx, cancel := withStoreTimeout(ctx, uc.storeTimeout)
	defer cancel()

	rooms, err := uc.roomRepo.List(ctx)
	if err != nil {
		return nil, errs.Classify(fmt.Errorf("list rooms: %w", err))
	}

	return rooms, nil
}

func (uc *roomUsecase) RoomsByArea(ctx context.Context) ([]models.AreaRooms, error) {
	rooms, err := uc.ListRooms(ctx)
	if err != nil {
		return nil, err
	}

	return models.GroupByArea(rooms), nil
}

func (uc *roomUsecase) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	ctx, cancel := withStoreTimeout(ctx, uc.storeTimeout)
	defer cancel()

	room, err := uc.roomRepo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.Wrap(errs.ErrNotFound, err, fmt.Sprintf("room %q not found", id))
		}

		return nil, errs.Classify(fmt.Errorf("get room: %w", err))
	}

	return room, nil
}

func (uc *roomUsecase) UpdateRoom(ctx context.Context, in *input.UpdateRoomInput) (*models.Room, error) {
	room, err := uc.GetRoom(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		room.Name = strings.TrimSpace(*in.Name)
	}
	if in.Capacity != nil {
		room.Capacity = *in.Capacity
	}
	if in.Area != nil {
		area, ok := models.ParseArea(*in.Area)
		if !ok {
			return nil, errs.Validation("unknown area %q", *in.Area)
		}
		room.Area = area
	}
	if in.Amenities != nil {
		room.Amenities = trimAll(in.Amenities)
	}
	if in.Description != nil {
		room.Description = strings.TrimSpace(*in.Description)
	}

	switch {
	case in.ClearLayout:
		room.Layout = nil
	case in.Layout != nil:
		room.Layout = &models.Layout{X: in.Layout.X, Y: in.Layout.Y, Width: in.Layout.Width, Height: in.Layout.Height}
	}

	if err := room.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := withStoreTimeout(ctx, uc.storeTimeout)
	defer cancel()

	if err := uc.roomRepo.Update(ctx, room); err != nil {
		return nil, errs.Classify(fmt.Errorf("update room: %w", err))
	}

	slog.Info("room updated", slog.String(constant.RoomID, room.ID))

	return room, nil
}

// ImportRooms делает upsert по id для каждой строки. Невалидные строки пропускаются и попадают в Skipped,
// ошибка хранилища прерывает импорт и возвращается вместе с частичным результатом.
func (uc *roomUsecase) ImportRooms(ctx context.Context, rows []input.RoomImportRow) (*output.ImportResult, error) {
	if len(rows) == 0 {
		return nil, errs.Validation("no rows to import")
	}

	result := &output.ImportResult{Skipped: make([]output.SkippedRow, 0)}

	for _, row := range rows {
		room, err := normalizeRow(row)
		if err != nil {
			result.Skipped = append(result.Skipped, output.SkippedRow{Line: row.Line, Error: errs.Message(err)})
			continue
		}

		inserted, err := uc.upsert(ctx, room)
		if err != nil {
			if errs.KindOf(err) == errs.ErrTransient || errs.KindOf(err) == errs.ErrFatal {
				return result, fmt.Errorf("import line %d: %w", row.Line, err)
			}

			result.Skipped = append(result.Skipped, output.SkippedRow{Line: row.Line, Error: errs.Message(err)})
			continue
		}

		if inserted {
			result.Created++
		} else {
			result.Updated++
		}
	}

	slog.Info(
		"rooms imported",
		slog.Int("created", result.Created),
		slog.Int("updated", result.Updated),
		slog.Int("skipped", len(result.Skipped)),
	)

	return result, nil
}

func (uc *roomUsecase) upsert(ctx context.Context, room *models.Room) (bool, error) {
	ctx, cancel := withStoreTimeout(ctx, uc.storeTimeout)
	defer cancel()

	inserted, err := uc.roomRepo.Upsert(ctx, room)
	if err != nil {
		return false, errs.Classify(fmt.Errorf("upsert room %s: %w", room.ID, err))
	}

	return inserted, nil
}

// normalizeRow применяет значения по умолчанию из формата импорта
func normalizeRow(row input.RoomImportRow) (*models.Room, error) {
	id := strings.TrimSpace(row.ID)
	name := strings.TrimSpace(row.Name)

	if id == "" && name == "" {
		return nil, errs.Validation("row needs an id or a name")
	}
	if id == "" {
		id = slug.Make(name)
	}
	if name == "" {
		name = "Room " + id
	}

	capacity, ok, err := parseCell(row.Capacity)
	if err != nil {
		return nil, errs.Validation("capacity: %v", err)
	}
	if !ok {
		return nil, errs.Validation("capacity is required")
	}

	area := models.AreaPastorie
	if strings.TrimSpace(row.Area) != "" {
		a, ok := models.ParseArea(row.Area)
		if !ok {
			return nil, errs.Validation("unknown area %q", row.Area)
		}
		area = a
	}

	layout, err := parseLayout(row)
	if err != nil {
		return nil, err
	}

	room := &models.Room{
		ID:          id,
		Name:        name,
		Capacity:    capacity,
		Area:        area,
		Amenities:   splitAmenities(row.Amenities),
		Description: strings.TrimSpace(row.Description),
		Layout:      layout,
	}

	if err := room.Validate(); err != nil {
		return nil, err
	}

	return room, nil
}

// parseLayout - либо все четыре значения, либо ни одного
func parseLayout(row input.RoomImportRow) (*models.Layout, error) {
	cells := []struct {
		name string
		raw  string
	}{
		{"x", row.X},
		{"y", row.Y},
		{"width", row.Width},
		{"height", row.Height},
	}

	values := make([]int, 0, len(cells))
	for _, c := range cells {
		n, ok, err := parseCell(c.raw)
		if err != nil {
			return nil, errs.Validation("%s: %v", c.name, err)
		}
		if ok {
			values = append(values, n)
		}
	}

	switch len(values) {
	case 0:
		return nil, nil
	case len(cells):
		return &models.Layout{X: values[0], Y: values[1], Width: values[2], Height: values[3]}, nil
	default:
		return nil, errs.Validation("layout needs x, y, width and height together")
	}
}

// parseCell - пустая ячейка это "нет значения", а не ошибка
func parseCell(s string) (int, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}

	if n, err := strconv.Atoi(s); err == nil {
		return n, true, nil
	}

	// числовые ячейки иногда приходят как "12.0"
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, true, fmt.Errorf("%q is not a whole number", s)
	}

	return int(f), true, nil
}

func splitAmenities(s string) models.Amenities {
	out := models.Amenities{}

	for _, a := range strings.Split(s, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}

	return out
}

func trimAll(in []string) models.Amenities {
	out := make(models.Amenities, 0, len(in))

	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}

	return out
}
