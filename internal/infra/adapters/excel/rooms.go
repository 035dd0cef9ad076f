package excel

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/qrave1/RoomBook/internal/domain/errs"
	"github.com/qrave1/RoomBook/internal/domain/input"
	"github.com/qrave1/RoomBook/internal/domain/models"
)

const sheetName = "Rooms"

// RoomHeader - колонки файла импорта. Порядок в файле может быть любым.
var RoomHeader = []string{"id", "name", "capacity", "area", "amenities", "description", "x", "y", "width", "height"}

// ReadRooms читает первый лист. Первая непустая строка - заголовок, пустые строки пропускаются.
func ReadRooms(r io.Reader) ([]input.RoomImportRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errs.Wrap(errs.ErrValidation, err, "unreadable spreadsheet")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errs.Validation("spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	var (
		columns map[string]int
		out     []input.RoomImportRow
	)

	for i, row := range rows {
		if isBlank(row) {
			continue
		}

		if columns == nil {
			columns = headerIndex(row)
			if _, ok := columns["name"]; !ok {
				if _, ok := columns["id"]; !ok {
					return nil, errs.Validation("header row must contain an id or name column")
				}
			}
			continue
		}

		cell := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		out = append(out, input.RoomImportRow{
			Line:        i + 1,
			ID:          cell("id"),
			Name:        cell("name"),
			Capacity:    cell("capacity"),
			Area:        cell("area"),
			Amenities:   cell("amenities"),
			Description: cell("description"),
			X:           cell("x"),
			Y:           cell("y"),
			Width:       cell("width"),
			Height:      cell("height"),
		})
	}

	if columns == nil {
		return nil, errs.Validation("spreadsheet is empty")
	}

	return out, nil
}

// WriteRooms пишет файл в формате импорта: заголовок и по строке на комнату.
// Без комнат получается пустой шаблон.
func WriteRooms(w io.Writer, rooms []*models.Room) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(RoomHeader))
	for i, h := range RoomHeader {
		header[i] = h
	}

	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetRowStyle(sheetName, 1, 1, style); err != nil {
		return fmt.Errorf("set header style: %w", err)
	}

	for i, room := range rooms {
		row := []any{
			room.ID,
			room.Name,
			room.Capacity,
			string(room.Area),
			strings.Join(room.Amenities, ", "),
			room.Description,
		}

		if room.Layout != nil {
			row = append(row, room.Layout.X, room.Layout.Y, room.Layout.Width, room.Layout.Height)
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("convert coordinates: %w", err)
		}

		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write room %s: %w", room.ID, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write spreadsheet: %w", err)
	}

	return nil
}

func headerIndex(row []string) map[string]int {
	columns := make(map[string]int, len(row))

	for i, h := range row {
		key := strings.ToLower(strings.TrimSpace(h))
		if key == "" {
			continue
		}
		if _, dup := columns[key]; !dup {
			columns[key] = i
		}
	}

	return columns
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}
