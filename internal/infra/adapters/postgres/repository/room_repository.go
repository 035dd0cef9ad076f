package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/qrave1/RoomBook/internal/domain/errs"
	"github.com/qrave1/RoomBook/internal/domain/models"
)

const roomColumns = "id, name, capacity, area, amenities, description, layout, created_at, updated_at"

type RoomRepository interface {
	List(ctx context.Context) ([]*models.Room, error)
	GetByID(ctx context.Context, id string) (*models.Room, error)
	Exists(ctx context.Context, id string) (bool, error)

	// Upsert вставляет или перезаписывает комнату по id. inserted = true, если строки не было.
	Upsert(ctx context.Context, room *models.Room) (inserted bool, err error)
	Update(ctx context.Context, room *models.Room) error
}

type roomRepo struct {
	db *sqlx.DB
}

func NewRoomRepo(db *sqlx.DB) RoomRepository {
	return &roomRepo{db: db}
}

func (r *roomRepo) List(ctx context.Context) ([]*models.Room, error) {
	rooms := make([]*models.Room, 0)

	if err := r.db.SelectContext(ctx, &rooms, "SELECT "+roomColumns+" FROM rooms ORDER BY name ASC"); err != nil {
		return nil, classify(err, "list rooms")
	}

	return rooms, nil
}

func (r *roomRepo) GetByID(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room

	if err := r.db.GetContext(ctx, &room, "SELECT "+roomColumns+" FROM rooms WHERE id = $1", id); err != nil {
		return nil, classify(err, "get room")
	}

	return &room, nil
}

func (r *roomRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool

	if err := r.db.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM rooms WHERE id = $1)", id); err != nil {
		return false, classify(err, "check room")
	}

	return exists, nil
}

func (r *roomRepo) Upsert(ctx context.Context, room *models.Room) (bool, error) {
	var inserted bool

	err := r.db.QueryRowxContext(
		ctx,
		`INSERT INTO rooms (id, name, capacity, area, amenities, description, layout)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			capacity = EXCLUDED.capacity,
			area = EXCLUDED.area,
			amenities = EXCLUDED.amenities,
			description = EXCLUDED.description,
			layout = EXCLUDED.layout,
			updated_at = now()
		RETURNING (xmax = 0) AS inserted`,
		room.ID,
		room.Name,
		room.Capacity,
		string(room.Area),
		room.Amenities,
		room.Description,
		room.Layout,
	).Scan(&inserted)
	if err != nil {
		return false, classify(err, "upsert room")
	}

	return inserted, nil
}

func (r *roomRepo) Update(ctx context.Context, room *models.Room) error {
	res, err := r.db.ExecContext(
		ctx,
		`UPDATE rooms
		SET name = $2, capacity = $3, area = $4, amenities = $5, description = $6, layout = $7, updated_at = now()
		WHERE id = $1`,
		room.ID,
		room.Name,
		room.Capacity,
		string(room.Area),
		room.Amenities,
		room.Description,
		room.Layout,
	)
	if err != nil {
		return classify(err, "update room")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return classify(err, "update room")
	}

	if n == 0 {
		return errs.NotFound("room %q not found", room.ID)
	}

	return nil
}
