package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/qrave1/RoomBook/internal/domain/models"
)

// ProfileRepository - источник личностей в той же базе (таблица profiles)
type ProfileRepository interface {
	Resolve(ctx context.Context, email string) (*models.Profile, error)
}

type profileRepo struct {
	db *sqlx.DB
}

func NewProfileRepo(db *sqlx.DB) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) Resolve(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile

	err := r.db.GetContext(
		ctx,
		&profile,
		"SELECT id, email, role, created_at FROM profiles WHERE lower(email) = lower($1)",
		strings.TrimSpace(email),
	)
	if err != nil {
		return nil, classify(err, "resolve profile")
	}

	return &profile, nil
}
