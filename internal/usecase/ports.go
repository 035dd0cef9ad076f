package usecase

import (
	"context"

	"github.com/qrave1/RoomBook/internal/domain/events"
	"github.com/qrave1/RoomBook/internal/domain/models"
)

// IdentityResolver - email -> профиль. Неизвестный email это errs.ErrNotFound.
type IdentityResolver interface {
	Resolve(ctx context.Context, email string) (*models.Profile, error)
}

// EventPublisher доставляет события подключенным клиентам
type EventPublisher interface {
	Publish(ctx context.Context, msg events.Message) error
}
