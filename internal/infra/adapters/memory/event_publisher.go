package memory

import (
	"context"

	"github.com/qrave1/RoomBook/internal/domain/events"
)

// LocalPublisher рассылает события подключениям этого процесса.
// Publish только ставит сообщение в очереди подключений и не ждёт записи в сокеты.
type LocalPublisher struct {
	wsConnRepo WebsocketConnectionRepository
}

func NewLocalPublisher(wsConnRepo WebsocketConnectionRepository) *LocalPublisher {
	return &LocalPublisher{wsConnRepo: wsConnRepo}
}

func (p *LocalPublisher) Publish(ctx context.Context, msg events.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.wsConnRepo.Broadcast(msg)

	return nil
}
