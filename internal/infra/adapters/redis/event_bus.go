package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/qrave1/RoomBook/internal/application/constant"
	"github.com/qrave1/RoomBook/internal/domain/events"
)

// EventBus раздаёт события всем инстансам сервиса через redis pub/sub
type EventBus struct {
	client  *goredis.Client
	channel string
}

func NewEventBus(client *goredis.Client, channel string) *EventBus {
	return &EventBus{client: client, channel: channel}
}

func (b *EventBus) Publish(ctx context.Context, msg events.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	return nil
}

// Subscribe блокируется до отмены ctx и передаёт каждое событие в handler.
func (b *EventBus) Subscribe(ctx context.Context, handler func(events.Message)) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	// ждём подтверждения подписки, иначе первые события могут потеряться
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}

	ch := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}

			var msg events.Message
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				slog.Error("unmarshal redis event", slog.Any(constant.Error, err))
				continue
			}

			handler(msg)
		}
	}
}
