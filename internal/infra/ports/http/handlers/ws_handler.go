package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/qrave1/RoomBook/internal/application/config"
	"github.com/qrave1/RoomBook/internal/application/constant"
	"github.com/qrave1/RoomBook/internal/application/metric"
	"github.com/qrave1/RoomBook/internal/domain/events"
	"github.com/qrave1/RoomBook/internal/infra/adapters/memory"
	"github.com/qrave1/RoomBook/internal/infra/appctx"
	"github.com/qrave1/RoomBook/internal/usecase"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	writeWait  = 10 * time.Second
)

type WebSocketHandler struct {
	upgrader *websocket.Upgrader

	wsRepo        memory.WebsocketConnectionRepository
	statusUsecase usecase.StatusUsecase

	now func() time.Time
}

func NewWebSocketHandler(
	cfg *config.Config,
	wsRepo memory.WebsocketConnectionRepository,
	statusUsecase usecase.StatusUsecase,
) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if cfg.Debug {
					return true
				}

				return r.Header.Get("Origin") == cfg.Domain
			},
		},
		wsRepo:        wsRepo,
		statusUsecase: statusUsecase,
		now:           time.Now,
	}
}

// Handle держит live-подключение: сразу шлёт срез занятости, дальше получает события броней
func (h *WebSocketHandler) Handle(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"WebSocket upgrade error",
			slog.Any(constant.Error, err),
		)
		return err
	}
	defer ws.Close()

	ctx := c.Request().Context()
	email, _ := appctx.Email(ctx)
	connID := uuid.New()

	h.wsRepo.Add(connID, ws)
	metric.SetWSActiveConnections(h.wsRepo.Count())
	defer func() {
		h.wsRepo.Remove(connID)
		metric.SetWSActiveConnections(h.wsRepo.Count())
	}()

	log := slog.With(slog.Any(constant.ConnID, connID), slog.String(constant.Email, email))

	if err = h.sendSnapshot(ctx, connID); err != nil {
		log.Error("send initial snapshot", slog.Any(constant.Error, err))
	}

	if err = ws.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return err
	}
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			select {
			case <-ticker.C:
				// WriteControl можно звать параллельно с остальными записями
				if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					log.Debug("ping failed", slog.Any(constant.Error, err))
					return
				}
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read error", slog.Any(constant.Error, err))
			}

			return nil
		}

		var msg events.Message
		if err = json.Unmarshal(raw, &msg); err != nil {
			log.Warn("unmarshal websocket message", slog.Any(constant.Error, err))
			continue
		}

		if err = h.handleMessage(ctx, connID, msg); err != nil {
			log.Warn("handle message", slog.Any(constant.Error, err), slog.String(constant.EventType, msg.Type))
		}
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, connID uuid.UUID, msg events.Message) error {
	switch msg.Type {
	case events.TypePing:
		pong, err := events.New(events.TypePong, nil)
		if err != nil {
			return err
		}

		return h.wsRepo.Write(connID, pong)

	case events.TypeSnapshot:
		return h.sendSnapshot(ctx, connID)

	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
}

func (h *WebSocketHandler) sendSnapshot(ctx context.Context, connID uuid.UUID) error {
	statuses, err := h.statusUsecase.Snapshot(ctx, h.now())
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	msg, err := events.New(events.TypeRoomStatus, events.RoomStatusEvent{Rooms: statuses})
	if err != nil {
		return err
	}

	return h.wsRepo.Write(connID, msg)
}
