package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/qrave1/RoomBook/internal/application/constant"
)

const (
	// sendBuffer - сколько сообщений может ждать отправки одному клиенту
	sendBuffer = 64
	// writeWait - сколько ждём запись одного сообщения в сокет
	writeWait = 10 * time.Second
)

var (
	errConnClosed = errors.New("websocket connection closed")
	errSlowClient = errors.New("websocket send buffer is full")
)

// WebsocketConnectionRepository интерфейс для работы с активными подключениями в памяти.
// Запись в сокеты асинхронная: у каждого подключения своя очередь и горутина-писатель,
// поэтому Write и Broadcast не ждут медленных клиентов.
type WebsocketConnectionRepository interface {
	Add(uuid.UUID, *websocket.Conn)
	Remove(uuid.UUID)

	Write(uuid.UUID, any) error
	// Broadcast ставит payload в очередь всем подключениям. Клиент с переполненной очередью отключается.
	Broadcast(any)
	Count() int
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

// stop закрывает сокет, после чего читающий handler этого подключения завершится
func (c *wsClient) stop() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *wsClient) enqueue(msg []byte) error {
	select {
	case <-c.done:
		return errConnClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	case <-c.done:
		return errConnClosed
	default:
		return errSlowClient
	}
}

func (c *wsClient) writeLoop(writeWait time.Duration, onFail func(error)) {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				onFail(err)
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				onFail(err)
				return
			}
		}
	}
}

type wsConnectionRepository struct {
	// wsConns хранит map[conn_id]*wsClient
	wsConns map[uuid.UUID]*wsClient

	bufferSize int
	writeWait  time.Duration

	mu sync.RWMutex
}

func NewWSConnectionRepository() WebsocketConnectionRepository {
	return newWSConnectionRepository(sendBuffer, writeWait)
}

func newWSConnectionRepository(bufferSize int, writeWait time.Duration) *wsConnectionRepository {
	return &wsConnectionRepository{
		wsConns:    make(map[uuid.UUID]*wsClient, 10),
		bufferSize: bufferSize,
		writeWait:  writeWait,
	}
}

func (w *wsConnectionRepository) Add(connID uuid.UUID, conn *websocket.Conn) {
	c := &wsClient{
		conn: conn,
		send: make(chan []byte, w.bufferSize),
		done: make(chan struct{}),
	}

	w.mu.Lock()
	old := w.wsConns[connID]
	w.wsConns[connID] = c
	w.mu.Unlock()

	if old != nil {
		old.stop()
	}

	go c.writeLoop(w.writeWait, func(err error) {
		slog.Warn("write to websocket", slog.Any(constant.Error, err), slog.Any(constant.ConnID, connID))
		w.drop(connID, c)
	})
}

func (w *wsConnectionRepository) Remove(connID uuid.UUID) {
	w.mu.Lock()
	c, ok := w.wsConns[connID]
	delete(w.wsConns, connID)
	w.mu.Unlock()

	if ok {
		c.stop()
	}
}

// drop удаляет именно этого клиента: под тем же id мог уже появиться новый
func (w *wsConnectionRepository) drop(connID uuid.UUID, c *wsClient) {
	w.mu.Lock()
	if w.wsConns[connID] == c {
		delete(w.wsConns, connID)
	}
	w.mu.Unlock()

	c.stop()
}

func (w *wsConnectionRepository) Write(connID uuid.UUID, payload any) error {
	w.mu.RLock()
	c, ok := w.wsConns[connID]
	w.mu.RUnlock()

	if !ok {
		return fmt.Errorf("websocket %s not found", connID)
	}

	msg, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal websocket payload: %w", err)
	}

	if err = c.enqueue(msg); err != nil {
		if errors.Is(err, errSlowClient) {
			w.drop(connID, c)
		}

		return fmt.Errorf("write to websocket %s: %w", connID, err)
	}

	return nil
}

func (w *wsConnectionRepository) Broadcast(payload any) {
	msg, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal broadcast payload", slog.Any(constant.Error, err))
		return
	}

	w.mu.RLock()
	targets := make(map[uuid.UUID]*wsClient, len(w.wsConns))
	for id, c := range w.wsConns {
		targets[id] = c
	}
	w.mu.RUnlock()

	for id, c := range targets {
		err := c.enqueue(msg)
		if err == nil {
			continue
		}

		slog.Warn("broadcast to websocket", slog.Any(constant.Error, err), slog.Any(constant.ConnID, id))

		if errors.Is(err, errSlowClient) {
			w.drop(id, c)
		}
	}
}

func (w *wsConnectionRepository) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return len(w.wsConns)
}
