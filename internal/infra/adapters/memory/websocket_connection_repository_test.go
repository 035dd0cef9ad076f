package memory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrave1/RoomBook/internal/domain/events"
)

// dialPair поднимает сервер, регистрирует серверную сторону в repo и возвращает клиента.
func dialPair(t *testing.T, repo WebsocketConnectionRepository) (uuid.UUID, *websocket.Conn) {
	t.Helper()

	connID := uuid.New()
	registered := make(chan struct{})
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		repo.Add(connID, ws)
		close(registered)
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	select {
	case <-registered:
	case <-time.After(2 * time.Second):
		t.Fatal("server side was not registered")
	}

	return connID, client
}

func TestWSConnectionRepository_BroadcastAndRemove(t *testing.T) {
	repo := NewWSConnectionRepository()

	_, c1 := dialPair(t, repo)
	id2, c2 := dialPair(t, repo)
	require.Equal(t, 2, repo.Count())

	msg, err := events.New(events.TypeBookingCancelled, events.BookingCancelledEvent{RoomID: "room-1"})
	require.NoError(t, err)

	require.NoError(t, NewLocalPublisher(repo).Publish(context.Background(), msg))

	for _, c := range []*websocket.Conn{c1, c2} {
		var got events.Message
		require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
		require.NoError(t, c.ReadJSON(&got))
		assert.Equal(t, events.TypeBookingCancelled, got.Type)
	}

	repo.Remove(id2)
	assert.Equal(t, 1, repo.Count())
	assert.Error(t, repo.Write(id2, msg))
}

func TestWSConnectionRepository_StalledClientDoesNotBlockPublish(t *testing.T) {
	repo := newWSConnectionRepository(4, 200*time.Millisecond)

	// клиент не читает, буфер сокета быстро забивается
	_, _ = dialPair(t, repo)
	require.Equal(t, 1, repo.Count())

	msg, err := events.New(events.TypeRoomStatus, map[string]string{"blob": strings.Repeat("x", 4<<20)})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	pub := NewLocalPublisher(repo)
	started := time.Now()
	for i := 0; i < 8; i++ {
		require.NoError(t, pub.Publish(ctx, msg))
	}
	assert.Less(t, time.Since(started), 500*time.Millisecond)

	assert.Eventually(t, func() bool { return repo.Count() == 0 }, 3*time.Second, 20*time.Millisecond)
}

func TestLocalPublisher_CancelledContext(t *testing.T) {
	repo := NewWSConnectionRepository()
	_, _ = dialPair(t, repo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	msg, err := events.New(events.TypePong, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, NewLocalPublisher(repo).Publish(ctx, msg), context.Canceled)
	assert.Equal(t, 1, repo.Count())
}

func TestWSConnectionRepository_WriteAfterRemove(t *testing.T) {
	repo := NewWSConnectionRepository()
	id, client := dialPair(t, repo)

	repo.Remove(id)
	assert.Equal(t, 0, repo.Count())
	assert.Error(t, repo.Write(id, map[string]string{"a": "b"}))

	// серверная сторона закрыта, клиент получает ошибку чтения
	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := client.ReadMessage()
	assert.Error(t, err)
}
