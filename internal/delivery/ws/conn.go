package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/duetapp/duet-backend/internal/store"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	writeTimeout  = 5 * time.Second
	sendQueueSize = 32
)

// clientEvent is the envelope every client frame arrives in.
type clientEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func decodeClientEvent(payload []byte) (clientEvent, bool) {
	var ev clientEvent
	if err := json.Unmarshal(payload, &ev); err != nil || ev.Event == "" {
		log.Debug().Err(err).Msg("malformed client frame")
		return clientEvent{}, false
	}
	return ev, true
}

// conn wraps one websocket with a buffered outbound queue. TrySend never
// blocks: a client that cannot drain its queue loses events rather than
// stalling the room.
type conn struct {
	ws *websocket.Conn

	mu     sync.Mutex
	send   chan store.Event
	closed bool
}

func newConn(ws *websocket.Conn) *conn {
	return &conn{
		ws:   ws,
		send: make(chan store.Event, sendQueueSize),
	}
}

func (c *conn) TrySend(ev store.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- ev:
	default:
		log.Warn().Str("event", ev.Event).Msg("client send queue full, dropping event")
	}
}

// Close stops accepting outbound events. writePump drains what is already
// queued, so an error event sent just before Close still reaches the
// client, then closes the underlying socket.
func (c *conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *conn) writePump() {
	defer c.ws.Close()
	for ev := range c.send {
		payload, err := json.Marshal(ev)
		if err != nil {
			log.Error().Err(err).Str("event", ev.Event).Msg("marshal outbound event")
			continue
		}
		if err := c.ws.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			return
		}
		if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout))
}

// sendError emits the only client-visible error shape and is always
// followed by connection termination.
func (c *conn) sendError(message string) {
	ev, err := store.NewEvent("error", map[string]string{"message": message})
	if err != nil {
		return
	}
	c.TrySend(ev)
}

// pipe forwards broker events into the connection queue. Events carrying
// the receiver's own ID in From are echoes of their own actions and are
// dropped here, which also implements the signaling echo guard.
func pipe(ctx context.Context, c *conn, userID string, events <-chan store.Event, onBanned func()) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.From != "" && ev.From == userID {
				continue
			}
			if ev.Event == "banned" && onBanned != nil {
				c.TrySend(ev)
				onBanned()
				return
			}
			c.TrySend(ev)
		}
	}
}
