package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/duetapp/duet-backend/internal/domain"
	"github.com/duetapp/duet-backend/internal/store"
	"github.com/duetapp/duet-backend/internal/usecase/matchmaking"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// MatchmakingHandler owns the find-room websocket channel: it enqueues the
// caller, keeps the connection open until a room-found event arrives on the
// user's channel, and withdraws the request when the socket drops.
type MatchmakingHandler struct {
	matchmaking *matchmaking.UseCase
	broker      store.Broker
}

func NewMatchmakingHandler(mm *matchmaking.UseCase, broker store.Broker) *MatchmakingHandler {
	return &MatchmakingHandler{matchmaking: mm, broker: broker}
}

func (h *MatchmakingHandler) Handle(c *gin.Context) {
	userID := c.GetString("user_id")
	matchType := domain.MatchType(c.Query("match_type"))
	if !matchType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid match_type"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("matchmaking upgrade failed")
		return
	}
	conn := newConn(ws)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go conn.writePump()

	// Subscribe before enqueueing so a room found by another worker
	// between the two calls is not missed.
	events, unsub, err := h.broker.SubscribeUser(ctx, userID)
	if err != nil {
		conn.sendError("internal error")
		conn.Close()
		return
	}
	defer unsub()

	if err := h.matchmaking.Enqueue(ctx, userID, matchType); err != nil {
		if errors.Is(err, domain.ErrUserBanned) {
			conn.sendError("account banned")
		} else {
			log.Error().Err(err).Str("user_id", userID).Msg("enqueue failed")
			conn.sendError("internal error")
		}
		conn.Close()
		return
	}

	go pipe(ctx, conn, userID, events, func() { conn.Close() })

	// The pairing attempt runs on its own context: it may pop another
	// waiting user off the queue, and a disconnect of this socket must
	// not abort the store calls that pair or restore that user.
	go func() {
		pairCtx, pairCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pairCancel()
		if _, err := h.matchmaking.TryPair(pairCtx, matchType); err != nil {
			log.Error().Err(err).Str("match_type", string(matchType)).Msg("pairing attempt failed")
		}
	}()

	defer func() {
		if err := h.matchmaking.Cancel(context.Background(), userID, matchType); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("dequeue on disconnect failed")
		}
		conn.Close()
	}()

	for {
		_, payload, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Str("user_id", userID).Msg("matchmaking socket closed")
			}
			return
		}
		ev, ok := decodeClientEvent(payload)
		if !ok {
			continue
		}
		switch ev.Event {
		case "cancel-find-room":
			if err := h.matchmaking.Cancel(ctx, userID, matchType); err != nil {
				log.Error().Err(err).Str("user_id", userID).Msg("cancel find room failed")
			}
			return
		default:
			log.Debug().Str("event", ev.Event).Msg("unexpected event on matchmaking channel")
		}
	}
}
