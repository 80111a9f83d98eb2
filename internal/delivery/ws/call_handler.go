package ws

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/duetapp/duet-backend/internal/domain"
	"github.com/duetapp/duet-backend/internal/store"
	"github.com/duetapp/duet-backend/internal/usecase/minigame"
	"github.com/duetapp/duet-backend/internal/usecase/prompt"
	"github.com/duetapp/duet-backend/internal/usecase/session"
	"github.com/duetapp/duet-backend/internal/usecase/signaling"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// CallHandler owns the in-call websocket channel. Authorization failures
// get one error event and an immediate close; malformed or out-of-order
// game frames are dropped without feedback.
type CallHandler struct {
	relay    *signaling.Relay
	sessions *session.UseCase
	games    *minigame.Engine
	prompts  *prompt.UseCase
	broker   store.Broker
}

func NewCallHandler(
	relay *signaling.Relay,
	sessions *session.UseCase,
	games *minigame.Engine,
	prompts *prompt.UseCase,
	broker store.Broker,
) *CallHandler {
	return &CallHandler{
		relay:    relay,
		sessions: sessions,
		games:    games,
		prompts:  prompts,
		broker:   broker,
	}
}

func (h *CallHandler) Handle(c *gin.Context) {
	userID := c.GetString("user_id")
	roomID := c.Query("room_id")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("call upgrade failed")
		return
	}
	conn := newConn(ws)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go conn.writePump()

	if err := h.relay.Authorize(ctx, roomID, userID); err != nil {
		h.reject(conn, err)
		return
	}

	roomEvents, unsubRoom, err := h.broker.SubscribeRoom(ctx, roomID)
	if err != nil {
		h.reject(conn, err)
		return
	}
	defer unsubRoom()

	userEvents, unsubUser, err := h.broker.SubscribeUser(ctx, userID)
	if err != nil {
		h.reject(conn, err)
		return
	}
	defer unsubUser()

	others, err := h.relay.Join(ctx, roomID, userID)
	if err != nil {
		h.reject(conn, err)
		return
	}
	// The newcomer learns about members already present; they learned
	// about the newcomer through the published user-ready.
	for _, peer := range others {
		ev, evErr := store.NewEvent("user-ready", map[string]string{"userId": peer})
		if evErr == nil {
			conn.TrySend(ev)
		}
	}

	onBanned := func() {
		cancel()
		conn.Close()
	}
	go pipe(ctx, conn, userID, roomEvents, onBanned)
	go pipe(ctx, conn, userID, userEvents, onBanned)

	defer func() {
		if err := h.sessions.Leave(context.Background(), roomID, userID); err != nil && !errors.Is(err, domain.ErrRoomNotFound) {
			log.Error().Err(err).Str("room", roomID).Str("user_id", userID).Msg("leave on disconnect failed")
		}
		conn.Close()
	}()

	for {
		_, payload, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Str("user_id", userID).Msg("call socket closed")
			}
			return
		}
		ev, ok := decodeClientEvent(payload)
		if !ok {
			continue
		}
		if closed := h.dispatch(ctx, conn, roomID, userID, ev); closed {
			return
		}
	}
}

// dispatch routes one client frame. It returns true when the connection
// must terminate, either on explicit leave or on an authorization error.
func (h *CallHandler) dispatch(ctx context.Context, conn *conn, roomID, userID string, ev clientEvent) bool {
	var err error

	switch ev.Event {
	case "offer", "answer", "ice-candidate":
		err = h.relay.Forward(ctx, roomID, userID, ev.Event, ev.Data)

	case "leave-room":
		return true

	case "soft-leave":
		err = h.sessions.SoftLeave(ctx, roomID, userID)

	case "user-call-again":
		err = h.sessions.VoteCallAgain(ctx, roomID, userID)
	case "user-uncall":
		err = h.sessions.Uncall(ctx, roomID, userID)
	case "user-match":
		err = h.sessions.VoteMatch(ctx, roomID, userID)
	case "user-unmatch":
		err = h.sessions.Unmatch(ctx, roomID, userID)
	case "delete-match":
		err = h.sessions.DeleteMatch(ctx, roomID, userID)

	case "background-changed":
		var data struct {
			Background string `json:"background"`
		}
		if json.Unmarshal(ev.Data, &data) != nil {
			return false
		}
		err = h.sessions.SetBackground(ctx, roomID, userID, data.Background)

	case "conversation-prompt":
		err = h.prompts.NextPrompt(ctx, roomID, userID)

	case "game-request":
		gameID, ok := decodeGameID(ev.Data)
		if !ok {
			return false
		}
		err = h.games.RequestGame(ctx, roomID, userID, gameID)
	case "cancel-game-request":
		err = h.games.CancelRequest(ctx, roomID, userID)
	case "accept-game-request":
		gameID, ok := decodeGameID(ev.Data)
		if !ok {
			return false
		}
		err = h.games.StartGame(ctx, roomID, gameID)
	case "game-ended":
		err = h.games.EndGame(ctx, roomID)

	case "headsup-answer":
		var data struct {
			Answer *string `json:"answer"`
		}
		if json.Unmarshal(ev.Data, &data) != nil {
			return false
		}
		err = h.games.AnswerHeadsup(ctx, roomID, userID, data.Answer)

	case "tictactoe-move":
		var data struct {
			CellIndex int `json:"cellIndex"`
		}
		if json.Unmarshal(ev.Data, &data) != nil {
			return false
		}
		err = h.games.MoveTicTacToe(ctx, roomID, userID, data.CellIndex)

	case "twotruthslie-submit-statements":
		var data struct {
			Statements []string `json:"statements"`
			LieIndex   int      `json:"lieIndex"`
		}
		if json.Unmarshal(ev.Data, &data) != nil {
			return false
		}
		err = h.games.SubmitStatements(ctx, roomID, userID, data.Statements, data.LieIndex)

	case "twotruthslie-guess":
		var data struct {
			GuessedIndex int `json:"guessedIndex"`
		}
		if json.Unmarshal(ev.Data, &data) != nil {
			return false
		}
		err = h.games.GuessLie(ctx, roomID, userID, data.GuessedIndex)

	case "trivia-answer":
		var data struct {
			AnswerIndex int `json:"answerIndex"`
		}
		if json.Unmarshal(ev.Data, &data) != nil {
			return false
		}
		err = h.games.AnswerTrivia(ctx, roomID, userID, data.AnswerIndex)

	default:
		log.Debug().Str("event", ev.Event).Msg("unknown event on call channel")
		return false
	}

	if err != nil {
		if errors.Is(err, domain.ErrNotRoomMember) || errors.Is(err, domain.ErrRoomNotFound) {
			conn.sendError("not a member of this room")
			return true
		}
		log.Error().Err(err).Str("event", ev.Event).Str("room", roomID).Str("user_id", userID).Msg("call event failed")
	}
	return false
}

func decodeGameID(data json.RawMessage) (domain.GameID, bool) {
	var payload struct {
		GameID string `json:"gameId"`
	}
	if json.Unmarshal(data, &payload) != nil {
		return "", false
	}
	gameID := domain.GameID(payload.GameID)
	if !gameID.Valid() {
		return "", false
	}
	return gameID, true
}

func (h *CallHandler) reject(conn *conn, err error) {
	if errors.Is(err, domain.ErrNotRoomMember) || errors.Is(err, domain.ErrRoomNotFound) {
		conn.sendError("not a member of this room")
	} else {
		log.Error().Err(err).Msg("call channel setup failed")
		conn.sendError("internal error")
	}
	conn.Close()
}
