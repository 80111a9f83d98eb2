package signaling

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/duetapp/duet-backend/internal/domain"
	"github.com/duetapp/duet-backend/internal/store"
	"github.com/rs/zerolog/log"
)

// The two tie-break rules below share one total order over peer IDs
// (plain lexicographic comparison). They must stay mutually consistent:
// the peer that initiates is exactly the peer whose offer survives glare.

// ShouldInitiateOffer reports whether selfID should create the SDP offer
// upon learning the peer is ready. Only the lexicographically greater
// peer initiates, so at most one side offers in the common case.
func ShouldInitiateOffer(selfID, peerID string) bool {
	return selfID > peerID
}

// ShouldRollBackOnGlare reports whether selfID, holding a local offer and
// receiving a simultaneous offer from peerID, must roll back its own and
// accept the incoming one. The greater ID's offer always wins; the
// smaller side rolls back, the greater side ignores the incoming offer.
func ShouldRollBackOnGlare(selfID, peerID string) bool {
	return selfID < peerID
}

// Relay forwards offer/answer/ICE payloads between the two members of a
// room. It keeps no signaling state of its own: ICE candidates arriving
// before a remote description are buffered client-side, so the server is
// a pure membership-gated pass-through.
type Relay struct {
	rooms  store.RoomStore
	broker store.Broker
}

func NewRelay(rooms store.RoomStore, broker store.Broker) *Relay {
	return &Relay{rooms: rooms, broker: broker}
}

// Authorize rejects forged or stale (userID, roomID) pairs before any
// other protocol step runs.
func (r *Relay) Authorize(ctx context.Context, roomID, userID string) error {
	ok, err := r.rooms.IsMember(ctx, roomID, userID)
	if err != nil {
		return fmt.Errorf("authorize %s for room %s: %w", userID, roomID, err)
	}
	if !ok {
		return domain.ErrNotRoomMember
	}
	return nil
}

// Join records presence and announces the newcomer to members already in
// the room. It returns the members present before the join so the caller
// can send the newcomer a user-ready for each of them; whichever peer
// arrives second always learns about the first, making join order
// commutative.
func (r *Relay) Join(ctx context.Context, roomID, userID string) ([]string, error) {
	if err := r.Authorize(ctx, roomID, userID); err != nil {
		return nil, err
	}

	present, err := r.rooms.Present(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if err := r.rooms.Join(ctx, roomID, userID); err != nil {
		return nil, err
	}

	ev, err := store.NewEvent("user-ready", map[string]string{"userId": userID})
	if err != nil {
		return nil, err
	}
	ev.From = userID
	if err := r.broker.PublishRoom(ctx, roomID, ev); err != nil {
		return nil, err
	}

	others := make([]string, 0, len(present))
	for _, member := range present {
		if member != userID {
			others = append(others, member)
		}
	}
	return others, nil
}

// Forward relays one signaling payload (offer, answer or ice-candidate)
// to the room, annotated with the sender. Membership is re-validated on
// every call because a relay can race a same-tick leave-room.
func (r *Relay) Forward(ctx context.Context, roomID, fromID, event string, payload json.RawMessage) error {
	if err := r.Authorize(ctx, roomID, fromID); err != nil {
		return err
	}
	ev := store.Event{Event: event, Data: payload, From: fromID}
	if err := r.broker.PublishRoom(ctx, roomID, ev); err != nil {
		return err
	}
	log.Debug().Str("room", roomID).Str("from", fromID).Str("event", event).Msg("relayed signaling payload")
	return nil
}
