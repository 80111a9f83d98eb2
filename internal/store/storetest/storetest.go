// Package storetest provides in-memory store implementations for tests.
package storetest

import (
	"context"
	"sync"
	"time"

	"github.com/duetapp/duet-backend/internal/domain"
	"github.com/duetapp/duet-backend/internal/store"
)

// Queues is an in-memory QueueStore.
type Queues struct {
	mu sync.Mutex
	q  map[domain.MatchType][]string
}

func NewQueues() *Queues {
	return &Queues{q: make(map[domain.MatchType][]string)}
}

func (s *Queues) Enqueue(_ context.Context, matchType domain.MatchType, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.q[matchType] = append(s.q[matchType], userID)
	return nil
}

func (s *Queues) PopHead(_ context.Context, matchType domain.MatchType) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.q[matchType]
	if len(q) == 0 {
		return "", nil
	}
	s.q[matchType] = q[1:]
	return q[0], nil
}

func (s *Queues) PushHead(_ context.Context, matchType domain.MatchType, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.q[matchType] = append([]string{userID}, s.q[matchType]...)
	return nil
}

func (s *Queues) Peek(_ context.Context, matchType domain.MatchType, n int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.q[matchType]
	if n > len(q) {
		n = len(q)
	}
	out := make([]string, n)
	copy(out, q[:n])
	return out, nil
}

func (s *Queues) Remove(_ context.Context, matchType domain.MatchType, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.q[matchType]
	for i, id := range q {
		if id == userID {
			s.q[matchType] = append(q[:i:i], q[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// Rooms is an in-memory RoomStore.
type Rooms struct {
	mu      sync.Mutex
	rooms   map[string]*domain.Room
	present map[string]map[string]struct{}
	attrs   map[string]map[string]string
	created map[string]time.Time
	purged  []string
}

func NewRooms() *Rooms {
	return &Rooms{
		rooms:   make(map[string]*domain.Room),
		present: make(map[string]map[string]struct{}),
		attrs:   make(map[string]map[string]string),
		created: make(map[string]time.Time),
	}
}

func (s *Rooms) Create(_ context.Context, room *domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *room
	s.rooms[room.ID] = &cp
	s.created[room.ID] = time.Now()
	return nil
}

func (s *Rooms) Get(_ context.Context, roomID string) (*domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	cp := *room
	return &cp, nil
}

func (s *Rooms) IsMember(_ context.Context, roomID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return false, nil
	}
	return room.HasUser(userID), nil
}

func (s *Rooms) Join(_ context.Context, roomID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.present[roomID] == nil {
		s.present[roomID] = make(map[string]struct{})
	}
	s.present[roomID][userID] = struct{}{}
	return nil
}

func (s *Rooms) Leave(_ context.Context, roomID, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.present[roomID], userID)
	return len(s.present[roomID]), nil
}

func (s *Rooms) Present(_ context.Context, roomID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for id := range s.present[roomID] {
		out = append(out, id)
	}
	return out, nil
}

func (s *Rooms) SetAttr(_ context.Context, roomID, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attrs[roomID] == nil {
		s.attrs[roomID] = make(map[string]string)
	}
	s.attrs[roomID][field] = value
	return nil
}

func (s *Rooms) Attr(_ context.Context, roomID, field string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attrs[roomID][field], nil
}

func (s *Rooms) ClearAttr(_ context.Context, roomID, field string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attrs[roomID], field)
	return nil
}

func (s *Rooms) Purge(_ context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, roomID)
	delete(s.present, roomID)
	delete(s.attrs, roomID)
	delete(s.created, roomID)
	s.purged = append(s.purged, roomID)
	return nil
}

func (s *Rooms) SweepExpired(ctx context.Context, maxAge time.Duration) ([]string, error) {
	s.mu.Lock()
	cutoff := time.Now().Add(-maxAge)
	var expired []string
	for id, at := range s.created {
		if at.Before(cutoff) {
			expired = append(expired, id)
		}
	}
	s.mu.Unlock()
	for _, id := range expired {
		_ = s.Purge(ctx, id)
	}
	return expired, nil
}

// Purged lists room IDs destroyed so far.
func (s *Rooms) Purged() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.purged...)
}

// Votes is an in-memory VoteStore.
type Votes struct {
	mu sync.Mutex
	v  map[string]map[string]bool
}

func NewVotes() *Votes {
	return &Votes{v: make(map[string]map[string]bool)}
}

func (s *Votes) key(kind store.VoteKind, roomID string) string {
	return roomID + "/" + string(kind)
}

func (s *Votes) Set(_ context.Context, kind store.VoteKind, roomID, userID string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := s.key(kind, roomID)
	if s.v[k] == nil {
		s.v[k] = make(map[string]bool)
	}
	s.v[k][userID] = value
	return nil
}

func (s *Votes) All(_ context.Context, kind store.VoteKind, roomID string) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]bool)
	for id, v := range s.v[s.key(kind, roomID)] {
		out[id] = v
	}
	return out, nil
}

func (s *Votes) ClearUser(_ context.Context, kind store.VoteKind, roomID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.v[s.key(kind, roomID)], userID)
	return nil
}

func (s *Votes) Clear(_ context.Context, kind store.VoteKind, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.v, s.key(kind, roomID))
	return nil
}

// Games is an in-memory GameStore.
type Games struct {
	mu sync.Mutex
	g  map[string][]byte
}

func NewGames() *Games {
	return &Games{g: make(map[string][]byte)}
}

func (s *Games) Save(_ context.Context, roomID string, state []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.g[roomID] = append([]byte(nil), state...)
	return nil
}

func (s *Games) Load(_ context.Context, roomID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.g[roomID]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), state...), nil
}

func (s *Games) Delete(_ context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.g, roomID)
	return nil
}

// Prompts is an in-memory PromptStore.
type Prompts struct {
	mu sync.Mutex
	p  map[string][]string
}

func NewPrompts() *Prompts {
	return &Prompts{p: make(map[string][]string)}
}

func (s *Prompts) Add(_ context.Context, roomID, prompt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p[roomID] = append(s.p[roomID], prompt)
	return nil
}

func (s *Prompts) All(_ context.Context, roomID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.p[roomID]...), nil
}

func (s *Prompts) Delete(_ context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.p, roomID)
	return nil
}

// Invites is an in-memory InviteStore.
type Invites struct {
	mu sync.Mutex
	i  map[string]*store.DirectInvite
}

func NewInvites() *Invites {
	return &Invites{i: make(map[string]*store.DirectInvite)}
}

func (s *Invites) Save(_ context.Context, invite *store.DirectInvite, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *invite
	s.i[invite.ID] = &cp
	return nil
}

func (s *Invites) Load(_ context.Context, inviteID string) (*store.DirectInvite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	invite, ok := s.i[inviteID]
	if !ok {
		return nil, domain.ErrInviteNotFound
	}
	cp := *invite
	return &cp, nil
}

func (s *Invites) Take(_ context.Context, inviteID string) (*store.DirectInvite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	invite, ok := s.i[inviteID]
	if !ok {
		return nil, domain.ErrInviteNotFound
	}
	delete(s.i, inviteID)
	cp := *invite
	return &cp, nil
}

// Published is one recorded broker publication.
type Published struct {
	Channel string // "room:<id>" or "user:<id>"
	Event   store.Event
}

// Broker records publications and fans them out to local subscribers.
type Broker struct {
	mu     sync.Mutex
	log    []Published
	roomCh map[string][]chan store.Event
	userCh map[string][]chan store.Event
}

func NewBroker() *Broker {
	return &Broker{
		roomCh: make(map[string][]chan store.Event),
		userCh: make(map[string][]chan store.Event),
	}
}

func (b *Broker) PublishRoom(_ context.Context, roomID string, ev store.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log = append(b.log, Published{Channel: "room:" + roomID, Event: ev})
	for _, ch := range b.roomCh[roomID] {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

func (b *Broker) PublishUser(_ context.Context, userID string, ev store.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log = append(b.log, Published{Channel: "user:" + userID, Event: ev})
	for _, ch := range b.userCh[userID] {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

func (b *Broker) SubscribeRoom(_ context.Context, roomID string) (<-chan store.Event, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan store.Event, 32)
	b.roomCh[roomID] = append(b.roomCh[roomID], ch)
	return ch, func() {}, nil
}

func (b *Broker) SubscribeUser(_ context.Context, userID string) (<-chan store.Event, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan store.Event, 32)
	b.userCh[userID] = append(b.userCh[userID], ch)
	return ch, func() {}, nil
}

// Events returns every event published on the given channel so far.
func (b *Broker) Events(channel string) []store.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []store.Event
	for _, p := range b.log {
		if p.Channel == channel {
			out = append(out, p.Event)
		}
	}
	return out
}

// LastEvent returns the most recent event on the channel, or false.
func (b *Broker) LastEvent(channel string) (store.Event, bool) {
	events := b.Events(channel)
	if len(events) == 0 {
		return store.Event{}, false
	}
	return events[len(events)-1], true
}
