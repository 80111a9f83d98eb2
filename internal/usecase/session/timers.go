package session

import (
	"sync"
	"time"
)

// RoomTimers is the single-owner map of pending per-room timers. Keys are
// namespaced by the caller (e.g. "reconnect:<roomID>", "game:<roomID>").
// Set always cancels any timer already pending under the same key, and a
// cancelled timer never runs its callback even if it had already fired
// into the goroutine queue.
//
// Ownership is process-local: a timer is created by the process holding
// the room's active connection and does not survive a crash. The room
// max-age sweep is the recovery net for that case.
type RoomTimers struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewRoomTimers() *RoomTimers {
	return &RoomTimers{timers: make(map[string]*time.Timer)}
}

func (t *RoomTimers) Set(key string, d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if prev, ok := t.timers[key]; ok {
		prev.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		current, ok := t.timers[key]
		if !ok || current != timer {
			// Superseded or cancelled between firing and running.
			t.mu.Unlock()
			return
		}
		delete(t.timers, key)
		t.mu.Unlock()
		fn()
	})
	t.timers[key] = timer
}

// Cancel stops the pending timer under key, reporting whether one existed.
func (t *RoomTimers) Cancel(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	timer, ok := t.timers[key]
	if !ok {
		return false
	}
	timer.Stop()
	delete(t.timers, key)
	return true
}

func (t *RoomTimers) CancelAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for key, timer := range t.timers {
		timer.Stop()
		delete(t.timers, key)
	}
}
