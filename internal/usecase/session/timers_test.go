package session

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoomTimers(t *testing.T) {
	t.Run("fires after the duration", func(t *testing.T) {
		timers := NewRoomTimers()
		fired := make(chan struct{})
		timers.Set("a", 10*time.Millisecond, func() { close(fired) })

		select {
		case <-fired:
		case <-time.After(time.Second):
			t.Fatal("timer never fired")
		}
	})

	t.Run("cancel prevents the callback", func(t *testing.T) {
		timers := NewRoomTimers()
		var fired atomic.Bool
		timers.Set("a", 20*time.Millisecond, func() { fired.Store(true) })

		assert.True(t, timers.Cancel("a"))
		time.Sleep(50 * time.Millisecond)
		assert.False(t, fired.Load())
	})

	t.Run("cancel of unknown key reports false", func(t *testing.T) {
		timers := NewRoomTimers()
		assert.False(t, timers.Cancel("nope"))
	})

	t.Run("set supersedes the pending timer", func(t *testing.T) {
		timers := NewRoomTimers()
		var first atomic.Bool
		second := make(chan struct{})

		timers.Set("a", 20*time.Millisecond, func() { first.Store(true) })
		timers.Set("a", 40*time.Millisecond, func() { close(second) })

		select {
		case <-second:
		case <-time.After(time.Second):
			t.Fatal("replacement timer never fired")
		}
		assert.False(t, first.Load())
	})

	t.Run("independent keys do not interfere", func(t *testing.T) {
		timers := NewRoomTimers()
		var fired atomic.Bool
		done := make(chan struct{})

		timers.Set(ReconnectTimerKey("r1"), 10*time.Millisecond, func() { fired.Store(true) })
		timers.Set(GameTimerKey("r1"), 20*time.Millisecond, func() { close(done) })
		timers.Cancel(ReconnectTimerKey("r1"))

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("game timer never fired")
		}
		assert.False(t, fired.Load())
	})

	t.Run("cancel all", func(t *testing.T) {
		timers := NewRoomTimers()
		var fired atomic.Bool
		timers.Set("a", 20*time.Millisecond, func() { fired.Store(true) })
		timers.Set("b", 20*time.Millisecond, func() { fired.Store(true) })

		timers.CancelAll()
		time.Sleep(50 * time.Millisecond)
		assert.False(t, fired.Load())
	})
}
