package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/gauntlet/internal/game/event"
	"github.com/cory-johannsen/gauntlet/internal/game/session"
)

func TestStream_Push(t *testing.T) {
	s := session.NewStream("test", 4)
	require.NoError(t, s.Push(event.Event{Type: event.TypeCombatStarted}))

	e := <-s.Events()
	assert.Equal(t, event.TypeCombatStarted, e.Type)
}

func TestStream_PushClosed(t *testing.T) {
	s := session.NewStream("test", 4)
	require.NoError(t, s.Close())
	assert.True(t, s.IsClosed())
	assert.Error(t, s.Push(event.Event{}))
}

func TestStream_EmitCountsDrops(t *testing.T) {
	s := session.NewStream("test", 1)
	s.Emit(event.Event{Type: event.TypeTurnStarted})
	s.Emit(event.Event{Type: event.TypeTurnStarted})
	assert.Equal(t, 1, s.Dropped())

	err := s.Push(event.Event{})
	assert.ErrorContains(t, err, "buffer full")
}

func TestStream_CloseIdempotent(t *testing.T) {
	s := session.NewStream("test", 4)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.True(t, s.IsClosed())
}
