package engine

import (
	"testing"

	"github.com/not-things-modular/timeseq/internal/consolehost"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchReceivesScriptResetOnLoad(t *testing.T) {
	host := consolehost.New(48000, false)
	e := New(host, host)
	events := e.Watch()
	require.Empty(t, e.LoadScript(minimalScript()))

	ev := <-events
	assert.Equal(t, EventScriptReset, ev.Kind)
}

func TestWatchReceivesTriggerTriggered(t *testing.T) {
	host := consolehost.New(48000, false)
	e := New(host, host)
	require.Empty(t, e.LoadScript(minimalScript()))
	events := e.Watch()

	e.SetTrigger("go")
	ev := <-events
	assert.Equal(t, EventTriggerTriggered, ev.Kind)
}

func TestWatchReceivesAssertFailedWithDetails(t *testing.T) {
	host := consolehost.New(48000, false)
	e := New(host, host)
	events := e.Watch()
	e.listener.AssertFailed("mismatch", "expected 1 got 2", true)

	ev := <-events
	assert.Equal(t, EventAssertFailed, ev.Kind)
	assert.Equal(t, "mismatch", ev.AssertName)
	assert.Equal(t, "expected 1 got 2", ev.AssertMessage)
	assert.True(t, ev.AssertStop)
}

func TestWatchDropsEventsWhenBufferFull(t *testing.T) {
	host := consolehost.New(48000, false)
	e := New(host, host)
	e.Watch() // never drained

	for i := 0; i < 64; i++ {
		e.SetTrigger("go")
	}
	// sendEvent must never block the caller regardless of a full/unread channel
}

func TestWatchOnlyMostRecentChannelReceivesEvents(t *testing.T) {
	host := consolehost.New(48000, false)
	e := New(host, host)
	stale := e.Watch()
	fresh := e.Watch()

	e.SetTrigger("go")
	select {
	case <-stale:
		t.Fatal("the superseded Watch() channel must not receive further events")
	default:
	}
	ev := <-fresh
	assert.Equal(t, EventTriggerTriggered, ev.Kind)
}
