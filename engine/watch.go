package engine

import "github.com/not-things-modular/timeseq/internal/hostiface"

// EventKind identifies the kind of notification carried by a watched Event,
// one per hostiface.Listener method.
type EventKind int

const (
	EventScriptReset EventKind = iota
	EventSegmentStarted
	EventLaneLooped
	EventTriggerTriggered
	EventAssertFailed
)

// Event carries one lifecycle notification from Watch(). AssertName/
// AssertMessage/AssertStop are only set for EventAssertFailed.
type Event struct {
	Kind          EventKind
	AssertName    string
	AssertMessage string
	AssertStop    bool
}

// watchListener fans every hostiface.Listener notification out to the
// engine's current Watch() channel, the way mmlfm.Player.sendEvent fans
// playback events out to its own Watch() channel: a buffered, best-effort,
// non-blocking send so a slow or absent receiver never stalls Process.
type watchListener struct {
	e        *Engine
	upstream hostiface.Listener
}

func (w watchListener) ScriptReset() {
	w.upstream.ScriptReset()
	w.e.sendEvent(Event{Kind: EventScriptReset})
}

func (w watchListener) SegmentStarted() {
	w.upstream.SegmentStarted()
	w.e.sendEvent(Event{Kind: EventSegmentStarted})
}

func (w watchListener) LaneLooped() {
	w.upstream.LaneLooped()
	w.e.sendEvent(Event{Kind: EventLaneLooped})
}

func (w watchListener) TriggerTriggered() {
	w.upstream.TriggerTriggered()
	w.e.sendEvent(Event{Kind: EventTriggerTriggered})
}

func (w watchListener) AssertFailed(name, message string, stop bool) {
	w.upstream.AssertFailed(name, message, stop)
	w.e.sendEvent(Event{Kind: EventAssertFailed, AssertName: name, AssertMessage: message, AssertStop: stop})
}

// Watch returns a channel that receives every lifecycle event the engine
// raises, during Process and outside it (ScriptReset on LoadScript and
// ReloadScript, TriggerTriggered from SetTrigger). The channel is buffered (cap 32); a full or absent receiver drops
// events rather than blocking the caller. Only the most recent Watch()
// channel receives events; call Watch before Start.
func (e *Engine) Watch() <-chan Event {
	ch := make(chan Event, 32)
	e.eventChMu.Lock()
	e.eventCh = ch
	e.eventChMu.Unlock()
	return ch
}

func (e *Engine) sendEvent(ev Event) {
	e.eventChMu.Lock()
	ch := e.eventCh
	e.eventChMu.Unlock()
	if ch == nil {
		return
	}
	select {
	case ch <- ev:
	default:
	}
}
