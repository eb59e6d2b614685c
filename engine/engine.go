// Package engine implements the Core Engine (§4.1): script lifecycle,
// runtime swap-in/out, the trigger double buffer, the variable store, and
// the elapsed-sample clock.
package engine

import (
	"math/rand"
	"sync"

	"github.com/not-things-modular/timeseq/internal/hostiface"
	"github.com/not-things-modular/timeseq/internal/inputtrigger"
	"github.com/not-things-modular/timeseq/internal/resolve"
	"github.com/not-things-modular/timeseq/internal/runtime"
	"github.com/not-things-modular/timeseq/script"
)

// State is the engine's lifecycle state, per §4.1.
type State int

const (
	StateEmpty State = iota
	StateIdle
	StateRunning
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Option configures an Engine at construction time.
type Option func(*config)

type config struct {
	listener hostiface.Listener
}

// WithListener installs the lifecycle-notification sink. When omitted, a
// no-op listener is used.
func WithListener(l hostiface.Listener) Option {
	return func(c *config) { c.listener = l }
}

// Engine is the TimeSeq Core Engine: a single-threaded, tick-driven
// scheduler meant to be called synchronously from the host's audio thread.
type Engine struct {
	mu sync.Mutex

	ports      hostiface.Ports
	sampleRate hostiface.SampleRate
	listener   hostiface.Listener

	state State

	loadedScript *script.Script
	resolved     *resolve.Script
	timelines    []*runtime.TimelineRuntime
	inputs       *inputtrigger.Runtime

	dangling      []*runtime.TimelineRuntime
	danglingArmed bool

	eventCh   chan Event
	eventChMu sync.Mutex

	variables map[string]float64

	triggers   [2][]string
	pendingBuf int

	elapsedSamples uint64
	rng            *rand.Rand
}

// New builds an Engine against its host port/sample-rate callbacks. The
// engine starts in StateEmpty until loadScript succeeds.
func New(ports hostiface.Ports, sampleRate hostiface.SampleRate, opts ...Option) *Engine {
	c := config{listener: hostiface.NopListener{}}
	for _, opt := range opts {
		opt(&c)
	}
	e := &Engine{
		ports:      ports,
		sampleRate: sampleRate,
		state:      StateEmpty,
		variables:  map[string]float64{},
		rng:        rand.New(rand.NewSource(1)),
	}
	e.listener = watchListener{e: e, upstream: c.listener}
	return e
}

// Status returns the engine's current lifecycle state.
func (e *Engine) Status() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// GetElapsedSamples returns the elapsed-sample counter, wrapped modulo
// sampleRate*3600.
func (e *Engine) GetElapsedSamples() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.elapsedSamples
}

// GetCurrentSampleRate returns the host's current sample rate.
func (e *Engine) GetCurrentSampleRate() uint32 {
	return e.sampleRate.GetSampleRate()
}

// GetVariable reads a variable; an absent variable reads as 0.
func (e *Engine) GetVariable(name string) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.variables[name]
}

// SetVariable sets a variable. Setting to 0 deletes the entry, keeping the
// map sparse.
func (e *Engine) SetVariable(name string, value float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setVariableLocked(name, value)
}

func (e *Engine) setVariableLocked(name string, value float64) {
	if value == 0 {
		delete(e.variables, name)
		return
	}
	e.variables[name] = value
}

// Variable implements evalx.Variables.
func (e *Engine) Variable(name string) float64 {
	return e.variables[name]
}

// GetTriggers returns the current (read-only) trigger buffer.
func (e *Engine) GetTriggers() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.triggers[1-e.pendingBuf]...)
}

// SetTrigger appends to the pending trigger buffer and notifies
// triggerTriggered. Triggers set during a tick become visible on the next
// tick.
func (e *Engine) SetTrigger(name string) {
	e.mu.Lock()
	e.triggers[e.pendingBuf] = append(e.triggers[e.pendingBuf], name)
	e.mu.Unlock()
	e.listener.TriggerTriggered()
}

func (e *Engine) seedRNGLocked(seed int64) {
	e.rng = rand.New(rand.NewSource(seed))
}

// firedLookup builds a name->fired lookup over the current (post-swap)
// trigger buffer, used by the runtime layer this tick.
func (e *Engine) firedLookup() func(string) bool {
	current := e.triggers[1-e.pendingBuf]
	set := make(map[string]bool, len(current))
	for _, t := range current {
		set[t] = true
	}
	return func(n string) bool { return set[n] }
}
