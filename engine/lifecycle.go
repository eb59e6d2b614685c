package engine

import (
	"github.com/not-things-modular/timeseq/internal/evalx"
	"github.com/not-things-modular/timeseq/internal/inputtrigger"
	"github.com/not-things-modular/timeseq/internal/resolve"
	"github.com/not-things-modular/timeseq/internal/runtime"
	"github.com/not-things-modular/timeseq/script"
)

// LoadScript parses and resolves raw JSON, per §4.2. On success the engine
// moves to StateIdle and calls Reset; on failure the engine's existing
// script/runtime is left untouched and every discovered error is returned.
func (e *Engine) LoadScript(data []byte) []script.ValidationError {
	s, errs := script.Load(data)
	if len(errs) > 0 {
		return errs
	}
	resolved, errs := resolve.Resolve(s)
	if len(errs) > 0 {
		return errs
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.loadedScript = s
	e.swapRuntimeLocked(resolved)
	e.state = StateIdle
	e.resetLocked()
	e.listener.ScriptReset()
	return nil
}

// ReloadScript rebuilds the runtime graph from the currently loaded script
// and re-enters StateIdle. It is a no-op if no script is loaded.
func (e *Engine) ReloadScript() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loadedScript == nil {
		return
	}
	resolved, errs := resolve.Resolve(e.loadedScript)
	if len(errs) > 0 {
		// The script was already validated once; a failure here would mean
		// the stored IR is inconsistent. Leave the running runtime in
		// place rather than tearing it down on an impossible error.
		return
	}
	e.swapRuntimeLocked(resolved)
	e.state = StateIdle
	e.resetLocked()
	e.listener.ScriptReset()
}

// ClearScript drops the loaded script and returns the engine to StateEmpty.
func (e *Engine) ClearScript() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loadedScript = nil
	e.resolved = nil
	e.timelines = nil
	e.inputs = nil
	e.dangling = nil
	e.danglingArmed = false
	e.variables = map[string]float64{}
	e.triggers[0] = nil
	e.triggers[1] = nil
	e.elapsedSamples = 0
	e.state = StateEmpty
}

// swapRuntimeLocked installs a freshly resolved script's runtime graph as
// the active one, moving the previous graph into the dangling slot for
// exactly one more process() call.
func (e *Engine) swapRuntimeLocked(resolved *resolve.Script) {
	old := e.timelines
	e.resolved = resolved
	e.timelines = make([]*runtime.TimelineRuntime, len(resolved.Timelines))
	for i := range resolved.Timelines {
		e.timelines[i] = runtime.NewTimelineRuntime(&resolved.Timelines[i], float64(e.GetCurrentSampleRate()))
	}
	e.inputs = inputtrigger.New(resolved.InputTriggers)
	if old != nil {
		e.dangling = old
		e.danglingArmed = true
	}
}

// Start transitions StateIdle/StatePaused -> StateRunning and reseeds the
// evaluator's RNG. Starting from StateEmpty or StateRunning is a no-op.
func (e *Engine) Start(seed int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.state {
	case StateIdle, StatePaused:
		e.seedRNGLocked(seed)
		e.state = StateRunning
	}
}

// Pause transitions StateRunning -> StatePaused.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateRunning {
		e.state = StatePaused
	}
}

// Reset clears triggers, variables, and the elapsed-sample counter, and
// returns every lane to its pre-start configuration. The engine's
// lifecycle state is unaffected.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
}

func (e *Engine) resetLocked() {
	e.variables = map[string]float64{}
	e.triggers[0] = nil
	e.triggers[1] = nil
	e.pendingBuf = 0
	e.elapsedSamples = 0
	for _, t := range e.timelines {
		t.Reset()
	}
	if e.inputs != nil {
		e.inputs.Reset()
	}
	e.runGlobalActionsLocked()
}

// runGlobalActionsLocked executes every global action (always timing
// "start") once, per the engine's reset operation. Global actions never
// run per-tick.
func (e *Engine) runGlobalActionsLocked() {
	if e.resolved == nil {
		return
	}
	deps := &runtime.Deps{
		Eval: &evalx.Evaluator{
			Ports:     e.ports,
			RNG:       e.rng,
			Variables: e,
			Tunings:   e.resolved.Tunings,
		},
		Ports:       e.ports,
		Listener:    e.listener,
		SetVariable: e.setVariableLocked,
		SetTrigger:  e.setTriggerLocked,
	}
	for i := range e.resolved.GlobalActions {
		if _, err := runtime.RunAction(deps, &e.resolved.GlobalActions[i]); err != nil {
			return
		}
	}
}

// Process executes the scheduler exactly once and advances the elapsed
// clock, regardless of rate; rate-divided scheduling is the host's
// responsibility. Process is inert (beyond releasing a dangling runtime)
// unless the engine is StateRunning.
func (e *Engine) Process(rate uint32) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.danglingArmed {
		e.dangling = nil
		e.danglingArmed = false
	}

	if e.state != StateRunning {
		return
	}

	if e.inputs != nil {
		e.inputs.Step(e.ports, e.setTriggerLocked)
	}

	e.pendingBuf = 1 - e.pendingBuf
	e.triggers[e.pendingBuf] = nil
	fired := e.firedLookup()

	deps := &runtime.Deps{
		Eval: &evalx.Evaluator{
			Ports:     e.ports,
			RNG:       e.rng,
			Variables: e,
			Tunings:   e.resolved.Tunings,
		},
		Ports:       e.ports,
		Listener:    e.listener,
		SetVariable: e.setVariableLocked,
		SetTrigger:  e.setTriggerLocked,
	}

	pause := false
	for _, t := range e.timelines {
		p, err := t.Step(deps, fired)
		if err != nil {
			// A scheduling error mid-tick has no recovery path; the
			// engine pauses rather than risk a half-applied tick.
			pause = true
			break
		}
		if p {
			pause = true
		}
	}
	if pause {
		e.state = StatePaused
	}

	e.elapsedSamples++
	if wrap := uint64(e.GetCurrentSampleRate()) * 3600; wrap > 0 && e.elapsedSamples >= wrap {
		e.elapsedSamples = 0
	}
}

func (e *Engine) setTriggerLocked(name string) {
	e.triggers[e.pendingBuf] = append(e.triggers[e.pendingBuf], name)
	e.listener.TriggerTriggered()
}
