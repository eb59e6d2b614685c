// Package runtime implements the Segment, Lane, and Timeline Runtimes
// (§4.7, §4.8): it walks a resolved script's expanded segment lists tick by
// tick, dispatching actions through the Value/Condition evaluators and the
// host port interface.
package runtime

import (
	"github.com/not-things-modular/timeseq/internal/evalx"
	"github.com/not-things-modular/timeseq/internal/hostiface"
)

// Deps bundles the collaborators every runtime layer needs. One Deps is
// shared by every lane/segment under one engine instance.
type Deps struct {
	Eval        *evalx.Evaluator
	Ports       hostiface.Ports
	Listener    hostiface.Listener
	SetVariable func(name string, value float64)
	SetTrigger  func(name string)
}
