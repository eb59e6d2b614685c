// Package script defines the typed intermediate representation (IR) that a
// TimeSeq JSON script is parsed into, and the loader that produces it.
package script

// RefObject is embedded by every poolable kind: a definition either carries
// its own fields, or a ref to another definition of the same kind, never
// both.
type RefObject struct {
	Id  string `json:"id,omitempty"`
	Ref string `json:"ref,omitempty"`
}

// Port identifies a port index and an optional channel. Channel is a
// pointer so that "unset" (ChannelOrDefault returns 1) is distinct from an
// explicit value; an explicit channel, including 0, is used as given. The
// loader does not validate channels.
type Port struct {
	Index   int  `json:"index"`
	Channel *int `json:"channel,omitempty"`
}

// ChannelOrDefault returns the configured channel, defaulting to 1.
func (p Port) ChannelOrDefault() int {
	if p.Channel == nil {
		return 1
	}
	return *p.Channel
}

type Input struct {
	RefObject
	Port
}

type Output struct {
	RefObject
	Port
}

type Rand struct {
	Lower *Value `json:"lower,omitempty"`
	Upper *Value `json:"upper,omitempty"`
}

type CalcOperation string

const (
	CalcAdd      CalcOperation = "add"
	CalcSub      CalcOperation = "sub"
	CalcMult     CalcOperation = "mult"
	CalcDiv      CalcOperation = "div"
	CalcMax      CalcOperation = "max"
	CalcMin      CalcOperation = "min"
	CalcRemain   CalcOperation = "remain"
	CalcTrunc    CalcOperation = "trunc"
	CalcFrac     CalcOperation = "frac"
	CalcRound    CalcOperation = "round"
	CalcSign     CalcOperation = "sign"
	CalcQuantize CalcOperation = "quantize"
	CalcVtoF     CalcOperation = "vtof"
)

type RoundDirection string

const (
	RoundUp   RoundDirection = "up"
	RoundDown RoundDirection = "down"
	RoundNear RoundDirection = "near"
)

type SignDirection string

const (
	SignPos SignDirection = "pos"
	SignNeg SignDirection = "neg"
)

type Calc struct {
	RefObject
	Operation CalcOperation `json:"operation"`
	Value     *Value        `json:"value,omitempty"`
	Direction string        `json:"direction,omitempty"` // round: up/down/near, sign: pos/neg
	Tuning    string        `json:"tuning,omitempty"`    // quantize: tuning id
}

// Value is exactly one of voltage/note/variable/input/output/rand, plus an
// optional calc pipeline and quantize flag.
type Value struct {
	RefObject
	Voltage  *float64 `json:"voltage,omitempty"`
	Note     *string  `json:"note,omitempty"`
	Variable *string  `json:"variable,omitempty"`
	Input    *Input   `json:"input,omitempty"`
	Output   *Output  `json:"output,omitempty"`
	Rand     *Rand    `json:"rand,omitempty"`
	Quantize bool     `json:"quantize,omitempty"`
	Calc     []Calc   `json:"calc,omitempty"`
}

type IfOperator string

const (
	IfEq  IfOperator = "eq"
	IfNe  IfOperator = "ne"
	IfGt  IfOperator = "gt"
	IfGte IfOperator = "gte"
	IfLt  IfOperator = "lt"
	IfLte IfOperator = "lte"
	IfAnd IfOperator = "and"
	IfOr  IfOperator = "or"
)

// If is a tree node: a leaf carries Values (a compare pair) and an optional
// Tolerance; a compound carries Ifs (left, right) under and/or.
type If struct {
	RefObject
	Operator  IfOperator `json:"operator"`
	Values    *[2]Value  `json:"values,omitempty"`
	Tolerance *float64   `json:"tolerance,omitempty"`
	Ifs       *[2]If     `json:"ifs,omitempty"`
}

func (op IfOperator) IsLeaf() bool {
	switch op {
	case IfEq, IfNe, IfGt, IfGte, IfLt, IfLte:
		return true
	}
	return false
}

type SetValue struct {
	Output Output `json:"output"`
	Value  Value  `json:"value"`
}

type SetVariable struct {
	Name  string `json:"name"`
	Value Value  `json:"value"`
}

type SetPolyphony struct {
	Index    int `json:"index"`
	Channels int `json:"channels"`
}

type SetLabel struct {
	Index int    `json:"index"`
	Label string `json:"label"`
}

type Assert struct {
	Name       string `json:"name"`
	Expect     If     `json:"expect"`
	StopOnFail *bool  `json:"stop-on-fail,omitempty"`
}

func (a Assert) StopOnFailOrDefault() bool {
	if a.StopOnFail == nil {
		return true
	}
	return *a.StopOnFail
}

type ActionTiming string

const (
	TimingStart ActionTiming = "start"
	TimingEnd   ActionTiming = "end"
	TimingGlide ActionTiming = "glide"
	TimingGate  ActionTiming = "gate"
)

type EaseAlgorithm string

const (
	EasePow EaseAlgorithm = "pow"
	EaseSig EaseAlgorithm = "sig"
)

// Action is a tagged variant over set-value/set-variable/set-polyphony/
// set-label/trigger/assert/glide/gate. Exactly one of the pointer/value
// fields below is populated according to which action kind this is.
type Action struct {
	RefObject
	Timing    ActionTiming `json:"timing,omitempty"`
	Condition *If          `json:"if,omitempty"`

	SetValue     *SetValue     `json:"set-value,omitempty"`
	SetVariable  *SetVariable  `json:"set-variable,omitempty"`
	SetPolyphony *SetPolyphony `json:"set-polyphony,omitempty"`
	SetLabel     *SetLabel     `json:"set-label,omitempty"`
	Assert       *Assert       `json:"assert,omitempty"`
	Trigger      *string       `json:"trigger,omitempty"`

	// glide
	StartValue    *Value         `json:"start-value,omitempty"`
	EndValue      *Value         `json:"end-value,omitempty"`
	EaseFactor    *float64       `json:"ease-factor,omitempty"`
	EaseAlgorithm *EaseAlgorithm `json:"ease-algorithm,omitempty"`
	Output        *Output        `json:"output,omitempty"`
	Variable      *string        `json:"variable,omitempty"`

	// gate
	GateHighRatio *float64 `json:"gate-high-ratio,omitempty"`
}

func (a Action) GateHighRatioOrDefault() float64 {
	if a.GateHighRatio == nil {
		return 0.5
	}
	return *a.GateHighRatio
}

// Duration carries both a literal and a value-expression field per unit, so
// the loader can reject scripts that set both for the same unit.
type Duration struct {
	Samples      *int64   `json:"samples,omitempty"`
	SamplesValue *Value   `json:"samples-value,omitempty"`
	Millis       *float64 `json:"millis,omitempty"`
	MillisValue  *Value   `json:"millis-value,omitempty"`
	Bars         *int64   `json:"bars,omitempty"`
	Beats        *float64 `json:"beats,omitempty"`
	BeatsValue   *Value   `json:"beats-value,omitempty"`
	Hz           *float64 `json:"hz,omitempty"`
	HzValue      *Value   `json:"hz-value,omitempty"`
}

// SegmentEntity is a union: exactly one of Segment or SegmentBlock is set,
// used within a lane's or segment-block's ordered entity list.
type SegmentEntity struct {
	Segment      *Segment      `json:"segment,omitempty"`
	SegmentBlock *SegmentBlock `json:"segment-block,omitempty"`
}

type Segment struct {
	RefObject
	Duration  Duration `json:"duration"`
	Actions   []Action `json:"actions,omitempty"`
	DisableUi bool     `json:"disable-ui,omitempty"`
}

type SegmentBlock struct {
	RefObject
	Repeat   *int            `json:"repeat,omitempty"`
	Segments []SegmentEntity `json:"segments,omitempty"`
}

// RepeatOrDefault returns the configured repeat count, defaulting to 1 (the
// block's segment sequence runs once).
func (sb SegmentBlock) RepeatOrDefault() int {
	if sb.Repeat == nil {
		return 1
	}
	return *sb.Repeat
}

type Lane struct {
	AutoStart      *bool           `json:"auto-start,omitempty"`
	Loop           bool            `json:"loop,omitempty"`
	DisableUi      bool            `json:"disable-ui,omitempty"`
	Repeat         int             `json:"repeat,omitempty"`
	StartTrigger   string          `json:"start-trigger,omitempty"`
	RestartTrigger string          `json:"restart-trigger,omitempty"`
	StopTrigger    string          `json:"stop-trigger,omitempty"`
	Segments       []SegmentEntity `json:"segments,omitempty"`
}

func (l Lane) AutoStartOrDefault() bool {
	if l.AutoStart == nil {
		return true
	}
	return *l.AutoStart
}

type TimeScale struct {
	SampleRate *int `json:"sample-rate,omitempty"`
	Bpm        *int `json:"bpm,omitempty"`
	Bpb        *int `json:"bpb,omitempty"`
}

type Timeline struct {
	TimeScale *TimeScale `json:"time-scale,omitempty"`
	LoopLock  bool       `json:"loop-lock,omitempty"`
	Lanes     []Lane     `json:"lanes,omitempty"`
}

type InputTrigger struct {
	Id    string `json:"id"`
	Input Input  `json:"input"`
}

type Tuning struct {
	Id    string    `json:"id"`
	Notes []float64 `json:"notes,omitempty"`
}

// ComponentPool holds the ids-unique-per-kind definitions referenced by
// `ref` fields elsewhere in the script.
type ComponentPool struct {
	Segments      []Segment      `json:"segments,omitempty"`
	SegmentBlocks []SegmentBlock `json:"segment-blocks,omitempty"`
	Actions       []Action       `json:"actions,omitempty"`
	Values        []Value        `json:"values,omitempty"`
	Calcs         []Calc         `json:"calcs,omitempty"`
	Ifs           []If           `json:"ifs,omitempty"`
	Inputs        []Input        `json:"inputs,omitempty"`
	Outputs       []Output       `json:"outputs,omitempty"`
	Tunings       []Tuning       `json:"tunings,omitempty"`
}

// Script is the validated, immutable root of the loaded IR.
type Script struct {
	Type          string         `json:"type"`
	Version       string         `json:"version"`
	Timelines     []Timeline     `json:"timelines,omitempty"`
	GlobalActions []Action       `json:"global-actions,omitempty"`
	InputTriggers []InputTrigger `json:"input-triggers,omitempty"`
	ComponentPool ComponentPool  `json:"component-pool,omitempty"`
}

// Version1_1 gates the calc operations added in script version 1.1.0.
const Version1_1 = "1.1.0"

// SupportsV11Calcs reports whether this script's version enables the
// max/min/remain/trunc/frac/round/sign/quantize/vtof calc operations.
func (s *Script) SupportsV11Calcs() bool {
	return s.Version >= Version1_1
}
