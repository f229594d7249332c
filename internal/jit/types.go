package jit

import "strconv"

// Location is a source position. An empty File means no source is available.
type Location struct {
	File string
	Line int
}

// HasSource reports whether the location points into a source file.
func (l Location) HasSource() bool {
	return l.File != ""
}

// String returns "file:line" or "?" when there is no source.
func (l Location) String() string {
	if !l.HasSource() {
		return "?"
	}
	return l.File + ":" + strconv.Itoa(l.Line)
}

// FuncInfo identifies the function an operation belongs to.
// The zero value identifies frames without source (native functions).
type FuncInfo struct {
	Source          string
	LineDefined     int
	LastLineDefined int
}

// HasSource reports whether the function was defined in a source file.
func (f FuncInfo) HasSource() bool {
	return f.Source != ""
}

// BytecodeEvent is one decoded operation observed while recording a trace.
type BytecodeEvent struct {
	PC    int // negative marks a native frame boundary
	Depth int
	Text  string
	Loc   Location
	Func  FuncInfo
}

// Native reports whether the event is a synthetic native-frame marker.
func (e BytecodeEvent) Native() bool {
	return e.PC < 0
}

// Status is the lifecycle state of a trace.
type Status uint8

const (
	StatusRecording Status = iota
	StatusCompleted
	StatusAborted
)

// String returns the string representation of Status.
func (s Status) String() string {
	switch s {
	case StatusRecording:
		return "recording"
	case StatusCompleted:
		return "completed"
	case StatusAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// AbortDetail describes why a trace was abandoned.
type AbortDetail struct {
	Loc     Location
	Code    int
	Message string
}

// Trace is one compilation attempt.
type Trace struct {
	ID     int
	Events []BytecodeEvent
	Start  Location
	Stop   Location
	Status Status
	Abort  *AbortDetail

	// Attempts is the number of raw traces merged into this one by dedup.
	Attempts int

	lines      int
	linesKnown bool
}

// NewTrace returns an empty trace in the recording state.
func NewTrace(id int, start Location) *Trace {
	return &Trace{
		ID:     id,
		Start:  start,
		Stop:   start,
		Status: StatusRecording,
	}
}

// Completed reports whether the trace finished successfully.
func (t *Trace) Completed() bool {
	return t.Status == StatusCompleted
}

// Texts returns the display text of every event in execution order.
func (t *Trace) Texts() []string {
	out := make([]string, len(t.Events))
	for i, ev := range t.Events {
		out[i] = ev.Text
	}
	return out
}

// DistinctLines returns the number of distinct source lines touched by the
// trace. The value is computed once, so it must only be called after the
// trace stopped recording.
func (t *Trace) DistinctLines() int {
	if t.linesKnown {
		return t.lines
	}
	seen := make(map[Location]struct{}, len(t.Events))
	for _, ev := range t.Events {
		if ev.Loc.HasSource() {
			seen[ev.Loc] = struct{}{}
		}
	}
	t.lines, t.linesKnown = len(seen), true
	return t.lines
}

// Message returns the abort message, or "" for traces that did not abort.
func (t *Trace) Message() string {
	if t.Abort == nil {
		return ""
	}
	return t.Abort.Message
}

// stopFromEvents applies the stop location rule: last event, else start.
func (t *Trace) stopFromEvents() Location {
	if n := len(t.Events); n > 0 {
		return t.Events[n-1].Loc
	}
	return t.Start
}
