package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	// KindSpanBegin marks the start of a logical operation.
	KindSpanBegin Kind = iota + 1
	// KindSpanEnd marks the end of a logical operation.
	KindSpanEnd
	// KindPoint represents an instant event.
	KindPoint
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity level of the event.
// Lower numeric values represent coarser events.
type Scope uint8

const (
	ScopeReport Scope = iota + 1 // one report generation
	ScopePhase                   // dedup, aggregate, annotate, render
	ScopeTrace                   // one rendered trace
)

// String returns the string representation of Scope.
func (s Scope) String() string {
	switch s {
	case ScopeReport:
		return "report"
	case ScopePhase:
		return "phase"
	case ScopeTrace:
		return "trace"
	default:
		return "unknown"
	}
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 if root
	Name     string
	Detail   string
	Elapsed  time.Duration // set on span end
	Extra    map[string]string
}
