package jit

// FuncRef is an opaque function handle issued by the execution engine.
// Only the Decoder knows how to interpret it.
type FuncRef int

// Kind represents the type of an instrumentation notification.
type Kind uint8

const (
	KindBegin Kind = iota + 1 // trace recording starts
	KindRecord                // one operation recorded
	KindEnd                   // trace compiled
	KindAbort                 // trace abandoned
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindBegin:
		return "begin"
	case KindRecord:
		return "record"
	case KindEnd:
		return "end"
	case KindAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// Event is one instrumentation notification. The set of implementations is
// closed: Begin, Record, End and Abort.
type Event interface {
	Kind() Kind
	TraceID() int
	event()
}

// Begin starts a new attempt for trace ID at Func/PC.
type Begin struct {
	ID   int
	Func FuncRef
	PC   int
}

// Record observes one operation for the current attempt of trace ID.
type Record struct {
	ID    int
	Func  FuncRef
	PC    int
	Depth int
}

// End marks the current attempt of trace ID as compiled.
type End struct {
	ID int
}

// Abort marks the current attempt of trace ID as abandoned.
type Abort struct {
	ID   int
	Func FuncRef
	PC   int
	Code int
	Info ErrInfo
}

func (Begin) Kind() Kind  { return KindBegin }
func (Record) Kind() Kind { return KindRecord }
func (End) Kind() Kind    { return KindEnd }
func (Abort) Kind() Kind  { return KindAbort }

func (e Begin) TraceID() int  { return e.ID }
func (e Record) TraceID() int { return e.ID }
func (e End) TraceID() int    { return e.ID }
func (e Abort) TraceID() int  { return e.ID }

func (Begin) event()  {}
func (Record) event() {}
func (End) event()    {}
func (Abort) event()  {}

// InfoKind tells which field of ErrInfo carries the auxiliary abort info.
type InfoKind uint8

const (
	InfoNone InfoKind = iota
	InfoNumber
	InfoString
	InfoFunc
)

// ErrInfo is the typed auxiliary payload of an abort.
type ErrInfo struct {
	Kind InfoKind
	Num  int
	Str  string
	Func FuncRef
}

// NumberInfo returns numeric abort info.
func NumberInfo(n int) ErrInfo { return ErrInfo{Kind: InfoNumber, Num: n} }

// StringInfo returns string abort info.
func StringInfo(s string) ErrInfo { return ErrInfo{Kind: InfoString, Str: s} }

// FuncInfoArg returns function-typed abort info.
func FuncInfoArg(fn FuncRef) ErrInfo { return ErrInfo{Kind: InfoFunc, Func: fn} }
