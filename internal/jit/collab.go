package jit

// Op is one decoded operation.
type Op struct {
	Text   string
	Opcode int
	Loc    Location
	// Paired is set for comparison-class operations that are always
	// followed by a control transfer on the same line.
	Paired bool
}

// Decoder turns engine function/pc pairs into display data.
type Decoder interface {
	// Decode returns the operation at pc inside fn.
	Decode(fn FuncRef, pc int) Op
	// Func returns the identity of fn. Native functions yield the zero value.
	Func(fn FuncRef) FuncInfo
	// Describe returns a short label for fn, used for native frames.
	Describe(fn FuncRef) string
	// Location returns the source location of pc inside fn.
	Location(fn FuncRef, pc int) Location
}

// MessageResolver maps an abort code and its info to a message.
type MessageResolver interface {
	Resolve(code int, info ErrInfo) string
}

// OpcodeTable maps opcode numbers to display names.
type OpcodeTable interface {
	Name(op int) (string, bool)
}

// Instrumentation is the engine side switch for notification delivery.
type Instrumentation interface {
	SetEnabled(on bool)
}

// NopInstrumentation ignores enable/disable requests.
type NopInstrumentation struct{}

// SetEnabled does nothing.
func (NopInstrumentation) SetEnabled(bool) {}
