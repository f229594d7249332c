package jit

import (
	"regexp"
	"strconv"

	"tracereport/internal/metrics"
)

// Collector turns instrumentation notifications into Trace records.
//
// It is not safe for concurrent use. Notifications for distinct trace ids may
// interleave arbitrarily, and a notification may arrive while another one is
// being handled on the same goroutine (the decoder can call back into the
// engine), so no lock is held across collaborator calls.
type Collector struct {
	dec  Decoder
	msgs MessageResolver
	ops  OpcodeTable
	met  metrics.Recorder

	current map[int]*Trace // last attempt per id
	traces  []*Trace       // every attempt in begin order
}

// Option configures a Collector.
type Option func(*Collector)

// WithMetrics attaches a metrics recorder.
func WithMetrics(m metrics.Recorder) Option {
	return func(c *Collector) {
		if m != nil {
			c.met = m
		}
	}
}

// NewCollector creates an empty collector.
func NewCollector(dec Decoder, msgs MessageResolver, ops OpcodeTable, opts ...Option) *Collector {
	c := &Collector{
		dec:     dec,
		msgs:    msgs,
		ops:     ops,
		met:     metrics.Nop,
		current: make(map[int]*Trace),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Handle dispatches a notification to the matching ingestion call.
func (c *Collector) Handle(ev Event) {
	switch e := ev.(type) {
	case Begin:
		c.Begin(e.ID, e.Func, e.PC)
	case Record:
		c.Record(e.ID, e.Func, e.PC, e.Depth)
	case End:
		c.End(e.ID)
	case Abort:
		c.Abort(e.ID, e.Func, e.PC, e.Code, e.Info)
	}
}

// Begin appends a new attempt for id. Earlier attempts with the same id are
// kept.
func (c *Collector) Begin(id int, fn FuncRef, pc int) {
	start := c.dec.Location(fn, pc)
	c.begin(id, start)
}

func (c *Collector) begin(id int, start Location) *Trace {
	t := NewTrace(id, start)
	c.current[id] = t
	c.traces = append(c.traces, t)
	c.met.TraceBegun()
	return t
}

// attempt returns the attempt still recording for id, opening one at loc if
// the notification arrived without a matching Begin.
func (c *Collector) attempt(id int, loc Location) *Trace {
	if t, ok := c.current[id]; ok && t.Status == StatusRecording {
		return t
	}
	c.met.OrphanEvent()
	return c.begin(id, loc)
}

// Record appends one operation to the current attempt of id.
func (c *Collector) Record(id int, fn FuncRef, pc, depth int) {
	if pc < 0 {
		ev := BytecodeEvent{
			PC:    pc,
			Depth: depth,
			Text:  "(native " + c.dec.Describe(fn) + ")",
			Func:  c.dec.Func(fn),
		}
		c.append(id, ev)
		return
	}

	op := c.dec.Decode(fn, pc)
	info := c.dec.Func(fn)
	evs := []BytecodeEvent{{PC: pc, Depth: depth, Text: op.Text, Loc: op.Loc, Func: info}}
	if op.Paired {
		next := c.dec.Decode(fn, pc+1)
		evs = append(evs, BytecodeEvent{PC: pc + 1, Depth: depth, Text: next.Text, Loc: op.Loc, Func: info})
	}
	c.append(id, evs...)
}

func (c *Collector) append(id int, evs ...BytecodeEvent) {
	t := c.attempt(id, evs[0].Loc)
	t.Events = append(t.Events, evs...)
	c.met.EventsRecorded(len(evs))
}

// End marks the current attempt of id as completed. An End without a
// recording attempt is ignored.
func (c *Collector) End(id int) {
	t, ok := c.current[id]
	if !ok || t.Status != StatusRecording {
		c.met.OrphanEvent()
		return
	}
	t.Status = StatusCompleted
	t.Stop = t.stopFromEvents()
	c.met.TraceCompleted()
}

// Abort marks the current attempt of id as abandoned at fn/pc.
func (c *Collector) Abort(id int, fn FuncRef, pc, code int, info ErrInfo) {
	loc := c.dec.Location(fn, pc)
	msg := c.msgs.Resolve(code, info)
	msg = RewriteBytecodeRefs(msg, c.ops)

	t := c.attempt(id, loc)
	t.Status = StatusAborted
	t.Stop = loc
	t.Abort = &AbortDetail{Loc: loc, Code: code, Message: msg}
	c.met.TraceAborted(code)
}

// Len returns the number of attempts collected so far.
func (c *Collector) Len() int {
	return len(c.traces)
}

// Traces returns every attempt in observation order.
func (c *Collector) Traces() []*Trace {
	out := make([]*Trace, len(c.traces))
	copy(out, c.traces)
	return out
}

// Drain returns every attempt and resets the collector. Attempts still
// recording keep their status but stop at their last event.
func (c *Collector) Drain() []*Trace {
	out := c.traces
	for _, t := range out {
		if t.Status == StatusRecording {
			t.Stop = t.stopFromEvents()
		}
	}
	c.traces = nil
	c.current = make(map[int]*Trace)
	return out
}

var bytecodeRef = regexp.MustCompile(`bytecode (\d+)`)

// RewriteBytecodeRefs replaces "bytecode N" with "bytecode NAME" using ops.
// References with no known name are left alone.
func RewriteBytecodeRefs(msg string, ops OpcodeTable) string {
	if ops == nil {
		return msg
	}
	return bytecodeRef.ReplaceAllStringFunc(msg, func(m string) string {
		n, err := strconv.Atoi(m[len("bytecode "):])
		if err != nil {
			return m
		}
		name, ok := ops.Name(n)
		if !ok {
			return m
		}
		return "bytecode " + name
	})
}
