package jit_test

import (
	"testing"

	"tracereport/internal/bytecode"
	"tracereport/internal/errmsg"
	"tracereport/internal/jit"
)

func newCollector() *jit.Collector {
	prog := bytecode.NewProgram(bytecode.DefaultTable(), bytecode.DefaultPaired)
	prog.Add(bytecode.Proto{
		Ref:             1,
		Source:          "loop.lua",
		LineDefined:     1,
		LastLineDefined: 6,
		Code: []bytecode.Instr{
			{Op: "FUNCF", Args: "3", Line: 1},
			{Op: "KSHORT", Args: "1 0", Line: 2},
			{Op: "ISGE", Args: "1 0", Line: 3},
			{Op: "JMP", Args: "2 => 0006", Line: 3},
			{Op: "ADDVN", Args: "1 1 0", Line: 4},
			{Op: "LOOP", Args: "2 => 0006", Line: 5},
		},
	})
	prog.Add(bytecode.Proto{Ref: 2, Name: "print", Native: true})
	return jit.NewCollector(prog, errmsg.New(prog), prog.Table())
}

func TestCollectorCompletedTrace(t *testing.T) {
	c := newCollector()
	c.Handle(jit.Begin{ID: 1, Func: 1, PC: 1})
	c.Handle(jit.Record{ID: 1, Func: 1, PC: 1})
	c.Handle(jit.Record{ID: 1, Func: 1, PC: 4})
	c.Handle(jit.End{ID: 1})

	traces := c.Traces()
	if len(traces) != 1 {
		t.Fatalf("expected 1 trace, got %d", len(traces))
	}
	tr := traces[0]
	if tr.Status != jit.StatusCompleted {
		t.Errorf("status = %v", tr.Status)
	}
	if tr.Start != (jit.Location{File: "loop.lua", Line: 2}) {
		t.Errorf("start = %+v", tr.Start)
	}
	if tr.Stop != tr.Events[len(tr.Events)-1].Loc {
		t.Errorf("stop %+v must equal last event location %+v", tr.Stop, tr.Events[len(tr.Events)-1].Loc)
	}
}

func TestCollectorEmptyTraceStopsAtStart(t *testing.T) {
	c := newCollector()
	c.Begin(3, 1, 4)
	c.End(3)

	tr := c.Traces()[0]
	if len(tr.Events) != 0 {
		t.Fatalf("expected no events, got %d", len(tr.Events))
	}
	if tr.Stop != tr.Start {
		t.Errorf("stop %+v must equal start %+v", tr.Stop, tr.Start)
	}
}

func TestCollectorPairedOperation(t *testing.T) {
	c := newCollector()
	c.Begin(1, 1, 1)
	c.Record(1, 1, 2, 0)
	c.End(1)

	evs := c.Traces()[0].Events
	if len(evs) != 2 {
		t.Fatalf("paired op should append 2 events, got %d", len(evs))
	}
	if evs[1].Text != "0003 JMP    2 => 0006" {
		t.Errorf("continuation text = %q", evs[1].Text)
	}
	if evs[1].Loc != evs[0].Loc {
		t.Errorf("continuation must share location: %+v vs %+v", evs[1].Loc, evs[0].Loc)
	}
}

func TestCollectorNativeFrame(t *testing.T) {
	c := newCollector()
	c.Begin(1, 1, 1)
	c.Record(1, 2, -1, 1)
	c.End(1)

	ev := c.Traces()[0].Events[0]
	if !ev.Native() {
		t.Error("expected native marker")
	}
	if ev.Text != "(native builtin#print)" {
		t.Errorf("native text = %q", ev.Text)
	}
	if ev.Loc.HasSource() || ev.Func.HasSource() {
		t.Errorf("native marker must have no source: %+v", ev)
	}
}

func TestCollectorAbortRewritesBytecode(t *testing.T) {
	c := newCollector()
	c.Begin(2, 1, 1)
	c.Record(2, 1, 4, 0)
	c.Abort(2, 1, 5, 7, jit.NumberInfo(5))

	tr := c.Traces()[0]
	if tr.Status != jit.StatusAborted {
		t.Fatalf("status = %v", tr.Status)
	}
	if tr.Abort.Message != "NYI: bytecode ISNEV" {
		t.Errorf("message = %q", tr.Abort.Message)
	}
	if tr.Stop != tr.Abort.Loc || tr.Stop.Line != 5 {
		t.Errorf("stop = %+v, abort loc = %+v", tr.Stop, tr.Abort.Loc)
	}
}

func TestCollectorReusedIDs(t *testing.T) {
	c := newCollector()
	c.Begin(1, 1, 1)
	c.Begin(2, 1, 1)
	c.Record(1, 1, 1, 0)
	c.Record(2, 1, 4, 0)
	c.End(2)
	c.Abort(1, 1, 1, 10, jit.ErrInfo{})
	c.Begin(1, 1, 1)
	c.End(1)

	traces := c.Traces()
	if len(traces) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(traces))
	}
	if traces[0].ID != 1 || traces[0].Status != jit.StatusAborted {
		t.Errorf("first attempt = %d/%v", traces[0].ID, traces[0].Status)
	}
	if traces[2].ID != 1 || traces[2].Status != jit.StatusCompleted {
		t.Errorf("reused id attempt = %d/%v", traces[2].ID, traces[2].Status)
	}
	if len(traces[0].Events) != 1 || len(traces[1].Events) != 1 {
		t.Errorf("events leaked across interleaved ids")
	}
}

func TestCollectorOrphans(t *testing.T) {
	c := newCollector()
	c.End(9)
	if c.Len() != 0 {
		t.Fatalf("End without Begin must not create a trace")
	}
	c.Record(9, 1, 4, 0)
	if c.Len() != 1 {
		t.Fatalf("Record without Begin should open an attempt")
	}
	if got := c.Traces()[0].Start.Line; got != 4 {
		t.Errorf("implicit start line = %d, want 4", got)
	}
}

func TestCollectorDrain(t *testing.T) {
	c := newCollector()
	c.Begin(1, 1, 1)
	c.End(1)
	if n := len(c.Drain()); n != 1 {
		t.Fatalf("Drain returned %d traces", n)
	}
	if c.Len() != 0 {
		t.Errorf("collector not reset")
	}
}

func TestCollectorDrainStopsRecordingAtLastEvent(t *testing.T) {
	c := newCollector()
	c.Begin(7, 1, 1)
	c.Record(7, 1, 1, 0)
	c.Record(7, 1, 4, 0)

	traces := c.Drain()
	if len(traces) != 1 {
		t.Fatalf("expected 1 trace, got %d", len(traces))
	}
	tr := traces[0]
	if tr.Status != jit.StatusRecording {
		t.Errorf("status = %v, want recording", tr.Status)
	}
	want := jit.Location{File: "loop.lua", Line: 4}
	if tr.Stop != want {
		t.Errorf("stop = %+v, want %+v", tr.Stop, want)
	}

	c.Begin(8, 1, 2)
	if tr := c.Drain()[0]; tr.Stop != tr.Start {
		t.Errorf("trace without events: stop %+v must equal start %+v", tr.Stop, tr.Start)
	}
}

func TestDistinctLines(t *testing.T) {
	tr := jit.NewTrace(1, jit.Location{})
	tr.Events = []jit.BytecodeEvent{
		{Text: "a", Loc: jit.Location{File: "a.lua", Line: 1}},
		{Text: "b", Loc: jit.Location{File: "a.lua", Line: 1}},
		{Text: "c", Loc: jit.Location{File: "b.lua", Line: 1}},
		{Text: "d", PC: -1},
	}
	if got := tr.DistinctLines(); got != 2 {
		t.Errorf("DistinctLines = %d, want 2", got)
	}
}

func TestRewriteBytecodeRefs(t *testing.T) {
	ops := bytecode.DefaultTable()
	tests := []struct {
		in, want string
	}{
		{"NYI: bytecode 51", "NYI: bytecode FNEW"},
		{"bytecode 5 and bytecode 88", "bytecode ISNEV and bytecode JMP"},
		{"bytecode 9999", "bytecode 9999"},
		{"no refs", "no refs"},
	}
	for _, tt := range tests {
		if got := jit.RewriteBytecodeRefs(tt.in, ops); got != tt.want {
			t.Errorf("RewriteBytecodeRefs(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
