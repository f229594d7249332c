package jit

import "testing"

type recorder struct{ kinds []Kind }

func (r *recorder) Handle(ev Event) { r.kinds = append(r.kinds, ev.Kind()) }

func TestGateDropsWhileDisabled(t *testing.T) {
	var rec recorder
	g := NewGate(&rec)
	var _ Instrumentation = g

	g.Handle(Begin{ID: 1})
	g.SetEnabled(false)
	if g.Enabled() {
		t.Fatal("gate should be disabled")
	}
	g.Handle(Record{ID: 1})
	g.Handle(End{ID: 1})
	g.SetEnabled(true)
	g.Handle(End{ID: 1})

	if len(rec.kinds) != 2 || rec.kinds[0] != KindBegin || rec.kinds[1] != KindEnd {
		t.Fatalf("delivered = %v", rec.kinds)
	}
	if g.Dropped() != 2 {
		t.Fatalf("dropped = %d, want 2", g.Dropped())
	}
}

func TestTee(t *testing.T) {
	var a, b recorder
	Tee{&a, &b}.Handle(Abort{ID: 3})
	if len(a.kinds) != 1 || len(b.kinds) != 1 || a.kinds[0] != KindAbort {
		t.Fatalf("a=%v b=%v", a.kinds, b.kinds)
	}
}
