package dedup

import (
	"fmt"
	"testing"

	"tracereport/internal/jit"
)

func mkTrace(id int, start, stop int, texts ...string) *jit.Trace {
	t := jit.NewTrace(id, jit.Location{File: "a.lua", Line: start})
	for i, s := range texts {
		t.Events = append(t.Events, jit.BytecodeEvent{PC: i, Text: s, Loc: jit.Location{File: "a.lua", Line: start + i}})
	}
	t.Status = jit.StatusCompleted
	t.Stop = jit.Location{File: "a.lua", Line: stop}
	return t
}

func TestIdenticalAttemptsMerge(t *testing.T) {
	a := mkTrace(1, 10, 12, "x", "y")
	b := mkTrace(1, 10, 12, "x", "y")

	out := Traces([]*jit.Trace{a, b})
	if len(out) != 1 {
		t.Fatalf("expected 1 representative, got %d", len(out))
	}
	if out[0].Attempts != 2 {
		t.Errorf("attempts = %d, want 2", out[0].Attempts)
	}
	if a.Attempts != 0 || b.Attempts != 0 {
		t.Errorf("input traces were modified")
	}
}

func TestDifferentTextSameKey(t *testing.T) {
	a := mkTrace(1, 10, 12, "x", "y")
	b := mkTrace(2, 10, 12, "x", "z")

	out := Traces([]*jit.Trace{a, b})
	if len(out) != 2 {
		t.Fatalf("expected 2 representatives, got %d", len(out))
	}
	for i, rep := range out {
		if rep.Attempts != 1 {
			t.Errorf("rep %d attempts = %d, want 1", i, rep.Attempts)
		}
	}
}

func TestDifferentLengthSameKey(t *testing.T) {
	out := Traces([]*jit.Trace{mkTrace(1, 1, 2, "x"), mkTrace(1, 1, 2, "x", "x")})
	if len(out) != 2 {
		t.Fatalf("expected 2 representatives, got %d", len(out))
	}
}

func TestSameTextDifferentKey(t *testing.T) {
	out := Traces([]*jit.Trace{mkTrace(1, 1, 2, "x"), mkTrace(1, 1, 3, "x")})
	if len(out) != 2 {
		t.Fatalf("expected 2 representatives, got %d", len(out))
	}
}

func TestFirstSeenOrder(t *testing.T) {
	in := []*jit.Trace{
		mkTrace(5, 1, 2, "a"),
		mkTrace(6, 3, 4, "b"),
		mkTrace(5, 1, 2, "a"),
		mkTrace(7, 5, 6, "c"),
	}
	out := Traces(in)
	want := []int{5, 6, 7}
	if len(out) != len(want) {
		t.Fatalf("got %d reps, want %d", len(out), len(want))
	}
	for i, id := range want {
		if out[i].ID != id {
			t.Errorf("out[%d].ID = %d, want %d", i, out[i].ID, id)
		}
	}
}

func TestIdempotent(t *testing.T) {
	var in []*jit.Trace
	for i := 0; i < 12; i++ {
		in = append(in, mkTrace(i%3, i%2, 5, fmt.Sprint(i%4)))
	}
	once := Traces(in)
	twice := Traces(once)
	if len(once) != len(twice) {
		t.Fatalf("second pass changed length: %d -> %d", len(once), len(twice))
	}
	for i := range once {
		if KeyOf(once[i]) != KeyOf(twice[i]) || once[i].Attempts != twice[i].Attempts {
			t.Errorf("rep %d changed: %+v/%d -> %+v/%d", i, KeyOf(once[i]), once[i].Attempts, KeyOf(twice[i]), twice[i].Attempts)
		}
	}
}

func TestAttemptsSumPerKey(t *testing.T) {
	var in []*jit.Trace
	for i := 0; i < 30; i++ {
		in = append(in, mkTrace(i, i%3, 9, fmt.Sprint(i%5)))
	}
	raw := make(map[Key]int)
	for _, tr := range in {
		raw[KeyOf(tr)]++
	}
	got := make(map[Key]int)
	for _, rep := range Traces(in) {
		got[KeyOf(rep)] += rep.Attempts
	}
	for k, n := range raw {
		if got[k] != n {
			t.Errorf("key %+v: attempts %d, raw %d", k, got[k], n)
		}
	}
}
