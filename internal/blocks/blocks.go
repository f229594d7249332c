// Package blocks splits a trace into function-scoped, line-grouped blocks
// for display.
package blocks

import (
	"sort"

	"tracereport/internal/jit"
)

// Line groups the events of one source line inside a block.
// Number is 0 for events that arrived before any sourced line.
type Line struct {
	Number int
	Events []jit.BytecodeEvent
}

// Texts returns the display text of the line's events in execution order.
func (l Line) Texts() []string {
	out := make([]string, len(l.Events))
	for i, ev := range l.Events {
		out[i] = ev.Text
	}
	return out
}

// Block is a contiguous run of events from one function.
type Block struct {
	Func      jit.FuncInfo
	Events    []jit.BytecodeEvent // execution order
	Lines     []Line              // ascending by Number
	FirstLine int
	LastLine  int

	hasLines bool
	byNumber map[int]int
	last     int // index of the last line an event was added to
}

func newBlock(fn jit.FuncInfo) *Block {
	return &Block{Func: fn, byNumber: make(map[int]int), last: -1}
}

func (b *Block) add(ev jit.BytecodeEvent) {
	b.Events = append(b.Events, ev)

	if !ev.Loc.HasSource() {
		if b.last < 0 {
			b.last = b.line(0)
		}
		b.Lines[b.last].Events = append(b.Lines[b.last].Events, ev)
		return
	}

	n := ev.Loc.Line
	b.last = b.line(n)
	b.Lines[b.last].Events = append(b.Lines[b.last].Events, ev)

	if !b.hasLines {
		b.FirstLine, b.LastLine, b.hasLines = n, n, true
		return
	}
	b.FirstLine = min(b.FirstLine, n)
	b.LastLine = max(b.LastLine, n)
}

// line returns the index of line n, appending it on first sight.
func (b *Block) line(n int) int {
	if i, ok := b.byNumber[n]; ok {
		return i
	}
	b.Lines = append(b.Lines, Line{Number: n})
	b.byNumber[n] = len(b.Lines) - 1
	return len(b.Lines) - 1
}

func (b *Block) close() {
	sort.SliceStable(b.Lines, func(i, j int) bool {
		return b.Lines[i].Number < b.Lines[j].Number
	})
	b.byNumber = nil
	b.last = -1
}

// HasSource reports whether any event in the block carried a source line.
func (b *Block) HasSource() bool {
	return b.hasLines
}

// Build partitions events into blocks. A new block starts whenever the
// function identity changes, even if an earlier block had the same one.
func Build(events []jit.BytecodeEvent) []*Block {
	var out []*Block
	var cur *Block
	for _, ev := range events {
		if cur == nil || cur.Func != ev.Func {
			if cur != nil {
				cur.close()
			}
			cur = newBlock(ev.Func)
			out = append(out, cur)
		}
		cur.add(ev)
	}
	if cur != nil {
		cur.close()
	}
	return out
}
