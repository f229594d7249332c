package observ

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func fakeClock(step time.Duration) func() time.Time {
	cur := time.Unix(0, 0)
	return func() time.Time {
		cur = cur.Add(step)
		return cur
	}
}

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(2 * time.Millisecond)

	i := tm.Begin("dedup")
	tm.End(i, "4 reps")
	j := tm.Begin("render")
	tm.End(j, "")
	tm.End(42, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(r.Phases))
	}
	if r.Phases[0].DurationMS != 2 || r.TotalMS != 4 {
		t.Errorf("durations = %v / total %v", r.Phases[0].DurationMS, r.TotalMS)
	}
	if r.Phases[0].Note != "4 reps" {
		t.Errorf("note = %q", r.Phases[0].Note)
	}
}

func TestWriteSummary(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(time.Millisecond)
	tm.End(tm.Begin("aggregate"), "2 buckets")

	var buf bytes.Buffer
	if err := tm.WriteSummary(&buf); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"timings:", "aggregate", "// 2 buckets", "total"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
