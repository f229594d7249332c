// Package aggregate buckets deduplicated traces by a classification label.
package aggregate

import (
	"fmt"
	"sort"

	"tracereport/internal/jit"
)

// SuccessLabel is the label of completed traces.
const SuccessLabel = "Success"

// RecordingLabel is the label of traces that never ended or aborted.
const RecordingLabel = "Recording (incomplete)"

// Classifier maps a trace to a bucket label.
type Classifier func(t *jit.Trace) string

// ByReason labels aborted traces with their message.
func ByReason(t *jit.Trace) string {
	switch t.Status {
	case jit.StatusCompleted:
		return SuccessLabel
	case jit.StatusRecording:
		return RecordingLabel
	}
	return t.Message()
}

// ByLocation labels aborted traces with "source:line (message)" and
// incomplete ones with their stop location.
func ByLocation(t *jit.Trace) string {
	switch t.Status {
	case jit.StatusCompleted:
		return SuccessLabel
	case jit.StatusRecording:
		return fmt.Sprintf("%s (%s)", t.Stop, RecordingLabel)
	}
	var loc jit.Location
	if t.Abort != nil {
		loc = t.Abort.Loc
	}
	return fmt.Sprintf("%s:%d (%s)", loc.File, loc.Line, t.Message())
}

// Bucket is one classification group.
type Bucket struct {
	Label  string
	Traces int
	Events int
	Lines  int
}

func (b *Bucket) add(t *jit.Trace) {
	b.Traces++
	b.Events += len(t.Events)
	b.Lines += t.DistinctLines()
}

// Result holds the buckets of one classifier and their grand total.
type Result struct {
	Buckets []Bucket // descending by Events
	Total   Bucket
}

// Aggregate groups traces by classify. Buckets are ordered by descending
// event count; ties keep first-seen order.
func Aggregate(traces []*jit.Trace, classify Classifier) Result {
	index := make(map[string]int)
	var buckets []Bucket
	for _, t := range traces {
		label := classify(t)
		i, ok := index[label]
		if !ok {
			i = len(buckets)
			index[label] = i
			buckets = append(buckets, Bucket{Label: label})
		}
		buckets[i].add(t)
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Events > buckets[j].Events
	})

	total := Bucket{Label: "Total"}
	for _, b := range buckets {
		total.Traces += b.Traces
		total.Events += b.Events
		total.Lines += b.Lines
	}
	return Result{Buckets: buckets, Total: total}
}

// Ordered returns the buckets with the success bucket first.
func (r Result) Ordered() []Bucket {
	out := make([]Bucket, 0, len(r.Buckets))
	for _, b := range r.Buckets {
		if b.Label == SuccessLabel {
			out = append(out, b)
		}
	}
	for _, b := range r.Buckets {
		if b.Label != SuccessLabel {
			out = append(out, b)
		}
	}
	return out
}

// Percent returns 100*part/total, or 0 when total is 0.
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(part) / float64(total)
}

// Shares returns the trace, event and line percentages of b against r.Total.
func (r Result) Shares(b Bucket) (traces, events, lines float64) {
	return Percent(b.Traces, r.Total.Traces),
		Percent(b.Events, r.Total.Events),
		Percent(b.Lines, r.Total.Lines)
}
