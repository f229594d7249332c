// Package dedup merges repeated compilation attempts that start and stop at
// the same place and recorded the same operations.
package dedup

import (
	"slices"

	"tracereport/internal/jit"
)

// Key groups attempts by where they started and stopped.
type Key struct {
	StartFile string
	StartLine int
	StopFile  string
	StopLine  int
}

// KeyOf returns the location key of t.
func KeyOf(t *jit.Trace) Key {
	return Key{
		StartFile: t.Start.File,
		StartLine: t.Start.Line,
		StopFile:  t.Stop.File,
		StopLine:  t.Stop.Line,
	}
}

type representative struct {
	trace *jit.Trace
	texts []string
}

// Traces returns one representative per distinct attempt, in first-seen
// order, with Attempts set to the number of attempts it stands for.
// The input traces are not modified; representatives are shallow copies.
func Traces(traces []*jit.Trace) []*jit.Trace {
	groups := make(map[Key][]*representative)
	out := make([]*jit.Trace, 0, len(traces))

	for _, t := range traces {
		key := KeyOf(t)
		texts := t.Texts()
		weight := max(t.Attempts, 1)

		if rep := match(groups[key], texts); rep != nil {
			rep.trace.Attempts += weight
			continue
		}

		cp := *t
		cp.Attempts = weight
		groups[key] = append(groups[key], &representative{trace: &cp, texts: texts})
		out = append(out, &cp)
	}
	return out
}

func match(reps []*representative, texts []string) *representative {
	for _, rep := range reps {
		if slices.Equal(rep.texts, texts) {
			return rep
		}
	}
	return nil
}
