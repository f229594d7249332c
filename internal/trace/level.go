package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff Level = iota
	LevelReport
	LevelPhase
	LevelDetail
)

// String returns the string representation of Level.
func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelReport:
		return "report"
	case LevelPhase:
		return "phase"
	case LevelDetail:
		return "detail"
	default:
		return "unknown"
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "off", "":
		return LevelOff, nil
	case "report":
		return LevelReport, nil
	case "phase":
		return LevelPhase, nil
	case "detail":
		return LevelDetail, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|report|phase|detail)", s)
	}
}

// ShouldEmit returns true if the given scope should emit at this level.
func (l Level) ShouldEmit(scope Scope) bool {
	return l != LevelOff && Level(scope) <= l
}
