// Package errmsg resolves trace abort codes to human-readable messages.
package errmsg

import (
	"fmt"
	"strconv"
	"strings"

	"tracereport/internal/jit"
)

// Describer labels function-typed abort info.
type Describer interface {
	Describe(fn jit.FuncRef) string
}

// builtin holds the default abort templates, indexed by code.
var builtin = []string{
	"error thrown or hook called during recording",
	"trace too short",
	"trace too long",
	"trace too deep",
	"too many snapshots",
	"blacklisted",
	"retry recording",
	"NYI: bytecode %d",
	"leaving loop in root trace",
	"inner loop in root trace",
	"loop unroll limit reached",
	"bad argument type",
	"JIT compilation disabled for function",
	"call unroll limit reached",
	"down-recursion, restarting",
	"NYI: unsupported variant of FastFunc %s",
	"NYI: return to lower frame",
	"store with nil or NaN key",
	"missing metamethod",
	"looping index lookup",
	"NYI: mixed sparse/dense table",
	"symbol not in cache",
	"NYI: unsupported C type conversion",
	"NYI: unsupported C function type",
	"guard would always fail",
	"too many PHIs",
	"persistent type instability",
	"failed to allocate mcode memory",
	"machine code too long",
	"hit mcode limit (retrying)",
	"too many spill slots",
	"inconsistent register allocation",
	"NYI: cannot assemble IR instruction %d",
	"NYI: PHI shuffling too complex",
	"NYI: register coalescing too complex",
}

// Table is a jit.MessageResolver backed by format templates.
type Table struct {
	templates map[int]string
	describe  Describer
}

// New returns a table holding the built-in templates. describe labels
// function-typed info and may be nil.
func New(describe Describer) *Table {
	t := &Table{
		templates: make(map[int]string, len(builtin)),
		describe:  describe,
	}
	for code, tmpl := range builtin {
		t.templates[code] = tmpl
	}
	return t
}

// Set overrides the template for code.
func (t *Table) Set(code int, template string) {
	t.templates[code] = template
}

// Template returns the template for code.
func (t *Table) Template(code int) (string, bool) {
	tmpl, ok := t.templates[code]
	return tmpl, ok
}

// Resolve formats the message for code. Unknown codes surface the raw code
// and info instead of failing.
func (t *Table) Resolve(code int, info jit.ErrInfo) string {
	arg := t.infoString(info)
	tmpl, ok := t.templates[code]
	if !ok {
		if arg == "" {
			return "error " + strconv.Itoa(code)
		}
		return "error " + strconv.Itoa(code) + " (" + arg + ")"
	}

	switch {
	case strings.Contains(tmpl, "%d"):
		if info.Kind == jit.InfoNumber {
			return strings.Replace(tmpl, "%d", strconv.Itoa(info.Num), 1)
		}
		return strings.Replace(tmpl, "%d", arg, 1)
	case strings.Contains(tmpl, "%s"):
		return strings.Replace(tmpl, "%s", arg, 1)
	default:
		return tmpl
	}
}

func (t *Table) infoString(info jit.ErrInfo) string {
	switch info.Kind {
	case jit.InfoNumber:
		return strconv.Itoa(info.Num)
	case jit.InfoString:
		return info.Str
	case jit.InfoFunc:
		if t.describe != nil {
			return t.describe.Describe(info.Func)
		}
		return fmt.Sprintf("func#%d", info.Func)
	default:
		return ""
	}
}
