package bytecode

import (
	"fmt"
	"strconv"
	"strings"

	"tracereport/internal/jit"
)

// Instr is one instruction of a recorded function prototype.
type Instr struct {
	Op   string
	Args string
	Line int
}

// Proto describes a function the engine may record operations from.
type Proto struct {
	Ref             jit.FuncRef
	Name            string
	Source          string
	LineDefined     int
	LastLineDefined int
	Native          bool
	Code            []Instr
}

// Program is a table-driven jit.Decoder over registered prototypes.
type Program struct {
	protos map[jit.FuncRef]*Proto
	table  NameTable
	paired map[int]bool
}

// NewProgram creates an empty program. paired names the operations that are
// always followed by a branch on the same line.
func NewProgram(table NameTable, paired []string) *Program {
	p := &Program{
		protos: make(map[jit.FuncRef]*Proto),
		table:  table,
		paired: make(map[int]bool, len(paired)),
	}
	for _, name := range paired {
		if op, ok := table.Lookup(name); ok {
			p.paired[op] = true
		}
	}
	return p
}

// Add registers proto, replacing any earlier prototype with the same Ref.
func (p *Program) Add(proto Proto) {
	pr := proto
	p.protos[proto.Ref] = &pr
}

// Proto returns the prototype registered for fn.
func (p *Program) Proto(fn jit.FuncRef) (*Proto, bool) {
	pr, ok := p.protos[fn]
	return pr, ok
}

// Table returns the opcode name table.
func (p *Program) Table() NameTable {
	return p.table
}

func (p *Program) instr(fn jit.FuncRef, pc int) (*Proto, *Instr) {
	pr, ok := p.protos[fn]
	if !ok {
		return nil, nil
	}
	if pr.Native || pc < 0 || pc >= len(pr.Code) {
		return pr, nil
	}
	return pr, &pr.Code[pc]
}

// Decode returns the display text, opcode and location of pc in fn.
func (p *Program) Decode(fn jit.FuncRef, pc int) jit.Op {
	_, in := p.instr(fn, pc)
	if in == nil {
		return jit.Op{Text: fmt.Sprintf("%04d ???", pc), Opcode: -1, Loc: p.Location(fn, pc)}
	}
	opcode, ok := p.table.Lookup(in.Op)
	if !ok {
		opcode = -1
	}
	text := strings.TrimRight(fmt.Sprintf("%04d %-6s %s", pc, in.Op, in.Args), " ")
	return jit.Op{
		Text:   text,
		Opcode: opcode,
		Loc:    p.Location(fn, pc),
		Paired: ok && p.paired[opcode],
	}
}

// Func returns the identity of fn; native and unknown functions have none.
func (p *Program) Func(fn jit.FuncRef) jit.FuncInfo {
	pr, ok := p.protos[fn]
	if !ok || pr.Native || pr.Source == "" {
		return jit.FuncInfo{}
	}
	return jit.FuncInfo{
		Source:          pr.Source,
		LineDefined:     pr.LineDefined,
		LastLineDefined: pr.LastLineDefined,
	}
}

// Describe returns a short label for fn.
func (p *Program) Describe(fn jit.FuncRef) string {
	pr, ok := p.protos[fn]
	switch {
	case !ok:
		return "func#" + strconv.Itoa(int(fn))
	case pr.Native || pr.Source == "":
		if pr.Name != "" {
			return "builtin#" + pr.Name
		}
		return "func#" + strconv.Itoa(int(fn))
	default:
		return pr.Source + ":" + strconv.Itoa(pr.LineDefined)
	}
}

// Location returns the source location of pc in fn. A pc outside the code
// resolves to the line the function was defined on.
func (p *Program) Location(fn jit.FuncRef, pc int) jit.Location {
	pr, in := p.instr(fn, pc)
	if pr == nil || pr.Native || pr.Source == "" {
		return jit.Location{}
	}
	if in == nil {
		return jit.Location{File: pr.Source, Line: pr.LineDefined}
	}
	return jit.Location{File: pr.Source, Line: in.Line}
}
