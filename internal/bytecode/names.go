package bytecode

import (
	"strings"
)

// DefaultStride is the width of one entry in the default name table.
const DefaultStride = 6

var defaultOps = []string{
	"ISLT", "ISGE", "ISLE", "ISGT", "ISEQV", "ISNEV", "ISEQS", "ISNES",
	"ISEQN", "ISNEN", "ISEQP", "ISNEP", "ISTC", "ISFC", "IST", "ISF",
	"ISTYPE", "ISNUM", "MOV", "NOT", "UNM", "LEN", "ADDVN", "SUBVN",
	"MULVN", "DIVVN", "MODVN", "ADDNV", "SUBNV", "MULNV", "DIVNV", "MODNV",
	"ADDVV", "SUBVV", "MULVV", "DIVVV", "MODVV", "POW", "CAT", "KSTR",
	"KCDATA", "KSHORT", "KNUM", "KPRI", "KNIL", "UGET", "USETV", "USETS",
	"USETN", "USETP", "UCLO", "FNEW", "TNEW", "TDUP", "GGET", "GSET",
	"TGETV", "TGETS", "TGETB", "TGETR", "TSETV", "TSETS", "TSETB", "TSETM",
	"TSETR", "CALLM", "CALL", "CALLMT", "CALLT", "ITERC", "ITERN", "VARG",
	"ISNEXT", "RETM", "RET", "RET0", "RET1", "FORI", "JFORI", "FORL",
	"IFORL", "JFORL", "ITERL", "IITERL", "JITERL", "LOOP", "ILOOP", "JLOOP",
	"JMP", "FUNCF", "IFUNCF", "JFUNCF", "FUNCV", "IFUNCV", "JFUNCV", "FUNCC",
	"FUNCCW",
}

// DefaultPaired lists the comparison-class operations that are always
// followed by a JMP on the same line.
var DefaultPaired = []string{
	"ISLT", "ISGE", "ISLE", "ISGT", "ISEQV", "ISNEV", "ISEQS", "ISNES",
	"ISEQN", "ISNEN", "ISEQP", "ISNEP", "ISTC", "ISFC", "IST", "ISF",
}

// DefaultNames returns the packed default name table.
func DefaultNames() string {
	return Pack(defaultOps, DefaultStride)
}

// Pack lays names out in fixed-width slots of stride bytes.
// Longer names are truncated.
func Pack(names []string, stride int) string {
	var sb strings.Builder
	sb.Grow(len(names) * stride)
	for _, n := range names {
		if len(n) > stride {
			n = n[:stride]
		}
		sb.WriteString(n)
		sb.WriteString(strings.Repeat(" ", stride-len(n)))
	}
	return sb.String()
}

// NameTable is a packed opcode name table read at op*Stride offsets.
type NameTable struct {
	Names  string
	Stride int
}

// DefaultTable returns the built-in name table.
func DefaultTable() NameTable {
	return NameTable{Names: DefaultNames(), Stride: DefaultStride}
}

// Name returns the trimmed name for op.
func (t NameTable) Name(op int) (string, bool) {
	if op < 0 || t.Stride <= 0 {
		return "", false
	}
	lo := op * t.Stride
	hi := lo + t.Stride
	if hi > len(t.Names) {
		return "", false
	}
	name := strings.TrimSpace(t.Names[lo:hi])
	return name, name != ""
}

// Lookup returns the opcode number for name.
func (t NameTable) Lookup(name string) (int, bool) {
	if t.Stride <= 0 || name == "" {
		return 0, false
	}
	for op := 0; (op+1)*t.Stride <= len(t.Names); op++ {
		if n, _ := t.Name(op); n == name {
			return op, true
		}
	}
	return 0, false
}

// Len returns the number of slots in the table.
func (t NameTable) Len() int {
	if t.Stride <= 0 {
		return 0
	}
	return len(t.Names) / t.Stride
}
