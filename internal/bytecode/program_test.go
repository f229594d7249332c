package bytecode

import (
	"testing"

	"tracereport/internal/jit"
)

func testProgram() *Program {
	p := NewProgram(DefaultTable(), DefaultPaired)
	p.Add(Proto{
		Ref:             1,
		Name:            "loop",
		Source:          "main.lua",
		LineDefined:     3,
		LastLineDefined: 9,
		Code: []Instr{
			{Op: "FUNCF", Args: "4", Line: 3},
			{Op: "ISLT", Args: "0 1", Line: 4},
			{Op: "JMP", Args: "2 => 0005", Line: 4},
			{Op: "ADDVN", Args: "0 0 0", Line: 5},
		},
	})
	p.Add(Proto{Ref: 2, Name: "pairs", Native: true})
	return p
}

func TestProgramDecode(t *testing.T) {
	p := testProgram()

	op := p.Decode(1, 3)
	if op.Text != "0003 ADDVN  0 0 0" {
		t.Errorf("Decode text = %q", op.Text)
	}
	if op.Loc != (jit.Location{File: "main.lua", Line: 5}) {
		t.Errorf("Decode loc = %+v", op.Loc)
	}
	if op.Paired {
		t.Error("ADDVN must not be paired")
	}

	cmp := p.Decode(1, 1)
	if !cmp.Paired {
		t.Error("ISLT must be paired")
	}
	if cmp.Opcode != 0 {
		t.Errorf("ISLT opcode = %d, want 0", cmp.Opcode)
	}
}

func TestProgramDecodeUnknown(t *testing.T) {
	p := testProgram()

	op := p.Decode(1, 40)
	if op.Text != "0040 ???" {
		t.Errorf("text = %q", op.Text)
	}
	if op.Loc.Line != 3 {
		t.Errorf("out of range pc should resolve to definition line, got %d", op.Loc.Line)
	}

	op = p.Decode(77, 0)
	if op.Loc.HasSource() {
		t.Errorf("unknown function must have no source, got %+v", op.Loc)
	}
}

func TestProgramFuncAndDescribe(t *testing.T) {
	p := testProgram()

	info := p.Func(1)
	if info != (jit.FuncInfo{Source: "main.lua", LineDefined: 3, LastLineDefined: 9}) {
		t.Errorf("Func(1) = %+v", info)
	}
	if p.Func(2).HasSource() {
		t.Error("native function must have no source identity")
	}

	tests := []struct {
		fn   jit.FuncRef
		want string
	}{
		{1, "main.lua:3"},
		{2, "builtin#pairs"},
		{9, "func#9"},
	}
	for _, tt := range tests {
		if got := p.Describe(tt.fn); got != tt.want {
			t.Errorf("Describe(%d) = %q, want %q", tt.fn, got, tt.want)
		}
	}
}
