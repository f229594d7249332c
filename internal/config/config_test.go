package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Report.ContextLines)
	assert.Equal(t, 40, cfg.Report.OpWidth)

	name, ok := cfg.Table().Name(5)
	assert.True(t, ok)
	assert.Equal(t, "ISNEV", name)
}

func TestParseOverrides(t *testing.T) {
	cfg, err := Parse(`
[report]
context_lines = 2
op_width = 30
color = "off"
source_root = "/src"

[opcodes]
stride = 4
list = ["ADD", "SUB", "JMP"]
paired = ["SUB"]

[[messages]]
code = 7
template = "unsupported op %d"
`)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Report.ContextLines)
	assert.Equal(t, "/src", cfg.Report.SourceRoot)
	require.Len(t, cfg.Messages, 1)
	assert.Equal(t, "unsupported op %d", cfg.Messages[0].Template)

	table := cfg.Table()
	name, ok := table.Name(2)
	assert.True(t, ok)
	assert.Equal(t, "JMP", name)
	assert.Equal(t, "ADD SUB JMP ", table.Names)
}

func TestDefaultListWithOtherStride(t *testing.T) {
	cfg, err := Parse("[opcodes]\nstride = 8\n")
	require.NoError(t, err)
	name, ok := cfg.Table().Name(88)
	assert.True(t, ok)
	assert.Equal(t, "JMP", name)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"negative context", "[report]\ncontext_lines = -1\n"},
		{"zero width", "[report]\nop_width = 0\n"},
		{"bad color", "[report]\ncolor = \"purple\"\n"},
		{"zero stride", "[opcodes]\nstride = 0\n"},
		{"empty template", "[[messages]]\ncode = 1\n"},
		{"unknown key", "[report]\ncontext = 3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			assert.True(t, errors.Is(err, ErrInvalid), "got %v", err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracereport.toml")
	require.NoError(t, os.WriteFile(path, []byte("[report]\nop_width = 50\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Report.OpWidth)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestSyntaxError(t *testing.T) {
	_, err := Parse("[report\n")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalid))
}

func TestMessageTableOverrides(t *testing.T) {
	cfg, err := Parse("[[messages]]\ncode = 1\ntemplate = \"way too short\"\n")
	require.NoError(t, err)

	msgs := cfg.MessageTable(nil)
	tmpl, ok := msgs.Template(1)
	assert.True(t, ok)
	assert.Equal(t, "way too short", tmpl)

	tmpl, ok = msgs.Template(2)
	assert.True(t, ok)
	assert.Equal(t, "trace too long", tmpl)
}

func TestProgramPairs(t *testing.T) {
	prog := Default().Program()
	op, ok := prog.Table().Lookup("JMP")
	assert.True(t, ok)
	assert.Equal(t, 88, op)
}
