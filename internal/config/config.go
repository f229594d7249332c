// Package config loads report settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"tracereport/internal/bytecode"
	"tracereport/internal/errmsg"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the top-level configuration.
type Config struct {
	Report   ReportConfig    `toml:"report"`
	Opcodes  OpcodeConfig    `toml:"opcodes"`
	Messages []MessageConfig `toml:"messages"`
}

// ReportConfig controls listing layout.
type ReportConfig struct {
	ContextLines int    `toml:"context_lines"`
	OpWidth      int    `toml:"op_width"`
	Color        string `toml:"color"` // auto|on|off
	SourceRoot   string `toml:"source_root"`
}

// OpcodeConfig overrides the opcode name table.
type OpcodeConfig struct {
	Stride int      `toml:"stride"`
	Names  string   `toml:"names"`
	List   []string `toml:"list"` // packed with Stride when Names is empty
	Paired []string `toml:"paired"`
}

// MessageConfig overrides one abort message template.
type MessageConfig struct {
	Code     int    `toml:"code"`
	Template string `toml:"template"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Report: ReportConfig{
			ContextLines: 5,
			OpWidth:      40,
			Color:        "auto",
		},
		Opcodes: OpcodeConfig{
			Stride: bytecode.DefaultStride,
			Paired: append([]string(nil), bytecode.DefaultPaired...),
		},
	}
}

// Load reads path on top of the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(string(data))
}

// Parse decodes TOML text on top of the defaults and validates it.
func Parse(text string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(text, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("%w: unknown keys %s", ErrInvalid, strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Report.ContextLines < 0 {
		return fmt.Errorf("%w: report.context_lines must be >= 0", ErrInvalid)
	}
	if c.Report.OpWidth <= 0 {
		return fmt.Errorf("%w: report.op_width must be > 0", ErrInvalid)
	}
	if _, err := ParseColor(c.Report.Color); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Opcodes.Stride <= 0 {
		return fmt.Errorf("%w: opcodes.stride must be > 0", ErrInvalid)
	}
	for _, m := range c.Messages {
		if m.Template == "" {
			return fmt.Errorf("%w: message %d has an empty template", ErrInvalid, m.Code)
		}
	}
	return nil
}

// Table builds the opcode name table described by the config.
func (c Config) Table() bytecode.NameTable {
	switch {
	case c.Opcodes.Names != "":
		return bytecode.NameTable{Names: c.Opcodes.Names, Stride: c.Opcodes.Stride}
	case len(c.Opcodes.List) > 0:
		return bytecode.NameTable{Names: bytecode.Pack(c.Opcodes.List, c.Opcodes.Stride), Stride: c.Opcodes.Stride}
	default:
		return bytecode.NameTable{Names: bytecode.Pack(defaultList(), c.Opcodes.Stride), Stride: c.Opcodes.Stride}
	}
}

// Program returns an empty program decoding with the configured table.
func (c Config) Program() *bytecode.Program {
	return bytecode.NewProgram(c.Table(), c.Opcodes.Paired)
}

// MessageTable returns the abort message table with overrides applied.
func (c Config) MessageTable(describe errmsg.Describer) *errmsg.Table {
	t := errmsg.New(describe)
	for _, m := range c.Messages {
		t.Set(m.Code, m.Template)
	}
	return t
}

func defaultList() []string {
	t := bytecode.DefaultTable()
	out := make([]string, 0, t.Len())
	for op := 0; op < t.Len(); op++ {
		name, _ := t.Name(op)
		out = append(out, name)
	}
	return out
}

// ColorMode is the report.color setting.
type ColorMode uint8

const (
	ColorAuto ColorMode = iota
	ColorOn
	ColorOff
)

// ParseColor converts a color setting.
func ParseColor(s string) (ColorMode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return ColorAuto, nil
	case "on", "always", "true":
		return ColorOn, nil
	case "off", "never", "false":
		return ColorOff, nil
	default:
		return ColorAuto, fmt.Errorf("invalid color mode: %q (expected: auto|on|off)", s)
	}
}
