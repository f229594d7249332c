// Package eventlog records instrumentation notifications and function
// prototypes so a report can be produced after the engine has exited.
package eventlog

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"tracereport/internal/bytecode"
	"tracereport/internal/jit"
)

// Version is the log format version written in the header.
const Version = 1

var (
	// ErrBadHeader means the log does not start with a supported header.
	ErrBadHeader = errors.New("eventlog: missing or unsupported header")
	// ErrUnknownKind means an entry has a kind this reader does not know.
	ErrUnknownKind = errors.New("eventlog: unknown entry kind")
)

// Format selects the encoding of a log.
type Format uint8

const (
	FormatAuto    Format = iota // pick from the file extension
	FormatNDJSON                // one JSON object per line
	FormatMsgpack               // stream of msgpack maps
)

// String returns the string representation of Format.
func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatNDJSON:
		return "ndjson"
	case FormatMsgpack:
		return "msgpack"
	default:
		return "unknown"
	}
}

// ParseFormat converts a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "ndjson", "json", "jsonl":
		return FormatNDJSON, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	default:
		return FormatAuto, fmt.Errorf("invalid event log format: %q (expected: auto|ndjson|msgpack)", s)
	}
}

// Detect resolves FormatAuto from path; other formats are returned as is.
func Detect(path string, f Format) Format {
	if f != FormatAuto {
		return f
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mp", ".mpk":
		return FormatMsgpack
	default:
		return FormatNDJSON
	}
}

// Entry kinds.
const (
	KindHeader = "header"
	KindProto  = "proto"
	KindBegin  = "begin"
	KindRecord = "record"
	KindEnd    = "end"
	KindAbort  = "abort"
)

// Entry is one line (or msgpack value) of the log.
type Entry struct {
	Kind    string `json:"kind"`
	Version int    `json:"v,omitempty"`
	ID      int    `json:"id,omitempty"`
	Func    int    `json:"fn,omitempty"`
	PC      int    `json:"pc,omitempty"`
	Depth   int    `json:"depth,omitempty"`
	Code    int    `json:"code,omitempty"`
	Info    *Info  `json:"info,omitempty"`
	Proto   *Proto `json:"proto,omitempty"`
}

// Info is the encoded form of jit.ErrInfo.
type Info struct {
	Kind string `json:"kind"` // number|string|func
	Num  int    `json:"num,omitempty"`
	Str  string `json:"str,omitempty"`
	Func int    `json:"fn,omitempty"`
}

// Proto is the encoded form of bytecode.Proto.
type Proto struct {
	Ref             int     `json:"ref"`
	Name            string  `json:"name,omitempty"`
	Source          string  `json:"source,omitempty"`
	LineDefined     int     `json:"linedefined,omitempty"`
	LastLineDefined int     `json:"lastlinedefined,omitempty"`
	Native          bool    `json:"native,omitempty"`
	Code            []Instr `json:"code,omitempty"`
}

// Instr is the encoded form of bytecode.Instr.
type Instr struct {
	Op   string `json:"op"`
	Args string `json:"args,omitempty"`
	Line int    `json:"line,omitempty"`
}

// Header returns the header entry.
func Header() Entry {
	return Entry{Kind: KindHeader, Version: Version}
}

// FromEvent encodes a notification.
func FromEvent(ev jit.Event) Entry {
	switch e := ev.(type) {
	case jit.Begin:
		return Entry{Kind: KindBegin, ID: e.ID, Func: int(e.Func), PC: e.PC}
	case jit.Record:
		return Entry{Kind: KindRecord, ID: e.ID, Func: int(e.Func), PC: e.PC, Depth: e.Depth}
	case jit.End:
		return Entry{Kind: KindEnd, ID: e.ID}
	case jit.Abort:
		return Entry{Kind: KindAbort, ID: e.ID, Func: int(e.Func), PC: e.PC, Code: e.Code, Info: fromInfo(e.Info)}
	default:
		return Entry{}
	}
}

func fromInfo(info jit.ErrInfo) *Info {
	switch info.Kind {
	case jit.InfoNumber:
		return &Info{Kind: "number", Num: info.Num}
	case jit.InfoString:
		return &Info{Kind: "string", Str: info.Str}
	case jit.InfoFunc:
		return &Info{Kind: "func", Func: int(info.Func)}
	default:
		return nil
	}
}

func (i *Info) errInfo() jit.ErrInfo {
	if i == nil {
		return jit.ErrInfo{}
	}
	switch i.Kind {
	case "number":
		return jit.NumberInfo(i.Num)
	case "string":
		return jit.StringInfo(i.Str)
	case "func":
		return jit.FuncInfoArg(jit.FuncRef(i.Func))
	default:
		return jit.ErrInfo{}
	}
}

// Event decodes a notification entry.
func (e Entry) Event() (jit.Event, error) {
	switch e.Kind {
	case KindBegin:
		return jit.Begin{ID: e.ID, Func: jit.FuncRef(e.Func), PC: e.PC}, nil
	case KindRecord:
		return jit.Record{ID: e.ID, Func: jit.FuncRef(e.Func), PC: e.PC, Depth: e.Depth}, nil
	case KindEnd:
		return jit.End{ID: e.ID}, nil
	case KindAbort:
		return jit.Abort{ID: e.ID, Func: jit.FuncRef(e.Func), PC: e.PC, Code: e.Code, Info: e.Info.errInfo()}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
	}
}

// FromProto encodes a prototype.
func FromProto(p bytecode.Proto) Entry {
	code := make([]Instr, len(p.Code))
	for i, in := range p.Code {
		code[i] = Instr{Op: in.Op, Args: in.Args, Line: in.Line}
	}
	return Entry{Kind: KindProto, Proto: &Proto{
		Ref:             int(p.Ref),
		Name:            p.Name,
		Source:          p.Source,
		LineDefined:     p.LineDefined,
		LastLineDefined: p.LastLineDefined,
		Native:          p.Native,
		Code:            code,
	}}
}

// Decode returns the prototype carried by a proto entry.
func (p *Proto) Decode() bytecode.Proto {
	code := make([]bytecode.Instr, len(p.Code))
	for i, in := range p.Code {
		code[i] = bytecode.Instr{Op: in.Op, Args: in.Args, Line: in.Line}
	}
	return bytecode.Proto{
		Ref:             jit.FuncRef(p.Ref),
		Name:            p.Name,
		Source:          p.Source,
		LineDefined:     p.LineDefined,
		LastLineDefined: p.LastLineDefined,
		Native:          p.Native,
		Code:            code,
	}
}
