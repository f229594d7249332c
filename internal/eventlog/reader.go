package eventlog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"tracereport/internal/bytecode"
	"tracereport/internal/jit"
)

type decoder interface {
	Decode(v any) error
}

// Reader reads entries from a log.
type Reader struct {
	dec    decoder
	n      int
	header bool
}

// NewReader returns a reader for r. f must not be FormatAuto.
func NewReader(r io.Reader, f Format) *Reader {
	br := bufio.NewReader(r)
	switch f {
	case FormatMsgpack:
		md := msgpack.NewDecoder(br)
		md.SetCustomStructTag("json")
		return &Reader{dec: md}
	default:
		return &Reader{dec: json.NewDecoder(br)}
	}
}

// Next returns the next entry after the header, or io.EOF at the end.
func (r *Reader) Next() (Entry, error) {
	if !r.header {
		var h Entry
		if err := r.decode(&h); err != nil {
			if errors.Is(err, io.EOF) {
				return Entry{}, ErrBadHeader
			}
			return Entry{}, err
		}
		if h.Kind != KindHeader || h.Version != Version {
			return Entry{}, fmt.Errorf("%w: kind=%q v=%d", ErrBadHeader, h.Kind, h.Version)
		}
		r.header = true
	}
	var e Entry
	if err := r.decode(&e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (r *Reader) decode(e *Entry) error {
	err := r.dec.Decode(e)
	if err == nil {
		r.n++
		return nil
	}
	if errors.Is(err, io.EOF) {
		return io.EOF
	}
	return fmt.Errorf("entry %d: %w", r.n+1, err)
}

// Stats counts what a replay fed into the collector.
type Stats struct {
	Protos int
	Events int
}

// Replay registers every prototype in prog and feeds every notification to
// h, in log order.
func Replay(r *Reader, prog *bytecode.Program, h Handler, logger *slog.Logger) (Stats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var st Stats
	for {
		e, err := r.Next()
		if errors.Is(err, io.EOF) {
			return st, nil
		}
		if err != nil {
			return st, err
		}

		if e.Kind == KindProto {
			if e.Proto == nil {
				logger.Warn("proto entry without body", slog.Int("entry", r.n))
				continue
			}
			prog.Add(e.Proto.Decode())
			st.Protos++
			continue
		}

		ev, err := e.Event()
		if err != nil {
			return st, fmt.Errorf("entry %d: %w", r.n, err)
		}
		h.Handle(ev)
		st.Events++
	}
}

// Handler receives replayed notifications. *jit.Collector and *Writer
// implement it.
type Handler interface {
	Handle(ev jit.Event)
}

// ReplayFile opens path and replays it.
func ReplayFile(path string, f Format, prog *bytecode.Program, h Handler, logger *slog.Logger) (Stats, error) {
	file, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("open event log: %w", err)
	}
	defer file.Close()

	st, err := Replay(NewReader(file, Detect(path, f)), prog, h, logger)
	if err != nil {
		return st, fmt.Errorf("%s: %w", path, err)
	}
	return st, nil
}
