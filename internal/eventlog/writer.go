package eventlog

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"tracereport/internal/bytecode"
	"tracereport/internal/jit"
)

type encoder interface {
	Encode(v any) error
}

// Writer appends entries to a log. The first write error is kept and every
// later write is skipped.
type Writer struct {
	mu  sync.Mutex
	enc encoder
	err error
}

// NewWriter writes the header to w and returns a writer for the rest of the
// log. f must not be FormatAuto.
func NewWriter(w io.Writer, f Format) *Writer {
	var enc encoder
	switch f {
	case FormatMsgpack:
		me := msgpack.NewEncoder(w)
		me.SetCustomStructTag("json")
		me.SetOmitEmpty(true)
		enc = me
	default:
		je := json.NewEncoder(w)
		je.SetEscapeHTML(false)
		enc = je
	}
	lw := &Writer{enc: enc}
	lw.write(Header())
	return lw
}

// Err returns the first write error.
func (w *Writer) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Write appends a raw entry.
func (w *Writer) Write(e Entry) {
	w.write(e)
}

// Proto appends a function prototype.
func (w *Writer) Proto(p bytecode.Proto) {
	w.write(FromProto(p))
}

// Handle appends a notification.
func (w *Writer) Handle(ev jit.Event) {
	w.write(FromEvent(ev))
}

func (w *Writer) write(e Entry) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return
	}
	if err := w.enc.Encode(e); err != nil {
		w.err = err
	}
}
