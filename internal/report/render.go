package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"tracereport/internal/aggregate"
	"tracereport/internal/blocks"
	"tracereport/internal/jit"
)

// SourceLines looks up source text for the listing.
type SourceLines interface {
	Line(file string, n int) (string, bool)
}

// Options controls report layout.
type Options struct {
	ContextLines int // function context shown around the first/last block
	OpWidth      int // width of the operation column
	Color        bool
}

// DefaultOptions returns the default layout.
func DefaultOptions() Options {
	return Options{ContextLines: 5, OpWidth: 40}
}

const separatorWidth = 80

// Renderer writes summary tables and annotated trace listings.
// Write errors are sticky and reported by Flush.
type Renderer struct {
	w    *bufio.Writer
	err  error
	opts Options
	src  SourceLines

	okColor    *color.Color
	abortColor *color.Color
	headColor  *color.Color
}

// NewRenderer creates a renderer writing to w. src may be nil.
func NewRenderer(w io.Writer, src SourceLines, opts Options) *Renderer {
	if opts.OpWidth <= 0 {
		opts.OpWidth = DefaultOptions().OpWidth
	}
	if opts.ContextLines < 0 {
		opts.ContextLines = 0
	}
	r := &Renderer{
		w:          bufio.NewWriter(w),
		opts:       opts,
		src:        src,
		okColor:    color.New(color.FgGreen, color.Bold),
		abortColor: color.New(color.FgRed, color.Bold),
		headColor:  color.New(color.Bold),
	}
	for _, c := range []*color.Color{r.okColor, r.abortColor, r.headColor} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

func (r *Renderer) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, args...)
}

// Flush writes buffered output and returns the first write error.
func (r *Renderer) Flush() error {
	if r.err != nil {
		return r.err
	}
	return r.w.Flush()
}

// Summary writes one table: a row per bucket with success first, then the
// total row.
func (r *Renderer) Summary(title string, res aggregate.Result) {
	rows := res.Ordered()

	width := runewidth.StringWidth("Result")
	for _, b := range rows {
		width = max(width, runewidth.StringWidth(b.Label))
	}
	width = max(width, runewidth.StringWidth(res.Total.Label))

	r.printf("%s\n", r.headColor.Sprint(title))
	r.printf("%s  %14s  %14s  %14s\n", runewidth.FillRight("Result", width), "Traces", "Bytecodes", "Lines")
	for _, b := range rows {
		label := runewidth.FillRight(b.Label, width)
		if b.Label == aggregate.SuccessLabel {
			label = r.okColor.Sprint(label)
		}
		r.row(label, b, res)
	}
	r.row(runewidth.FillRight(res.Total.Label, width), res.Total, res)
	r.printf("\n")
}

func (r *Renderer) row(label string, b aggregate.Bucket, res aggregate.Result) {
	traces, events, lines := res.Shares(b)
	r.printf("%s  %s  %s  %s\n", label, cell(b.Traces, traces), cell(b.Events, events), cell(b.Lines, lines))
}

func cell(n int, pct float64) string {
	return fmt.Sprintf("%6d (%5.1f%%)", n, pct)
}

// Trace writes the annotated listing of one representative trace.
func (r *Renderer) Trace(t *jit.Trace) {
	title := "TRACE " + strconv.Itoa(t.ID)
	c := r.okColor
	switch t.Status {
	case jit.StatusAborted:
		title = t.Message()
		c = r.abortColor
	case jit.StatusRecording:
		title += " (incomplete)"
		c = r.abortColor
	}
	r.printf("%s (%d lines, %d bytecodes, %d attempts)\n",
		c.Sprint(title), t.DistinctLines(), len(t.Events), max(t.Attempts, 1))

	bs := blocks.Build(t.Events)
	for i, b := range bs {
		r.block(b, i == 0, i == len(bs)-1)
	}

	if t.Status == jit.StatusAborted {
		r.printf("%s %s\n", r.abortColor.Sprint("ABORT:"), t.Message())
	}
	r.printf("%s\n", strings.Repeat("=", separatorWidth))
}

func (r *Renderer) block(b *blocks.Block, first, last bool) {
	fn := b.Func
	if b.HasSource() {
		r.printf("%s [%d,%d]\n", r.headColor.Sprint(fn.Source), b.FirstLine, b.LastLine)
	} else {
		r.printf("%s\n", r.headColor.Sprint("[no source]"))
	}

	ctx := r.opts.ContextLines
	if first && b.HasSource() && fn.HasSource() {
		if d := b.FirstLine - fn.LineDefined; d > 0 && d <= ctx {
			for n := max(fn.LineDefined, b.FirstLine-ctx, 1); n < b.FirstLine; n++ {
				r.sourceRow(fn.Source, n, "")
			}
		}
	}

	for _, line := range b.Lines {
		for i, ev := range line.Events {
			if i == 0 && line.Number > 0 {
				r.sourceRow(sourceOf(ev, fn), line.Number, ev.Text)
				continue
			}
			r.printf("%5s  %s :\n", "", r.opColumn(ev.Text))
		}
	}

	if last && b.HasSource() && fn.HasSource() {
		if d := fn.LastLineDefined - b.LastLine; d > 0 && d <= ctx {
			for n := b.LastLine + 1; n <= min(fn.LastLineDefined, b.LastLine+ctx); n++ {
				r.sourceRow(fn.Source, n, "")
			}
		}
	}
}

func sourceOf(ev jit.BytecodeEvent, fn jit.FuncInfo) string {
	if ev.Loc.HasSource() {
		return ev.Loc.File
	}
	return fn.Source
}

func (r *Renderer) sourceRow(file string, n int, op string) {
	text := ""
	if r.src != nil {
		text, _ = r.src.Line(file, n)
	}
	row := fmt.Sprintf("%5d  %s | %s", n, r.opColumn(op), text)
	r.printf("%s\n", strings.TrimRight(row, " "))
}

func (r *Renderer) opColumn(op string) string {
	return runewidth.FillRight(op, r.opts.OpWidth)
}
