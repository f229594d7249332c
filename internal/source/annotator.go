package source

import (
	"context"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"tracereport/internal/jit"
)

// Annotator loads the source text of files referenced by traces. Each file is
// read at most once; files that cannot be read stay unavailable.
type Annotator struct {
	files   *FileSet
	missing map[string]bool
	baseDir string
	jobs    int
	logger  *slog.Logger
}

// AnnotatorOption configures an Annotator.
type AnnotatorOption func(*Annotator)

// WithBaseDir resolves relative source paths against dir.
func WithBaseDir(dir string) AnnotatorOption {
	return func(a *Annotator) { a.baseDir = dir }
}

// WithJobs bounds the number of concurrent file reads.
func WithJobs(n int) AnnotatorOption {
	return func(a *Annotator) {
		if n > 0 {
			a.jobs = n
		}
	}
}

// WithLogger sets the logger used for unreadable files.
func WithLogger(l *slog.Logger) AnnotatorOption {
	return func(a *Annotator) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAnnotator creates an annotator with an empty cache.
func NewAnnotator(opts ...AnnotatorOption) *Annotator {
	a := &Annotator{
		files:   NewFileSet(),
		missing: make(map[string]bool),
		jobs:    runtime.GOMAXPROCS(0),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Referenced returns every distinct file named by the traces' start, stop,
// abort and event locations, sorted.
func Referenced(traces []*jit.Trace) []string {
	seen := make(map[string]struct{})
	add := func(l jit.Location) {
		if l.HasSource() {
			seen[l.File] = struct{}{}
		}
	}
	for _, t := range traces {
		add(t.Start)
		add(t.Stop)
		if t.Abort != nil {
			add(t.Abort.Loc)
		}
		for _, ev := range t.Events {
			add(ev.Loc)
			if ev.Func.HasSource() {
				seen[ev.Func.Source] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Load reads every file referenced by traces that is not cached yet.
// Read failures never fail the call; only ctx cancellation does.
func (a *Annotator) Load(ctx context.Context, traces []*jit.Trace) error {
	var pending []string
	for _, name := range Referenced(traces) {
		if _, ok := a.files.Get(name); ok || a.missing[name] {
			continue
		}
		pending = append(pending, name)
	}

	loaded := make([]bool, len(pending))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.jobs)
	for i, name := range pending {
		i, name := i, name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path, ok := a.resolve(name)
			if !ok {
				return nil
			}
			if _, err := a.files.Load(name, path); err != nil {
				a.logger.Debug("source unavailable", slog.String("file", name), slog.Any("error", err))
				return nil
			}
			loaded[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, name := range pending {
		if !loaded[i] {
			a.missing[name] = true
		}
	}
	return nil
}

// resolve maps a chunk name to a path on disk. Names starting with '=' are
// not files.
func (a *Annotator) resolve(name string) (string, bool) {
	if strings.HasPrefix(name, "=") {
		return "", false
	}
	path := strings.TrimPrefix(name, "@")
	if a.baseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(a.baseDir, path)
	}
	return path, true
}

// Add registers in-memory content for name, bypassing the disk.
func (a *Annotator) Add(name string, content []byte) {
	a.files.AddVirtual(name, content)
	delete(a.missing, name)
}

// Available reports whether the text of file is loaded.
func (a *Annotator) Available(file string) bool {
	_, ok := a.files.Get(file)
	return ok
}

// Line returns the text of line n of file. ok is false when the file is
// unavailable or has no such line.
func (a *Annotator) Line(file string, n int) (string, bool) {
	f, ok := a.files.Get(file)
	if !ok || n <= 0 || n > f.LineCount() {
		return "", false
	}
	return f.GetLine(n), true
}
