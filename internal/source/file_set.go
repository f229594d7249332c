package source

import (
	"fmt"
	"os"
	"sync"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"
)

// FileSet holds loaded source files keyed by normalized path.
// It is safe for concurrent use.
type FileSet struct {
	mu    sync.RWMutex
	files map[string]*File
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{files: make(map[string]*File)}
}

// Add stores content under path, replacing any earlier version.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) *File {
	content, normFlags := normalize(content)
	f := &File{
		Path:    normalizePath(path),
		Content: content,
		LineIdx: buildLineIndex(content),
		Flags:   flags | normFlags,
	}
	fileSet.mu.Lock()
	fileSet.files[f.Path] = f
	fileSet.mu.Unlock()
	return f
}

// Load reads the file at path from disk and stores it under name.
func (fileSet *FileSet) Load(name, path string) (*File, error) {
	content, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return fileSet.Add(name, content, 0), nil
}

func readFile(path string) ([]byte, error) {
	// #nosec G304 -- path comes from recorded trace data
	return os.ReadFile(path)
}

// AddVirtual adds a file that does not exist on disk.
func (fileSet *FileSet) AddVirtual(name string, content []byte) *File {
	return fileSet.Add(name, content, FileVirtual)
}

// Get returns the file stored under path.
func (fileSet *FileSet) Get(path string) (*File, bool) {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	f, ok := fileSet.files[normalizePath(path)]
	return f, ok
}

// Len returns the number of files in the set.
func (fileSet *FileSet) Len() int {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	return len(fileSet.files)
}

// LineCount returns the number of lines in the file.
func (f *File) LineCount() int {
	if len(f.Content) == 0 {
		return 0
	}
	n := len(f.LineIdx)
	if f.Content[len(f.Content)-1] != '\n' {
		n++
	}
	return n
}

// GetLine returns line lineNum (1-based) in NFC form, or "" if the file has
// no such line.
func (f *File) GetLine(lineNum int) string {
	if lineNum <= 0 || lineNum > f.LineCount() {
		return ""
	}
	lenContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}

	var start, end uint32
	if lineNum > 1 {
		start = f.LineIdx[lineNum-2] + 1
	}
	if lineNum-1 < len(f.LineIdx) {
		end = f.LineIdx[lineNum-1]
	} else {
		end = lenContent
	}
	return norm.NFC.String(string(f.Content[start:end]))
}
