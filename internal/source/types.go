package source

// FileFlags encodes how a file's content was normalized on load.
type FileFlags uint8

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File captures the content and line index of one source file.
type File struct {
	Path    string
	Content []byte
	LineIdx []uint32 // byte offsets of every '\n'
	Flags   FileFlags
}
