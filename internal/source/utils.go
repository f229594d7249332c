package source

import (
	"bytes"
	"fmt"
	"path/filepath"

	"fortio.org/safecast"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// normalize strips a UTF-8 BOM and rewrites CRLF to LF. Lone '\r' bytes are
// kept.
func normalize(content []byte) ([]byte, FileFlags) {
	var flags FileFlags
	if bytes.HasPrefix(content, bom) {
		content = content[len(bom):]
		flags |= FileHadBOM
	}
	if bytes.Contains(content, []byte("\r\n")) {
		content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
		flags |= FileNormalizedCRLF
	}
	return content, flags
}

func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, bytes.Count(content, []byte{'\n'}))
	for i, b := range content {
		if b != '\n' {
			continue
		}
		off, err := safecast.Conv[uint32](i)
		if err != nil {
			panic(fmt.Errorf("line offset overflow: %w", err))
		}
		out = append(out, off)
	}
	return out
}

func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}
