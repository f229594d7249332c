package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetAddReplaces(t *testing.T) {
	fs := NewFileSet()

	fs.Add("test.lua", []byte("hello world"), 0)
	fs.Add("./test.lua", []byte("hello universe"), 0)

	if fs.Len() != 1 {
		t.Fatalf("Expected 1 file after re-adding the same path, got %d", fs.Len())
	}
	f, ok := fs.Get("test.lua")
	if !ok {
		t.Fatal("Expected file to exist after Add")
	}
	if string(f.Content) != "hello universe" {
		t.Errorf("Expected latest content, got %q", string(f.Content))
	}
}

func TestFileSetLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crlf.lua")
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("local a = 1\r\nreturn a\r\n")...)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSet()
	f, err := fs.Load("@crlf.lua", path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Errorf("Expected BOM and CRLF flags, got %b", f.Flags)
	}
	if got := f.GetLine(1); got != "local a = 1" {
		t.Errorf("Line 1 = %q", got)
	}
	if got := f.GetLine(2); got != "return a" {
		t.Errorf("Line 2 = %q", got)
	}
	if f.LineCount() != 2 {
		t.Errorf("LineCount = %d, want 2", f.LineCount())
	}
	if _, ok := fs.Get("@crlf.lua"); !ok {
		t.Error("Expected file stored under its chunk name")
	}
}

func TestFileSetLoadMissing(t *testing.T) {
	fs := NewFileSet()
	if _, err := fs.Load("nope.lua", filepath.Join(t.TempDir(), "nope.lua")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	f := fs.AddVirtual("v.lua", []byte("one\ntwo\n\nfour"))

	tests := []struct {
		line int
		want string
	}{
		{0, ""},
		{1, "one"},
		{2, "two"},
		{3, ""},
		{4, "four"},
		{5, ""},
		{-2, ""},
	}
	for _, tt := range tests {
		if got := f.GetLine(tt.line); got != tt.want {
			t.Errorf("GetLine(%d) = %q, want %q", tt.line, got, tt.want)
		}
	}
	if f.Flags&FileVirtual == 0 {
		t.Error("Expected FileVirtual flag")
	}
}

func TestGetLineNFC(t *testing.T) {
	fs := NewFileSet()
	f := fs.AddVirtual("n.lua", []byte("cafe\u0301"))
	if got := f.GetLine(1); got != "caf\u00e9" {
		t.Errorf("GetLine should normalize to NFC, got %q", got)
	}
}
