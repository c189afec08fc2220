package document

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Text(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("\xef\xbb\xbfhello world\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.Text != "hello world\n" {
		t.Errorf("Text = %q, want %q", doc.Text, "hello world\n")
	}
	if doc.Format != FormatText {
		t.Errorf("Format = %q, want %q", doc.Format, FormatText)
	}
	if doc.Name() != "notes" {
		t.Errorf("Name() = %q, want %q", doc.Name(), "notes")
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.Text != "" {
		t.Errorf("Text = %q, want empty", doc.Text)
	}
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestLoad_Directory(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("Load() on a directory should fail")
	}
}

func TestLoad_InvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latin1.txt")
	if err := os.WriteFile(path, []byte{0x63, 0x61, 0x66, 0xe9}, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load() should reject invalid UTF-8")
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"book.pdf", FormatPDF},
		{"BOOK.PDF", FormatPDF},
		{"arabic.txt", FormatText},
		{"README.md", FormatText},
		{"noext", FormatText},
	}
	for _, tt := range tests {
		if got := DetectFormat(tt.path); got != tt.want {
			t.Errorf("DetectFormat(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
