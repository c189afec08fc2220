package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// Supported document formats.
const (
	FormatText = "text"
	FormatPDF  = "pdf"
)

// ErrNotFound is returned when the document path does not exist.
var ErrNotFound = errors.New("document not found")

// Document is the full source text of a loaded file. It is never modified
// after Load returns.
type Document struct {
	Path   string
	Format string
	Text   string
}

// Name returns the base file name without its extension.
func (d *Document) Name() string {
	base := filepath.Base(d.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DetectFormat picks the loader for a path by its extension.
func DetectFormat(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return FormatPDF
	}
	return FormatText
}

// Load reads the whole document at path into memory.
func Load(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat document: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("document path is a directory: %s", path)
	}

	format := DetectFormat(path)
	var text string
	switch format {
	case FormatPDF:
		text, err = readPDF(path)
	default:
		text, err = readText(path)
	}
	if err != nil {
		return nil, err
	}

	return &Document{
		Path:   path,
		Format: format,
		Text:   text,
	}, nil
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	// Strip a UTF-8 byte order mark; editors on Windows commonly add one.
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", fmt.Errorf("document is not valid UTF-8: %s", path)
	}
	return string(data), nil
}

func readPDF(path string) (string, error) {
	f, rdr, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	plain, err := rdr.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("failed to read pdf buffer: %w", err)
	}
	return buf.String(), nil
}
