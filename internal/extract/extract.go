package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"checkcontrat-backend/internal/shared/storage/object"
)

const (
	ExtPDF  = ".pdf"
	ExtDOCX = ".docx"
)

// Extractor reads uploaded documents from the input storage area.
type Extractor struct {
	Store object.ObjectStore
}

// New returns an Extractor over store.
func New(store object.ObjectStore) *Extractor {
	return &Extractor{Store: store}
}

// Supported reports whether ext (with the leading dot) can be extracted.
func Supported(ext string) bool {
	switch strings.ToLower(ext) {
	case ExtPDF, ExtDOCX:
		return true
	default:
		return false
	}
}

// ExtractFile returns the trimmed plain text of filename.
// Errors: ErrFileNotFound, ErrUnsupportedFileType, or a wrapped decoding error.
func (e *Extractor) ExtractFile(ctx context.Context, filename string) (string, error) {
	body, err := e.Store.Open(ctx, filename)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) || errors.Is(err, object.ErrInvalidKey) {
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, filename)
		}
		return "", fmt.Errorf("open %s: %w", filename, err)
	}
	defer body.Close()

	ext := filepath.Ext(filename)
	if !Supported(ext) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}

	text, err := ExtractBytes(data, ext)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", filename, err)
	}
	return text, nil
}

// ExtractBytes extracts text from an in-memory document of the given extension.
func ExtractBytes(data []byte, ext string) (string, error) {
	var (
		text string
		err  error
	)
	switch strings.ToLower(ext) {
	case ExtPDF:
		text, err = extractPDF(data)
	case ExtDOCX:
		text, err = extractDOCX(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func extractPDF(data []byte) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	total := reader.NumPage()
	pages := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		pages = append(pages, pageText(reader, i))
	}
	return strings.Join(pages, "\n"), nil
}

// pageText never fails: an unreadable page yields an empty line.
func pageText(reader *pdf.Reader, index int) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
		}
	}()
	page := reader.Page(index)
	if page.V.IsNull() {
		return ""
	}
	s, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return s
}
