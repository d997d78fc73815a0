package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// maxPDFSize bounds how much of an uploaded PDF is read into memory.
const maxPDFSize = 32 << 20

// fromPDF extracts plain text page by page. Pages that cannot be decoded are
// skipped; the extraction only fails when the document itself is unreadable
// or no page yielded any text.
func fromPDF(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxPDFSize+1))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	if len(data) > maxPDFSize {
		return "", fmt.Errorf("pdf exceeds %d byte limit", maxPDFSize)
	}

	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}

	var pages []string
	failed := 0
	for i := 1; i <= doc.NumPage(); i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			failed++
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			failed++
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}
	if len(pages) == 0 && failed > 0 {
		return "", fmt.Errorf("pdf has no extractable text (%d unreadable pages)", failed)
	}
	return strings.Join(pages, "\n"), nil
}
