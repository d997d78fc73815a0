// Package extract turns uploaded files into text for file-input modules.
package extract

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// FromFile reads r and returns a text representation of the content, chosen
// by the file extension of name. Returns ("", nil) for binary formats with
// no text extraction.
func FromFile(name string, r io.Reader) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return fromPDF(r)
	case ".txt", ".md", ".csv", ".json", ".yaml", ".yml", ".log":
		return fromText(r)
	default:
		return "", nil
	}
}

func fromText(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
