package modules

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyeon/floe/internal/catalog"
	"github.com/hyeon/floe/internal/extract"
)

// TextInputHandler emits the configured text literal. An externally supplied
// initial input under "text" overrides the config value, which lets callers
// feed a stored workflow without editing it.
type TextInputHandler struct{}

func (h *TextInputHandler) Type() string { return catalog.TypeTextInput }

func (h *TextInputHandler) Execute(_ context.Context, cfg map[string]any, inputs map[string]any) (map[string]any, error) {
	text := inputString(inputs, "text")
	if text == "" {
		text = cfgString(cfg, "text")
	}
	return map[string]any{"text": text}, nil
}

// FileInputHandler reads a file under BaseDir and emits its metadata plus a
// text extraction when the format supports one.
type FileInputHandler struct {
	BaseDir string
}

func (h *FileInputHandler) Type() string { return catalog.TypeFileInput }

func (h *FileInputHandler) Execute(_ context.Context, cfg map[string]any, inputs map[string]any) (map[string]any, error) {
	path := inputString(inputs, "path")
	if path == "" {
		path = cfgString(cfg, "path")
	}
	if path == "" {
		return nil, fmt.Errorf("file-input: no file path configured")
	}

	full, err := h.resolve(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("file-input: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("file-input: %w", err)
	}

	text, err := extract.FromFile(full, f)
	if err != nil {
		return nil, fmt.Errorf("file-input: %w", err)
	}

	return map[string]any{
		"file": map[string]any{
			"name": filepath.Base(full),
			"path": path,
			"size": info.Size(),
		},
		"text": text,
	}, nil
}

// resolve joins path under BaseDir and rejects traversal outside of it.
func (h *FileInputHandler) resolve(path string) (string, error) {
	base := h.BaseDir
	if base == "" {
		base = "."
	}
	full := filepath.Join(base, filepath.Clean("/"+path))
	rel, err := filepath.Rel(base, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("file-input: path %q escapes the upload directory", path)
	}
	return full, nil
}
