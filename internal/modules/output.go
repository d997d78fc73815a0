package modules

import (
	"context"

	"github.com/hyeon/floe/internal/catalog"
)

// TextOutputHandler is a terminal node: it records the received text for
// result aggregation. Its catalog entry declares no outputs, so nothing can
// connect downstream of it.
type TextOutputHandler struct{}

func (h *TextOutputHandler) Type() string { return catalog.TypeTextOutput }

func (h *TextOutputHandler) Execute(_ context.Context, _ map[string]any, inputs map[string]any) (map[string]any, error) {
	return map[string]any{"text": inputs["text"]}, nil
}

// ImageOutputHandler is the terminal node for image URLs.
type ImageOutputHandler struct{}

func (h *ImageOutputHandler) Type() string { return catalog.TypeImageOutput }

func (h *ImageOutputHandler) Execute(_ context.Context, _ map[string]any, inputs map[string]any) (map[string]any, error) {
	return map[string]any{"image_url": inputs["image_url"]}, nil
}
