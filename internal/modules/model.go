package modules

import (
	"context"
	"fmt"

	"github.com/hyeon/floe/internal/catalog"
	"github.com/hyeon/floe/internal/provider"
)

// OpenAITextHandler dispatches openai-text modules to the OpenAI text
// client. Config supplies model, temperature, and max_tokens; the prompt
// arrives as a resolved input.
type OpenAITextHandler struct {
	Providers *provider.Registry
}

func (h *OpenAITextHandler) Type() string { return catalog.TypeOpenAIText }

func (h *OpenAITextHandler) Execute(ctx context.Context, cfg map[string]any, inputs map[string]any) (map[string]any, error) {
	client, ok := h.Providers.Text("openai")
	if !ok {
		return nil, fmt.Errorf("openai-text: no openai provider configured")
	}
	text, err := client.GenerateText(ctx, textRequest(cfg, inputs))
	if err != nil {
		return nil, err
	}
	return map[string]any{"text": text}, nil
}

// AnthropicHandler dispatches anthropic-claude modules to the Anthropic
// text client.
type AnthropicHandler struct {
	Providers *provider.Registry
}

func (h *AnthropicHandler) Type() string { return catalog.TypeAnthropicClaude }

func (h *AnthropicHandler) Execute(ctx context.Context, cfg map[string]any, inputs map[string]any) (map[string]any, error) {
	client, ok := h.Providers.Text("anthropic")
	if !ok {
		return nil, fmt.Errorf("anthropic-claude: no anthropic provider configured")
	}
	text, err := client.GenerateText(ctx, textRequest(cfg, inputs))
	if err != nil {
		return nil, err
	}
	return map[string]any{"text": text}, nil
}

// OpenAIImageHandler dispatches openai-image modules to the OpenAI image
// client and emits the generated image URL.
type OpenAIImageHandler struct {
	Providers *provider.Registry
}

func (h *OpenAIImageHandler) Type() string { return catalog.TypeOpenAIImage }

func (h *OpenAIImageHandler) Execute(ctx context.Context, cfg map[string]any, inputs map[string]any) (map[string]any, error) {
	client, ok := h.Providers.Image("openai")
	if !ok {
		return nil, fmt.Errorf("openai-image: no openai provider configured")
	}
	url, err := client.GenerateImage(ctx, &provider.ImageRequest{
		Model:  cfgString(cfg, "model"),
		Prompt: inputString(inputs, "prompt"),
		Size:   cfgString(cfg, "size"),
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"image_url": url}, nil
}

func textRequest(cfg map[string]any, inputs map[string]any) *provider.TextRequest {
	req := &provider.TextRequest{
		Model:  cfgString(cfg, "model"),
		Prompt: inputString(inputs, "prompt"),
	}
	if temp, ok := cfgFloat(cfg, "temperature"); ok {
		req.Temperature = &temp
	}
	if max, ok := cfgInt(cfg, "max_tokens"); ok {
		req.MaxTokens = &max
	}
	return req
}
