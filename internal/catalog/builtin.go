package catalog

// Module type ids. These are the only types the executor dispatches on.
const (
	TypeTextInput       = "text-input"
	TypeFileInput       = "file-input"
	TypeOpenAIText      = "openai-text"
	TypeAnthropicClaude = "anthropic-claude"
	TypeOpenAIImage     = "openai-image"
	TypeTextOutput      = "text-output"
	TypeImageOutput     = "image-output"
	TypeConditional     = "conditional"
	TypeTransform       = "transform"
)

// Categories group module types for the canvas palette.
const (
	CategoryInput  = "Input"
	CategoryAI     = "AI Model"
	CategoryOutput = "Output"
	CategoryLogic  = "Logic"
)

func builtinTypes() []ModuleType {
	return []ModuleType{
		{
			ID:          TypeTextInput,
			Name:        "Text Input",
			Category:    CategoryInput,
			Description: "Text input component",
			ConfigSchema: objectSchema(map[string]any{
				"label": map[string]any{"type": "string", "default": "Text Input"},
				"text":  map[string]any{"type": "string"},
			}),
			InputSchema:  map[string]Port{},
			OutputSchema: map[string]Port{"text": {Type: "string"}},
		},
		{
			ID:          TypeFileInput,
			Name:        "File Input",
			Category:    CategoryInput,
			Description: "File upload component",
			ConfigSchema: objectSchema(map[string]any{
				"label":  map[string]any{"type": "string", "default": "File Input"},
				"accept": map[string]any{"type": "string", "default": "*/*"},
				"path":   map[string]any{"type": "string"},
			}),
			InputSchema: map[string]Port{},
			OutputSchema: map[string]Port{
				"file": {Type: "object"},
				"text": {Type: "string"},
			},
		},
		{
			ID:          TypeOpenAIText,
			Name:        "OpenAI Text Model",
			Category:    CategoryAI,
			Description: "OpenAI text generation model (GPT-4, etc.)",
			ConfigSchema: objectSchema(map[string]any{
				"model":       map[string]any{"type": "string", "default": "gpt-4-turbo"},
				"temperature": map[string]any{"type": "number", "default": 0.7, "minimum": 0, "maximum": 2},
				"max_tokens":  map[string]any{"type": "integer", "default": 1000, "minimum": 1},
			}),
			InputSchema:  map[string]Port{"prompt": {Type: "string", Required: true}},
			OutputSchema: map[string]Port{"text": {Type: "string"}},
		},
		{
			ID:          TypeAnthropicClaude,
			Name:        "Anthropic Claude",
			Category:    CategoryAI,
			Description: "Anthropic Claude model",
			ConfigSchema: objectSchema(map[string]any{
				"model":       map[string]any{"type": "string", "default": "claude-3-opus-20240229"},
				"temperature": map[string]any{"type": "number", "default": 0.7, "minimum": 0, "maximum": 1},
				"max_tokens":  map[string]any{"type": "integer", "default": 1000, "minimum": 1},
			}),
			InputSchema:  map[string]Port{"prompt": {Type: "string", Required: true}},
			OutputSchema: map[string]Port{"text": {Type: "string"}},
		},
		{
			ID:          TypeOpenAIImage,
			Name:        "OpenAI DALL-E",
			Category:    CategoryAI,
			Description: "OpenAI DALL-E image generation",
			ConfigSchema: objectSchema(map[string]any{
				"model": map[string]any{"type": "string", "default": "dall-e-3"},
				"size": map[string]any{
					"type":    "string",
					"default": "1024x1024",
					"enum":    []any{"1024x1024", "1792x1024", "1024x1792"},
				},
			}),
			InputSchema:  map[string]Port{"prompt": {Type: "string", Required: true}},
			OutputSchema: map[string]Port{"image_url": {Type: "string"}},
		},
		{
			ID:          TypeTextOutput,
			Name:        "Text Output",
			Category:    CategoryOutput,
			Description: "Display text output",
			ConfigSchema: objectSchema(map[string]any{
				"label": map[string]any{"type": "string", "default": "Output"},
			}),
			InputSchema:  map[string]Port{"text": {Type: "string", Required: true}},
			OutputSchema: map[string]Port{},
		},
		{
			ID:          TypeImageOutput,
			Name:        "Image Output",
			Category:    CategoryOutput,
			Description: "Display image output",
			ConfigSchema: objectSchema(map[string]any{
				"label": map[string]any{"type": "string", "default": "Image"},
			}),
			InputSchema:  map[string]Port{"image_url": {Type: "string", Required: true}},
			OutputSchema: map[string]Port{},
		},
		{
			ID:          TypeConditional,
			Name:        "Conditional Logic",
			Category:    CategoryLogic,
			Description: "Branch based on conditions",
			ConfigSchema: objectSchema(map[string]any{
				"condition": map[string]any{"type": "string", "default": "value != ''"},
			}),
			InputSchema: map[string]Port{"value": {Type: "any", Required: true}},
			OutputSchema: map[string]Port{
				"true":  {Type: "any"},
				"false": {Type: "any"},
			},
		},
		{
			ID:          TypeTransform,
			Name:        "Transform",
			Category:    CategoryLogic,
			Description: "Transform data with an expression",
			ConfigSchema: objectSchema(map[string]any{
				"expression": map[string]any{"type": "string", "default": "input"},
			}),
			InputSchema:  map[string]Port{"input": {Type: "any", Required: true}},
			OutputSchema: map[string]Port{"output": {Type: "any"}},
		},
	}
}

func objectSchema(properties map[string]any) map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
}
