package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIOption configures an OpenAIClient.
type OpenAIOption func(*OpenAIClient)

// WithOpenAIBaseURL sets the base URL for the OpenAI API.
// Useful for testing with httptest.
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(c *OpenAIClient) {
		c.baseURL = url
	}
}

// WithOpenAIHTTPClient replaces the underlying HTTP client.
func WithOpenAIHTTPClient(hc *http.Client) OpenAIOption {
	return func(c *OpenAIClient) {
		c.client = hc
	}
}

// OpenAIClient calls the OpenAI chat-completions and image-generation APIs.
type OpenAIClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewOpenAIClient creates a client with the given API key and options.
func NewOpenAIClient(apiKey string, opts ...OpenAIOption) *OpenAIClient {
	c := &OpenAIClient{
		apiKey:  apiKey,
		baseURL: defaultOpenAIBaseURL,
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns "openai".
func (c *OpenAIClient) Name() string { return "openai" }

// GenerateText sends one chat completion with the prompt as the sole user
// message and returns the first choice's content.
func (c *OpenAIClient) GenerateText(ctx context.Context, req *TextRequest) (string, error) {
	body := map[string]any{
		"model":    req.Model,
		"messages": []map[string]any{{"role": "user", "content": req.Prompt}},
		"stream":   false,
	}
	if req.Temperature != nil {
		body["temperature"] = *req.Temperature
	}
	if req.MaxTokens != nil {
		body["max_tokens"] = *req.MaxTokens
	}

	var apiResp openAIChatResponse
	if err := c.post(ctx, "/chat/completions", body, &apiResp); err != nil {
		return "", err
	}
	if len(apiResp.Choices) == 0 {
		return "", &ProviderError{Provider: c.Name(), Message: "no choices in response"}
	}
	return apiResp.Choices[0].Message.Content, nil
}

// GenerateImage sends one image generation and returns the first image URL.
func (c *OpenAIClient) GenerateImage(ctx context.Context, req *ImageRequest) (string, error) {
	body := map[string]any{
		"model":  req.Model,
		"prompt": req.Prompt,
		"n":      1,
	}
	if req.Size != "" {
		body["size"] = req.Size
	}

	var apiResp openAIImageResponse
	if err := c.post(ctx, "/images/generations", body, &apiResp); err != nil {
		return "", err
	}
	if len(apiResp.Data) == 0 || apiResp.Data[0].URL == "" {
		return "", &ProviderError{Provider: c.Name(), Message: "no image in response"}
	}
	return apiResp.Data[0].URL, nil
}

func (c *OpenAIClient) post(ctx context.Context, path string, body map[string]any, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return transportError(c.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return statusError(c.Name(), resp.StatusCode, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type openAIImageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}
