// Package provider implements the AI-provider collaborators invoked by
// AI-model modules. Each client wraps one vendor HTTP API behind a narrow
// capability interface; the engine treats them as injected dependencies and
// never retries internally — retry policy belongs to the caller.
package provider

import (
	"context"
	"fmt"
	"net/http"
)

// ProviderError reports a failed call to an external AI provider. Transient
// marks failures a caller may reasonably retry (timeouts, rate limits, 5xx);
// permanent failures (bad request, auth) are not.
type ProviderError struct {
	Provider   string
	StatusCode int
	Transient  bool
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider %s: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %s: %s", e.Provider, e.Message)
}

func statusError(providerName string, status int, body string) *ProviderError {
	return &ProviderError{
		Provider:   providerName,
		StatusCode: status,
		Transient:  status == http.StatusRequestTimeout || status == http.StatusTooManyRequests || status >= 500,
		Message:    body,
	}
}

func transportError(providerName string, err error) *ProviderError {
	return &ProviderError{Provider: providerName, Transient: true, Message: err.Error()}
}

// TextRequest is one text-generation call.
type TextRequest struct {
	Model       string
	Prompt      string
	Temperature *float64
	MaxTokens   *int
}

// ImageRequest is one image-generation call.
type ImageRequest struct {
	Model  string
	Prompt string
	Size   string
}

// TextGenerator produces text from a prompt.
type TextGenerator interface {
	Name() string
	GenerateText(ctx context.Context, req *TextRequest) (string, error)
}

// ImageGenerator produces an image URL from a prompt.
type ImageGenerator interface {
	Name() string
	GenerateImage(ctx context.Context, req *ImageRequest) (string, error)
}
