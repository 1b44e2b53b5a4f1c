// Package gateway sends a prompt (and optionally a photo) to a remote
// vision-language model and returns its raw text.
package gateway

import (
	"context"
	"fmt"
)

// Gateway is the model provider contract. An empty string with a nil error
// means the provider answered without content.
type Gateway interface {
	Name() string
	Send(ctx context.Context, prompt, imageBase64 string) (string, error)
}

// GatewayError means the provider could not be reached or reported an error.
// Message is the provider's own text and is safe to show to the farmer.
type GatewayError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Provider, e.Message, e.StatusCode)
	}
	return e.Provider + ": " + e.Message
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Func adapts a plain function to Gateway.
type Func func(ctx context.Context, prompt, imageBase64 string) (string, error)

func (f Func) Name() string { return "func" }

func (f Func) Send(ctx context.Context, prompt, imageBase64 string) (string, error) {
	return f(ctx, prompt, imageBase64)
}
