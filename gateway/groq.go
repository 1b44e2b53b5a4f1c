package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	DefaultGroqURL   = "https://api.groq.com/openai/v1/chat/completions"
	DefaultGroqModel = "meta-llama/llama-4-scout-17b-16e-instruct"
)

// Groq calls the OpenAI-compatible chat completions endpoint with one user
// message carrying the photo as a data URL followed by the prompt.
type Groq struct {
	http    *http.Client
	apiKey  string
	model   string
	baseURL string
}

func NewGroq(apiKey, model string, client *http.Client) *Groq {
	if model == "" {
		model = DefaultGroqModel
	}
	if client == nil {
		client = &http.Client{}
	}
	return &Groq{http: client, apiKey: apiKey, model: model, baseURL: DefaultGroqURL}
}

// WithBaseURL points the client at another OpenAI-compatible endpoint.
func (g *Groq) WithBaseURL(u string) *Groq {
	g.baseURL = u
	return g
}

func (g *Groq) Name() string { return "groq:" + g.model }

type groqContent struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *groqImageURL `json:"image_url,omitempty"`
}

type groqImageURL struct {
	URL string `json:"url"`
}

type groqMessage struct {
	Role    string        `json:"role"`
	Content []groqContent `json:"content"`
}

type groqChatReq struct {
	Model       string        `json:"model"`
	Messages    []groqMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type groqChatResp struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (g *Groq) Send(ctx context.Context, prompt, imageBase64 string) (string, error) {
	content := make([]groqContent, 0, 2)
	if imageBase64 != "" {
		content = append(content, groqContent{
			Type:     "image_url",
			ImageURL: &groqImageURL{URL: "data:image/jpeg;base64," + imageBase64},
		})
	}
	content = append(content, groqContent{Type: "text", Text: prompt})

	body, err := json.Marshal(groqChatReq{
		Model:       g.model,
		Messages:    []groqMessage{{Role: "user", Content: content}},
		Temperature: 0.4,
		MaxTokens:   2800,
	})
	if err != nil {
		return "", fmt.Errorf("marshal groq req: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return "", &GatewayError{Provider: g.Name(), Message: "request failed: " + err.Error(), Err: err}
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	var out groqChatResp
	decodeErr := json.Unmarshal(data, &out)
	if out.Error != nil {
		msg := out.Error.Message
		if msg == "" {
			msg = out.Error.Type
		}
		return "", &GatewayError{Provider: g.Name(), StatusCode: resp.StatusCode, Message: msg}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		const max = 2048
		if len(data) > max {
			data = data[:max]
		}
		return "", &GatewayError{Provider: g.Name(), StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}
	if decodeErr != nil {
		return "", &GatewayError{Provider: g.Name(), StatusCode: resp.StatusCode, Message: "decode response: " + decodeErr.Error(), Err: decodeErr}
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return out.Choices[0].Message.Content, nil
}
