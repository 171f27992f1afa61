package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Mistral is a client for the Mistral chat completions API.
type Mistral struct {
	apiKey     string
	model      string
	apiURL     string
	httpClient *http.Client
}

func NewMistral(apiKey, model, apiURL string, httpClient *http.Client) *Mistral {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Mistral{
		apiKey:     apiKey,
		model:      model,
		apiURL:     apiURL,
		httpClient: httpClient,
	}
}

type mistralMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type mistralResponseFormat struct {
	Type string `json:"type"`
}

type mistralRequest struct {
	Model          string                 `json:"model"`
	Messages       []mistralMessage       `json:"messages"`
	Temperature    float32                `json:"temperature"`
	MaxTokens      int                    `json:"max_tokens,omitempty"`
	ResponseFormat *mistralResponseFormat `json:"response_format,omitempty"`
}

type mistralResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (m *Mistral) Name() string { return ProviderMistral }

func (m *Mistral) Complete(ctx context.Context, req Request) (string, error) {
	var messages []mistralMessage
	if req.System != "" {
		messages = append(messages, mistralMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, mistralMessage{Role: "user", Content: req.Prompt})

	body := mistralRequest{
		Model:       m.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSON {
		body.ResponseFormat = &mistralResponseFormat{Type: "json_object"}
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+m.apiKey)

	res, err := m.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("mistral: want 200, got %d: %s", res.StatusCode, b)
	}

	var response mistralResponse
	if err := json.Unmarshal(b, &response); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("mistral: no choices returned")
	}

	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}
