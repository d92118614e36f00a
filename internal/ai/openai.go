package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"itinerary/internal/config"
	"itinerary/internal/modules/itinerary"
)

const openAIChatPath = "/v1/chat/completions"

// OpenAIProvider talks to the chat completions endpoint over plain HTTP.
type OpenAIProvider struct {
	cfg     config.AIConfig
	baseURL string
	client  *http.Client
}

// NewOpenAIProvider expects cfg.OpenAIKey to be set; New checks that.
// cfg.Timeout bounds each request; context cancellation is still honoured.
func NewOpenAIProvider(cfg config.AIConfig) *OpenAIProvider {
	base := strings.TrimRight(cfg.OpenAIURL, "/")
	if base == "" {
		base = "https://api.openai.com"
	}
	return &OpenAIProvider{
		cfg:     cfg,
		baseURL: base,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float32         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error,omitempty"`
}

func (p *OpenAIProvider) Name() string { return "openai" }
func (p *OpenAIProvider) Close() error { return nil }

func (p *OpenAIProvider) model(mode itinerary.Mode) string {
	if mode == itinerary.ModeText && p.cfg.OpenAIText != "" {
		return p.cfg.OpenAIText
	}
	return p.cfg.OpenAI
}

// Generate sends one chat completion. Structured mode requests a JSON object response.
func (p *OpenAIProvider) Generate(ctx context.Context, prompt itinerary.Prompt, mode itinerary.Mode) (string, error) {
	params := modeParams(p.cfg, mode)
	body := chatRequest{
		Model: p.model(mode),
		Messages: []chatMessage{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User},
		},
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
	}
	if mode == itinerary.ModeStructured {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	reqBody, err := json.Marshal(body)
	if err != nil {
		return "", &itinerary.UpstreamError{Msg: "openai: marshal request", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+openAIChatPath, bytes.NewReader(reqBody))
	if err != nil {
		return "", &itinerary.UpstreamError{Msg: "openai: build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.cfg.OpenAIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", classify(p.Name(), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", classify(p.Name(), fmt.Errorf("read response: %w", err))
	}

	var cr chatResponse
	decodeErr := json.Unmarshal(raw, &cr)

	if resp.StatusCode/100 != 2 {
		msg := strings.TrimSpace(string(raw))
		if decodeErr == nil && cr.Error != nil && cr.Error.Message != "" {
			msg = cr.Error.Message
		}
		return "", classify(p.Name(), &statusError{StatusCode: resp.StatusCode, Message: msg})
	}
	if decodeErr != nil {
		return "", &itinerary.UpstreamError{Msg: "openai: unmarshal response", Err: decodeErr}
	}
	if cr.Error != nil {
		return "", classify(p.Name(), fmt.Errorf("api error: %s", cr.Error.Message))
	}
	if len(cr.Choices) == 0 {
		return "", &itinerary.UpstreamError{Msg: "openai: API returned empty choices array"}
	}
	content := cr.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", &itinerary.UpstreamError{Msg: "openai: no response from model"}
	}
	return content, nil
}
