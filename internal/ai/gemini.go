package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"itinerary/internal/config"
	"itinerary/internal/modules/itinerary"
)

// GeminiProvider implements Provider using Google's Gemini models.
type GeminiProvider struct {
	client *genai.Client
	cfg    config.AIConfig
}

// NewGeminiProvider initializes a new Gemini client.
func NewGeminiProvider(ctx context.Context, cfg config.AIConfig) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiProvider{client: client, cfg: cfg}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

// Generate uses a model handle per call; system instruction and sampling are per request.
func (p *GeminiProvider) Generate(ctx context.Context, prompt itinerary.Prompt, mode itinerary.Mode) (string, error) {
	params := modeParams(p.cfg, mode)

	model := p.client.GenerativeModel(p.cfg.Gemini)
	model.SetTemperature(params.Temperature)
	model.SetMaxOutputTokens(int32(params.MaxTokens))
	if prompt.System != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(prompt.System))
	}
	if mode == itinerary.ModeStructured {
		// Force JSON response for structured parsing.
		model.ResponseMIMEType = "application/json"
	}

	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt.User))
	if err != nil {
		return "", classify(p.Name(), err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &itinerary.UpstreamError{Msg: "gemini: no response candidates"}
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", &itinerary.UpstreamError{Msg: "gemini: empty text parts"}
	}
	return text.String(), nil
}
