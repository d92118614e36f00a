// README: Model gateway: provider selection, unconfigured fallback.
package ai

import (
	"context"
	"errors"
	"fmt"

	"itinerary/internal/config"
	"itinerary/internal/modules/itinerary"
)

// ErrMissingCredential is returned by New when the selected provider has no API key.
var ErrMissingCredential = errors.New("ai: model credential is not configured")

// Provider is an itinerary.Gateway backed by a concrete model vendor.
// This interface allows swapping providers (OpenAI, Gemini) behind configuration.
type Provider interface {
	itinerary.Gateway
	Name() string
	Close() error
}

// New builds the provider named by cfg.Provider. The credential is checked here,
// once, and never re-read.
func New(ctx context.Context, cfg config.AIConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai", "":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("%w: set OPENAI_API_KEY", ErrMissingCredential)
		}
		return NewOpenAIProvider(cfg), nil
	case "gemini":
		if cfg.GeminiKey == "" {
			return nil, fmt.Errorf("%w: set GEMINI_API_KEY", ErrMissingCredential)
		}
		return NewGeminiProvider(ctx, cfg)
	default:
		return nil, fmt.Errorf("ai: unknown provider %q", cfg.Provider)
	}
}

// Unconfigured stands in when the credential is missing so the service can still
// start; every generation fails with a missing-credential AuthError.
type Unconfigured struct {
	Provider string
	Reason   string
}

func (u Unconfigured) Generate(context.Context, itinerary.Prompt, itinerary.Mode) (string, error) {
	msg := u.Reason
	if msg == "" {
		msg = "model credential is not configured"
	}
	return "", &itinerary.AuthError{Missing: true, Msg: msg}
}

func (u Unconfigured) Name() string { return u.Provider }
func (u Unconfigured) Close() error { return nil }

func modeParams(cfg config.AIConfig, mode itinerary.Mode) config.ModeParams {
	if mode == itinerary.ModeText {
		return cfg.Text
	}
	return cfg.Structured
}
