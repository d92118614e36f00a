// README: Itinerary generation pipeline: compose -> gateway -> repair -> transform.
package itinerary

import (
	"context"
	"errors"
	"strings"

	"itinerary/internal/logger"
)

type Result struct {
	Itinerary Itinerary
	Warnings  []Warning
}

type Service struct {
	gateway     Gateway
	transformer *Transformer
	strictDays  bool
	log         *logger.Logger
}

func NewService(gw Gateway, opts Options, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		gateway:     gw,
		transformer: NewTransformer(opts),
		strictDays:  opts.StrictDays,
		log:         log,
	}
}

// GenerateText returns the model's plain-text itinerary verbatim.
func (s *Service) GenerateText(ctx context.Context, in Input) (string, error) {
	s.log.Debug("generate text itinerary", "destination", in.Destination, "duration", in.Duration)
	text, err := s.gateway.Generate(ctx, TextPrompt(in), ModeText)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", &UpstreamError{Msg: "model returned an empty response"}
	}
	s.log.Info("text itinerary generated", "destination", in.Destination, "duration", in.Duration, "bytes", len(text))
	return text, nil
}

// GenerateStructured runs the full structured path. Day-sequence findings are
// warnings unless the service is strict, in which case they fail the request.
func (s *Service) GenerateStructured(ctx context.Context, in Input) (Result, error) {
	s.log.Debug("generate structured itinerary", "destination", in.Destination, "duration", in.Duration)
	raw, err := s.gateway.Generate(ctx, StructuredPrompt(in), ModeStructured)
	if err != nil {
		return Result{}, err
	}
	parsed, err := Repair(raw)
	if err != nil {
		return Result{}, err
	}

	it := s.transformer.Transform(parsed.Object, in)
	findings := CheckDays(it, in.Duration)
	if s.strictDays && len(findings) > 0 {
		return Result{}, &MalformedResponseError{
			Raw:     parsed.Raw,
			Cleaned: parsed.Cleaned,
			Err:     errors.New(findings[0].Message),
		}
	}

	s.log.Info("structured itinerary generated",
		"id", it.ID, "destination", it.Destination, "days", len(it.Days), "findings", len(findings))
	return Result{Itinerary: it, Warnings: findings}, nil
}
