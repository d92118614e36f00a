// README: Delivery dispatcher; picks text, JSON or PDF and runs the matching pipeline path.
package service

import (
	"context"
	"strings"

	"itinerary/internal/logger"
	"itinerary/internal/modules/itinerary"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
)

// ParseFormat accepts "text", "json" and "pdf" in any case.
func ParseFormat(s string) (Format, bool) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatPDF:
		return f, true
	}
	return "", false
}

// SelectFormat resolves the delivery format: an explicit query value wins, then
// an Accept header naming pdf or json, then def.
func SelectFormat(query, accept string, def Format) Format {
	if f, ok := ParseFormat(query); ok {
		return f
	}
	accept = strings.ToLower(accept)
	switch {
	case strings.Contains(accept, "application/pdf"):
		return FormatPDF
	case strings.Contains(accept, "application/json"):
		return FormatJSON
	}
	if _, ok := ParseFormat(string(def)); ok {
		return def
	}
	return FormatText
}

type Generator interface {
	GenerateText(ctx context.Context, in itinerary.Input) (string, error)
	GenerateStructured(ctx context.Context, in itinerary.Input) (itinerary.Result, error)
}

type Renderer interface {
	TextPDF(text, title string) ([]byte, string, error)
	ItineraryPDF(it itinerary.Itinerary) ([]byte, string, error)
}

type Enricher interface {
	Enrich(ctx context.Context, it itinerary.Itinerary) itinerary.Itinerary
}

type Recorder interface {
	Save(ctx context.Context, it itinerary.Itinerary, clientID string) error
}

// Quota spends one generation for clientID and returns the count left, or a
// negative count when the caller is not metered.
type Quota interface {
	Consume(ctx context.Context, clientID string) (int, error)
}

// Delivery is the outcome of one request. Exactly one of Text, Itinerary or
// Document is set, matching Format.
type Delivery struct {
	Format    Format
	Text      string
	Itinerary *itinerary.Itinerary
	Document  []byte
	Filename  string
	Warnings  []itinerary.Warning

	// QuotaRemaining is set when the request was metered.
	QuotaRemaining *int
}

type Option func(*Dispatcher)

func WithEnricher(e Enricher) Option { return func(d *Dispatcher) { d.enricher = e } }
func WithHistory(r Recorder) Option  { return func(d *Dispatcher) { d.history = r } }
func WithQuota(q Quota) Option       { return func(d *Dispatcher) { d.quota = q } }

type Dispatcher struct {
	gen      Generator
	renderer Renderer
	enricher Enricher
	history  Recorder
	quota    Quota
	log      *logger.Logger
}

func NewDispatcher(gen Generator, renderer Renderer, log *logger.Logger, opts ...Option) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	d := &Dispatcher{gen: gen, renderer: renderer, log: log}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Deliver runs the path selected by format for an already normalized request.
// A raw-text bypass never reaches the model.
func (d *Dispatcher) Deliver(ctx context.Context, n itinerary.Normalized, format Format, clientID string) (Delivery, error) {
	out := Delivery{Format: format, Warnings: append([]itinerary.Warning(nil), n.Warnings...)}

	if n.Bypass() {
		switch format {
		case FormatPDF:
			doc, name, err := d.renderer.TextPDF(n.RawText, n.Input.Destination)
			if err != nil {
				return Delivery{}, err
			}
			out.Document, out.Filename = doc, name
			return out, nil
		case FormatText:
			out.Text = n.RawText
			return out, nil
		default:
			return Delivery{}, &itinerary.ValidationError{Field: "rawText", Msg: "can only be delivered as text or pdf"}
		}
	}

	if d.quota != nil {
		left, err := d.quota.Consume(ctx, clientID)
		if err != nil {
			return Delivery{}, err
		}
		if left >= 0 {
			out.QuotaRemaining = &left
		}
	}

	if format == FormatText {
		text, err := d.gen.GenerateText(ctx, n.Input)
		if err != nil {
			return Delivery{}, err
		}
		out.Text = text
		return out, nil
	}

	res, err := d.gen.GenerateStructured(ctx, n.Input)
	if err != nil {
		return Delivery{}, err
	}
	it := res.Itinerary
	if d.enricher != nil {
		it = d.enricher.Enrich(ctx, it)
	}
	if d.history != nil {
		if err := d.history.Save(ctx, it, clientID); err != nil {
			d.log.Warn("history save failed", "id", it.ID, "error", err)
		}
	}
	out.Warnings = append(out.Warnings, res.Warnings...)

	if format == FormatPDF {
		doc, name, err := d.renderer.ItineraryPDF(it)
		if err != nil {
			return Delivery{}, err
		}
		out.Document, out.Filename = doc, name
		return out, nil
	}
	out.Itinerary = &it
	return out, nil
}
