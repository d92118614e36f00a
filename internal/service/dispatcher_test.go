package service_test

import (
	"context"
	"errors"
	"testing"

	"itinerary/internal/modules/aiusage"
	"itinerary/internal/modules/itinerary"
	"itinerary/internal/service"
)

type fakeGenerator struct {
	text      string
	result    itinerary.Result
	err       error
	textCalls int
	jsonCalls int
}

func (f *fakeGenerator) GenerateText(context.Context, itinerary.Input) (string, error) {
	f.textCalls++
	return f.text, f.err
}

func (f *fakeGenerator) GenerateStructured(context.Context, itinerary.Input) (itinerary.Result, error) {
	f.jsonCalls++
	return f.result, f.err
}

type fakeRenderer struct {
	textTitle string
	rendered  *itinerary.Itinerary
}

func (f *fakeRenderer) TextPDF(_ string, title string) ([]byte, string, error) {
	f.textTitle = title
	return []byte("%PDF-text"), "text.pdf", nil
}

func (f *fakeRenderer) ItineraryPDF(it itinerary.Itinerary) ([]byte, string, error) {
	f.rendered = &it
	return []byte("%PDF-it"), "it.pdf", nil
}

type fakeQuota struct {
	left  int
	err   error
	calls []string
}

func (f *fakeQuota) Consume(_ context.Context, clientID string) (int, error) {
	f.calls = append(f.calls, clientID)
	return f.left, f.err
}

type fakeRecorder struct {
	err   error
	saved []string
}

func (f *fakeRecorder) Save(_ context.Context, it itinerary.Itinerary, clientID string) error {
	f.saved = append(f.saved, it.ID+"/"+clientID)
	return f.err
}

type stampEnricher struct{}

func (stampEnricher) Enrich(_ context.Context, it itinerary.Itinerary) itinerary.Itinerary {
	it.Destination += " (enriched)"
	return it
}

func TestSelectFormat(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		accept string
		def    service.Format
		want   service.Format
	}{
		{"query pdf", "pdf", "", service.FormatText, service.FormatPDF},
		{"query wins over accept", "TEXT", "application/pdf", service.FormatJSON, service.FormatText},
		{"accept pdf", "", "application/pdf", service.FormatText, service.FormatPDF},
		{"accept json", "", "application/json, text/plain", service.FormatText, service.FormatJSON},
		{"unknown query falls through", "xml", "", service.FormatJSON, service.FormatJSON},
		{"default", "", "*/*", service.FormatText, service.FormatText},
		{"bad default", "", "", service.Format("html"), service.FormatText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := service.SelectFormat(tt.query, tt.accept, tt.def); got != tt.want {
				t.Errorf("SelectFormat = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeliver_TextReturnsModelOutputVerbatim(t *testing.T) {
	gen := &fakeGenerator{text: "Day 1\n  Breakfast  \n"}
	d := service.NewDispatcher(gen, &fakeRenderer{}, nil)

	n := itinerary.Normalized{Input: itinerary.Input{Destination: "Tokyo", Duration: 1}}
	out, err := d.Deliver(context.Background(), n, service.FormatText, "")
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if out.Text != gen.text {
		t.Errorf("text = %q, want %q", out.Text, gen.text)
	}
	if gen.jsonCalls != 0 {
		t.Errorf("structured path ran for text delivery")
	}
}

func TestDeliver_JSONEnrichesRecordsAndMergesWarnings(t *testing.T) {
	gen := &fakeGenerator{result: itinerary.Result{
		Itinerary: itinerary.Itinerary{ID: "it-1", Destination: "Rome"},
		Warnings:  []itinerary.Warning{{Code: itinerary.WarnDayCount}},
	}}
	rec := &fakeRecorder{err: errors.New("db down")}
	d := service.NewDispatcher(gen, &fakeRenderer{}, nil,
		service.WithEnricher(stampEnricher{}),
		service.WithHistory(rec),
	)

	n := itinerary.Normalized{
		Input:    itinerary.Input{Destination: "Rome", Duration: 2},
		Warnings: []itinerary.Warning{{Code: itinerary.WarnBudgetInverted}},
	}
	out, err := d.Deliver(context.Background(), n, service.FormatJSON, "client-a")
	if err != nil {
		t.Fatalf("history failure must not fail delivery: %v", err)
	}
	if out.Itinerary == nil || out.Itinerary.Destination != "Rome (enriched)" {
		t.Fatalf("itinerary = %+v", out.Itinerary)
	}
	if len(rec.saved) != 1 || rec.saved[0] != "it-1/client-a" {
		t.Errorf("saved = %v", rec.saved)
	}
	if len(out.Warnings) != 2 || out.Warnings[0].Code != itinerary.WarnBudgetInverted || out.Warnings[1].Code != itinerary.WarnDayCount {
		t.Errorf("warnings = %+v", out.Warnings)
	}
}

func TestDeliver_PDFRendersStructuredItinerary(t *testing.T) {
	gen := &fakeGenerator{result: itinerary.Result{Itinerary: itinerary.Itinerary{ID: "x", Destination: "Oslo"}}}
	r := &fakeRenderer{}
	d := service.NewDispatcher(gen, r, nil)

	out, err := d.Deliver(context.Background(), itinerary.Normalized{Input: itinerary.Input{Destination: "Oslo", Duration: 1}}, service.FormatPDF, "")
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if string(out.Document) != "%PDF-it" || out.Filename != "it.pdf" {
		t.Errorf("document = %q %q", out.Document, out.Filename)
	}
	if r.rendered == nil || r.rendered.Destination != "Oslo" {
		t.Errorf("renderer got %+v", r.rendered)
	}
	if out.Itinerary != nil {
		t.Errorf("pdf delivery must not carry the itinerary")
	}
}

func TestDeliver_BypassNeverCallsModel(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("must not be called")}
	quota := &fakeQuota{err: aiusage.ErrQuotaExceeded}
	r := &fakeRenderer{}
	d := service.NewDispatcher(gen, r, nil, service.WithQuota(quota))

	n := itinerary.Normalized{Input: itinerary.Input{Destination: "Itinerary"}, RawText: "Day 1\nWalk"}

	out, err := d.Deliver(context.Background(), n, service.FormatPDF, "client-a")
	if err != nil {
		t.Fatalf("pdf bypass: %v", err)
	}
	if out.Filename != "text.pdf" || r.textTitle != "Itinerary" {
		t.Errorf("filename %q title %q", out.Filename, r.textTitle)
	}

	out, err = d.Deliver(context.Background(), n, service.FormatText, "client-a")
	if err != nil || out.Text != n.RawText {
		t.Errorf("text bypass = %q, %v", out.Text, err)
	}

	_, err = d.Deliver(context.Background(), n, service.FormatJSON, "client-a")
	var ve *itinerary.ValidationError
	if !errors.As(err, &ve) || ve.Field != "rawText" {
		t.Errorf("json bypass err = %v", err)
	}

	if gen.textCalls+gen.jsonCalls != 0 || len(quota.calls) != 0 {
		t.Errorf("bypass reached model (%d) or quota (%d)", gen.textCalls+gen.jsonCalls, len(quota.calls))
	}
}

func TestDeliver_QuotaExhaustedStopsBeforeModel(t *testing.T) {
	gen := &fakeGenerator{text: "ok"}
	quota := &fakeQuota{err: aiusage.ErrQuotaExceeded}
	d := service.NewDispatcher(gen, &fakeRenderer{}, nil, service.WithQuota(quota))

	_, err := d.Deliver(context.Background(), itinerary.Normalized{Input: itinerary.Input{Destination: "Lima", Duration: 1}}, service.FormatText, "client-b")
	if !errors.Is(err, aiusage.ErrQuotaExceeded) {
		t.Fatalf("err = %v", err)
	}
	if gen.textCalls != 0 {
		t.Errorf("model called despite exhausted quota")
	}
	if len(quota.calls) != 1 || quota.calls[0] != "client-b" {
		t.Errorf("quota calls = %v", quota.calls)
	}
}

func TestDeliver_ReportsQuotaRemaining(t *testing.T) {
	tests := []struct {
		name string
		left int
		want *int
	}{
		{"metered", 7, func() *int { n := 7; return &n }()},
		{"last generation", 0, func() *int { n := 0; return &n }()},
		{"unmetered", aiusage.Unmetered, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{text: "Day 1"}
			d := service.NewDispatcher(gen, &fakeRenderer{}, nil, service.WithQuota(&fakeQuota{left: tt.left}))

			out, err := d.Deliver(context.Background(), itinerary.Normalized{Input: itinerary.Input{Destination: "Lima", Duration: 1}}, service.FormatText, "client-c")
			if err != nil {
				t.Fatalf("Deliver: %v", err)
			}
			switch {
			case tt.want == nil && out.QuotaRemaining != nil:
				t.Errorf("remaining = %d, want unset", *out.QuotaRemaining)
			case tt.want != nil && (out.QuotaRemaining == nil || *out.QuotaRemaining != *tt.want):
				t.Errorf("remaining = %v, want %d", out.QuotaRemaining, *tt.want)
			}
		})
	}
}

func TestDeliver_ModelErrorsPassThrough(t *testing.T) {
	gen := &fakeGenerator{err: &itinerary.RateLimitError{Msg: "slow down"}}
	rec := &fakeRecorder{}
	d := service.NewDispatcher(gen, &fakeRenderer{}, nil, service.WithHistory(rec))

	_, err := d.Deliver(context.Background(), itinerary.Normalized{Input: itinerary.Input{Destination: "Cairo", Duration: 1}}, service.FormatJSON, "")
	if itinerary.KindOf(err) != itinerary.KindRateLimit {
		t.Fatalf("kind = %q", itinerary.KindOf(err))
	}
	if len(rec.saved) != 0 {
		t.Errorf("failed generation was recorded")
	}
}
