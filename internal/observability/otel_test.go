package observability

import (
	"context"
	"testing"

	"itinerary/internal/logger"
)

func TestHeaders(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", " api-key = abc , broken, =x, team=itin ")
	got := headers()
	if len(got) != 2 || got["api-key"] != "abc" || got["team"] != "itin" {
		t.Errorf("headers = %v", got)
	}
}

func TestSampleRatio(t *testing.T) {
	tests := map[string]float64{"": 1, "0.25": 0.25, "-3": 0, "7": 1, "nope": 1}
	for in, want := range tests {
		t.Setenv("OTEL_SAMPLER_RATIO", in)
		if got := sampleRatio(); got != want {
			t.Errorf("sampleRatio(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInitOTel_DisabledIsNoop(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "")
	shutdown := InitOTel(context.Background(), logger.Nop(), OtelConfig{ServiceName: "test"})
	if shutdown == nil {
		t.Fatal("shutdown must never be nil")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}
