package observability

import "testing"

func TestOtelHeaders(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-api-key=abc, bad, =v,k=")
	h := otelHeaders()
	if len(h) != 1 || h["x-api-key"] != "abc" {
		t.Fatalf("headers: got=%v", h)
	}
}

func TestOtelSampleRatioClamped(t *testing.T) {
	t.Setenv("OTEL_SAMPLER_RATIO", "3")
	if got := otelSampleRatio(); got != 1 {
		t.Fatalf("ratio: want=1 got=%v", got)
	}
	t.Setenv("OTEL_SAMPLER_RATIO", "-1")
	if got := otelSampleRatio(); got != 0 {
		t.Fatalf("ratio: want=0 got=%v", got)
	}
}
