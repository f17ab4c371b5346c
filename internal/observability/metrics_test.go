package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestWritePrometheusSortedAndEscaped(t *testing.T) {
	m := newMetrics()
	m.ObserveAPI("POST", "/api/transfer/purchase/:player", "400", 20*time.Millisecond)
	m.ObserveAPI("GET", "/api/transfer-listings", "200", 5*time.Millisecond)
	m.ObservePurchase("success", 30*time.Millisecond)
	m.ObservePurchase("not_available", 3*time.Millisecond)
	m.IncAggregateConflict(`Market."Team"`)

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()

	get := `tm_api_requests_total{method="GET",route="/api/transfer-listings",status="200"} 1.000000`
	post := `tm_api_requests_total{method="POST",route="/api/transfer/purchase/:player",status="400"} 1.000000`
	gi, pi := strings.Index(out, get), strings.Index(out, post)
	if gi < 0 || pi < 0 {
		t.Fatalf("missing api series in output:\n%s", out)
	}
	if gi > pi {
		t.Fatalf("series not sorted by label string")
	}
	if !strings.Contains(out, `tm_aggregate_conflicts_total{op="Market.\"Team\""} 1.000000`) {
		t.Fatalf("label not escaped:\n%s", out)
	}
	if !strings.Contains(out, `tm_purchase_duration_seconds_bucket{outcome="success",le="+Inf"} 1`) {
		t.Fatalf("missing purchase histogram:\n%s", out)
	}
}

func TestCountersAndHistograms(t *testing.T) {
	m := newMetrics()
	m.ObservePurchase("success", time.Millisecond)
	m.ObservePurchase("success", time.Millisecond)
	m.ObservePurchase("insufficient_funds", time.Millisecond)

	if got := m.purchases.Value("success"); got != 2 {
		t.Fatalf("success purchases: want=%d got=%v", 2, got)
	}
	if got := m.purchaseLatency.Count("insufficient_funds"); got != 1 {
		t.Fatalf("insufficient_funds observations: want=%d got=%d", 1, got)
	}

	m.ApiInflightInc()
	m.ApiInflightInc()
	m.ApiInflightDec()
	if got := m.apiInflight.Value(); got != 1 {
		t.Fatalf("inflight: want=%d got=%v", 1, got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.ObservePurchase("success", time.Millisecond)
	m.IncAggregateRetry("op")
	m.SetFeedClients(3)
	if err := m.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("nil WritePrometheus: %v", err)
	}
}

func TestWithLe(t *testing.T) {
	if got := withLe("", "0.5"); got != `{le="0.5"}` {
		t.Fatalf("empty labels: got=%s", got)
	}
	if got := withLe(`{a="b"}`, "+Inf"); got != `{a="b",le="+Inf"}` {
		t.Fatalf("with labels: got=%s", got)
	}
}
