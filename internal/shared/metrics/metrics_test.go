package metrics

import (
	"strings"
	"testing"
)

func TestCounterVecRendersLabels(t *testing.T) {
	IncCheckStarted("contrat")
	IncCheckCompleted("contrat", "Conforme")
	IncCheckFailed("fiche", "service_error")

	out := Render()
	for _, want := range []string{
		`checks_started_total{module="contrat"}`,
		`checks_completed_total{module="contrat",result="Conforme"}`,
		`checks_failed_total{module="fiche",reason="service_error"}`,
		"# TYPE check_duration_seconds histogram",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("metrics output missing %q:\n%s", want, out)
		}
	}
}

func TestHistogramIsCumulative(t *testing.T) {
	h := newHistogram([]float64{1, 5})
	h.Observe(0.5)
	h.Observe(3)
	h.Observe(10)

	snap := h.Snapshot()
	if snap.count != 3 {
		t.Fatalf("expected 3 observations, got %d", snap.count)
	}
	var cumulative uint64
	for i := range snap.buckets {
		cumulative += snap.counts[i]
	}
	if cumulative != 2 {
		t.Fatalf("expected 2 observations within finite buckets, got %d", cumulative)
	}
}
