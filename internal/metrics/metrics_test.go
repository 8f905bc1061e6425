package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/its-dedsec/urlsentry/internal/scan"
)

func TestObserveScan(t *testing.T) {
	m := New()

	result := scan.Result{
		Checks: []scan.SecurityCheck{
			{Name: "VirusTotal", Status: scan.StatusPassed},
			{Name: "HTTPS", Status: scan.StatusWarning},
		},
		Risk: scan.RiskLow,
	}
	m.ObserveScan(result, 120*time.Millisecond)
	m.ObserveScan(result, 80*time.Millisecond)

	if got := testutil.ToFloat64(m.scansTotal.WithLabelValues("LOW")); got != 2 {
		t.Errorf("scans_total{risk=LOW} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.providerChecks.WithLabelValues("VirusTotal", "passed")); got != 2 {
		t.Errorf("provider_checks_total{VirusTotal,passed} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.providerChecks.WithLabelValues("HTTPS", "warning")); got != 2 {
		t.Errorf("provider_checks_total{HTTPS,warning} = %v, want 2", got)
	}
}

func TestObserveScanNilReceiver(t *testing.T) {
	var m *Metrics
	// Must not panic.
	m.ObserveScan(scan.Result{Risk: scan.RiskLow}, time.Second)
}

func TestHandlerExposesInstruments(t *testing.T) {
	m := New()
	m.ObserveScan(scan.Result{Risk: scan.RiskHigh}, time.Second)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body error = %v", err)
	}

	for _, metric := range []string{
		"urlsentry_scans_total",
		"urlsentry_scan_duration_seconds",
		"urlsentry_provider_checks_total",
		"go_goroutines",
	} {
		if !strings.Contains(string(body), metric) {
			t.Errorf("metrics output missing %q", metric)
		}
	}
}
