package scan

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"
)

// fakeProviders stands up one mock server per provider and returns the
// matching endpoint overrides. Handlers default to a clean answer.
func fakeProviders(t *testing.T) Endpoints {
	t.Helper()

	vt := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response_code": 1, "positives": 0, "total": 70, "scans": {}}`)
	}))
	sb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	us := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"uuid": "11112222-3333-4444-5555-666677778888"}`)
	}))
	ip := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"city": "Berlin", "country": "DE", "org": "AS3320 Deutsche Telekom"}`)
	}))
	t.Cleanup(func() {
		vt.Close()
		sb.Close()
		us.Close()
		ip.Close()
	})

	return Endpoints{
		VirusTotal:   vt.URL,
		SafeBrowsing: sb.URL,
		URLScan:      us.URL,
		IPInfo:       ip.URL,
	}
}

func allCredentials() CredentialSet {
	return CredentialSet{
		ProviderVirusTotal:   "vt-key",
		ProviderSafeBrowsing: "sb-key",
		ProviderURLScan:      "us-key",
		ProviderIPInfo:       "ip-key",
	}
}

func checkNames(checks []SecurityCheck) []string {
	names := make([]string, 0, len(checks))
	for _, c := range checks {
		names = append(names, c.Name)
	}
	return names
}

func TestDispatcherEmptyCredentials(t *testing.T) {
	d := &Dispatcher{}

	t.Run("valid target", func(t *testing.T) {
		result := d.Scan(context.Background(), "https://example.com", nil)
		want := []string{"URL Format", "HTTPS"}
		if got := checkNames(result.Checks); !reflect.DeepEqual(got, want) {
			t.Fatalf("checks = %v, want %v", got, want)
		}
		if result.Risk != RiskLow {
			t.Errorf("risk = %v, want %v", result.Risk, RiskLow)
		}
	})

	t.Run("invalid target", func(t *testing.T) {
		result := d.Scan(context.Background(), "not a url", CredentialSet{})
		if len(result.Checks) != 1 {
			t.Fatalf("got %d checks, want 1", len(result.Checks))
		}
		if result.Checks[0].Status != StatusFailed {
			t.Errorf("status = %v, want %v", result.Checks[0].Status, StatusFailed)
		}
		if result.Risk != RiskHigh {
			t.Errorf("risk = %v, want %v", result.Risk, RiskHigh)
		}
	})

	t.Run("insecure target", func(t *testing.T) {
		// One warning alone must not lift the risk above LOW.
		result := d.Scan(context.Background(), "http://example.com", nil)
		if len(result.Checks) != 2 {
			t.Fatalf("got %d checks, want 2", len(result.Checks))
		}
		if result.Risk != RiskLow {
			t.Errorf("risk = %v, want %v", result.Risk, RiskLow)
		}
	})
}

func TestDispatcherAllProvidersClean(t *testing.T) {
	d := &Dispatcher{Endpoints: fakeProviders(t)}

	result := d.Scan(context.Background(), "https://localhost/shop", allCredentials())

	want := []string{"VirusTotal", "Google Safe Browsing", "URLScan.io", "IP Geolocation", "URL Format", "HTTPS"}
	if got := checkNames(result.Checks); !reflect.DeepEqual(got, want) {
		t.Fatalf("check order = %v, want %v", got, want)
	}
	for _, c := range result.Checks {
		if c.Status != StatusPassed {
			t.Errorf("check %q status = %v, want %v", c.Name, c.Status, StatusPassed)
		}
	}
	if result.Risk != RiskLow {
		t.Errorf("risk = %v, want %v", result.Risk, RiskLow)
	}
}

func TestDispatcherOrderIgnoresCompletionOrder(t *testing.T) {
	endpoints := fakeProviders(t)

	// Slow VirusTotal down so it settles last; it must still come first.
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(150 * time.Millisecond)
		fmt.Fprint(w, `{"response_code": 1, "positives": 0, "total": 70, "scans": {}}`)
	}))
	t.Cleanup(slow.Close)
	endpoints.VirusTotal = slow.URL

	d := &Dispatcher{Endpoints: endpoints}
	result := d.Scan(context.Background(), "https://localhost/", allCredentials())

	if got := checkNames(result.Checks); got[0] != "VirusTotal" {
		t.Errorf("first check = %v, want VirusTotal regardless of completion order", got[0])
	}
}

func TestDispatcherProviderFailureDoesNotAbort(t *testing.T) {
	endpoints := fakeProviders(t)

	// Kill the VirusTotal endpoint before the scan runs.
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()
	endpoints.VirusTotal = deadURL

	d := &Dispatcher{Endpoints: endpoints}
	result := d.Scan(context.Background(), "https://localhost/", allCredentials())

	if len(result.Checks) != 6 {
		t.Fatalf("got %d checks, want 6", len(result.Checks))
	}
	if result.Checks[0].Status != StatusWarning {
		t.Errorf("unreachable provider status = %v, want %v", result.Checks[0].Status, StatusWarning)
	}
	for _, c := range result.Checks[1:] {
		if c.Status != StatusPassed {
			t.Errorf("check %q status = %v, want %v", c.Name, c.Status, StatusPassed)
		}
	}
	// A single provider warning leaves the verdict at LOW.
	if result.Risk != RiskLow {
		t.Errorf("risk = %v, want %v", result.Risk, RiskLow)
	}
}

func TestDispatcherTimeoutBecomesWarning(t *testing.T) {
	endpoints := fakeProviders(t)

	stall := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(stall.Close)
	endpoints.SafeBrowsing = stall.URL

	d := &Dispatcher{Timeout: 100 * time.Millisecond, Endpoints: endpoints}

	start := time.Now()
	result := d.Scan(context.Background(), "https://localhost/", allCredentials())
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("scan took %v, timeout not enforced", elapsed)
	}

	if result.Checks[1].Name != "Google Safe Browsing" {
		t.Fatalf("second check = %v, want Google Safe Browsing", result.Checks[1].Name)
	}
	if result.Checks[1].Status != StatusWarning {
		t.Errorf("timed-out provider status = %v, want %v", result.Checks[1].Status, StatusWarning)
	}
	if result.Checks[1].Details == "" {
		t.Error("timed-out provider check has empty details")
	}
}

func TestDispatcherOnComplete(t *testing.T) {
	d := &Dispatcher{Endpoints: fakeProviders(t)}

	var mu sync.Mutex
	seen := make(map[string]int)
	d.OnComplete = func(name string, checks []SecurityCheck, elapsed time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		seen[name] += len(checks)
		if elapsed < 0 {
			t.Errorf("adapter %q reported elapsed %v", name, elapsed)
		}
	}

	d.Scan(context.Background(), "https://localhost/", allCredentials())

	want := map[string]int{
		"VirusTotal":           1,
		"Google Safe Browsing": 1,
		"URLScan.io":           1,
		"IP Geolocation":       1,
		"URL Validation":       2,
	}
	mu.Lock()
	defer mu.Unlock()
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("OnComplete calls = %v, want %v", seen, want)
	}
}

func TestDispatcherIdempotent(t *testing.T) {
	d := &Dispatcher{Endpoints: fakeProviders(t)}

	first := d.Scan(context.Background(), "https://localhost/cart", allCredentials())
	second := d.Scan(context.Background(), "https://localhost/cart", allCredentials())

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated scans differ:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestDispatcherAdapters(t *testing.T) {
	d := &Dispatcher{}

	tests := []struct {
		name  string
		creds CredentialSet
		want  []string
	}{
		{"no credentials", nil, []string{"URL Validation"}},
		{"one provider", CredentialSet{ProviderURLScan: "key"}, []string{"URLScan.io", "URL Validation"}},
		{
			"all providers",
			allCredentials(),
			[]string{"VirusTotal", "Google Safe Browsing", "URLScan.io", "IP Geolocation", "URL Validation"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, a := range d.Adapters(tt.creds) {
				got = append(got, a.Name())
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Adapters() = %v, want %v", got, tt.want)
			}
		})
	}
}
