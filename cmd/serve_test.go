package cmd

import (
	"testing"

	"github.com/its-dedsec/urlsentry/internal/scan"
)

func TestMergeCredentials(t *testing.T) {
	defaults := scan.CredentialSet{
		scan.ProviderVirusTotal: "server-vt",
		scan.ProviderURLScan:    "server-us",
	}
	overrides := scan.CredentialSet{
		scan.ProviderVirusTotal: "request-vt",
		scan.ProviderIPInfo:     "request-ip",
	}

	merged := mergeCredentials(defaults, overrides)

	if got := merged.Secret(scan.ProviderVirusTotal); got != "request-vt" {
		t.Errorf("request key should win, got %s", got)
	}
	if got := merged.Secret(scan.ProviderURLScan); got != "server-us" {
		t.Errorf("server key should survive, got %s", got)
	}
	if got := merged.Secret(scan.ProviderIPInfo); got != "request-ip" {
		t.Errorf("request-only key should be present, got %s", got)
	}
	if merged.Active(scan.ProviderSafeBrowsing) {
		t.Error("provider configured nowhere should stay inactive")
	}

	// Inputs must not be mutated.
	if defaults.Secret(scan.ProviderVirusTotal) != "server-vt" {
		t.Error("defaults were mutated by the merge")
	}
}

func TestMergeCredentialsEmpty(t *testing.T) {
	merged := mergeCredentials(nil, nil)
	if len(merged) != 0 {
		t.Fatalf("expected empty set, got %v", merged)
	}

	merged = mergeCredentials(scan.CredentialSet{scan.ProviderVirusTotal: "k"}, nil)
	if !merged.Active(scan.ProviderVirusTotal) {
		t.Error("defaults alone should carry through")
	}
}

func TestServeCommandFlags(t *testing.T) {
	for _, name := range []string{"addr", "auth-token", "history-limit", "rate-limit", "rate-burst", "cors-origins", "shutdown-timeout", "no-history"} {
		if serveCmd.Flags().Lookup(name) == nil {
			t.Errorf("serve flag %q not registered", name)
		}
	}
}
