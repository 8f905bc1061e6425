package cmd

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/viper"

	"github.com/its-dedsec/urlsentry/internal/scan"
)

func TestProvidersCommand(t *testing.T) {
	original := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = original })

	cleanup := setupTestEnv(t)
	defer cleanup()

	viper.Set("providers.virustotal.api_key", "vt-key")

	output := captureStdout(t, func() {
		if err := providersCmd.RunE(providersCmd, nil); err != nil {
			t.Errorf("providers command failed: %v", err)
		}
	})

	if !strings.Contains(output, "PROVIDER") || !strings.Contains(output, "STATUS") {
		t.Fatalf("expected table header, got %q", output)
	}

	// Every provider appears by its lowercase name.
	for _, p := range scan.Providers() {
		if !strings.Contains(output, strings.ToLower(string(p))) {
			t.Errorf("provider %s missing from listing", p)
		}
	}

	if !strings.Contains(output, "active") {
		t.Error("expected virustotal to show as active")
	}
	if !strings.Contains(output, "not configured") {
		t.Error("expected unconfigured providers to be marked")
	}
	if !strings.Contains(output, "urlsentry config set") {
		t.Error("expected config hint at the end")
	}
}

func TestProviderEnvVar(t *testing.T) {
	tests := []struct {
		provider scan.Provider
		want     string
	}{
		{provider: scan.ProviderVirusTotal, want: "URLSENTRY_PROVIDERS_VIRUSTOTAL_API_KEY"},
		{provider: scan.ProviderSafeBrowsing, want: "URLSENTRY_PROVIDERS_SAFE_BROWSING_API_KEY"},
		{provider: scan.ProviderURLScan, want: "URLSENTRY_PROVIDERS_URLSCAN_API_KEY"},
		{provider: scan.ProviderIPInfo, want: "URLSENTRY_PROVIDERS_IPINFO_API_KEY"},
	}

	for _, tt := range tests {
		if got := providerEnvVar(tt.provider); got != tt.want {
			t.Errorf("providerEnvVar(%s) = %s, want %s", tt.provider, got, tt.want)
		}
	}
}
