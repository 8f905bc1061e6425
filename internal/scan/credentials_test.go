package scan

import (
	"reflect"
	"testing"
)

func TestParseProvider(t *testing.T) {
	tests := []struct {
		id     string
		want   Provider
		wantOK bool
	}{
		{"VIRUSTOTAL", ProviderVirusTotal, true},
		{"virustotal", ProviderVirusTotal, true},
		{"SAFE_BROWSING", ProviderSafeBrowsing, true},
		{"safe-browsing", ProviderSafeBrowsing, true},
		{"Safe Browsing", ProviderSafeBrowsing, true},
		{"safe.browsing", ProviderSafeBrowsing, true},
		{"urlscan", ProviderURLScan, true},
		{"  ipinfo  ", ProviderIPInfo, true},
		{"phishtank", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, ok := ParseProvider(tt.id)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseProvider(%q) = (%v, %v), want (%v, %v)", tt.id, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCredentialSetActive(t *testing.T) {
	creds := CredentialSet{
		ProviderVirusTotal: "vt-key",
		ProviderURLScan:    "",
	}

	tests := []struct {
		name     string
		provider Provider
		want     bool
	}{
		{"configured provider", ProviderVirusTotal, true},
		{"empty secret", ProviderURLScan, false},
		{"absent provider", ProviderIPInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := creds.Active(tt.provider); got != tt.want {
				t.Errorf("Active(%v) = %v, want %v", tt.provider, got, tt.want)
			}
		})
	}
}

func TestCredentialSetActiveProvidersOrder(t *testing.T) {
	// Declaration order must hold regardless of map iteration order.
	creds := CredentialSet{
		ProviderIPInfo:       "ip-key",
		ProviderVirusTotal:   "vt-key",
		ProviderSafeBrowsing: "sb-key",
	}

	want := []Provider{ProviderVirusTotal, ProviderSafeBrowsing, ProviderIPInfo}
	for i := 0; i < 20; i++ {
		if got := creds.ActiveProviders(); !reflect.DeepEqual(got, want) {
			t.Fatalf("ActiveProviders() = %v, want %v", got, want)
		}
	}
}

func TestCredentialSetFromKeys(t *testing.T) {
	creds := CredentialSetFromKeys(map[string]string{
		"virustotal":    "vt-key",
		"SAFE-BROWSING": "sb-key",
		"urlscan":       "",
		"shodan":        "unknown-provider",
	})

	want := CredentialSet{
		ProviderVirusTotal:   "vt-key",
		ProviderSafeBrowsing: "sb-key",
	}
	if !reflect.DeepEqual(creds, want) {
		t.Errorf("CredentialSetFromKeys() = %v, want %v", creds, want)
	}
}

func TestProvidersCopy(t *testing.T) {
	ps := Providers()
	if len(ps) != 4 {
		t.Fatalf("Providers() returned %d entries, want 4", len(ps))
	}
	ps[0] = "TAMPERED"
	if Providers()[0] != ProviderVirusTotal {
		t.Error("Providers() shares its backing array with callers")
	}
}
