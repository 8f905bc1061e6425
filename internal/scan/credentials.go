package scan

import "strings"

// Provider identifies one external threat-intelligence service.
type Provider string

const (
	ProviderVirusTotal   Provider = "VIRUSTOTAL"
	ProviderSafeBrowsing Provider = "SAFE_BROWSING"
	ProviderURLScan      Provider = "URLSCAN"
	ProviderIPInfo       Provider = "IPINFO"
)

// providerOrder fixes the order adapters run in and therefore the order of
// checks in every result list.
var providerOrder = []Provider{
	ProviderVirusTotal,
	ProviderSafeBrowsing,
	ProviderURLScan,
	ProviderIPInfo,
}

// Providers returns every known provider in declaration order.
func Providers() []Provider {
	out := make([]Provider, len(providerOrder))
	copy(out, providerOrder)
	return out
}

var providerIDReplacer = strings.NewReplacer("-", "_", ".", "_", " ", "_")

// ParseProvider maps a wire or config identifier to a Provider. Matching
// is case-insensitive and folds "-", "." and spaces to "_", so
// "safe_browsing", "SAFE-BROWSING" and "Safe Browsing" all name the same
// provider.
func ParseProvider(id string) (Provider, bool) {
	norm := providerIDReplacer.Replace(strings.ToUpper(strings.TrimSpace(id)))
	switch p := Provider(norm); p {
	case ProviderVirusTotal, ProviderSafeBrowsing, ProviderURLScan, ProviderIPInfo:
		return p, true
	}
	return "", false
}

// CredentialSet maps providers to API secrets for one scan invocation. A
// provider with an empty secret counts as not configured, which simply
// deactivates its adapter. The set is read-only for the duration of a
// scan.
type CredentialSet map[Provider]string

// Active reports whether the provider has a non-empty secret.
func (c CredentialSet) Active(p Provider) bool {
	return c[p] != ""
}

// Secret returns the provider's secret, or the empty string when absent.
func (c CredentialSet) Secret(p Provider) string {
	return c[p]
}

// ActiveProviders returns the configured providers in declaration order.
func (c CredentialSet) ActiveProviders() []Provider {
	out := make([]Provider, 0, len(c))
	for _, p := range providerOrder {
		if c.Active(p) {
			out = append(out, p)
		}
	}
	return out
}

// CredentialSetFromKeys builds a CredentialSet from raw identifier/secret
// pairs such as the apiKeys object of a scan request. Unknown identifiers
// and empty secrets are ignored.
func CredentialSetFromKeys(keys map[string]string) CredentialSet {
	creds := make(CredentialSet, len(keys))
	for id, secret := range keys {
		if p, ok := ParseProvider(id); ok && secret != "" {
			creds[p] = secret
		}
	}
	return creds
}
