package scan

import (
	"context"
	"net/http"
	"time"
)

// defaultClientTimeout is the hard ceiling on any single HTTP exchange,
// above the per-adapter deadline the dispatcher applies.
const defaultClientTimeout = 30 * time.Second

// serviceUnavailableDetails is the shared details line for a provider call
// that could not complete.
const serviceUnavailableDetails = "Service temporarily unavailable"

// Adapter translates one provider's protocol into normalized security
// checks. Implementations never return an error: every failure class
// (DNS, connect, timeout, non-2xx, body parse) is absorbed into a
// warning-status check so a broken provider cannot abort a scan or any
// other adapter.
type Adapter interface {
	// Name returns the human-readable check label.
	Name() string

	// Check queries the provider about the target URL.
	Check(ctx context.Context, target string) []SecurityCheck
}

// newHTTPClient returns a per-adapter HTTP client. Adapters never share a
// client with one another.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultClientTimeout}
}

// unavailable builds the standard warning check for a provider that could
// not be reached or did not answer usefully.
func unavailable(name, description string) []SecurityCheck {
	return []SecurityCheck{{
		Name:        name,
		Status:      StatusWarning,
		Description: description,
		Details:     serviceUnavailableDetails,
	}}
}
