package scan

import (
	"context"
	"sync"
	"time"
)

// DefaultTimeout bounds each adapter's provider call.
const DefaultTimeout = 15 * time.Second

// Endpoints overrides the provider base URLs. Zero values mean the public
// endpoints; tests and proxied deployments point these elsewhere.
type Endpoints struct {
	VirusTotal   string
	SafeBrowsing string
	URLScan      string
	IPInfo       string
}

// Dispatcher fans a scan out to every active provider adapter plus the
// local validation adapter, and joins their checks in declaration order.
type Dispatcher struct {
	// Timeout bounds each adapter call. Zero means DefaultTimeout.
	Timeout time.Duration

	// Endpoints optionally redirects provider traffic.
	Endpoints Endpoints

	// OnComplete, when set, observes each adapter as it settles. It is
	// called from the adapter goroutines, so it must be safe for
	// concurrent use.
	OnComplete func(name string, checks []SecurityCheck, elapsed time.Duration)
}

// Adapters returns the adapter chain for the credential set: active
// providers in declaration order, local validation always last.
func (d *Dispatcher) Adapters(creds CredentialSet) []Adapter {
	adapters := make([]Adapter, 0, len(providerOrder)+1)
	for _, p := range creds.ActiveProviders() {
		if a := d.newAdapter(p, creds.Secret(p)); a != nil {
			adapters = append(adapters, a)
		}
	}
	return append(adapters, URLValidation{})
}

func (d *Dispatcher) newAdapter(p Provider, secret string) Adapter {
	switch p {
	case ProviderVirusTotal:
		a := NewVirusTotal(secret)
		if d.Endpoints.VirusTotal != "" {
			a.BaseURL = d.Endpoints.VirusTotal
		}
		return a
	case ProviderSafeBrowsing:
		a := NewSafeBrowsing(secret)
		if d.Endpoints.SafeBrowsing != "" {
			a.BaseURL = d.Endpoints.SafeBrowsing
		}
		return a
	case ProviderURLScan:
		a := NewURLScan(secret)
		if d.Endpoints.URLScan != "" {
			a.BaseURL = d.Endpoints.URLScan
		}
		return a
	case ProviderIPInfo:
		a := NewIPInfo(secret)
		if d.Endpoints.IPInfo != "" {
			a.BaseURL = d.Endpoints.IPInfo
		}
		return a
	}
	return nil
}

// Run executes the adapters concurrently against the target and waits for
// all of them to settle. Every adapter gets its own deadline; results land
// in per-adapter slots so the returned order never depends on completion
// order.
func (d *Dispatcher) Run(ctx context.Context, target string, adapters []Adapter) []SecurityCheck {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	slots := make([][]SecurityCheck, len(adapters))
	var wg sync.WaitGroup
	for i, adapter := range adapters {
		wg.Add(1)
		go func(i int, adapter Adapter) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			start := time.Now()
			slots[i] = adapter.Check(checkCtx, target)
			if d.OnComplete != nil {
				d.OnComplete(adapter.Name(), slots[i], time.Since(start))
			}
		}(i, adapter)
	}
	wg.Wait()

	checks := make([]SecurityCheck, 0, len(adapters)+1)
	for _, slot := range slots {
		checks = append(checks, slot...)
	}
	return checks
}

// Scan runs every active adapter for the credential set against the
// target and derives the overall risk. It never returns an error:
// provider failures surface as warning checks and a malformed target
// surfaces as a failed validation check.
func (d *Dispatcher) Scan(ctx context.Context, target string, creds CredentialSet) Result {
	checks := d.Run(ctx, target, d.Adapters(creds))
	return Result{Checks: checks, Risk: AggregateRisk(checks)}
}
