package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

const ipInfoBaseURL = "https://ipinfo.io"

// IPInfo resolves the target's hostname and looks up where the serving
// address is located. Geolocation is informational only: a successful
// lookup always passes, whatever it finds.
type IPInfo struct {
	APIKey   string
	BaseURL  string
	Client   *http.Client
	Resolver *net.Resolver
}

// NewIPInfo returns an adapter pointed at the public ipinfo.io API.
func NewIPInfo(apiKey string) *IPInfo {
	return &IPInfo{
		APIKey:   apiKey,
		BaseURL:  ipInfoBaseURL,
		Client:   newHTTPClient(),
		Resolver: net.DefaultResolver,
	}
}

// Name returns the check label.
func (i *IPInfo) Name() string { return "IP Geolocation" }

type ipInfoResponse struct {
	City    string `json:"city"`
	Country string `json:"country"`
	Org     string `json:"org"`
}

// Check resolves the target host and fetches city, country and
// organization for its first address. Missing fields fall back to
// "Unknown".
func (i *IPInfo) Check(ctx context.Context, target string) []SecurityCheck {
	parsed, err := url.Parse(target)
	if err != nil || parsed.Hostname() == "" {
		return []SecurityCheck{{
			Name:        i.Name(),
			Status:      StatusWarning,
			Description: "Could not locate the server",
			Details:     "URL has no hostname to resolve",
		}}
	}

	addrs, err := i.Resolver.LookupHost(ctx, parsed.Hostname())
	if err != nil || len(addrs) == 0 {
		return unavailable(i.Name(), "Could not locate the server")
	}

	endpoint := fmt.Sprintf("%s/%s/json?token=%s", i.BaseURL, addrs[0], url.QueryEscape(i.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return unavailable(i.Name(), "Could not locate the server")
	}

	resp, err := i.Client.Do(req)
	if err != nil {
		return unavailable(i.Name(), "Could not locate the server")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return unavailable(i.Name(), "Could not locate the server")
	}

	var info ipInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return unavailable(i.Name(), "Could not locate the server")
	}

	city, country, org := info.City, info.Country, info.Org
	if city == "" {
		city = "Unknown"
	}
	if country == "" {
		country = "Unknown"
	}
	if org == "" {
		org = "Unknown"
	}

	return []SecurityCheck{{
		Name:        i.Name(),
		Status:      StatusPassed,
		Description: "Server location resolved",
		Details:     fmt.Sprintf("%s, %s (%s)", city, country, org),
	}}
}
