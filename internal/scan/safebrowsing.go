package scan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const (
	safeBrowsingBaseURL  = "https://safebrowsing.googleapis.com/v4"
	safeBrowsingClientID = "urlsentry"
)

// safeBrowsingThreatTypes is the fixed set of threat classes every lookup
// asks about.
var safeBrowsingThreatTypes = []string{
	"MALWARE",
	"SOCIAL_ENGINEERING",
	"UNWANTED_SOFTWARE",
	"POTENTIALLY_HARMFUL_APPLICATION",
}

// SafeBrowsing queries the Google Safe Browsing v4 threat-match API. The
// lookup is binary: a URL either matches a known threat list or it does
// not, with no partial state.
type SafeBrowsing struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

// NewSafeBrowsing returns an adapter pointed at the public Safe Browsing
// endpoint.
func NewSafeBrowsing(apiKey string) *SafeBrowsing {
	return &SafeBrowsing{
		APIKey:  apiKey,
		BaseURL: safeBrowsingBaseURL,
		Client:  newHTTPClient(),
	}
}

// Name returns the check label.
func (s *SafeBrowsing) Name() string { return "Google Safe Browsing" }

type safeBrowsingRequest struct {
	Client     safeBrowsingClient     `json:"client"`
	ThreatInfo safeBrowsingThreatInfo `json:"threatInfo"`
}

type safeBrowsingClient struct {
	ClientID      string `json:"clientId"`
	ClientVersion string `json:"clientVersion"`
}

type safeBrowsingThreatInfo struct {
	ThreatTypes      []string            `json:"threatTypes"`
	PlatformTypes    []string            `json:"platformTypes"`
	ThreatEntryTypes []string            `json:"threatEntryTypes"`
	ThreatEntries    []safeBrowsingEntry `json:"threatEntries"`
}

type safeBrowsingEntry struct {
	URL string `json:"url"`
}

type safeBrowsingResponse struct {
	Matches []struct {
		ThreatType string `json:"threatType"`
	} `json:"matches"`
}

// Check posts a threat-match query for the target URL.
func (s *SafeBrowsing) Check(ctx context.Context, target string) []SecurityCheck {
	payload, err := json.Marshal(safeBrowsingRequest{
		Client: safeBrowsingClient{
			ClientID:      safeBrowsingClientID,
			ClientVersion: "1.0",
		},
		ThreatInfo: safeBrowsingThreatInfo{
			ThreatTypes:      safeBrowsingThreatTypes,
			PlatformTypes:    []string{"ANY_PLATFORM"},
			ThreatEntryTypes: []string{"URL"},
			ThreatEntries:    []safeBrowsingEntry{{URL: target}},
		},
	})
	if err != nil {
		return unavailable(s.Name(), "Could not query Safe Browsing")
	}

	endpoint := fmt.Sprintf("%s/threatMatches:find?key=%s", s.BaseURL, url.QueryEscape(s.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return unavailable(s.Name(), "Could not query Safe Browsing")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return unavailable(s.Name(), "Could not query Safe Browsing")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return unavailable(s.Name(), "Could not query Safe Browsing")
	}

	var result safeBrowsingResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return unavailable(s.Name(), "Could not query Safe Browsing")
	}

	if len(result.Matches) > 0 {
		return []SecurityCheck{{
			Name:        s.Name(),
			Status:      StatusFailed,
			Description: "URL is flagged in the Safe Browsing threat lists",
			Details:     fmt.Sprintf("Threat type: %s", result.Matches[0].ThreatType),
		}}
	}

	return []SecurityCheck{{
		Name:        s.Name(),
		Status:      StatusPassed,
		Description: "No threats found in Safe Browsing database",
	}}
}
