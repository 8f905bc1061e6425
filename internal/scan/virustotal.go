package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const virusTotalBaseURL = "https://www.virustotal.com/vtapi/v2"

// VirusTotal looks the target up in the VirusTotal URL report API, which
// aggregates verdicts from dozens of detection engines.
type VirusTotal struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

// NewVirusTotal returns an adapter pointed at the public VirusTotal API.
func NewVirusTotal(apiKey string) *VirusTotal {
	return &VirusTotal{
		APIKey:  apiKey,
		BaseURL: virusTotalBaseURL,
		Client:  newHTTPClient(),
	}
}

// Name returns the check label.
func (v *VirusTotal) Name() string { return "VirusTotal" }

// virusTotalReport is the subset of the url/report response the adapter
// reads. ResponseCode 1 means the resource is known; 0 means VirusTotal
// has not analyzed it yet.
type virusTotalReport struct {
	ResponseCode int                          `json:"response_code"`
	Positives    int                          `json:"positives"`
	Total        int                          `json:"total"`
	Scans        map[string]virusTotalVerdict `json:"scans"`
}

type virusTotalVerdict struct {
	Detected bool   `json:"detected"`
	Result   string `json:"result"`
}

// Check fetches the multi-engine report for the target. A report with one
// or more positive detections fails the check; an unanalyzed URL is a
// warning, not a failure.
func (v *VirusTotal) Check(ctx context.Context, target string) []SecurityCheck {
	endpoint := fmt.Sprintf("%s/url/report?apikey=%s&resource=%s",
		v.BaseURL, url.QueryEscape(v.APIKey), url.QueryEscape(target))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return unavailable(v.Name(), "Could not query VirusTotal")
	}

	resp, err := v.Client.Do(req)
	if err != nil {
		return unavailable(v.Name(), "Could not query VirusTotal")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return unavailable(v.Name(), "Could not query VirusTotal")
	}

	var report virusTotalReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return unavailable(v.Name(), "Could not query VirusTotal")
	}

	if report.ResponseCode != 1 {
		return []SecurityCheck{{
			Name:        v.Name(),
			Status:      StatusWarning,
			Description: "URL not found in database",
			Details:     "Submit the URL to VirusTotal to receive a full engine report",
		}}
	}

	check := SecurityCheck{
		Name:        v.Name(),
		Description: fmt.Sprintf("URL analyzed by %d engines", report.Total),
		Engines: &EngineData{
			Scans:     make(map[string]EngineVerdict, len(report.Scans)),
			Positives: report.Positives,
			Total:     report.Total,
		},
	}
	for engine, verdict := range report.Scans {
		check.Engines.Scans[engine] = EngineVerdict{
			Result:   verdict.Result,
			Detected: verdict.Detected,
		}
	}

	if report.Positives > 0 {
		check.Status = StatusFailed
		check.Details = fmt.Sprintf("%d of %d engines detected threats", report.Positives, report.Total)
	} else {
		check.Status = StatusPassed
		check.Details = "No threats detected"
	}

	return []SecurityCheck{check}
}
