package scan

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSecurityCheckJSONShape(t *testing.T) {
	check := SecurityCheck{
		Name:        "VirusTotal",
		Status:      StatusFailed,
		Description: "URL analyzed by 70 engines",
		Details:     "3 of 70 engines detected threats",
		Engines: &EngineData{
			Scans: map[string]EngineVerdict{
				"Fortinet": {Result: "malware site", Detected: true},
			},
			Positives: 3,
			Total:     70,
		},
	}

	data, err := json.Marshal(check)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	for _, key := range []string{"name", "status", "description", "details", "engines"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("marshaled check missing %q key", key)
		}
	}

	engines, ok := decoded["engines"].(map[string]any)
	if !ok {
		t.Fatalf("engines is %T, want object", decoded["engines"])
	}
	for _, key := range []string{"scans", "positives", "total"} {
		if _, ok := engines[key]; !ok {
			t.Errorf("engines object missing %q key", key)
		}
	}
}

func TestSecurityCheckJSONOmitsOptionalFields(t *testing.T) {
	check := SecurityCheck{
		Name:        "HTTPS",
		Status:      StatusPassed,
		Description: "Connection uses HTTPS encryption",
	}

	data, err := json.Marshal(check)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(data), "details") {
		t.Errorf("empty details serialized: %s", data)
	}
	if strings.Contains(string(data), "engines") {
		t.Errorf("nil engines serialized: %s", data)
	}
}

func TestResultJSONShape(t *testing.T) {
	result := Result{
		Checks: []SecurityCheck{{Name: "HTTPS", Status: StatusPassed, Description: "ok"}},
		Risk:   RiskLow,
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded struct {
		Results     []SecurityCheck `json:"results"`
		OverallRisk string          `json:"overallRisk"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(decoded.Results) != 1 {
		t.Errorf("results length = %d, want 1", len(decoded.Results))
	}
	if decoded.OverallRisk != "LOW" {
		t.Errorf("overallRisk = %q, want %q", decoded.OverallRisk, "LOW")
	}
}
