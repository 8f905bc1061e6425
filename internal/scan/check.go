package scan

// Status of a single security check.
type Status string

const (
	StatusPending Status = "pending"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusWarning Status = "warning"
)

// EngineVerdict is one detection engine's verdict inside a multi-engine
// malware report.
type EngineVerdict struct {
	Result   string `json:"result"`
	Detected bool   `json:"detected"`
}

// EngineData carries the per-engine breakdown returned by multi-engine
// malware scanners, keyed by engine name, plus the aggregate counts.
type EngineData struct {
	Scans     map[string]EngineVerdict `json:"scans"`
	Positives int                      `json:"positives"`
	Total     int                      `json:"total"`
}

// SecurityCheck is the normalized result of one provider check. Name is
// unique within a single scan's result list. Details and Engines are
// optional; only the multi-engine malware adapter populates Engines.
type SecurityCheck struct {
	Name        string      `json:"name"`
	Status      Status      `json:"status"`
	Description string      `json:"description"`
	Details     string      `json:"details,omitempty"`
	Engines     *EngineData `json:"engines,omitempty"`
}

// Result is one completed scan: the ordered check list plus the overall
// risk derived from it. Risk is always recomputed from Checks, never
// stored independently.
type Result struct {
	Checks []SecurityCheck `json:"results"`
	Risk   Risk            `json:"overallRisk"`
}
