package scan

// Risk is the aggregate verdict for one scan.
type Risk string

const (
	RiskLow    Risk = "LOW"
	RiskMedium Risk = "MEDIUM"
	RiskHigh   Risk = "HIGH"
)

// AggregateRisk reduces a check list to one overall risk level. Any failed
// check makes the risk HIGH. Without failures, two or more warnings make
// it MEDIUM. A lone warning is not enough to leave LOW.
func AggregateRisk(checks []SecurityCheck) Risk {
	var failed, warnings int
	for _, c := range checks {
		switch c.Status {
		case StatusFailed:
			failed++
		case StatusWarning:
			warnings++
		}
	}

	if failed >= 1 {
		return RiskHigh
	}
	if warnings >= 2 {
		return RiskMedium
	}
	return RiskLow
}
