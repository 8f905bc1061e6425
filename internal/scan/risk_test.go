package scan

import "testing"

func checksWith(statuses ...Status) []SecurityCheck {
	checks := make([]SecurityCheck, 0, len(statuses))
	for _, s := range statuses {
		checks = append(checks, SecurityCheck{Name: "check", Status: s})
	}
	return checks
}

func TestAggregateRisk(t *testing.T) {
	tests := []struct {
		name   string
		checks []SecurityCheck
		want   Risk
	}{
		{"empty list", nil, RiskLow},
		{"all passed", checksWith(StatusPassed, StatusPassed, StatusPassed), RiskLow},
		{"single warning stays low", checksWith(StatusPassed, StatusWarning), RiskLow},
		{"two warnings", checksWith(StatusWarning, StatusWarning), RiskMedium},
		{"three warnings", checksWith(StatusWarning, StatusWarning, StatusWarning), RiskMedium},
		{"single failure", checksWith(StatusPassed, StatusFailed), RiskHigh},
		{"failure beats warnings", checksWith(StatusFailed, StatusWarning, StatusWarning), RiskHigh},
		{"multiple failures", checksWith(StatusFailed, StatusFailed), RiskHigh},
		{"pending counts as neither", checksWith(StatusPending, StatusPending), RiskLow},
		{"pending with one warning", checksWith(StatusPending, StatusWarning), RiskLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AggregateRisk(tt.checks); got != tt.want {
				t.Errorf("AggregateRisk() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAggregateRiskHighIffAnyFailed(t *testing.T) {
	// HIGH exactly when at least one check failed, whatever else is there.
	tests := []struct {
		name   string
		checks []SecurityCheck
	}{
		{"failed only", checksWith(StatusFailed)},
		{"failed among passed", checksWith(StatusPassed, StatusFailed, StatusPassed)},
		{"failed among many warnings", checksWith(StatusWarning, StatusWarning, StatusWarning, StatusFailed)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AggregateRisk(tt.checks); got != RiskHigh {
				t.Errorf("AggregateRisk() = %v, want %v", got, RiskHigh)
			}
		})
	}

	for _, tt := range []struct {
		name   string
		checks []SecurityCheck
	}{
		{"no failed, no warning", checksWith(StatusPassed)},
		{"no failed, many warnings", checksWith(StatusWarning, StatusWarning, StatusWarning)},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if got := AggregateRisk(tt.checks); got == RiskHigh {
				t.Errorf("AggregateRisk() = %v without any failed check", got)
			}
		})
	}
}
