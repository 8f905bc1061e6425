package scan

import (
	"context"
	"fmt"
	"net/url"
)

// URLValidation is the always-active local adapter. It makes no network
// calls: it verifies the target parses as an absolute URL and that the
// scheme is https. An unparsable target yields a single failed format
// check and the scheme check is skipped.
type URLValidation struct{}

// Name returns the check label.
func (URLValidation) Name() string { return "URL Validation" }

// Check validates the target string locally.
func (URLValidation) Check(_ context.Context, target string) []SecurityCheck {
	parsed, err := url.Parse(target)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return []SecurityCheck{{
			Name:        "URL Format",
			Status:      StatusFailed,
			Description: "Target is not a valid absolute URL",
			Details:     "invalid URL format",
		}}
	}

	checks := []SecurityCheck{{
		Name:        "URL Format",
		Status:      StatusPassed,
		Description: "Target is a well-formed URL",
	}}

	if parsed.Scheme == "https" {
		checks = append(checks, SecurityCheck{
			Name:        "HTTPS",
			Status:      StatusPassed,
			Description: "Connection uses HTTPS encryption",
		})
	} else {
		// Plain HTTP is a caution, not proof of malice.
		checks = append(checks, SecurityCheck{
			Name:        "HTTPS",
			Status:      StatusWarning,
			Description: "Connection does not use HTTPS encryption",
			Details:     fmt.Sprintf("URL uses the insecure %q scheme", parsed.Scheme),
		})
	}

	return checks
}
