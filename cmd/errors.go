package cmd

import (
	"fmt"

	"github.com/its-dedsec/urlsentry/internal/scan"
)

// HighRiskError is returned by scan --strict when the verdict is high.
type HighRiskError struct {
	Target string
	Risk   scan.Risk
}

func (e *HighRiskError) Error() string {
	return fmt.Sprintf("%s is rated %s risk", e.Target, e.Risk)
}

// UnknownProviderError signals an --only filter naming no known provider.
type UnknownProviderError struct {
	ID string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown provider %q", e.ID)
}
