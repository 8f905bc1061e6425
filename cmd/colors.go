package cmd

import (
	"github.com/fatih/color"

	"github.com/its-dedsec/urlsentry/internal/scan"
)

var (
	colorSuccess = color.New(color.FgGreen).SprintFunc()
	colorInfo    = color.New(color.FgCyan).SprintFunc()
	colorWarn    = color.New(color.FgYellow).SprintFunc()
	colorError   = color.New(color.FgRed).SprintFunc()
)

func formatStatus(status scan.Status) string {
	switch status {
	case scan.StatusPassed:
		return colorSuccess(string(status))
	case scan.StatusFailed:
		return colorError(string(status))
	case scan.StatusWarning:
		return colorWarn(string(status))
	default:
		return string(status)
	}
}

func formatRisk(risk scan.Risk) string {
	switch risk {
	case scan.RiskLow:
		return colorSuccess(string(risk))
	case scan.RiskMedium:
		return colorWarn(string(risk))
	case scan.RiskHigh:
		return colorError(string(risk))
	default:
		return string(risk)
	}
}
