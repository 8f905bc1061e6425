package cmd

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"os"
	"sort"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/spf13/cobra"

	"github.com/its-dedsec/urlsentry/internal/history"
	"github.com/its-dedsec/urlsentry/internal/scan"
	"github.com/its-dedsec/urlsentry/internal/security"
	"github.com/its-dedsec/urlsentry/internal/shared/constants"
	domerr "github.com/its-dedsec/urlsentry/internal/shared/errors"
)

const (
	htmlTemplatePath     = "templates/report.html"
	markdownTemplatePath = "templates/report.md"
)

//go:embed templates/report.html templates/report.md
var reportTemplateFS embed.FS

var (
	reportTemplateFuncs = template.FuncMap{
		"riskBadgeClass":  riskBadgeClass,
		"detectedEngines": detectedEngines,
	}

	htmlReportTemplate = template.Must(
		template.New("report.html").Funcs(reportTemplateFuncs).ParseFS(reportTemplateFS, htmlTemplatePath),
	)
	markdownReportTemplate = texttemplate.Must(
		texttemplate.New("report.md").Funcs(texttemplate.FuncMap(reportTemplateFuncs)).ParseFS(reportTemplateFS, markdownTemplatePath),
	)
)

var reportCmd = &cobra.Command{
	Use:   "report <scan-id>",
	Short: "Export a recorded scan as PDF, HTML or markdown",
	Long: `Report renders a scan from history as a shareable document. The scan
id accepts the unique prefixes shown by "urlsentry history list".

Without --output the file lands in the reports directory under the data
dir, named after the scan id.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("output")

		format = strings.ToLower(strings.TrimSpace(format))
		switch format {
		case "pdf", "html", "md":
		default:
			return fmt.Errorf("%w: %s (must be pdf, html or md)", domerr.ErrUnsupportedFormat, format)
		}

		store, err := openHistoryStore()
		if err != nil {
			return err
		}
		defer store.Close()

		rec, err := store.Get(context.Background(), args[0])
		if err != nil {
			return err
		}

		data := buildReportData(rec)

		var content []byte
		switch format {
		case "md":
			text, err := generateMarkdownReport(data)
			if err != nil {
				return err
			}
			content = []byte(text)
		case "html":
			text, err := generateHTMLReport(data)
			if err != nil {
				return err
			}
			content = []byte(text)
		case "pdf":
			content, err = generatePDFReport(data)
			if err != nil {
				return err
			}
		}

		if outPath == "" {
			outPath, err = defaultReportPath(rec.ID, format)
			if err != nil {
				return err
			}
		}

		if err := os.WriteFile(outPath, content, constants.DefaultFilePerm); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}

		fmt.Printf("%s report written to %s\n", colorSuccess("✓"), outPath)
		return nil
	},
}

// reportData holds the fields the templates and the PDF builder render.
type reportData struct {
	ID          string
	Target      string
	Risk        scan.Risk
	Checks      []scan.SecurityCheck
	ScannedAt   string
	GeneratedAt string
	Passed      int
	Warnings    int
	Failed      int
}

func buildReportData(rec history.Record) reportData {
	var passed, warnings, failed int
	for _, c := range rec.Checks {
		switch c.Status {
		case scan.StatusPassed:
			passed++
		case scan.StatusWarning:
			warnings++
		case scan.StatusFailed:
			failed++
		}
	}

	return reportData{
		ID:          rec.ID,
		Target:      rec.Target,
		Risk:        rec.Risk,
		Checks:      rec.Checks,
		ScannedAt:   rec.CreatedAt.Local().Format(time.RFC1123),
		GeneratedAt: time.Now().Format(time.RFC1123),
		Passed:      passed,
		Warnings:    warnings,
		Failed:      failed,
	}
}

// defaultReportPath places the report in the reports directory, named
// after the scan id. The join goes through the path-escape guard since
// the id originates from user input.
func defaultReportPath(id, format string) (string, error) {
	dir, err := reportsDir()
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("scan-%s.%s", security.SanitizeFilename(id), format)
	return security.ResolveWithin(dir, name)
}

func generateMarkdownReport(data reportData) (string, error) {
	var buf strings.Builder
	if err := markdownReportTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute markdown template: %w", err)
	}
	return buf.String(), nil
}

func generateHTMLReport(data reportData) (string, error) {
	var buf strings.Builder
	if err := htmlReportTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute HTML template: %w", err)
	}
	return buf.String(), nil
}

func generatePDFReport(data reportData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Title
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "URL Security Report", "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Metadata section
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Target: %s", data.Target), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Scan ID: %s", data.ID), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Scanned: %s", data.ScannedAt), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", data.GeneratedAt), "", 1, "", false, 0, "")
	pdf.Ln(5)

	// Verdict band
	pdf.SetFont("Arial", "B", 12)
	r, g, b := riskFillColor(data.Risk)
	pdf.SetFillColor(r, g, b)
	pdf.CellFormat(0, 8, fmt.Sprintf("Overall Risk: %s", data.Risk), "", 1, "C", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Passed: %d | Warnings: %d | Failed: %d",
		data.Passed, data.Warnings, data.Failed), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Checks
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Security Checks", "", 1, "", false, 0, "")
	pdf.Ln(2)

	for _, c := range data.Checks {
		// Check if we need a new page before adding content
		if pdf.GetY() > 250 {
			pdf.AddPage()
		}

		pdf.SetFont("Arial", "B", 11)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(0, 7, fmt.Sprintf("%s - %s", c.Name, strings.ToUpper(string(c.Status))), "", 1, "", true, 0, "")
		pdf.Ln(1)

		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(0, 5, c.Description, "", "", false)
		if c.Details != "" {
			pdf.SetFont("Arial", "I", 8)
			pdf.MultiCell(0, 4, c.Details, "", "", false)
		}

		if c.Engines != nil {
			pdf.SetFont("Arial", "B", 9)
			pdf.CellFormat(0, 5, fmt.Sprintf("Engines: %d/%d flagged", c.Engines.Positives, c.Engines.Total), "", 1, "", false, 0, "")
			pdf.SetFont("Arial", "", 8)
			for _, line := range detectedEngines(c.Engines) {
				if pdf.GetY() > 270 {
					pdf.AddPage()
				}
				pdf.MultiCell(0, 4, fmt.Sprintf("  - %s", line), "", "", false)
			}
		}

		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// detectedEngines lists the engines that flagged the URL, sorted by name.
func detectedEngines(e *scan.EngineData) []string {
	if e == nil {
		return nil
	}
	var out []string
	for name, verdict := range e.Scans {
		if verdict.Detected {
			out = append(out, fmt.Sprintf("%s: %s", name, verdict.Result))
		}
	}
	sort.Strings(out)
	return out
}

func riskBadgeClass(risk scan.Risk) string {
	switch risk {
	case scan.RiskHigh:
		return "badge-high"
	case scan.RiskMedium:
		return "badge-medium"
	default:
		return "badge-low"
	}
}

func riskFillColor(risk scan.Risk) (int, int, int) {
	switch risk {
	case scan.RiskHigh:
		return 248, 215, 218
	case scan.RiskMedium:
		return 255, 243, 205
	default:
		return 212, 237, 218
	}
}

func init() {
	reportCmd.Flags().StringP("format", "f", "pdf", "Output format: pdf|html|md")
	reportCmd.Flags().StringP("output", "o", "", "Write the report to this path instead of the reports directory")
}
