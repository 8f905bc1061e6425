package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/its-dedsec/urlsentry/internal/history"
	"github.com/its-dedsec/urlsentry/internal/scan"
	domerr "github.com/its-dedsec/urlsentry/internal/shared/errors"
)

var scanCmd = &cobra.Command{
	Use:   "scan <url>",
	Short: "Check a URL against every configured provider",
	Long: `Scan runs the target URL through VirusTotal, Google Safe Browsing,
urlscan.io and IPinfo, plus local format validation, and prints the
aggregated verdict.

Providers without an API key are skipped. Keys come from the config file
(providers.<name>.api_key), the matching URLSENTRY_PROVIDERS_* environment
variables, or "urlsentry config set".`,
	Example: `  urlsentry scan https://example.com
  urlsentry scan --only virustotal,urlscan https://example.com
  urlsentry scan --json https://example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runScanCommand,
}

func runScanCommand(cmd *cobra.Command, args []string) error {
	target := strings.TrimSpace(args[0])
	if target == "" {
		return domerr.ErrEmptyTarget
	}

	creds := credentialsFromConfig()
	if len(cliConfig.Scan.Only) > 0 {
		filtered, err := filterCredentials(creds, cliConfig.Scan.Only)
		if err != nil {
			return err
		}
		creds = filtered
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			fmt.Printf("\n%s Received %s, finishing with partial results...\n", colorWarn("!"), sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	dispatcher := &scan.Dispatcher{Timeout: time.Duration(cliConfig.Scan.TimeoutSecs) * time.Second}
	adapters := dispatcher.Adapters(creds)

	var progress *progressPrinter
	if !cliConfig.Scan.JSONOutput {
		progress = newProgressPrinter(len(adapters), target)
		progress.Start()
		dispatcher.OnComplete = func(name string, checks []scan.SecurityCheck, elapsed time.Duration) {
			progress.Observe(name, allPassed(checks), elapsed)
		}
	}

	started := time.Now()
	checks := dispatcher.Run(ctx, target, adapters)
	result := scan.Result{Checks: checks, Risk: scan.AggregateRisk(checks)}

	if progress != nil {
		progress.Stop()
	}
	if ctx.Err() != nil {
		fmt.Printf("%s Scan interrupted, showing partial results.\n", colorWarn("!"))
	}

	logger.Info("scan_complete",
		zap.String("target", target),
		zap.String("risk", string(result.Risk)),
		zap.Int("checks", len(result.Checks)),
		zap.Duration("elapsed", time.Since(started)))

	recordID := ""
	if !cliConfig.Scan.NoSave {
		id, err := saveScan(target, result)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save scan history: %v\n", err)
		} else {
			recordID = id
		}
	}

	if cliConfig.Scan.JSONOutput {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		fmt.Println(string(out))
	} else {
		printScanResult(target, result, recordID)
	}

	if cliConfig.Scan.Strict && result.Risk == scan.RiskHigh {
		return &HighRiskError{Target: target, Risk: result.Risk}
	}
	return nil
}

// filterCredentials keeps only the named providers. An unknown name aborts
// the scan rather than silently running fewer checks.
func filterCredentials(creds scan.CredentialSet, only []string) (scan.CredentialSet, error) {
	keep := make(map[scan.Provider]bool, len(only))
	for _, id := range only {
		p, ok := scan.ParseProvider(id)
		if !ok {
			return nil, &UnknownProviderError{ID: id}
		}
		keep[p] = true
	}

	for _, p := range scan.Providers() {
		if keep[p] && !creds.Active(p) {
			fmt.Fprintf(os.Stderr, "Warning: %s selected but no API key is configured\n", strings.ToLower(string(p)))
		}
	}

	filtered := make(scan.CredentialSet, len(keep))
	for p, secret := range creds {
		if keep[p] {
			filtered[p] = secret
		}
	}
	return filtered, nil
}

func allPassed(checks []scan.SecurityCheck) bool {
	for _, c := range checks {
		if c.Status != scan.StatusPassed {
			return false
		}
	}
	return true
}

// saveScan records the result in the local history store. It runs on a
// fresh context so an interrupted scan still gets persisted.
func saveScan(target string, result scan.Result) (string, error) {
	store, err := history.Open(historyPath())
	if err != nil {
		return "", err
	}
	defer store.Close()

	rec, err := store.Save(context.Background(), target, result)
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func printScanResult(target string, result scan.Result, recordID string) {
	fmt.Printf("\n%s %s\n\n", colorInfo("Scan results for"), target)
	printCheckTable(result.Checks)
	fmt.Printf("\nOverall risk: %s\n", formatRisk(result.Risk))
	if recordID != "" {
		fmt.Printf("Saved as %s (export with: urlsentry report %s)\n", recordID, recordID)
	}
}

func printCheckTable(checks []scan.SecurityCheck) {
	tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CHECK\tSTATUS\tDESCRIPTION\tDETAILS")
	for _, c := range checks {
		details := c.Details
		if c.Engines != nil {
			details = fmt.Sprintf("%d/%d engines flagged", c.Engines.Positives, c.Engines.Total)
		}
		if details == "" {
			details = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Name, formatStatus(c.Status), c.Description, details)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to flush results table: %v\n", err)
	}
}

func init() {
	scanCmd.Flags().IntVarP(&cliConfig.Scan.TimeoutSecs, "timeout", "t", cliConfig.Scan.TimeoutSecs, "Per-check timeout in seconds")
	scanCmd.Flags().BoolVar(&cliConfig.Scan.NoSave, "no-save", cliConfig.Scan.NoSave, "Skip recording the result in scan history")
	scanCmd.Flags().BoolVar(&cliConfig.Scan.JSONOutput, "json", cliConfig.Scan.JSONOutput, "Emit the raw result as JSON")
	scanCmd.Flags().BoolVar(&cliConfig.Scan.Strict, "strict", cliConfig.Scan.Strict, "Exit with status 2 when the overall risk is HIGH")
	scanCmd.Flags().StringSliceVar(&cliConfig.Scan.Only, "only", cliConfig.Scan.Only, "Comma-separated providers to run (virustotal,safe_browsing,urlscan,ipinfo)")
}
