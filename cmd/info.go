package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/its-dedsec/urlsentry/internal/shared/constants"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show system information and data directory paths",
	Long: `Display urlsentry environment information including:
  - Data directory location
  - History database and reports directory
  - Configuration file path
  - Platform information`,
	RunE: func(cmd *cobra.Command, args []string) error {
		historyExists := "✗ (not created yet)"
		if _, err := os.Stat(historyPath()); err == nil {
			historyExists = "✓ (exists)"
		}

		reportsPath := filepath.Join(dataDir, constants.ReportsDirName)
		reportsExists := "✗ (not created yet)"
		if _, err := os.Stat(reportsPath); err == nil {
			reportsExists = "✓ (exists)"
		}

		configPath, err := activeConfigPath()
		if err != nil {
			return err
		}
		configExists := "✗ (using defaults)"
		if _, err := os.Stat(configPath); err == nil {
			configExists = "✓ (exists)"
		}

		// Get output writer (for testing support)
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, "urlsentry System Information")
		fmt.Fprintln(out, "============================")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Platform:          %s/%s\n", runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(out, "Version:           %s\n", Version)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Data Locations:")
		fmt.Fprintf(out, "  Data Directory:   %s\n", dataDir)
		fmt.Fprintf(out, "  History Database: %s %s\n", historyPath(), historyExists)
		fmt.Fprintf(out, "  Reports:          %s %s\n", reportsPath, reportsExists)
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Configuration File: %s %s\n", configPath, configExists)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "To override the data directory, set data_dir in the config file")
		fmt.Fprintln(out, "or export URLSENTRY_DATA_DIR.")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
