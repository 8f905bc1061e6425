package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/its-dedsec/urlsentry/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded scans",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded scans, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := openHistoryStore()
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.List(context.Background(), limit)
		if err != nil {
			return fmt.Errorf("failed to list scans: %w", err)
		}
		if len(records) == 0 {
			fmt.Println("No scans recorded yet. Run: urlsentry scan <url>")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSCANNED\tRISK\tCHECKS\tTARGET")
		for _, rec := range records {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
				rec.ID,
				rec.CreatedAt.Local().Format("2006-01-02 15:04"),
				formatRisk(rec.Risk),
				len(rec.Checks),
				rec.Target)
		}
		if err := tw.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to flush history table: %v\n", err)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <scan-id>",
	Short: "Display one recorded scan in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		store, err := openHistoryStore()
		if err != nil {
			return err
		}
		defer store.Close()

		rec, err := store.Get(context.Background(), args[0])
		if err != nil {
			return err
		}

		if asJSON {
			out, err := json.MarshalIndent(rec, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode record: %w", err)
			}
			fmt.Println(string(out))
			return nil
		}

		fmt.Printf("\n%s %s\n", colorInfo("Scan"), rec.ID)
		fmt.Printf("Target:  %s\n", rec.Target)
		fmt.Printf("Scanned: %s\n\n", rec.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		printCheckTable(rec.Checks)
		fmt.Printf("\nOverall risk: %s\n", formatRisk(rec.Risk))
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <scan-id>",
	Short: "Delete one recorded scan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistoryStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("%s deleted scan %s\n", colorSuccess("✓"), args[0])
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every recorded scan",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistoryStore()
		if err != nil {
			return err
		}
		defer store.Close()

		removed, err := store.Clear(context.Background())
		if err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		fmt.Printf("%s removed %d scan(s)\n", colorSuccess("✓"), removed)
		return nil
	},
}

func openHistoryStore() (*history.Store, error) {
	store, err := history.Open(historyPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}
	return store, nil
}

func init() {
	historyListCmd.Flags().IntP("limit", "n", 0, "Maximum entries to show (0 = store default)")
	historyShowCmd.Flags().Bool("json", false, "Emit the raw record as JSON")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
}
