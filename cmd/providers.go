package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/its-dedsec/urlsentry/internal/scan"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List supported providers and their configuration state",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds := credentialsFromConfig()

		tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PROVIDER\tCONFIG KEY\tENV VARIABLE\tSTATUS")
		for _, p := range scan.Providers() {
			status := colorWarn("not configured")
			if creds.Active(p) {
				status = colorSuccess("active")
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				strings.ToLower(string(p)), providerKeyPath(p), providerEnvVar(p), status)
		}
		if err := tw.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to flush providers table: %v\n", err)
		}

		fmt.Println("\nSet a key with: urlsentry config set providers.<name>.api_key <key>")
		return nil
	},
}

// providerEnvVar is the environment variable viper resolves for the
// provider's api_key, mirroring the URLSENTRY prefix and key replacer.
func providerEnvVar(p scan.Provider) string {
	return "URLSENTRY_" + strings.ToUpper(strings.ReplaceAll(providerKeyPath(p), ".", "_"))
}

func init() {
	rootCmd.AddCommand(providersCmd)
}
