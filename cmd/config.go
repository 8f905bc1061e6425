package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/its-dedsec/urlsentry/internal/scan"
	"github.com/its-dedsec/urlsentry/internal/shared/constants"
)

const (
	defaultServeAddr = "127.0.0.1:8080"
	defaultRateLimit = 10
	defaultRateBurst = 20
)

// CLIConfig captures runtime configuration shared across commands.
type CLIConfig struct {
	Scan  ScanRuntimeConfig
	Serve ServeRuntimeConfig
}

// ScanRuntimeConfig consolidates flag-driven settings for the scan command.
type ScanRuntimeConfig struct {
	TimeoutSecs int
	NoSave      bool
	JSONOutput  bool
	Strict      bool
	Only        []string
}

// ServeRuntimeConfig consolidates flag-driven settings for the serve command.
type ServeRuntimeConfig struct {
	Addr         string
	AuthToken    string
	HistoryLimit int
	RateLimit    int
	RateBurst    int
	CORSOrigins  []string
}

var cliConfig = newCLIConfig()

func newCLIConfig() *CLIConfig {
	return &CLIConfig{
		Scan: ScanRuntimeConfig{
			TimeoutSecs: int(constants.DefaultProviderTimeout / time.Second),
		},
		Serve: ServeRuntimeConfig{
			Addr:         defaultServeAddr,
			HistoryLimit: constants.DefaultHistoryLimit,
			RateLimit:    defaultRateLimit,
			RateBurst:    defaultRateBurst,
		},
	}
}

func providerKeyPath(p scan.Provider) string {
	return "providers." + strings.ToLower(string(p)) + ".api_key"
}

// credentialsFromConfig assembles the provider credential set from viper
// state: config file keys (providers.<name>.api_key) or the matching
// URLSENTRY_PROVIDERS_* environment variables.
func credentialsFromConfig() scan.CredentialSet {
	keys := make(map[string]string, len(scan.Providers()))
	for _, p := range scan.Providers() {
		keys[string(p)] = viper.GetString(providerKeyPath(p))
	}
	return scan.CredentialSetFromKeys(keys)
}

// applyConfigDefaults merges config file defaults into the runtime config
// when the user did not explicitly override the corresponding flag.
func applyConfigDefaults(cmd *cobra.Command) {
	if viper.IsSet("scan.timeout_secs") {
		applyIntDefault(scanCmd.Flags(), "timeout", viper.GetInt("scan.timeout_secs"), func(v int) {
			cliConfig.Scan.TimeoutSecs = v
		})
	}
	if viper.IsSet("scan.save_history") {
		applyBoolDefault(scanCmd.Flags(), "no-save", !viper.GetBool("scan.save_history"), func(v bool) {
			cliConfig.Scan.NoSave = v
		})
	}
	if viper.IsSet("serve.addr") {
		applyStringDefault(serveCmd.Flags(), "addr", viper.GetString("serve.addr"), func(v string) {
			cliConfig.Serve.Addr = v
		})
	}
	if viper.IsSet("serve.auth_token") {
		applyStringDefault(serveCmd.Flags(), "auth-token", viper.GetString("serve.auth_token"), func(v string) {
			cliConfig.Serve.AuthToken = v
		})
	}
	if viper.IsSet("serve.history_limit") {
		applyIntDefault(serveCmd.Flags(), "history-limit", viper.GetInt("serve.history_limit"), func(v int) {
			cliConfig.Serve.HistoryLimit = v
		})
	}
	if viper.IsSet("serve.rate_limit") {
		applyIntDefault(serveCmd.Flags(), "rate-limit", viper.GetInt("serve.rate_limit"), func(v int) {
			cliConfig.Serve.RateLimit = v
		})
	}
	if viper.IsSet("serve.rate_burst") {
		applyIntDefault(serveCmd.Flags(), "rate-burst", viper.GetInt("serve.rate_burst"), func(v int) {
			cliConfig.Serve.RateBurst = v
		})
	}
	if viper.IsSet("serve.cors_origins") {
		applyStringSliceDefault(serveCmd.Flags(), "cors-origins", viper.GetStringSlice("serve.cors_origins"), func(v []string) {
			cliConfig.Serve.CORSOrigins = v
		})
	}
}

func applyIntDefault(flags *pflag.FlagSet, name string, value int, setter func(int)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func applyBoolDefault(flags *pflag.FlagSet, name string, value bool, setter func(bool)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func applyStringDefault(flags *pflag.FlagSet, name, value string, setter func(string)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func applyStringSliceDefault(flags *pflag.FlagSet, name string, value []string, setter func([]string)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage urlsentry configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		path, err := activeConfigPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		}

		if err := writeYAMLFile(path, starterConfig()); err != nil {
			return fmt.Errorf("failed to write configuration file: %w", err)
		}

		fmt.Printf("%s configuration written to %s\n", colorSuccess("✓"), path)
		fmt.Println("Add provider API keys under the providers section to enable external checks.")
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := viper.AllSettings()
		redactProviderSecrets(settings)

		out, err := yaml.Marshal(settings)
		if err != nil {
			return fmt.Errorf("failed to render configuration: %w", err)
		}
		fmt.Print(string(out))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value (dotted keys, e.g. providers.virustotal.api_key)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := strings.TrimSpace(args[0])
		if key == "" {
			return fmt.Errorf("key cannot be empty")
		}

		path, err := activeConfigPath()
		if err != nil {
			return err
		}

		cfg := map[string]interface{}{}
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}

		setNested(cfg, strings.Split(key, "."), parseConfigValue(args[1]))

		if err := writeYAMLFile(path, cfg); err != nil {
			return fmt.Errorf("failed to write configuration file: %w", err)
		}

		fmt.Printf("%s set %s in %s\n", colorSuccess("✓"), key, path)
		return nil
	},
}

// activeConfigPath is the file config init/set operate on: --config when
// given, otherwise the default location.
func activeConfigPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return defaultConfigPath()
}

func starterConfig() map[string]interface{} {
	providers := map[string]interface{}{}
	for _, p := range scan.Providers() {
		providers[strings.ToLower(string(p))] = map[string]interface{}{"api_key": ""}
	}
	return map[string]interface{}{
		"data_dir": "",
		"log": map[string]interface{}{
			"file":         "",
			"max_size_mb":  50,
			"max_backups":  5,
			"max_age_days": 30,
		},
		"scan": map[string]interface{}{
			"timeout_secs": int(constants.DefaultProviderTimeout / time.Second),
			"save_history": true,
		},
		"serve": map[string]interface{}{
			"addr":          defaultServeAddr,
			"auth_token":    "",
			"history_limit": constants.DefaultHistoryLimit,
			"rate_limit":    defaultRateLimit,
			"rate_burst":    defaultRateBurst,
			"cors_origins":  []string{},
		},
		"providers": providers,
	}
}

// redactProviderSecrets masks configured API keys in-place for display.
func redactProviderSecrets(settings map[string]interface{}) {
	providers, ok := settings["providers"].(map[string]interface{})
	if !ok {
		return
	}
	for _, entry := range providers {
		fields, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		if key, ok := fields["api_key"].(string); ok && key != "" {
			fields["api_key"] = "********"
		}
	}
}

func writeYAMLFile(path string, v interface{}) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, out, constants.DefaultFilePerm); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func setNested(dst map[string]interface{}, keys []string, val interface{}) {
	if len(keys) == 0 {
		return
	}
	if len(keys) == 1 {
		dst[keys[0]] = val
		return
	}
	k := keys[0]
	child, ok := dst[k].(map[string]interface{})
	if !ok {
		child = map[string]interface{}{}
	}
	setNested(child, keys[1:], val)
	dst[k] = child
}

// parseConfigValue coerces a CLI string into the YAML type it looks like:
// booleans, integers and comma lists; everything else stays a string.
func parseConfigValue(s string) interface{} {
	trim := strings.TrimSpace(s)

	if strings.Contains(trim, ",") {
		parts := strings.Split(trim, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := strings.TrimSpace(p); t != "" {
				out = append(out, t)
			}
		}
		return out
	}

	if b, err := strconv.ParseBool(trim); err == nil {
		return b
	}
	if i, err := strconv.Atoi(trim); err == nil {
		return i
	}

	return trim
}

func init() {
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
