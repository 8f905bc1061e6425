package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/its-dedsec/urlsentry/internal/shared/constants"
)

var cfgFile string
var logger *zap.Logger
var dataDir string

var rootCmd = &cobra.Command{
	Use:   "urlsentry",
	Short: "Check URLs against VirusTotal, Safe Browsing, urlscan.io and IPinfo",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// init config
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			viper.AddConfigPath("$HOME")
			viper.SetConfigName(".urlsentry")
			viper.SetConfigType("yaml")
		}
		viper.SetEnvPrefix("URLSENTRY")
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.AutomaticEnv()

		_ = viper.ReadInConfig()
		dataDir = viper.GetString("data_dir")
		if dataDir == "" {
			dir, err := defaultDataDir()
			if err != nil {
				return err
			}
			dataDir = dir
		}

		if err := os.MkdirAll(dataDir, constants.DefaultDirPerm); err != nil {
			return fmt.Errorf("failed to create data directory: %s", err.Error())
		}

		// Make dataDir absolute (for clarity in logs)
		if abs, err := filepath.Abs(dataDir); err == nil {
			dataDir = abs
		}

		// init logger
		l, err := newLogger()
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		logger = l

		applyConfigDefaults(cmd)

		return nil
	},
}

// Execute runs the root command. A high-risk verdict under scan --strict
// exits with code 2 so scripts can tell it apart from operational errors.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var riskErr *HighRiskError
		if errors.As(err, &riskErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// newLogger builds the process logger. Without log.file configured it is
// plain zap production output; with it, entries go to a size-rotated file.
func newLogger() (*zap.Logger, error) {
	logFile := viper.GetString("log.file")
	if logFile == "" {
		return zap.NewProduction()
	}

	if err := os.MkdirAll(filepath.Dir(logFile), constants.DefaultDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	sink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    viper.GetInt("log.max_size_mb"),
		MaxBackups: viper.GetInt("log.max_backups"),
		MaxAge:     viper.GetInt("log.max_age_days"),
		Compress:   true,
	})
	core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), sink, zapcore.InfoLevel)
	return zap.New(core), nil
}

func init() {
	// config file flag
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.urlsentry.yaml)")

	viper.SetDefault("log.max_size_mb", 50)
	viper.SetDefault("log.max_backups", 5)
	viper.SetDefault("log.max_age_days", 30)

	// add subcommands
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
}
