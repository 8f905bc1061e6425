package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/its-dedsec/urlsentry/internal/api"
	"github.com/its-dedsec/urlsentry/internal/history"
	"github.com/its-dedsec/urlsentry/internal/metrics"
	"github.com/its-dedsec/urlsentry/internal/scan"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run urlsentry as a REST API service",
	Long: `Serve exposes the scan engine over HTTP: POST /api/v1/scan runs a
scan, /api/v1/scans lists recorded history, /metrics publishes Prometheus
instruments and /api/v1/health answers readiness probes.

Provider keys configured on the server are applied to every request;
callers may override individual providers through the apiKeys field of
the scan request.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		shutdownTimeout, _ := cmd.Flags().GetDuration("shutdown-timeout")
		noHistory, _ := cmd.Flags().GetBool("no-history")

		defer func() {
			if err := logger.Sync(); err != nil && !errors.Is(err, syscall.EINVAL) {
				fmt.Fprintf(os.Stderr, "failed to sync logger: %v\n", err)
			}
		}()

		historyDesc := "disabled"
		var store *history.Store
		if !noHistory {
			s, err := history.Open(historyPath())
			if err != nil {
				return fmt.Errorf("failed to open history store: %w", err)
			}
			store = s
			defer store.Close()
			historyDesc = historyPath()
		}

		dispatcher := &scan.Dispatcher{
			Timeout: time.Duration(cliConfig.Scan.TimeoutSecs) * time.Second,
		}

		cfg := api.Config{
			Scanner: &scanAPIService{
				dispatcher: dispatcher,
				defaults:   credentialsFromConfig(),
			},
			Metrics:      metrics.New(),
			AuthToken:    cliConfig.Serve.AuthToken,
			HistoryLimit: cliConfig.Serve.HistoryLimit,
			Logger:       logger,
			CORSOrigins:  cliConfig.Serve.CORSOrigins,
			RateLimit:    cliConfig.Serve.RateLimit,
			RateBurst:    cliConfig.Serve.RateBurst,
		}
		if store != nil {
			cfg.History = store
		}

		server := api.NewServer(cfg)

		httpServer := &http.Server{
			Addr:         cliConfig.Serve.Addr,
			Handler:      server,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		}

		// Channel to listen for errors from the server
		serverErrors := make(chan error, 1)

		// Start server in a goroutine
		go func() {
			fmt.Printf("%s API server listening on %s (history: %s)\n", colorInfo("→"), cliConfig.Serve.Addr, historyDesc)
			fmt.Printf("%s Press Ctrl+C to gracefully shutdown\n", colorInfo("→"))
			serverErrors <- httpServer.ListenAndServe()
		}()

		// Channel to listen for interrupt signals
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Block until we receive a signal or an error
		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
		case sig := <-shutdown:
			fmt.Printf("\n%s Received signal %v, initiating graceful shutdown...\n", colorInfo("→"), sig)

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := httpServer.Shutdown(ctx); err != nil {
				// Force close if graceful shutdown fails
				if closeErr := httpServer.Close(); closeErr != nil {
					return fmt.Errorf("failed to gracefully shutdown server: %w (close error: %v)", err, closeErr)
				}
				return fmt.Errorf("failed to gracefully shutdown server: %w", err)
			}

			fmt.Printf("%s Server shutdown complete\n", colorSuccess("✓"))
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&cliConfig.Serve.Addr, "addr", cliConfig.Serve.Addr, "Address for the API server")
	serveCmd.Flags().StringVar(&cliConfig.Serve.AuthToken, "auth-token", cliConfig.Serve.AuthToken, "Optional shared secret for API requests")
	serveCmd.Flags().IntVar(&cliConfig.Serve.HistoryLimit, "history-limit", cliConfig.Serve.HistoryLimit, "Default history entries to return")
	serveCmd.Flags().IntVar(&cliConfig.Serve.RateLimit, "rate-limit", cliConfig.Serve.RateLimit, "Rate limit per IP (requests/second, 0 = disabled)")
	serveCmd.Flags().IntVar(&cliConfig.Serve.RateBurst, "rate-burst", cliConfig.Serve.RateBurst, "Rate limit burst size")
	serveCmd.Flags().StringSliceVar(&cliConfig.Serve.CORSOrigins, "cors-origins", cliConfig.Serve.CORSOrigins, "Allowed CORS origins (empty = allow all)")
	serveCmd.Flags().Duration("shutdown-timeout", 30*time.Second, "Graceful shutdown timeout")
	serveCmd.Flags().Bool("no-history", false, "Serve without a history store (scan results are not recorded)")
	rootCmd.AddCommand(serveCmd)
}

// scanAPIService runs scans with the server's configured credentials,
// letting per-request keys override individual providers.
type scanAPIService struct {
	dispatcher *scan.Dispatcher
	defaults   scan.CredentialSet
}

func (s *scanAPIService) Scan(ctx context.Context, target string, creds scan.CredentialSet) scan.Result {
	return s.dispatcher.Scan(ctx, target, mergeCredentials(s.defaults, creds))
}

// mergeCredentials overlays per-request keys on the server defaults. A
// request key wins for its provider; providers it does not name keep the
// configured server key.
func mergeCredentials(defaults, overrides scan.CredentialSet) scan.CredentialSet {
	merged := make(scan.CredentialSet, len(defaults)+len(overrides))
	for p, secret := range defaults {
		merged[p] = secret
	}
	for p, secret := range overrides {
		merged[p] = secret
	}
	return merged
}
