package cmd

import (
	"io"
	"os"
	"testing"

	"github.com/spf13/viper"
	"go.uber.org/zap/zaptest"
)

// setupTestEnv points the command globals at a throwaway data directory
// and returns a restore func for defer.
func setupTestEnv(t *testing.T) func() {
	t.Helper()

	originalDataDir := dataDir
	originalLogger := logger
	originalConfig := *cliConfig

	viper.Reset()
	dataDir = t.TempDir()
	logger = zaptest.NewLogger(t)
	// Command flags are bound to cliConfig's fields, so reset the struct
	// in place rather than swapping the pointer.
	*cliConfig = *newCLIConfig()

	return func() {
		dataDir = originalDataDir
		logger = originalLogger
		*cliConfig = originalConfig
		viper.Reset()
	}
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	original := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fn()

	if err := w.Close(); err != nil {
		t.Fatalf("failed to close pipe writer: %v", err)
	}
	os.Stdout = original

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("failed to read captured output: %v", err)
	}
	return string(data)
}
