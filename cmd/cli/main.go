package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"fsindex/internal/logging"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var (
	logLevel string
	logFile  string
	dbDir    string
)

// formatSize formats file size in human-readable form
func formatSize(size uint64) string {
	switch {
	case size >= 1024*1024*1024:
		return fmt.Sprintf("%.2f GB", float64(size)/(1024*1024*1024))
	case size >= 1024*1024:
		return fmt.Sprintf("%.2f MB", float64(size)/(1024*1024))
	case size >= 1024:
		return fmt.Sprintf("%.2f KB", float64(size)/1024)
	default:
		return fmt.Sprintf("%d B", size)
	}
}

// defaultDBDir returns the per-user cache directory for the index.
func defaultDBDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "fsindex")
	}
	return filepath.Join(dir, "fsindex")
}

// signalContext returns a context cancelled on Ctrl+C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\nScan interrupted by user")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fsindex",
		Short: "Fast filesystem indexer",
		Long: `Builds a sorted index of files and folders below the given roots and
keeps it in a compact on-disk database.
Example: fsindex scan --exclude "*.tmp" --exclude-hidden /home /usr`,
		Version:       fmt.Sprintf("%s (built %s, commit %s)", Version, BuildTime, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Init(logging.Config{Level: logLevel, File: logFile})
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", `Log file path, "stderr" for the console (default: temp dir)`)
	rootCmd.PersistentFlags().StringVarP(&dbDir, "db-dir", "d", defaultDBDir(), "Directory holding the index database")

	rootCmd.AddCommand(newScanCmd(), newInfoCmd(), newListCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logging.Errorf("Command failed: %v", err)
		logging.Close()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
