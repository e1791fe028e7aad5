package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/a3tai/mcp-bloodwork/internal/config"
	"github.com/a3tai/mcp-bloodwork/internal/logging"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

var appLogger = logging.Logger(logging.SourceApp)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		appLogger.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mcp-bloodwork",
		Short:         "Blood work report ingestion and query server",
		Long:          "Parses lab report PDFs into per-test results, stores them as a time series and serves them over MCP.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	config.RegisterFlags(rootCmd.PersistentFlags(), config.DefaultConfig())

	rootCmd.Version = version
	rootCmd.SetVersionTemplate(versionText())

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(ingestCmd())
	rootCmd.AddCommand(resultsCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(deleteDateCmd())
	rootCmd.AddCommand(initStoreCmd())
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

// loadConfig reads the merged flag set of cmd and sets up logging.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}
	if version != "dev" {
		cfg.Version = version
	}

	if err := logging.Init(cmd.ErrOrStderr(), cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	appLogger.Debug("loaded configuration", "config", cfg.String())
	return cfg, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprint(cmd.OutOrStdout(), versionText())
		},
	}
}

func versionText() string {
	return fmt.Sprintf("MCP Bloodwork\nVersion: %s\nBuild Time: %s\nGit Commit: %s\nBuilt with: %s\n",
		version, buildTime, gitCommit, runtime.Version())
}
