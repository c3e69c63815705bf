// Package main is the cvscreen command: the screening server and its
// command-line tools.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/okian/cvscreen/internal/config"
	"github.com/okian/cvscreen/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// cfg is loaded before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "cvscreen",
	Short:         "CV screening server and tools",
	Long:          "cvscreen scores candidate CVs against job descriptions, ranks them per job and streams analysis progress over WebSockets.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setup(cmd.Context())
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
}

// setup loads configuration (defaults -> optional file -> env) and
// initializes logging with it.
func setup(ctx context.Context) error {
	loaded, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.InitWith(logger.Options{Encoding: loaded.LogEncoding, Level: loaded.LogLevel}); err != nil {
		// Fall back to defaults on an invalid level.
		if initErr := logger.Init(); initErr != nil {
			return fmt.Errorf("failed to initialize logging: %w", initErr)
		}
		logger.Get().Warn(ctx, "invalid log settings; using defaults", logger.String("log_level", loaded.LogLevel), logger.Error(err))
	}
	cfg = loaded
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	_ = logger.Sync()
}
