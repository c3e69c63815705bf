package main

import (
	"context"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/cvscreen/internal/batch"
)

var batchCmd = &cobra.Command{
	Use:   "batch [cv files or directories...]",
	Short: "Screen many CVs against one job on a running server",
	Long:  "Batch uploads every CV to a running cvscreen server, analyzes them concurrently against one job description and prints the job's shortlist.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBatch,
}

var batchConfig = batch.Config{}

func init() {
	f := batchCmd.Flags()
	f.StringVar(&batchConfig.BaseURL, "url", "http://localhost:8000", "Base URL of the service")
	f.StringVar(&batchConfig.JobFile, "job", "", "Path to the job description (required)")
	f.IntVar(&batchConfig.TopN, "top", batch.DefaultTopN, "Number of shortlist entries to fetch")
	f.IntVar(&batchConfig.Workers, "workers", runtime.NumCPU(), "Number of concurrent submissions")
	f.DurationVar(&batchConfig.Timeout, "timeout", batch.DefaultTimeout, "HTTP request timeout")
	f.BoolVar(&batchConfig.Enhanced, "enhanced", false, "Use the enhanced analysis endpoint")
	f.StringVar(&batchConfig.OutputFile, "output", "", "Write the report as JSON to this file")
	f.BoolVar(&batchConfig.Verbose, "verbose", false, "Log every screened file")
	_ = batchCmd.MarkFlagRequired("job")

	rootCmd.AddCommand(batchCmd)
}

const batchRunTimeout = 30 * time.Minute

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := contextWithTimeout(cmd, batchRunTimeout)
	defer cancel()

	c := batchConfig
	c.CVPaths = args
	_, err := batch.Run(ctx, c, cmd.OutOrStdout())
	return err
}

func contextWithTimeout(cmd *cobra.Command, d time.Duration) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, d)
}
