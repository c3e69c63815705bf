package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/cvscreen/internal/adapters/http/api"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an admin token for the monitor socket",
	RunE:  runToken,
}

var (
	tokenSubject string
	tokenTTL     time.Duration
)

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "admin", "Token subject")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")

	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	tokens, err := api.NewTokens(cfg.SecretKey)
	if err != nil {
		return err
	}
	token, err := tokens.Issue(tokenSubject, tokenTTL)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
	return err
}
