package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"xr-archive/internal/api/middleware"
)

func init() {
	cmdRoot.AddCommand(cmdToken())
}

func cmdToken() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for the API and media URLs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret, _ := cmd.Flags().GetString("secret")
			subject, _ := cmd.Flags().GetString("subject")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			token, err := middleware.IssueToken(secret, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("secret", "", "Signing secret (server.jwt_secret)")
	cmd.Flags().String("subject", "listener", "Token subject")
	cmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	return cmd
}
