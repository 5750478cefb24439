package cmd

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/paw-chain/fluxagg/api"
)

const flagTTL = "ttl"

// TokenCmd issues a bearer token that identifies a reader to the gateway.
func TokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token [reader]",
		Short: "Issue a gateway bearer token for a reader address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := parseAddress("reader", args[0])
			if err != nil {
				return err
			}

			home, err := homeDir(cmd)
			if err != nil {
				return err
			}
			cfg, err := ReadConfig(home)
			if err != nil {
				return err
			}
			if cfg.API.JWTSecret == "" {
				return errors.New("api.jwt-secret is not configured")
			}

			ttl, _ := cmd.Flags().GetDuration(flagTTL)
			token, err := api.NewAuthService([]byte(cfg.API.JWTSecret)).IssueToken(reader, ttl)
			if err != nil {
				return err
			}

			return printOutput(cmd, map[string]interface{}{
				"reader":     reader.String(),
				"token":      token,
				"expires_at": time.Now().Add(ttl).UTC(),
			})
		},
	}

	cmd.Flags().Duration(flagTTL, api.DefaultTokenTTL, "Lifetime of the token")
	addOutputFlag(cmd)
	return cmd
}
