package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/borncrazy123/CamLink/internal/auth"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage API bearer tokens",
	}
	cmd.AddCommand(newTokenIssueCmd())
	return cmd
}

func newTokenIssueCmd() *cobra.Command {
	var (
		flagSubject string
		flagRole    string
		flagTTL     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign a bearer token with api.auth.jwt_secret",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.API.Auth.JWTSecret == "" {
				return errors.New("api.auth.jwt_secret is not set; the API is running without auth")
			}

			role := auth.Role(flagRole)
			if !auth.IsValidRole(role) {
				return fmt.Errorf("%w: %q", auth.ErrInvalidRole, flagRole)
			}
			ttl := flagTTL
			if ttl <= 0 {
				ttl = cfg.API.Auth.TokenTTL
			}

			token, err := auth.GenerateToken(flagSubject, role, cfg.API.Auth.JWTSecret, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&flagSubject, "subject", "", "who the token is for (required)")
	cmd.Flags().StringVar(&flagRole, "role", string(auth.RoleViewer), "viewer, operator or admin")
	cmd.Flags().DurationVar(&flagTTL, "ttl", 0, "token lifetime (default api.auth.token_ttl)")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
