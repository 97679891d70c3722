package main

import (
	"fmt"

	"apivengers/internal/config"
	"apivengers/internal/scaffold"
	"apivengers/internal/version"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.GetInfo().String())
		},
	}
}

// newTokenCmd mints a bearer token signed with APIVENGERS_JWT_SECRET, for
// the admin-only backup routes or for calling a generated API by hand.
func newTokenCmd() *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the configured JWT secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := scaffold.NewProber(config.Load().JWTSecret).Token(role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", scaffold.RoleAdmin, "role claim: user or admin")
	return cmd
}
