package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"apivengers/internal/client"

	"github.com/spf13/cobra"
)

func newSchemasCmd() *cobra.Command {
	var server string
	cmd := &cobra.Command{
		Use:   "schemas",
		Short: "Manage saved schemas on a running service",
	}
	cmd.PersistentFlags().StringVar(&server, "server", defaultServer, "persistence service URL")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved schemas, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			schemas, err := client.New(server).ListSchemas(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCREATED")
			for _, s := range schemas {
				fmt.Fprintf(w, "%s\t%s\t%s\n", s.ID, s.Name, s.CreatedAt.Local().Format(time.DateTime))
			}
			return w.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Print a saved schema's source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := client.New(server).GetSchema(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.MongooseSchema)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.New(server).DeleteSchema(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema deleted successfully")
			return nil
		},
	})
	return cmd
}
