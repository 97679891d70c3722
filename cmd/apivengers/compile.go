package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"apivengers/internal/client"
	"apivengers/internal/compiler"
	"apivengers/internal/graph"

	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:5000"

func newCompileCmd() *cobra.Command {
	var push, server string
	cmd := &cobra.Command{
		Use:   "compile <graph.json|->",
		Short: "Compile a graph snapshot to Mongoose schema source",
		Long: "Reads a graph snapshot as served by GET /api/designer/graph, prints the\n" +
			"compiled schema to stdout and any diagnostics to stderr.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read graph: %w", err)
			}

			var doc graph.Document
			if err := json.Unmarshal(data, &doc); err != nil {
				return fmt.Errorf("decode graph: %w", err)
			}
			g := graph.New()
			if err := g.Restore(doc); err != nil {
				return err
			}

			entities := g.Entities()
			text := compiler.Compile(entities)
			for _, issue := range compiler.Diagnose(entities) {
				fmt.Fprintln(cmd.ErrOrStderr(), issue.String())
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)

			if push == "" {
				return nil
			}
			saved, err := client.New(server).SaveSchema(cmd.Context(), push, text)
			if err != nil {
				return fmt.Errorf("push schema: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Schema saved successfully: %s (%s)\n", saved.Name, saved.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&push, "push", "", "save the compiled schema under this name")
	cmd.Flags().StringVar(&server, "server", defaultServer, "persistence service URL")
	return cmd
}
