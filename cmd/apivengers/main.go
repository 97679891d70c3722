package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "apivengers",
		Short:        "Visual Mongoose schema designer and API scaffolding service",
		SilenceUsage: true,
	}
	root.AddCommand(
		newServeCmd(),
		newCompileCmd(),
		newSchemasCmd(),
		newTokenCmd(),
		newVersionCmd(),
	)
	return root
}
