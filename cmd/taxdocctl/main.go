// taxdocctl is the operator CLI: it builds and probes the guideline index and
// exports processed records.
package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	root := &cobra.Command{
		Use:           "taxdocctl",
		Short:         "Operate the tax document extraction service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newIndexCmd(logger), newExportCmd(logger))

	if err := root.Execute(); err != nil {
		logger.Error("taxdocctl.error", "error", err)
		os.Exit(1)
	}
}
