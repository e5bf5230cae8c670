package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/taxlens/taxdoc/internal/common"
	"github.com/taxlens/taxdoc/internal/export"
	"github.com/taxlens/taxdoc/internal/repository"
)

func newExportCmd(logger *slog.Logger) *cobra.Command {
	var fromStr, toStr, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write processed records to an XLSX workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := common.LoadConfig()
			if cfg.DB.RecordsPath == "" {
				return fmt.Errorf("RECORDS_DB_PATH is not configured")
			}

			from, err := parseDateFlag(fromStr)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			to, err := parseDateFlag(toStr)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}

			db, err := repository.OpenSQLite(cfg.DB.RecordsPath, logger)
			if err != nil {
				return err
			}
			store, err := repository.NewSQLiteRecordStore(db)
			if err != nil {
				_ = db.Close()
				return err
			}
			defer func() { _ = store.Close() }()

			data, err := export.NewService(store, logger).ExportRecordsXLSX(cmd.Context(), from, to)
			if err != nil {
				return err
			}

			if out == "" {
				out = "records-" + time.Now().UTC().Format("20060102") + ".xlsx"
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&fromStr, "from", "", "start date (YYYY-MM-DD, inclusive)")
	cmd.Flags().StringVar(&toStr, "to", "", "end date (YYYY-MM-DD, inclusive)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (default records-<date>.xlsx)")
	return cmd
}

func parseDateFlag(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, fmt.Errorf("expected YYYY-MM-DD")
	}
	return &t, nil
}
