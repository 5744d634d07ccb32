package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/docreview/internal/export"
)

var (
	exportProjectID       string
	exportTemplateName    string
	exportTemplateVersion int
	exportOut             string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the comparison table to CSV or XLSX",
	Long:  "Writes the latest run's comparison table to a spreadsheet. The output format follows the file extension (.csv or .xlsx).",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("query"); err != nil {
			return err
		}
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		table, names, err := loadComparison(ctx, st, exportProjectID, exportTemplateName, exportTemplateVersion)
		if err != nil {
			return err
		}

		switch strings.ToLower(filepath.Ext(exportOut)) {
		case ".csv":
			f, err := os.Create(exportOut)
			if err != nil {
				return eris.Wrapf(err, "create %s", exportOut)
			}
			defer f.Close() //nolint:errcheck
			if err := export.WriteCSV(f, table, names); err != nil {
				return err
			}
		case ".xlsx":
			if err := export.WriteXLSX(exportOut, table, names); err != nil {
				return err
			}
		default:
			return eris.Errorf("unsupported export format %q (use .csv or .xlsx)", filepath.Ext(exportOut))
		}

		zap.L().Info("comparison exported",
			zap.String("project_id", exportProjectID),
			zap.String("path", exportOut),
			zap.Int("fields", len(table.Rows)),
			zap.Int("documents", len(table.DocumentIDs)),
		)
		return nil
	},
}

func init() {
	addCompareFlags(exportCmd, &exportProjectID, &exportTemplateName, &exportTemplateVersion)
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path ending in .csv or .xlsx (required)")
	_ = exportCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(exportCmd)
}
