package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/docreview/internal/compare"
	"github.com/sells-group/docreview/internal/model"
)

var (
	diffProjectID       string
	diffTemplateName    string
	diffTemplateVersion int
	diffJSON            bool
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Report cross-document disagreements per field",
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

		table, _, err := loadComparison(ctx, st, diffProjectID, diffTemplateName, diffTemplateVersion)
		if err != nil {
			return err
		}

		reports := compare.Diff(table)
		if diffJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(reports)
		}

		formatDiffReports(os.Stdout, reports)
		return nil
	},
}

func formatDiffReports(w io.Writer, reports []*model.DiffReport) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tAGREEMENT\tMAJORITY VALUE\tDOCS\tVALUES\tOUTLIERS")
	for _, r := range reports {
		agreement := "split"
		if r.IsUnanimous {
			agreement = "unanimous"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n",
			r.FieldName, agreement, r.MajorityValue, r.TotalDocuments, r.UniqueValues, len(r.Outliers))
	}
	tw.Flush() //nolint:errcheck
}

func init() {
	addCompareFlags(diffCmd, &diffProjectID, &diffTemplateName, &diffTemplateVersion)
	diffCmd.Flags().BoolVar(&diffJSON, "json", false, "emit full reports as JSON")
	rootCmd.AddCommand(diffCmd)
}
