package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/docreview/internal/compare"
	"github.com/sells-group/docreview/internal/model"
	"github.com/sells-group/docreview/internal/store"
)

var (
	compareProjectID       string
	compareTemplateName    string
	compareTemplateVersion int
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Build the field-by-document comparison table",
	Long:  "Aligns the latest completed run's extractions into a field × document matrix and prints it as JSON.",
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

		table, _, err := loadComparison(ctx, st, compareProjectID, compareTemplateName, compareTemplateVersion)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(table)
	},
}

// loadComparison assembles the comparison table for a project's latest
// completed run, plus the document ID to name mapping for display.
func loadComparison(ctx context.Context, st store.Store, projectID, templateName string, templateVersion int) (*model.ComparisonTable, map[string]string, error) {
	if _, err := st.GetProject(ctx, projectID); err != nil {
		return nil, nil, eris.Wrap(err, "look up project")
	}
	docs, err := st.ListDocuments(ctx, projectID)
	if err != nil {
		return nil, nil, eris.Wrap(err, "list documents")
	}
	tpl, err := st.GetTemplate(ctx, templateName, templateVersion)
	if err != nil {
		return nil, nil, eris.Wrap(err, "get template")
	}
	results, err := st.LatestResults(ctx, projectID)
	if err != nil {
		return nil, nil, eris.Wrap(err, "load latest results")
	}
	if len(results) == 0 {
		return nil, nil, eris.Errorf("project %s has no completed extraction run", projectID)
	}

	docIDs := make([]string, len(docs))
	names := make(map[string]string, len(docs))
	for i, doc := range docs {
		docIDs[i] = doc.ID
		names[doc.ID] = doc.Name
	}

	table := compare.BuildTable(projectID, docIDs, model.NewTemplateRegistry(tpl), results)
	return table, names, nil
}

func addCompareFlags(cmd *cobra.Command, projectID *string, tplName *string, tplVersion *int) {
	cmd.Flags().StringVar(projectID, "project", "", "project ID (required)")
	cmd.Flags().StringVar(tplName, "template", "", "template name (required)")
	cmd.Flags().IntVar(tplVersion, "template-version", 0, "template version (0 = latest)")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("template")
}

func init() {
	addCompareFlags(compareCmd, &compareProjectID, &compareTemplateName, &compareTemplateVersion)
	rootCmd.AddCommand(compareCmd)
}
