package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/docreview/internal/evaluate"
	"github.com/sells-group/docreview/internal/model"
)

var (
	evaluateProjectID string
	evaluateRefsFile  string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score the latest run against human-labeled references",
	Long:  "Imports reference values from a YAML file, scores the latest run's extractions against them, and prints aggregate accuracy metrics.",
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

		if _, err := st.GetProject(ctx, evaluateProjectID); err != nil {
			return eris.Wrap(err, "look up project")
		}

		var refs []model.Reference
		if evaluateRefsFile != "" {
			refs, err = model.LoadReferences(evaluateRefsFile)
			if err != nil {
				return err
			}
			if err := st.ImportReferences(ctx, evaluateProjectID, refs); err != nil {
				return eris.Wrap(err, "import references")
			}
			zap.L().Info("references imported",
				zap.String("project_id", evaluateProjectID),
				zap.Int("count", len(refs)),
			)
		} else {
			refs, err = st.ListReferences(ctx, evaluateProjectID)
			if err != nil {
				return eris.Wrap(err, "list references")
			}
		}
		if len(refs) == 0 {
			return eris.Errorf("project %s has no references to evaluate against", evaluateProjectID)
		}

		results, err := st.LatestResults(ctx, evaluateProjectID)
		if err != nil {
			return eris.Wrap(err, "load latest results")
		}
		if len(results) == 0 {
			return eris.Errorf("project %s has no completed extraction run", evaluateProjectID)
		}

		records := evaluate.EvaluateAll(evaluateProjectID, results, refs)
		if err := st.SaveEvaluations(ctx, records); err != nil {
			return eris.Wrap(err, "save evaluations")
		}

		metrics := evaluate.Metrics(records, results)
		zap.L().Info("evaluation complete",
			zap.String("project_id", evaluateProjectID),
			zap.Int("records", len(records)),
			zap.Float64("field_accuracy", metrics.FieldAccuracy),
			zap.Float64("coverage", metrics.Coverage),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(metrics)
	},
}

func init() {
	evaluateCmd.Flags().StringVar(&evaluateProjectID, "project", "", "project ID (required)")
	evaluateCmd.Flags().StringVar(&evaluateRefsFile, "refs", "", "reference YAML file (omit to reuse stored references)")
	_ = evaluateCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(evaluateCmd)
}
