package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/docreview/internal/extract"
	"github.com/sells-group/docreview/internal/model"
	"github.com/sells-group/docreview/internal/resilience"
	anthropicpkg "github.com/sells-group/docreview/pkg/anthropic"
)

var (
	extractProjectID       string
	extractTemplateName    string
	extractTemplateVersion int
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Run field extraction over a project's documents",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("extract"); err != nil {
			return err
		}
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		project, err := st.GetProject(ctx, extractProjectID)
		if err != nil {
			return eris.Wrap(err, "look up project")
		}
		docs, err := st.ListDocuments(ctx, project.ID)
		if err != nil {
			return eris.Wrap(err, "list documents")
		}
		if len(docs) == 0 {
			return eris.Errorf("project %s has no documents", project.ID)
		}
		tpl, err := st.GetTemplate(ctx, extractTemplateName, extractTemplateVersion)
		if err != nil {
			return eris.Wrap(err, "get template")
		}

		orch := buildOrchestrator(anthropicpkg.NewClient(cfg.Anthropic.Key))

		docPtrs := make([]*model.Document, len(docs))
		for i := range docs {
			docPtrs[i] = &docs[i]
		}

		zap.L().Info("extraction starting",
			zap.String("project_id", project.ID),
			zap.String("template", tpl.Name),
			zap.Int("template_version", tpl.Version),
			zap.Int("documents", len(docs)),
			zap.Int("fields", len(tpl.Fields)),
		)

		run, results, runErr := orch.Execute(ctx, extract.Request{
			ProjectID: project.ID,
			Documents: docPtrs,
			Template:  tpl,
		})
		if run != nil {
			if err := st.CreateRun(ctx, run); err != nil {
				return err
			}
			if err := st.SaveResults(ctx, results); err != nil {
				return err
			}
		}
		if runErr != nil {
			return runErr
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

// buildOrchestrator wires the strategy tiers from config.
func buildOrchestrator(client anthropicpkg.Client) *extract.Orchestrator {
	primary := extract.NewPrimaryStrategy(client, extract.PrimaryConfig{
		Model:          cfg.Anthropic.Model,
		RequestsPerSec: cfg.Anthropic.RequestsPerSec,
		Burst:          cfg.Anthropic.Burst,
		Timeout:        time.Duration(cfg.Extraction.TimeoutSecs) * time.Second,
		RetryConfig: resilience.RetryConfig{
			MaxAttempts:    cfg.Extraction.MaxAttempts,
			InitialBackoff: time.Duration(cfg.Extraction.BackoffSecs * float64(time.Second)),
		},
		BreakerFailures: cfg.Extraction.BreakerFailures,
		BreakerReset:    time.Duration(cfg.Extraction.BreakerResetSec) * time.Second,
	})

	var fallback extract.Strategy
	if !cfg.Extraction.DisableFallback {
		fallback = extract.NewFallbackStrategy()
	}

	return extract.NewOrchestrator(primary, fallback, cfg.Extraction.Concurrency)
}

func init() {
	extractCmd.Flags().StringVar(&extractProjectID, "project", "", "project ID (required)")
	extractCmd.Flags().StringVar(&extractTemplateName, "template", "", "template name (required)")
	extractCmd.Flags().IntVar(&extractTemplateVersion, "template-version", 0, "template version (0 = latest)")
	_ = extractCmd.MarkFlagRequired("project")
	_ = extractCmd.MarkFlagRequired("template")
	rootCmd.AddCommand(extractCmd)
}
