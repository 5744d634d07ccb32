package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/docreview/internal/ingest"
	"github.com/sells-group/docreview/internal/model"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage review projects",
	Long:  "Commands for creating projects and loading the documents they compare.",
}

// -- project create --

var projectCreateName string

var projectCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new project",
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

		project, err := st.CreateProject(ctx, projectCreateName)
		if err != nil {
			return eris.Wrap(err, "create project")
		}

		zap.L().Info("project created",
			zap.String("project_id", project.ID),
			zap.String("name", project.Name),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(project)
	},
}

// -- project ingest --

var (
	projectIngestID  string
	projectIngestDir string
)

var projectIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load plain-text documents into a project",
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

		if _, err := st.GetProject(ctx, projectIngestID); err != nil {
			return eris.Wrap(err, "look up project")
		}

		docs, err := ingest.LoadDirectory(projectIngestDir)
		if err != nil {
			return err
		}
		for _, doc := range docs {
			if err := st.SaveDocument(ctx, projectIngestID, doc); err != nil {
				return eris.Wrapf(err, "save document %s", doc.Name)
			}
		}

		zap.L().Info("documents ingested",
			zap.String("project_id", projectIngestID),
			zap.Int("count", len(docs)),
		)
		return nil
	},
}

// -- project docs --

var projectDocsID string

var projectDocsCmd = &cobra.Command{
	Use:   "docs",
	Short: "List a project's documents",
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

		docs, err := st.ListDocuments(ctx, projectDocsID)
		if err != nil {
			return eris.Wrap(err, "list documents")
		}

		formatDocList(os.Stdout, docs)
		return nil
	},
}

func formatDocList(w io.Writer, docs []model.Document) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSEGMENTS\tCHARS")
	for _, doc := range docs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", doc.ID, doc.Name, len(doc.Segments), len(doc.Text))
	}
	tw.Flush() //nolint:errcheck
}

func init() {
	projectCreateCmd.Flags().StringVar(&projectCreateName, "name", "", "project name (required)")
	_ = projectCreateCmd.MarkFlagRequired("name")

	projectIngestCmd.Flags().StringVar(&projectIngestID, "project", "", "project ID (required)")
	projectIngestCmd.Flags().StringVar(&projectIngestDir, "dir", "", "directory of .txt documents (required)")
	_ = projectIngestCmd.MarkFlagRequired("project")
	_ = projectIngestCmd.MarkFlagRequired("dir")

	projectDocsCmd.Flags().StringVar(&projectDocsID, "project", "", "project ID (required)")
	_ = projectDocsCmd.MarkFlagRequired("project")

	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectIngestCmd)
	projectCmd.AddCommand(projectDocsCmd)
	rootCmd.AddCommand(projectCmd)
}
