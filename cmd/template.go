package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/docreview/internal/model"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage field templates",
	Long:  "Commands for registering template versions and inspecting stored templates.",
}

// -- template push --

var templatePushFile string

var templatePushCmd = &cobra.Command{
	Use:   "push",
	Short: "Register a template version from a YAML file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("query"); err != nil {
			return err
		}

		tpl, err := model.LoadTemplate(templatePushFile)
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		saved, err := st.SaveTemplate(ctx, tpl)
		if err != nil {
			return eris.Wrap(err, "save template")
		}

		zap.L().Info("template saved",
			zap.String("name", saved.Name),
			zap.Int("version", saved.Version),
			zap.Int("fields", len(saved.Fields)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(saved)
	},
}

// -- template show --

var (
	templateShowName    string
	templateShowVersion int
)

var templateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a stored template (latest version by default)",
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

		tpl, err := st.GetTemplate(ctx, templateShowName, templateShowVersion)
		if err != nil {
			return eris.Wrap(err, "get template")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tpl)
	},
}

func init() {
	templatePushCmd.Flags().StringVar(&templatePushFile, "file", "", "template YAML file (required)")
	_ = templatePushCmd.MarkFlagRequired("file")

	templateShowCmd.Flags().StringVar(&templateShowName, "name", "", "template name (required)")
	templateShowCmd.Flags().IntVar(&templateShowVersion, "version", 0, "template version (0 = latest)")
	_ = templateShowCmd.MarkFlagRequired("name")

	templateCmd.AddCommand(templatePushCmd)
	templateCmd.AddCommand(templateShowCmd)
	rootCmd.AddCommand(templateCmd)
}
