package cmd

import (
	"github.com/benleb/autoscope/internal/extract"
	"github.com/benleb/autoscope/internal/icons"
	"github.com/spf13/cobra"
)

// extractCmd analyzes any hub automation config offline.
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: icons.Detective + " show the entities an automation config references",

	RunE: func(cmd *cobra.Command, _ []string) error {
		file, _ := cmd.Flags().GetString("file")

		raw, err := readDocument(file)
		if err != nil {
			return err
		}

		cfg, refs, err := extract.ExtractRaw(raw)
		if err != nil {
			return err
		}

		return printYAML(map[string]any{
			"id":                 cfg.ID,
			"alias":              cfg.Alias,
			"trigger_entities":   extract.Sorted(refs.Triggers),
			"condition_entities": extract.Sorted(refs.Conditions),
			"action_entities":    extract.Sorted(refs.Actions),
			"has_templates":      refs.HasTemplates,
			"reasons":            refs.Reasons,
		})
	},
}

func init() { //nolint:gochecknoinits
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().String("file", "", "automation config file (json, jsonc or yaml, - for stdin)")
	_ = extractCmd.MarkFlagRequired("file")
}
