package cmd

import (
	"fmt"
	"time"

	"github.com/benleb/autoscope/internal/automation"
	"github.com/benleb/autoscope/internal/autoscope"
	"github.com/benleb/autoscope/internal/extract"
	"github.com/benleb/autoscope/internal/icons"
	"github.com/benleb/autoscope/internal/models"
	"github.com/benleb/autoscope/internal/style"
	"github.com/kr/pretty"
	"github.com/spf13/cobra"
)

// compileCmd compiles a draft offline.
var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: icons.Compile + " compile a draft into a hub automation config",

	RunE: func(cmd *cobra.Command, _ []string) error {
		draftFile, _ := cmd.Flags().GetString("draft")
		id, _ := cmd.Flags().GetString("id")
		preview, _ := cmd.Flags().GetInt("preview")

		raw, err := readDocument(draftFile)
		if err != nil {
			return err
		}

		_, cfg, refs, err := autoscope.Compile(raw, id, nil)
		if err != nil {
			return err
		}

		models.Printer.Debugf("%s compiled config: %# v", icons.Compile, pretty.Formatter(cfg))

		if err := printYAML(cfg); err != nil {
			return err
		}

		fmt.Println(style.Gray(8).Render("# entities: " + fmt.Sprint(extract.Sorted(refs.All()))))

		if preview > 0 {
			printPreview(cfg, preview)
		}

		return nil
	},
}

func printPreview(cfg *automation.Config, n int) {
	runs, ok := automation.NextRuns(cfg, time.Now(), n)
	if !ok {
		fmt.Println(style.Gray(8).Render("# no schedule preview for non-time triggers"))

		return
	}

	for _, run := range runs {
		fmt.Println(style.Gray(8).Render("# " + icons.Calendar + " " + run.Format("Mon 2006-01-02 15:04")))
	}
}

func init() { //nolint:gochecknoinits
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().String("draft", "", "draft file (json, jsonc or yaml, - for stdin)")
	compileCmd.Flags().String("id", "", "existing automation id to keep")
	compileCmd.Flags().Int("preview", 0, "show the next N fire times of a schedule")
	_ = compileCmd.MarkFlagRequired("draft")
}
