package cmd

import (
	"fmt"

	"github.com/benleb/autoscope/internal/icons"
	"github.com/spf13/cobra"
)

// createCmd writes a new automation from a draft.
var createCmd = &cobra.Command{
	Use:   "create",
	Short: icons.Compile + " create an automation from a draft",

	RunE: func(cmd *cobra.Command, _ []string) error {
		return writeDraft(cmd, false)
	},
}

// updateCmd replaces an automation by a draft.
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: icons.Pen + " replace an automation by a draft",

	RunE: func(cmd *cobra.Command, _ []string) error {
		return writeDraft(cmd, true)
	},
}

// deleteCmd removes an automation.
var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: icons.Broom + " delete an automation",

	RunE: func(cmd *cobra.Command, _ []string) error {
		client, svc, cfg, err := connect(cmd)
		if err != nil {
			return err
		}
		defer client.Close()

		caller, err := callerFlag(cmd, cfg)
		if err != nil {
			return err
		}

		id, _ := cmd.Flags().GetString("id")

		if err := svc.Delete(cmd.Context(), caller, id); err != nil {
			return err
		}

		fmt.Println(icons.GreenTick.Render(), "deleted", id)

		return nil
	},
}

var enableCmd = &cobra.Command{
	Use:   "enable",
	Short: icons.Tick + " enable an automation",

	RunE: func(cmd *cobra.Command, _ []string) error {
		return setEnabled(cmd, true)
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable",
	Short: icons.Cross + " disable an automation",

	RunE: func(cmd *cobra.Command, _ []string) error {
		return setEnabled(cmd, false)
	},
}

func writeDraft(cmd *cobra.Command, update bool) error {
	draftFile, _ := cmd.Flags().GetString("draft")
	id, _ := cmd.Flags().GetString("id")

	raw, err := readDocument(draftFile)
	if err != nil {
		return err
	}

	client, svc, cfg, err := connect(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	caller, err := callerFlag(cmd, cfg)
	if err != nil {
		return err
	}

	if update {
		id, err = svc.Update(cmd.Context(), caller, id, raw)
	} else {
		id, err = svc.Create(cmd.Context(), caller, raw)
	}

	if err != nil {
		return err
	}

	fmt.Println(icons.GreenTick.Render(), id)

	return nil
}

func setEnabled(cmd *cobra.Command, enabled bool) error {
	client, svc, cfg, err := connect(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	caller, err := callerFlag(cmd, cfg)
	if err != nil {
		return err
	}

	id, _ := cmd.Flags().GetString("id")

	if err := svc.SetEnabled(cmd.Context(), caller, id, enabled); err != nil {
		return err
	}

	fmt.Println(icons.GreenTick.Render(), id, "enabled:", enabled)

	return nil
}

func init() { //nolint:gochecknoinits
	rootCmd.AddCommand(createCmd, updateCmd, deleteCmd, enableCmd, disableCmd)

	for _, cmd := range []*cobra.Command{createCmd, updateCmd, deleteCmd, enableCmd, disableCmd} {
		cmd.Flags().StringP("user", "u", "", "acting user")
		_ = cmd.MarkFlagRequired("user")
	}

	for _, cmd := range []*cobra.Command{createCmd, updateCmd} {
		cmd.Flags().String("draft", "", "draft file (json, jsonc or yaml, - for stdin)")
		_ = cmd.MarkFlagRequired("draft")
	}

	createCmd.Flags().String("id", "", "unused, ids of new automations are generated")
	_ = createCmd.Flags().MarkHidden("id")

	for _, cmd := range []*cobra.Command{updateCmd, deleteCmd, enableCmd, disableCmd} {
		cmd.Flags().String("id", "", "automation id")
		_ = cmd.MarkFlagRequired("id")
	}
}
