package cmd

import (
	"fmt"

	"github.com/benleb/autoscope/internal/autoscope"
	"github.com/benleb/autoscope/internal/capability"
	"github.com/benleb/autoscope/internal/icons"
	"github.com/spf13/cobra"
)

// listCmd lists the automations a user may see.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: icons.Checklist + " list the automations visible to a user",

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

		target, _ := cmd.Flags().GetString("target")

		items, err := svc.List(cmd.Context(), caller, target)
		if err != nil {
			return err
		}

		if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
			return printYAML(items)
		}

		fmt.Print(autoscope.RenderList(caller.Name, items))

		return nil
	},
}

// capabilitiesCmd shows what can be automated for a device.
var capabilitiesCmd = &cobra.Command{
	Use:   "capabilities",
	Short: icons.Glasses + " show the triggers and actions offered for a device",

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

		entityID, _ := cmd.Flags().GetString("entity")
		capCtx, _ := cmd.Flags().GetString("context")

		caps, err := svc.Capabilities(cmd.Context(), caller, entityID, capability.Context(capCtx))
		if err != nil {
			return err
		}

		if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
			return printYAML(caps)
		}

		fmt.Print(autoscope.RenderCapabilities(caps))

		return nil
	},
}

func init() { //nolint:gochecknoinits
	rootCmd.AddCommand(listCmd, capabilitiesCmd)

	for _, cmd := range []*cobra.Command{listCmd, capabilitiesCmd} {
		cmd.Flags().StringP("user", "u", "", "acting user")
		cmd.Flags().Bool("yaml", false, "print yaml instead of the rendered view")
		_ = cmd.MarkFlagRequired("user")
	}

	listCmd.Flags().String("target", "", "only automations acting on this entity")

	capabilitiesCmd.Flags().String("entity", "", "entity id of the device")
	capabilitiesCmd.Flags().String("context", string(capability.ContextAutomation), "automation or dashboard")
	_ = capabilitiesCmd.MarkFlagRequired("entity")
}
