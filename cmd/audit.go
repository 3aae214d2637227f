package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/benleb/autoscope/internal/autoscope"
	"github.com/benleb/autoscope/internal/icons"
	"github.com/benleb/autoscope/internal/style"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/gops/agent"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var errInvalidInterval = errors.New("audit interval must be positive")

// auditCmd periodically audits every automation of the hub.
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: icons.Watchdog + " periodically audit all automations",

	RunE: func(cmd *cobra.Command, _ []string) error {
		if useGops, _ := cmd.Flags().GetBool("gops"); useGops {
			if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
				return err
			}
		}

		client, svc, cfg, err := connect(cmd)
		if err != nil {
			return err
		}
		defer client.Close()

		if cfg.Audit.Every <= 0 {
			return errInvalidInterval
		}

		fmt.Println(lipgloss.NewStyle().Padding(1, 2).Render(style.ColorizeHABlue(autoscope.AppTitle())))

		ctx, stop := context.WithCancel(cmd.Context())
		defer stop()

		auditor := autoscope.NewAuditor(svc, cfg.Audit.Every)
		if err := auditor.Start(ctx); err != nil {
			return err
		}
		defer auditor.Stop()

		if cfg.Audit.MetricsAddr != "" {
			go func() {
				if err := autoscope.ServeMetrics(ctx, cfg.Audit.MetricsAddr, svc.Metrics); err != nil {
					cmd.PrintErrln(icons.RedCross.Render(), "metrics server failed:", err)
					stop()
				}
			}()
		}

		<-ctx.Done()

		return nil
	},
}

func init() { //nolint:gochecknoinits
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().Duration("every", 0, "audit interval (default 15m)")
	_ = viper.BindPFlag("autoscope.audit.every", auditCmd.Flags().Lookup("every"))
	auditCmd.Flags().String("metrics-addr", "", "serve prometheus metrics on this address")
	_ = viper.BindPFlag("autoscope.audit.metrics_addr", auditCmd.Flags().Lookup("metrics-addr"))
	auditCmd.Flags().Bool("gops", false, "start the gops diagnostics agent")
}
