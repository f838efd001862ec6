package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Deliver reminders and serve the API until interrupted",
	Long: `Run the reminder scheduler in the foreground. It scans immediately and
then once per reminder interval. The gRPC API and the /metrics endpoint are
served when their addresses are configured. SIGINT or SIGTERM stops it.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return application.RunDaemon(ctx)
	},
}
