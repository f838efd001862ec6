package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"noteminder/internal/reminder"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Fire due reminders once and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		res, err := application.Scheduler.Scan(cmd.Context())
		if err != nil {
			return err
		}
		printScan(cmd.OutOrStdout(), res)
		return nil
	},
}

// printScan reports a scan; every pending note lands in exactly one bucket.
func printScan(w io.Writer, res reminder.ScanResult) {
	notDue := res.Pending - res.Fired - res.Failed - res.Malformed - res.Stale
	fmt.Fprintln(w, success("%d reminder(s) fired, %d not yet due.", res.Fired, notDue))
	if res.Malformed > 0 {
		fmt.Fprintln(w, warning("%d note(s) skipped with an unreadable reminder time.", res.Malformed))
	}
	if res.Stale > 0 {
		fmt.Fprintln(w, warning("%d note(s) changed while being delivered, left pending.", res.Stale))
	}
	if res.Failed > 0 {
		fmt.Fprintln(w, failure("%d note(s) could not be marked notified.", res.Failed))
	}
}
