package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"noteminder/repository"
)

var (
	userLimit  int
	userOffset int
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Account administration",
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts (admin only)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		u, err := requireSession(cmd)
		if err != nil {
			return err
		}
		users, err := application.Service.Users(cmd.Context(), u.ID, userLimit, userOffset)
		if errors.Is(err, repository.ErrPermissionDenied) {
			return errors.New("only an admin can list users")
		}
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tROLE")
		for _, x := range users {
			fmt.Fprintf(w, "%d\t%s\t%s\n", x.ID, x.Username, x.Role)
		}
		return w.Flush()
	},
}

func init() {
	userListCmd.Flags().IntVar(&userLimit, "limit", 50, "page size")
	userListCmd.Flags().IntVar(&userOffset, "offset", 0, "rows to skip")
	userCmd.AddCommand(userListCmd)
}
