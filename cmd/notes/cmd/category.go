package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Note categories",
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available categories",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cats, err := application.Service.Categories(cmd.Context())
		if err != nil {
			return err
		}
		for _, c := range cats {
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", c.ID, c.Name)
		}
		return nil
	},
}

func init() {
	categoryCmd.AddCommand(categoryListCmd)
}
