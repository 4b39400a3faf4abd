package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hurou927/db-tree/internal/output"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print every table's columns with type, group, nullability and key",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		cat, tree, err := loadTree(ctx)
		if err != nil {
			return err
		}
		defer cat.Close()

		return output.WriteDump(cmd.OutOrStdout(), tree)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
