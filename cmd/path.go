package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var pathCmd = &cobra.Command{
	Use:   "path FROM TO",
	Short: "Find a chain of shared keys joining two tables",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		cat, tree, err := loadTree(ctx)
		if err != nil {
			return err
		}
		defer cat.Close()

		path, err := tree.FindPath(args[0], args[1])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(path) == 0 {
			fmt.Fprintf(out, "%s is %s\n", args[0], args[1])
			return nil
		}
		for i, hop := range path {
			fmt.Fprintf(out, "%d. %s via %s\n", i+1, hop.Table, hop.Key)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pathCmd)
}
