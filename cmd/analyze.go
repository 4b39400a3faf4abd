package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hurou927/db-tree/internal/output"
)

var analyzeFormat string

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Output the table graph joined through shared keys",
	Long:  `Connects to the database, introspects the schema, unifies foreign keys into shared key columns, and outputs the resulting table graph in the specified format.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		cat, tree, err := loadTree(ctx)
		if err != nil {
			return err
		}
		defer cat.Close()

		switch analyzeFormat {
		case "mermaid":
			return output.WriteMermaid(cmd.OutOrStdout(), tree)
		case "text":
			return output.WriteText(cmd.OutOrStdout(), tree)
		default:
			return fmt.Errorf("unknown format: %s (supported: mermaid, text)", analyzeFormat)
		}
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "mermaid", "output format: mermaid or text")
	rootCmd.AddCommand(analyzeCmd)
}
