package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hurou927/db-tree/internal/output"
	"github.com/hurou927/db-tree/internal/query"
)

var (
	valuesColumn string
	valuesWhere  []string
	valuesIn     []string
)

var valuesCmd = &cobra.Command{
	Use:   "values TABLE COLUMN",
	Short: "Select a column's values, optionally narrowed by conditions and a key set",
	Long: `Selects COLUMN from TABLE. Each --where expression is ANDed into the WHERE
clause as written. --in values restrict rows to those whose primary key (or
--values-column) is one of them.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		cat, tree, err := loadTree(ctx)
		if err != nil {
			return err
		}
		defer cat.Close()

		q := query.ValuesQuery{
			Table:        args[0],
			Column:       args[1],
			ValuesColumn: valuesColumn,
			Values:       toAny(valuesIn),
		}
		for _, w := range valuesWhere {
			q.Conditions = append(q.Conditions, query.Raw(w))
		}

		values, err := query.NewBuilder(tree, cat).Values(ctx, q)
		if err != nil {
			return err
		}
		return output.WriteValues(cmd.OutOrStdout(), values)
	},
}

var (
	followWhere []string
	followIn    []string
)

var followCmd = &cobra.Command{
	Use:   "follow FROM TO",
	Short: "Translate primary keys of one table into primary keys of another",
	Long: `Finds a path from FROM to TO and walks it, narrowing the --in key values of
FROM hop by hop into the matching key values of TO. Each --where takes the
form TABLE:EXPRESSION and is applied when the walk reaches TABLE.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		where := make(map[string][]query.Condition)
		for _, w := range followWhere {
			table, expr, ok := strings.Cut(w, ":")
			if !ok || table == "" {
				return fmt.Errorf("--where %q: expected TABLE:EXPRESSION", w)
			}
			where[table] = append(where[table], query.Raw(expr))
		}

		cat, tree, err := loadTree(ctx)
		if err != nil {
			return err
		}
		defer cat.Close()

		path, err := tree.FindPath(args[0], args[1])
		if err != nil {
			return err
		}
		logger.WithField("path", path.String()).Debug("path found")

		values, err := query.NewBuilder(tree, cat).Follow(ctx, args[0], path, toAny(followIn), where)
		if err != nil {
			return err
		}
		return output.WriteValues(cmd.OutOrStdout(), values)
	},
}

func toAny(ss []string) []any {
	if len(ss) == 0 {
		return nil
	}
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func init() {
	valuesCmd.Flags().StringVar(&valuesColumn, "values-column", "", "column matched against --in (default: primary key)")
	valuesCmd.Flags().StringArrayVar(&valuesWhere, "where", nil, "SQL condition ANDed into the WHERE clause (repeatable)")
	valuesCmd.Flags().StringSliceVar(&valuesIn, "in", nil, "key values to keep (repeatable or comma separated)")
	rootCmd.AddCommand(valuesCmd)

	followCmd.Flags().StringArrayVar(&followWhere, "where", nil, "TABLE:CONDITION applied at TABLE (repeatable)")
	followCmd.Flags().StringSliceVar(&followIn, "in", nil, "primary key values of FROM (repeatable or comma separated)")
	rootCmd.AddCommand(followCmd)
}
