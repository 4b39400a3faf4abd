package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hurou927/db-tree/internal/catalog"
	"github.com/hurou927/db-tree/internal/config"
	"github.com/hurou927/db-tree/internal/db"
	"github.com/hurou927/db-tree/internal/logging"
	"github.com/hurou927/db-tree/internal/schema"
)

var (
	cfgPath string
	verbose bool
	cfg     *config.Config
	logger  *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "db-tree",
	Short: "Map a relational schema as a graph of shared keys",
	Long: `db-tree introspects a MySQL, PostgreSQL or SQLite database, unifies every
foreign key with the key it references into one shared column, and uses the
resulting graph to find join paths between tables and to select filtered
column values along them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgPath == "" {
			return fmt.Errorf("--config is required")
		}
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file (required)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log introspection progress")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadTree connects and introspects the configured scope. The caller
// closes the returned catalog.
func loadTree(ctx context.Context) (*catalog.Catalog, *schema.Tree, error) {
	cat, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}

	tree, err := schema.Introspect(ctx, cat, schema.Options{
		Exclude: cfg.ExcludeSet(),
		Classification: schema.ClassifyOptions{
			LimitedThreshold: cfg.Classification.LimitedThreshold,
			SmallStringSize:  cfg.Classification.SmallStringSize,
		},
		Logger: logger,
	})
	if err != nil {
		cat.Close()
		return nil, nil, fmt.Errorf("introspecting schema: %w", err)
	}

	return cat, tree, nil
}
