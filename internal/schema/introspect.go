package schema

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/hurou927/db-tree/internal/catalog"
)

// Options tunes Introspect.
type Options struct {
	// Exclude lists table names left out of the tree. Foreign keys from or
	// to them are ignored.
	Exclude map[string]bool
	// Classification tunes the classifier. Zero values take the defaults.
	Classification ClassifyOptions
	// SkipClassification leaves every column in GroupUndefined and issues no
	// cardinality counts.
	SkipClassification bool
	// Logger receives progress at debug level and skipped constraints at
	// warn level. Nil discards.
	Logger logrus.FieldLogger
}

func (o Options) logger() logrus.FieldLogger {
	if o.Logger != nil {
		return o.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Introspect queries the catalog and builds the schema tree: tables and
// their columns first, then foreign keys are unified into shared key
// columns, then columns are classified. Any error leaves nothing usable.
func Introspect(ctx context.Context, cat *catalog.Catalog, opts Options) (*Tree, error) {
	log := opts.logger().WithField("scope", cat.Scope)
	tree := New(cat.Scope)

	if err := buildLeaves(ctx, cat, tree, opts.Exclude, log); err != nil {
		return nil, fmt.Errorf("querying tables and columns: %w", err)
	}

	if err := buildWebs(ctx, cat, tree, log); err != nil {
		return nil, fmt.Errorf("querying foreign keys: %w", err)
	}

	if !opts.SkipClassification {
		copts := opts.Classification
		if copts.Logger == nil {
			copts.Logger = log
		}
		if err := Classify(ctx, cat, tree, copts); err != nil {
			return nil, fmt.Errorf("classifying columns: %w", err)
		}
	}

	log.WithField("tables", len(tree.Tables())).Info("schema introspected")
	return tree, nil
}

// buildLeaves creates one table per catalog table and one column per
// catalog column.
func buildLeaves(ctx context.Context, cat *catalog.Catalog, tree *Tree, exclude map[string]bool, log logrus.FieldLogger) error {
	names, err := cat.Tables(ctx)
	if err != nil {
		return err
	}

	for _, name := range names {
		if exclude[name] {
			log.WithField("table", name).Debug("table excluded")
			continue
		}
		tbl := tree.CreateTable(name)

		defs, err := cat.Columns(ctx, name)
		if err != nil {
			return fmt.Errorf("columns of %s: %w", name, err)
		}
		for _, def := range defs {
			role := ParseKeyRole(def.Key)
			col := tbl.CreateColumn(def.Name, ColumnInfo{
				Type:     def.Type,
				Nullable: def.Nullable,
				KeyRole:  role,
			})
			// Composite keys keep their first column.
			if role == KeyPrimary {
				if _, ok := tbl.PrimaryKey(); !ok {
					tbl.SetPrimaryKey(col)
				}
			}
		}

		log.WithFields(logrus.Fields{
			"table":   name,
			"columns": len(defs),
			"pk":      tbl.PrimaryKeyName(),
		}).Debug("table loaded")
	}

	return nil
}

// buildWebs unifies every foreign key with the key it references.
func buildWebs(ctx context.Context, cat *catalog.Catalog, tree *Tree, log logrus.FieldLogger) error {
	for _, tbl := range tree.Tables() {
		fks, err := cat.ForeignKeys(ctx, tbl.Name())
		if err != nil {
			return fmt.Errorf("foreign keys referencing %s: %w", tbl.Name(), err)
		}
		for _, fk := range fks {
			if err := tree.link(tbl, fk, log); err != nil {
				return err
			}
		}
	}
	return nil
}

// link merges the referencing column of fk into the referenced column of
// tbl, so both tables (and any table already merged into the referencing
// column) own one shared column.
func (t *Tree) link(tbl Table, fk catalog.ForeignKey, log logrus.FieldLogger) error {
	log = log.WithFields(logrus.Fields{
		"constraint": fk.Constraint,
		"table":      fk.Table,
		"column":     fk.Column,
		"referenced": tbl.Name() + "." + fk.ReferencedColumn,
	})

	if fk.Column != fk.ReferencedColumn {
		log.Warn("foreign key column name differs from referenced column, not linked")
		return nil
	}

	ref, ok := t.Table(fk.Table)
	if !ok {
		log.Debug("referencing table not in tree, skipped")
		return nil
	}

	pk, err := tbl.LookupColumn(fk.ReferencedColumn)
	if err != nil {
		return err
	}
	dup, err := ref.LookupColumn(fk.Column)
	if err != nil {
		return err
	}
	if dup == pk {
		// Already unified by an earlier constraint, or self-referencing.
		return nil
	}

	pk.AddTable(ref)
	if refPK, ok := ref.PrimaryKey(); ok && refPK == dup {
		ref.SetPrimaryKey(pk)
	}

	for _, owner := range dup.Tables() {
		if owner == ref {
			continue
		}
		if !pk.OwnedBy(owner) {
			pk.AddTable(owner)
		}
		if ownerPK, ok := owner.PrimaryKey(); ok && ownerPK == dup {
			owner.SetPrimaryKey(pk)
		}
		dup.RemoveTable(owner)
	}

	ref.RemoveColumn(dup)

	log.WithField("owners", pk.TableNames()).Debug("foreign key linked")
	return nil
}
