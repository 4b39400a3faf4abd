package schema

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hurou927/db-tree/internal/catalog"
)

const (
	// DefaultLimitedThreshold is the distinct-value count below which a
	// candidate column becomes GroupLimited.
	DefaultLimitedThreshold = 150
	// DefaultSmallStringSize is the largest varchar length treated as a
	// short code rather than free text.
	DefaultSmallStringSize = 15
)

// smallVarchar is the pseudo type of a varchar no longer than the small
// string size.
const smallVarchar = "varchar_sm"

var (
	textTypes = typeSet("varchar", smallVarchar, "text", "tinytext", "mediumtext", "longtext",
		"blob", "tinyblob", "mediumblob", "longblob", "bytea", "clob")
	numericTypes = typeSet("int", "integer", "smallint", "mediumint", "bigint", "int2", "int4", "int8",
		"decimal", "numeric", "float", "double", "real", "float4", "float8",
		"datetime", "timestamp", "timestamptz")
	// limitedCandidates get a cardinality count.
	limitedCandidates = typeSet(smallVarchar, "enum", "char", "bpchar", "tinyint", "bool", "boolean")

	sizePattern = regexp.MustCompile(`[0-9]+`)
)

func typeSet(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// ClassifyOptions tunes Classify.
type ClassifyOptions struct {
	LimitedThreshold int64
	SmallStringSize  int
	Logger           logrus.FieldLogger
}

func (o *ClassifyOptions) setDefaults() {
	if o.LimitedThreshold <= 0 {
		o.LimitedThreshold = DefaultLimitedThreshold
	}
	if o.SmallStringSize <= 0 {
		o.SmallStringSize = DefaultSmallStringSize
	}
	if o.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.Logger = l
	}
}

// NormalizeType strips parameters and modifiers from a catalog type:
// "varchar(32)" and "int(11) unsigned" become "varchar" and "int".
func NormalizeType(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = t[:i]
	}
	if fields := strings.Fields(t); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// sizeClass returns the normalized type, with short varchars mapped to
// the small string pseudo type.
func sizeClass(raw string, smallSize int) string {
	t := NormalizeType(raw)
	if t != "varchar" {
		return t
	}
	m := sizePattern.FindString(raw)
	if m == "" {
		return t
	}
	if n, err := strconv.Atoi(m); err == nil && n <= smallSize {
		return smallVarchar
	}
	return t
}

// GroupOf returns the group implied by a catalog type alone, before any
// cardinality count.
func GroupOf(raw string, smallSize int) Group {
	t := sizeClass(raw, smallSize)
	switch {
	case textTypes[t]:
		return GroupText
	case numericTypes[t]:
		return GroupNumeric
	default:
		return GroupUndefined
	}
}

// Classify assigns a group to every column. Short strings, enums, chars and
// tiny integers are counted with COUNT(DISTINCT) and become GroupLimited when
// they hold fewer distinct values than the threshold; an empty table counts
// zero. Each shared key column is classified once.
func Classify(ctx context.Context, cat *catalog.Catalog, tree *Tree, opts ClassifyOptions) error {
	opts.setDefaults()
	seen := make(map[Column]bool)

	for _, tbl := range tree.Tables() {
		for _, col := range tbl.Columns() {
			if seen[col] {
				continue
			}
			seen[col] = true

			t := sizeClass(col.Type(), opts.SmallStringSize)
			col.SetGroup(GroupOf(col.Type(), opts.SmallStringSize))
			if !limitedCandidates[t] {
				continue
			}

			n, err := cat.DistinctCount(ctx, tbl.Name(), col.Name())
			if err != nil {
				return fmt.Errorf("counting %s.%s: %w", tbl.Name(), col.Name(), err)
			}
			if n < opts.LimitedThreshold {
				col.SetGroup(GroupLimited)
			}

			opts.Logger.WithFields(logrus.Fields{
				"table":    tbl.Name(),
				"column":   col.Name(),
				"distinct": n,
				"group":    col.Group().String(),
			}).Debug("column counted")
		}
	}

	return nil
}
