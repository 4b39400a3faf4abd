package schema

import (
	"errors"

	"github.com/hurou927/db-tree/internal/graph"
)

var (
	// ErrTableNotFound is returned when a table name is not in the tree.
	ErrTableNotFound = errors.New("table not found")
	// ErrColumnNotFound is returned when a column name is not in a table.
	ErrColumnNotFound = errors.New("column not found")
	// ErrNoPath is returned when no chain of shared keys joins two tables.
	ErrNoPath = errors.New("no path between tables")
)

// KeyRole is the key flag the catalog reported for a column before
// foreign keys were unified.
type KeyRole int

const (
	KeyNone KeyRole = iota
	KeyPrimary
	KeyForeign
)

// ParseKeyRole maps a SHOW COLUMNS style key flag to a KeyRole.
// Unique-only keys ("UNI") carry no role.
func ParseKeyRole(flag string) KeyRole {
	switch flag {
	case "PRI":
		return KeyPrimary
	case "MUL":
		return KeyForeign
	default:
		return KeyNone
	}
}

// String returns the catalog flag: "PRI", "MUL" or "".
func (k KeyRole) String() string {
	switch k {
	case KeyPrimary:
		return "PRI"
	case KeyForeign:
		return "MUL"
	default:
		return ""
	}
}

// Group is a coarse usage label that tells filter front-ends how a column
// can be offered.
type Group int

const (
	GroupUndefined Group = iota
	// GroupText holds free text and binary values.
	GroupText
	// GroupNumeric holds numbers and timestamps, suited to range filters.
	GroupNumeric
	// GroupLimited holds few enough distinct values for a dropdown.
	GroupLimited
)

func (g Group) String() string {
	switch g {
	case GroupText:
		return "text_set"
	case GroupNumeric:
		return "numeric_set"
	case GroupLimited:
		return "limited_set"
	default:
		return "undefined"
	}
}

// ColumnInfo is the catalog metadata carried by a column vertex.
type ColumnInfo struct {
	Type     string // raw catalog type, e.g. "varchar(15)"
	Nullable bool
	KeyRole  KeyRole
	Group    Group
}

type kind int

const (
	kindDatabase kind = iota
	kindTable
	kindColumn
)

// vertex is the payload stored in the tree's graph arena.
type vertex struct {
	kind   kind
	column ColumnInfo
	// primaryKey is a weak reference from a table to one of its columns.
	primaryKey graph.ID
}
