// Package schema is the declarative catalog of every staging and report
// table: a plain list of table/column/index descriptors, not a hierarchy of
// table classes. The executors (internal/ingest and internal/report) walk
// this data; nothing here is polymorphic over table identity except the
// descriptor fields themselves.
package schema

import (
	"fmt"
	"strings"
)

// Dialect picks the SQL rendering used for DDL and bulk-insert placeholders.
// The core never needs more than these two: a local embedded database and
// any server reachable by connection string (see SPEC_FULL.md §4.8).
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

// LogicalType is the coercion target for a column's raw TSV string value.
type LogicalType int

const (
	TypeString LogicalType = iota
	TypeInt
	TypeFloat
	TypeBool
)

func (t LogicalType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Column describes one column of a staging or report table.
type Column struct {
	Name       string
	Type       LogicalType
	Length     int // string length cap; 0 means "no declared cap"
	Nullable   bool
	PrimaryKey bool
	// AutoIncrement marks a surrogate integer id assigned by the database.
	AutoIncrement bool
	// Enforced marks Length as a hard cap internal/coerce must reject an
	// over-length value for, rather than the documentation-with-teeth-only
	// cap every other VARCHAR(n) column gets (SPEC_FULL.md §4.4). Only
	// title_principals.characters sets this: its JSON literal must stay
	// well-formed for the characters pipeline downstream.
	Enforced bool
}

// ForeignKey describes a single-column reference to another table's column.
// Every report table FK in this schema is single-column, so the descriptor
// stays simple rather than modeling composite keys nobody needs.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// Index describes a secondary (or uniqueness) index.
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

// Table is the full descriptor for one staging or report table.
type Table struct {
	Name        string
	Columns     []Column
	PrimaryKey  []string // composite natural/surrogate primary key, by column name
	ForeignKeys []ForeignKey
	Indexes     []Index
}

// ColumnNames returns the table's columns in declaration order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column looks up a column descriptor by name.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

func sqlType(dialect Dialect, c Column) string {
	switch c.Type {
	case TypeBool:
		if dialect == SQLite {
			return "BOOLEAN"
		}
		return "BOOLEAN"
	case TypeInt:
		if c.AutoIncrement {
			if dialect == Postgres {
				return "SERIAL"
			}
			return "INTEGER"
		}
		return "INTEGER"
	case TypeFloat:
		return "REAL"
	case TypeString:
		if c.Length > 0 {
			return fmt.Sprintf("VARCHAR(%d)", c.Length)
		}
		return "TEXT"
	default:
		return "TEXT"
	}
}

// CreateTableSQL renders an idempotent CREATE TABLE statement for the given
// dialect. String-length caps are documentation-with-teeth, not enforced
// validators: a dialect that does not enforce VARCHAR(n) at insert time
// (SQLite) will happily accept a longer value (SPEC_FULL.md §4.4).
func CreateTableSQL(dialect Dialect, t Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", t.Name)

	lines := make([]string, 0, len(t.Columns)+len(t.ForeignKeys)+1)
	for _, c := range t.Columns {
		col := fmt.Sprintf("  %s %s", c.Name, sqlType(dialect, c))
		if c.PrimaryKey && len(t.PrimaryKey) == 1 && c.AutoIncrement {
			if dialect == SQLite {
				col += " PRIMARY KEY AUTOINCREMENT"
			} else {
				col += " PRIMARY KEY"
			}
		} else if !c.Nullable {
			col += " NOT NULL"
		}
		lines = append(lines, col)
	}

	if len(t.PrimaryKey) > 1 || (len(t.PrimaryKey) == 1 && !autoIncrementPK(t)) {
		lines = append(lines, fmt.Sprintf("  PRIMARY KEY (%s)", strings.Join(t.PrimaryKey, ", ")))
	}

	for _, fk := range t.ForeignKeys {
		lines = append(lines, fmt.Sprintf("  FOREIGN KEY (%s) REFERENCES %s(%s)", fk.Column, fk.RefTable, fk.RefColumn))
	}

	b.WriteString(strings.Join(lines, ",\n"))
	b.WriteString("\n)")
	return b.String()
}

func autoIncrementPK(t Table) bool {
	if len(t.PrimaryKey) != 1 {
		return false
	}
	c, ok := t.Column(t.PrimaryKey[0])
	return ok && c.AutoIncrement
}

// CreateIndexSQL renders one CREATE [UNIQUE] INDEX IF NOT EXISTS statement.
func CreateIndexSQL(t Table, idx Index) string {
	name := idx.Name
	if name == "" {
		name = fmt.Sprintf("index__%s__%s", t.Name, strings.Join(idx.Columns, "_"))
	}
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	return fmt.Sprintf("CREATE %sINDEX IF NOT EXISTS %s ON %s (%s)", unique, name, t.Name, strings.Join(idx.Columns, ", "))
}

// DropTableSQL renders a DROP TABLE IF EXISTS statement.
func DropTableSQL(t Table) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", t.Name)
}

// Placeholder returns the dialect's bind-parameter marker for the i'th
// (1-based) value in a statement: SQLite/modernc-style "?" or Postgres "$N".
func Placeholder(dialect Dialect, i int) string {
	if dialect == Postgres {
		return fmt.Sprintf("$%d", i)
	}
	return "?"
}
