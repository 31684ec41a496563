package sqlgen

import (
	"fmt"
	"strings"
)

type ColumnDef struct {
	Name     string
	Kind     string
	Nullable bool
	FKTable  string
	FKColumn string
}

type TableDef struct {
	Name    string
	Columns []ColumnDef
}

// InsertColumns lists the columns an INSERT supplies, skipping the
// auto-increment key.
func (t TableDef) InsertColumns() []string {
	cols := make([]string, 0, len(t.Columns))
	for _, col := range t.Columns {
		if col.Kind == KindID {
			continue
		}
		cols = append(cols, col.Name)
	}
	return cols
}

// CreateTable renders CREATE TABLE IF NOT EXISTS for the dialect, foreign keys last.
func (d Dialect) CreateTable(t TableDef) string {
	var lines []string
	var foreignKeys []string

	for _, col := range t.Columns {
		if col.FKTable != "" && col.FKColumn != "" {
			foreignKeys = append(foreignKeys, fmt.Sprintf("  FOREIGN KEY (%s) REFERENCES %s(%s)",
				d.QuoteIdentifier(col.Name), d.QuoteIdentifier(col.FKTable), d.QuoteIdentifier(col.FKColumn)))
		}
	}

	lines = append(lines, fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (", d.QuoteIdentifier(t.Name)))

	for i, col := range t.Columns {
		comma := ","
		if i == len(t.Columns)-1 && len(foreignKeys) == 0 {
			comma = ""
		}
		colType := d.ColumnType(col.Kind)
		if col.Kind != KindID && !col.Nullable {
			colType += " NOT NULL"
		}
		lines = append(lines, fmt.Sprintf("  %s %s%s", d.QuoteIdentifier(col.Name), colType, comma))
	}

	for i, fk := range foreignKeys {
		comma := ","
		if i == len(foreignKeys)-1 {
			comma = ""
		}
		lines = append(lines, fk+comma)
	}

	lines = append(lines, ")"+d.tableSuffix()+";")
	return strings.Join(lines, "\n")
}
