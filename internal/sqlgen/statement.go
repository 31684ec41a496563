package sqlgen

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrColumnMismatch    = errors.New("value count does not match column count")
	ErrEmptyStatement    = errors.New("statement has no rows")
)

// validIdentifier validates SQL identifiers (table/column names) to prevent SQL injection
var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func IsValidIdentifier(name string) bool {
	return validIdentifier.MatchString(name)
}

// Statement is an INSERT into one table. One row renders as a single-row
// INSERT, several rows as a multi-row INSERT.
type Statement struct {
	Table   string
	Columns []string
	Rows    [][]interface{}
}

func NewStatement(table string, columns ...string) *Statement {
	return &Statement{Table: table, Columns: columns}
}

func (s *Statement) Append(values ...interface{}) error {
	if len(values) != len(s.Columns) {
		return fmt.Errorf("%w: table %s has %d columns, got %d values",
			ErrColumnMismatch, s.Table, len(s.Columns), len(values))
	}
	s.Rows = append(s.Rows, values)
	return nil
}

func (s *Statement) Len() int {
	return len(s.Rows)
}

func (s *Statement) Validate() error {
	if !IsValidIdentifier(s.Table) {
		return fmt.Errorf("%w: table %q", ErrInvalidIdentifier, s.Table)
	}
	for _, col := range s.Columns {
		if !IsValidIdentifier(col) {
			return fmt.Errorf("%w: column %q in table %s", ErrInvalidIdentifier, col, s.Table)
		}
	}
	if len(s.Rows) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyStatement, s.Table)
	}
	for i, row := range s.Rows {
		if len(row) != len(s.Columns) {
			return fmt.Errorf("%w: table %s row %d", ErrColumnMismatch, s.Table, i)
		}
	}
	return nil
}
