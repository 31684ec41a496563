package sqlgen

import (
	"fmt"
	"strings"
)

type Dialect string

const (
	Postgres Dialect = "postgresql"
	MySQL    Dialect = "mysql"
	SQLite   Dialect = "sqlite"
)

var SupportedDialects = []string{"postgresql", "postgres", "mysql", "sqlite", "sqlite3"}

func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgresql", "postgres", "":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported dialect: %s. Supported dialects: %v", name, SupportedDialects)
	}
}

// Logical column kinds used by the table catalog.
const (
	KindID        = "id"
	KindInt       = "int"
	KindText      = "text"
	KindTimestamp = "timestamp"
	KindDecimal   = "decimal"
)

var typeMap = map[Dialect]map[string]string{
	Postgres: {
		KindID:        "SERIAL PRIMARY KEY",
		KindInt:       "INTEGER",
		KindText:      "VARCHAR(255)",
		KindTimestamp: "TIMESTAMP",
		KindDecimal:   "NUMERIC(5,2)",
	},
	MySQL: {
		KindID:        "INT AUTO_INCREMENT PRIMARY KEY",
		KindInt:       "INT",
		KindText:      "VARCHAR(255)",
		KindTimestamp: "DATETIME",
		KindDecimal:   "DECIMAL(5,2)",
	},
	SQLite: {
		KindID:        "INTEGER PRIMARY KEY AUTOINCREMENT",
		KindInt:       "INTEGER",
		KindText:      "TEXT",
		KindTimestamp: "TEXT",
		KindDecimal:   "NUMERIC",
	},
}

// ColumnType maps a logical column kind to the dialect's DDL type.
func (d Dialect) ColumnType(kind string) string {
	if t, ok := typeMap[d][kind]; ok {
		return t
	}
	return typeMap[d][KindText]
}

func (d Dialect) QuoteIdentifier(name string) string {
	if d == MySQL {
		return "`" + name + "`"
	}
	return `"` + name + `"`
}

func (d Dialect) tableSuffix() string {
	if d == MySQL {
		return " ENGINE=InnoDB DEFAULT CHARSET=utf8mb4"
	}
	return ""
}
