package sqlgen

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const TimestampLayout = "2006-01-02 15:04:05"

type Renderer struct {
	dialect Dialect
}

func NewRenderer(dialect Dialect) *Renderer {
	return &Renderer{dialect: dialect}
}

func (r *Renderer) Dialect() Dialect {
	return r.dialect
}

// Render returns the statement as one semicolon-terminated line.
func (r *Renderer) Render(stmt Statement) (string, error) {
	if err := stmt.Validate(); err != nil {
		return "", err
	}
	if stmt.Len() == 1 {
		return r.renderRow(stmt), nil
	}
	return r.renderRows(stmt)
}

func (r *Renderer) renderRow(stmt Statement) string {
	values := make([]string, len(stmt.Columns))
	for i, val := range stmt.Rows[0] {
		values[i] = r.FormatValue(val)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s);",
		stmt.Table,
		strings.Join(stmt.Columns, ", "),
		strings.Join(values, ", "),
	)
}

// renderRows builds the multi-row form with squirrel and inlines the
// placeholder arguments as literals.
func (r *Renderer) renderRows(stmt Statement) (string, error) {
	builder := squirrel.Insert(stmt.Table).Columns(stmt.Columns...)
	for _, row := range stmt.Rows {
		builder = builder.Values(row...)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return "", fmt.Errorf("failed to build insert for %s: %w", stmt.Table, err)
	}

	inlined, err := r.inline(query, args)
	if err != nil {
		return "", fmt.Errorf("failed to inline values for %s: %w", stmt.Table, err)
	}
	return inlined + ";", nil
}

// inline replaces each ? with the next formatted argument. Identifiers are
// validated beforehand, so every ? in the query is a placeholder.
func (r *Renderer) inline(query string, args []interface{}) (string, error) {
	var b strings.Builder
	b.Grow(len(query) + len(args)*8)

	next := 0
	for i := 0; i < len(query); i++ {
		if query[i] != '?' {
			b.WriteByte(query[i])
			continue
		}
		if next >= len(args) {
			return "", fmt.Errorf("more placeholders than arguments (%d)", len(args))
		}
		b.WriteString(r.FormatValue(args[next]))
		next++
	}
	if next != len(args) {
		return "", fmt.Errorf("%d arguments left unused", len(args)-next)
	}
	return b.String(), nil
}

// FormatValue formats a value as a SQL literal for the renderer's dialect.
func (r *Renderer) FormatValue(val interface{}) string {
	if val == nil {
		return "NULL"
	}
	switch v := val.(type) {
	case string:
		return r.quote(v)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return formatFloat(float64(v))
	case float64:
		return formatFloat(v)
	case decimal.Decimal:
		return withPoint(v.String())
	case bool:
		if r.dialect == Postgres {
			if v {
				return "TRUE"
			}
			return "FALSE"
		}
		if v {
			return "1"
		}
		return "0"
	case time.Time:
		return r.quote(v.Format(TimestampLayout))
	default:
		return r.quote(fmt.Sprintf("%v", v))
	}
}

func (r *Renderer) quote(s string) string {
	switch r.dialect {
	case Postgres:
		// QuoteLiteral prefixes escaped strings with " E".
		return strings.TrimLeft(pq.QuoteLiteral(s), " ")
	case MySQL:
		escaped := strings.ReplaceAll(s, "\\", "\\\\")
		escaped = strings.ReplaceAll(escaped, "'", "''")
		return "'" + escaped + "'"
	default:
		return "'" + strings.ReplaceAll(s, "'", "''") + "'"
	}
}

func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "NULL"
	}
	return withPoint(strconv.FormatFloat(f, 'f', -1, 64))
}

// withPoint keeps whole numbers readable as decimals: 15 -> 15.0.
func withPoint(s string) string {
	if strings.ContainsAny(s, ".eE") {
		return s
	}
	return s + ".0"
}
