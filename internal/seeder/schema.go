package seeder

import (
	"fmt"

	"github.com/Lumos-Labs-HQ/schoolseed/internal/sqlgen"
)

// Schema renders CREATE TABLE statements for the catalog, referenced tables first.
func Schema(dialect sqlgen.Dialect) ([]string, error) {
	tables := CatalogByName()
	graph := NewDependencyGraph()
	for _, table := range tables {
		graph.AddTable(table)
	}

	order, err := graph.BuildInsertionOrder()
	if err != nil {
		return nil, fmt.Errorf("failed to order schema tables: %w", err)
	}

	ddl := make([]string, 0, len(order))
	for _, name := range order {
		ddl = append(ddl, dialect.CreateTable(tables[name].TableDef))
	}
	return ddl, nil
}
