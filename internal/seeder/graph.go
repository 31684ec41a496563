package seeder

import (
	"fmt"
	"sort"
)

type DependencyGraph struct {
	tables map[string]*TableInfo
	order  []string
}

func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		tables: make(map[string]*TableInfo),
	}
}

func (g *DependencyGraph) AddTable(table *TableInfo) {
	g.tables[table.Name] = table
}

// BuildInsertionOrder returns tables so that every table follows the tables it
// references. Ties are broken by name so the order is stable.
func (g *DependencyGraph) BuildInsertionOrder() ([]string, error) {
	visited := make(map[string]bool)
	temp := make(map[string]bool)
	var order []string

	var visit func(string) error
	visit = func(tableName string) error {
		if temp[tableName] {
			return fmt.Errorf("circular dependency detected involving table: %s", tableName)
		}
		if visited[tableName] {
			return nil
		}

		temp[tableName] = true
		if table := g.tables[tableName]; table != nil {
			deps := append([]string(nil), table.Dependencies...)
			sort.Strings(deps)
			for _, dep := range deps {
				if dep == tableName {
					continue
				}
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		temp[tableName] = false
		visited[tableName] = true
		order = append(order, tableName)
		return nil
	}

	names := make([]string, 0, len(g.tables))
	for name := range g.tables {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, tableName := range names {
		if !visited[tableName] {
			if err := visit(tableName); err != nil {
				return nil, err
			}
		}
	}

	g.order = order
	return order, nil
}

func (g *DependencyGraph) GetOrder() []string {
	return g.order
}

// CheckOrder verifies that every table in order comes after the tables it
// depends on.
func (g *DependencyGraph) CheckOrder(order []string) error {
	position := make(map[string]int, len(order))
	for i, name := range order {
		position[name] = i
	}

	for _, name := range order {
		table := g.tables[name]
		if table == nil {
			return fmt.Errorf("%w: unknown table %s", ErrDependencyOrder, name)
		}
		for _, dep := range table.Dependencies {
			depPos, ok := position[dep]
			if !ok {
				return fmt.Errorf("%w: table %s references %s, which is never emitted", ErrDependencyOrder, name, dep)
			}
			if depPos >= position[name] {
				return fmt.Errorf("%w: table %s is emitted before %s, which it references", ErrDependencyOrder, name, dep)
			}
		}
	}
	return nil
}
