// Package topology orders tables so that every foreign key target is seeded
// before the tables referencing it.
package topology

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nigilism131313-png/dataforge/internal/schema"
)

// CycleError reports a cyclic foreign-key subgraph. Ordering is
// all-or-nothing: no partial order of the acyclic portion is exposed.
type CycleError struct {
	// Tables is the residual set left unresolved by Kahn's algorithm.
	Tables []string
	// Path is one concrete cycle: consecutive entries are FK edges and the
	// first table equals the last.
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("circular dependency detected in database schema, cycle: %s",
		strings.Join(e.Path, " -> "))
}

// Sort returns the table names in dependency order, parents before children,
// using Kahn's algorithm. Nodes that become ready at the same step are taken
// in ascending lexicographic order so the result is reproducible on an
// unchanged schema. Self-referencing foreign keys do not count toward a
// table's in-degree.
func Sort(g *schema.Graph) ([]string, error) {
	inDegree := make(map[string]int, g.Len())
	for _, name := range g.TableNames() {
		inDegree[name] = len(g.DependenciesOf(name))
	}

	var queue []string
	for _, name := range g.TableNames() {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	order := make([]string, 0, g.Len())
	for len(queue) > 0 {
		sort.Strings(queue)
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		for _, child := range g.DependentsOf(node) {
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	if len(order) != g.Len() {
		var residual []string
		for name, deg := range inDegree {
			if deg > 0 {
				residual = append(residual, name)
			}
		}
		sort.Strings(residual)
		return nil, &CycleError{Tables: residual, Path: findCycle(g, residual)}
	}
	return order, nil
}

// findCycle runs a DFS over the residual subgraph and extracts one concrete
// cycle path for diagnostics.
func findCycle(g *schema.Graph, residual []string) []string {
	inResidual := make(map[string]bool, len(residual))
	for _, name := range residual {
		inResidual[name] = true
	}

	const (
		white = iota
		grey
		black
	)
	state := make(map[string]int, len(residual))
	var path []string
	var cycle []string

	var visit func(node string) bool
	visit = func(node string) bool {
		state[node] = grey
		path = append(path, node)

		for _, dep := range g.DependenciesOf(node) {
			if !inResidual[dep] {
				continue
			}
			switch state[dep] {
			case grey:
				for i, p := range path {
					if p == dep {
						cycle = append(append([]string{}, path[i:]...), dep)
						return true
					}
				}
			case white:
				if visit(dep) {
					return true
				}
			}
		}

		state[node] = black
		path = path[:len(path)-1]
		return false
	}

	for _, name := range residual {
		if state[name] == white && visit(name) {
			return cycle
		}
	}
	return nil
}

// Levels groups tables by dependency level: level 0 holds tables with no
// dependencies, and each other table sits one level above its deepest
// parent. The grouping is a presentation view; seeding uses the flat order
// from Sort.
func Levels(g *schema.Graph) (map[int][]string, error) {
	order, err := Sort(g)
	if err != nil {
		return nil, err
	}

	tableLevel := make(map[string]int, len(order))
	levels := make(map[int][]string)
	for _, name := range order {
		level := 0
		for _, dep := range g.DependenciesOf(name) {
			if l := tableLevel[dep] + 1; l > level {
				level = l
			}
		}
		tableLevel[name] = level
		levels[level] = append(levels[level], name)
	}
	for _, names := range levels {
		sort.Strings(names)
	}
	return levels, nil
}

// Visualize renders a text view of the dependency graph in seeding order.
func Visualize(g *schema.Graph) (string, error) {
	order, err := Sort(g)
	if err != nil {
		return "", err
	}

	lines := []string{"Database Dependency Graph:", strings.Repeat("=", 60)}
	for _, name := range order {
		deps := g.DependenciesOf(name)
		if len(deps) > 0 {
			lines = append(lines, fmt.Sprintf("%s <- %s", name, strings.Join(deps, ", ")))
		} else {
			lines = append(lines, fmt.Sprintf("%s (no dependencies)", name))
		}
	}
	return strings.Join(lines, "\n"), nil
}
