package topology

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/nigilism131313-png/dataforge/internal/schema"
)

// buildGraph assembles a graph from name -> parent edges, one FK per parent,
// creating an id column plus one <parent>_id column per edge.
func buildGraph(t *testing.T, edges map[string][]string) *schema.Graph {
	t.Helper()
	var tables []schema.Table
	for name, parents := range edges {
		tbl := schema.Table{
			Name:       name,
			Columns:    []schema.Column{{Name: "id", Kind: schema.KindInteger}},
			PrimaryKey: []string{"id"},
		}
		for _, parent := range parents {
			col := parent + "_id"
			tbl.Columns = append(tbl.Columns, schema.Column{Name: col, Kind: schema.KindInteger, Nullable: true})
			tbl.ForeignKeys = append(tbl.ForeignKeys, schema.ForeignKey{
				Column: col, RefTable: parent, RefColumn: "id",
			})
		}
		tables = append(tables, tbl)
	}
	g, err := schema.NewGraph(tables)
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}
	return g
}

func TestSortUsersOrders(t *testing.T) {
	g := buildGraph(t, map[string][]string{
		"users":  nil,
		"orders": {"users"},
	})

	order, err := Sort(g)
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if want := []string{"users", "orders"}; !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestSortParentsPrecedeChildren(t *testing.T) {
	g := buildGraph(t, map[string][]string{
		"users":       nil,
		"products":    nil,
		"orders":      {"users"},
		"order_items": {"orders", "products"},
		"reviews":     {"users", "products"},
	})

	order, err := Sort(g)
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if len(order) != g.Len() {
		t.Fatalf("order has %d tables, want %d", len(order), g.Len())
	}

	index := make(map[string]int, len(order))
	for i, name := range order {
		index[name] = i
	}
	for _, child := range g.TableNames() {
		for _, parent := range g.DependenciesOf(child) {
			if index[parent] >= index[child] {
				t.Errorf("parent %s (%d) does not precede child %s (%d)",
					parent, index[parent], child, index[child])
			}
		}
	}
}

func TestSortDeterministicTieBreak(t *testing.T) {
	g := buildGraph(t, map[string][]string{
		"zebra": nil, "alpha": nil, "mango": nil,
	})

	first, err := Sort(g)
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if want := []string{"alpha", "mango", "zebra"}; !reflect.DeepEqual(first, want) {
		t.Errorf("tie-break order = %v, want %v", first, want)
	}

	second, err := Sort(g)
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated sort differs: %v vs %v", first, second)
	}
}

func TestSortSelfReferenceAllowed(t *testing.T) {
	g := buildGraph(t, map[string][]string{
		"employees":   {"employees", "departments"},
		"departments": nil,
	})

	order, err := Sort(g)
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if want := []string{"departments", "employees"}; !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestSortCycleTwoTables(t *testing.T) {
	g := buildGraph(t, map[string][]string{
		"a": {"b"},
		"b": {"a"},
	})

	_, err := Sort(g)
	var cerr *CycleError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *CycleError, got %v", err)
	}
	if want := []string{"a", "b"}; !reflect.DeepEqual(cerr.Tables, want) {
		t.Errorf("residual tables = %v, want %v", cerr.Tables, want)
	}
	assertValidCycle(t, g, cerr.Path)
}

func TestSortCycleWithAcyclicPortion(t *testing.T) {
	g := buildGraph(t, map[string][]string{
		"users":    nil,
		"orders":   {"users", "invoices"},
		"invoices": {"orders"},
	})

	order, err := Sort(g)
	if err == nil {
		t.Fatalf("expected cycle error, got order %v", order)
	}
	var cerr *CycleError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *CycleError, got %v", err)
	}
	if want := []string{"invoices", "orders"}; !reflect.DeepEqual(cerr.Tables, want) {
		t.Errorf("residual tables = %v, want %v", cerr.Tables, want)
	}
	assertValidCycle(t, g, cerr.Path)
}

func assertValidCycle(t *testing.T, g *schema.Graph, path []string) {
	t.Helper()
	if len(path) < 2 {
		t.Fatalf("cycle path too short: %v", path)
	}
	if path[0] != path[len(path)-1] {
		t.Errorf("cycle path does not close: %v", path)
	}
	for i := 0; i < len(path)-1; i++ {
		found := false
		for _, dep := range g.DependenciesOf(path[i]) {
			if dep == path[i+1] {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("no FK edge %s -> %s in cycle path %v", path[i], path[i+1], path)
		}
	}
}

func TestLevels(t *testing.T) {
	g := buildGraph(t, map[string][]string{
		"users":       nil,
		"products":    nil,
		"orders":      {"users"},
		"order_items": {"orders", "products"},
	})

	levels, err := Levels(g)
	if err != nil {
		t.Fatalf("Levels: %v", err)
	}

	want := map[int][]string{
		0: {"products", "users"},
		1: {"orders"},
		2: {"order_items"},
	}
	if !reflect.DeepEqual(levels, want) {
		t.Errorf("levels = %v, want %v", levels, want)
	}
}

func TestVisualize(t *testing.T) {
	g := buildGraph(t, map[string][]string{
		"users":  nil,
		"orders": {"users"},
	})

	out, err := Visualize(g)
	if err != nil {
		t.Fatalf("Visualize: %v", err)
	}
	if !strings.Contains(out, "users (no dependencies)") {
		t.Errorf("missing root line in:\n%s", out)
	}
	if !strings.Contains(out, "orders <- users") {
		t.Errorf("missing edge line in:\n%s", out)
	}
}
