package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/nigilism131313-png/dataforge/internal/datagen"
	"github.com/nigilism131313-png/dataforge/internal/schema"
)

// fakeAdapter keeps rows in memory and implements just enough of the
// database.Adapter surface for the engine.
type fakeAdapter struct {
	// rows[table] holds inserted rows as column name -> value maps.
	rows    map[string][]map[string]any
	nextID  map[string]int64
	failOn  string
	inserts []string
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{
		rows:   make(map[string][]map[string]any),
		nextID: make(map[string]int64),
	}
}

func (f *fakeAdapter) Connect(ctx context.Context, url string) error { return nil }
func (f *fakeAdapter) Close() error                                  { return nil }
func (f *fakeAdapter) Ping(ctx context.Context) error                { return nil }

func (f *fakeAdapter) ListTables(ctx context.Context) ([]string, error) {
	return nil, errors.New("not used")
}

func (f *fakeAdapter) TableColumns(ctx context.Context, table string) ([]schema.Column, error) {
	return nil, errors.New("not used")
}

func (f *fakeAdapter) TableForeignKeys(ctx context.Context, table string) ([]schema.ForeignKey, error) {
	return nil, errors.New("not used")
}

func (f *fakeAdapter) PrimaryKey(ctx context.Context, table string) ([]string, error) {
	return nil, errors.New("not used")
}

func (f *fakeAdapter) CountRows(ctx context.Context, table string) (int64, error) {
	return int64(len(f.rows[table])), nil
}

func (f *fakeAdapter) SampleKeys(ctx context.Context, table, column string, limit int) ([]any, error) {
	var keys []any
	for _, row := range f.rows[table] {
		if v, ok := row[column]; ok && v != nil {
			keys = append(keys, v)
		}
		if len(keys) == limit {
			break
		}
	}
	return keys, nil
}

func (f *fakeAdapter) InsertBatch(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if table == f.failOn {
		return 0, fmt.Errorf("simulated insert failure on %s", table)
	}
	f.inserts = append(f.inserts, table)
	for _, row := range rows {
		stored := make(map[string]any, len(columns)+1)
		for i, col := range columns {
			stored[col] = row[i]
		}
		// Simulate auto-increment id assignment.
		if _, ok := stored["id"]; !ok {
			f.nextID[table]++
			stored["id"] = f.nextID[table]
		}
		f.rows[table] = append(f.rows[table], stored)
	}
	return int64(len(rows)), nil
}

func intColumn(name string, auto bool) schema.Column {
	return schema.Column{Name: name, Type: "integer", Kind: schema.KindInteger, AutoIncrement: auto}
}

func textColumn(name string) schema.Column {
	return schema.Column{Name: name, Type: "text", Kind: schema.KindText}
}

// shopGraph models users <- orders <- order_items, plus products.
func shopGraph(t *testing.T) *schema.Graph {
	t.Helper()
	g, err := schema.NewGraph([]schema.Table{
		{
			Name:       "users",
			Columns:    []schema.Column{intColumn("id", true), textColumn("name"), textColumn("email")},
			PrimaryKey: []string{"id"},
		},
		{
			Name:       "products",
			Columns:    []schema.Column{intColumn("id", true), textColumn("name"), {Name: "price", Type: "numeric", Kind: schema.KindDecimal}},
			PrimaryKey: []string{"id"},
		},
		{
			Name: "orders",
			Columns: []schema.Column{
				intColumn("id", true),
				intColumn("user_id", false),
				{Name: "amount", Type: "numeric", Kind: schema.KindDecimal},
				textColumn("status"),
			},
			PrimaryKey:  []string{"id"},
			ForeignKeys: []schema.ForeignKey{{Column: "user_id", RefTable: "users", RefColumn: "id"}},
		},
		{
			Name: "order_items",
			Columns: []schema.Column{
				intColumn("id", true),
				intColumn("order_id", false),
				intColumn("product_id", false),
				intColumn("quantity", false),
			},
			PrimaryKey: []string{"id"},
			ForeignKeys: []schema.ForeignKey{
				{Column: "order_id", RefTable: "orders", RefColumn: "id"},
				{Column: "product_id", RefTable: "products", RefColumn: "id"},
			},
		},
	})
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}
	return g
}

func newTestEngine(t *testing.T, db *fakeAdapter, g *schema.Graph) *Engine {
	t.Helper()
	return New(db, g).WithRand(rand.New(rand.NewSource(7)))
}

func TestSeedTableBasic(t *testing.T) {
	db := newFakeAdapter()
	e := newTestEngine(t, db, shopGraph(t))

	result, err := e.SeedTable(context.Background(), "users", Spec{Count: 10})
	if err != nil {
		t.Fatalf("SeedTable: %v", err)
	}
	if result.Rows != 10 {
		t.Fatalf("inserted %d rows, want 10", result.Rows)
	}
	if result.State != StateDone {
		t.Fatalf("state = %v, want done", result.State)
	}
	if e.TableState("users") != StateDone {
		t.Fatalf("table state = %v, want done", e.TableState("users"))
	}
	for _, row := range db.rows["users"] {
		if row["name"] == nil || row["email"] == nil {
			t.Fatalf("row has empty generated values: %v", row)
		}
	}
}

func TestSeedTableZeroCount(t *testing.T) {
	db := newFakeAdapter()
	e := newTestEngine(t, db, shopGraph(t))

	result, err := e.SeedTable(context.Background(), "users", Spec{Count: 0})
	if err != nil {
		t.Fatalf("SeedTable with count 0: %v", err)
	}
	if result.Rows != 0 || result.State != StateDone {
		t.Fatalf("result = %+v, want zero rows and done", result)
	}
	if len(db.inserts) != 0 {
		t.Fatalf("expected no insert call, got %v", db.inserts)
	}
}

func TestSeedTableCountLimit(t *testing.T) {
	db := newFakeAdapter()
	e := newTestEngine(t, db, shopGraph(t))

	for _, count := range []int{-1, MaxRows + 1} {
		_, err := e.SeedTable(context.Background(), "users", Spec{Count: count})
		var limitErr *LimitExceededError
		if !errors.As(err, &limitErr) {
			t.Fatalf("count %d: err = %v, want LimitExceededError", count, err)
		}
		if limitErr.Count != count {
			t.Fatalf("error carries count %d, want %d", limitErr.Count, count)
		}
	}

	// The boundary itself is allowed.
	result, err := e.SeedTable(context.Background(), "users", Spec{Count: MaxRows})
	if err != nil {
		t.Fatalf("SeedTable at limit: %v", err)
	}
	if result.Rows != MaxRows {
		t.Fatalf("inserted %d rows, want %d", result.Rows, MaxRows)
	}
}

func TestSeedTableUnknownTable(t *testing.T) {
	db := newFakeAdapter()
	e := newTestEngine(t, db, shopGraph(t))

	_, err := e.SeedTable(context.Background(), "missing", Spec{Count: 1})
	var schemaErr *schema.Error
	if !errors.As(err, &schemaErr) {
		t.Fatalf("err = %v, want schema.Error", err)
	}
	if schemaErr.Table != "missing" {
		t.Fatalf("error names table %q, want missing", schemaErr.Table)
	}
}

func TestSeedTableUnsupportedLocale(t *testing.T) {
	db := newFakeAdapter()
	e := newTestEngine(t, db, shopGraph(t))

	_, err := e.SeedTable(context.Background(), "users", Spec{Count: 1, Locale: "xx_XX"})
	var locErr *datagen.UnsupportedLocaleError
	if !errors.As(err, &locErr) {
		t.Fatalf("err = %v, want UnsupportedLocaleError", err)
	}
}

func TestSeedTableEmptyParent(t *testing.T) {
	db := newFakeAdapter()
	e := newTestEngine(t, db, shopGraph(t))

	_, err := e.SeedTable(context.Background(), "orders", Spec{Count: 5})
	var parentErr *EmptyParentError
	if !errors.As(err, &parentErr) {
		t.Fatalf("err = %v, want EmptyParentError", err)
	}
	if parentErr.Table != "users" || parentErr.Column != "user_id" {
		t.Fatalf("error = %+v, want users/user_id", parentErr)
	}
	if len(db.rows["orders"]) != 0 {
		t.Fatalf("orders gained %d rows despite failure", len(db.rows["orders"]))
	}
	if e.TableState("orders") != StateFailed {
		t.Fatalf("table state = %v, want failed", e.TableState("orders"))
	}
}

func TestSeedTableForeignKeysReferenceParents(t *testing.T) {
	db := newFakeAdapter()
	e := newTestEngine(t, db, shopGraph(t))
	ctx := context.Background()

	if _, err := e.SeedTable(ctx, "users", Spec{Count: 5}); err != nil {
		t.Fatalf("seed users: %v", err)
	}
	if _, err := e.SeedTable(ctx, "orders", Spec{Count: 20}); err != nil {
		t.Fatalf("seed orders: %v", err)
	}

	valid := make(map[any]bool)
	for _, row := range db.rows["users"] {
		valid[row["id"]] = true
	}
	for _, row := range db.rows["orders"] {
		if !valid[row["user_id"]] {
			t.Fatalf("order references unknown user id %v", row["user_id"])
		}
	}
}

func TestSeedTableOverridePrecedence(t *testing.T) {
	db := newFakeAdapter()
	e := newTestEngine(t, db, shopGraph(t))
	ctx := context.Background()

	if _, err := e.SeedTable(ctx, "users", Spec{Count: 3}); err != nil {
		t.Fatalf("seed users: %v", err)
	}
	spec := Spec{
		Count: 15,
		Overrides: map[string][]any{
			"status": {"archived", "on_hold"},
		},
	}
	if _, err := e.SeedTable(ctx, "orders", spec); err != nil {
		t.Fatalf("seed orders: %v", err)
	}
	for _, row := range db.rows["orders"] {
		s := row["status"]
		if s != "archived" && s != "on_hold" {
			t.Fatalf("status %v escaped the override set", s)
		}
	}
}

func TestSeedTableOverrideUnknownColumn(t *testing.T) {
	db := newFakeAdapter()
	e := newTestEngine(t, db, shopGraph(t))

	_, err := e.SeedTable(context.Background(), "users", Spec{
		Count:     1,
		Overrides: map[string][]any{"nope": {"x"}},
	})
	var schemaErr *schema.Error
	if !errors.As(err, &schemaErr) {
		t.Fatalf("err = %v, want schema.Error", err)
	}
	if schemaErr.Column != "nope" {
		t.Fatalf("error names column %q, want nope", schemaErr.Column)
	}
}

func TestSeedTableOverrideTypeChecked(t *testing.T) {
	db := newFakeAdapter()
	e := newTestEngine(t, db, shopGraph(t))
	ctx := context.Background()

	// Boolean literal in an integer column.
	_, err := e.SeedTable(ctx, "order_items", Spec{
		Count:     1,
		Overrides: map[string][]any{"quantity": {true}},
	})
	var schemaErr *schema.Error
	if !errors.As(err, &schemaErr) {
		t.Fatalf("err = %v, want schema.Error", err)
	}

	// Null marker on a non-nullable column.
	_, err = e.SeedTable(ctx, "users", Spec{
		Count:     1,
		Overrides: map[string][]any{"name": {nil}},
	})
	if !errors.As(err, &schemaErr) {
		t.Fatalf("err = %v, want schema.Error", err)
	}

	if len(db.inserts) != 0 {
		t.Fatalf("invalid overrides must fail before any insert, got %v", db.inserts)
	}
}

func TestSeedAllOrderAndIntegrity(t *testing.T) {
	db := newFakeAdapter()
	e := newTestEngine(t, db, shopGraph(t))

	results, err := e.SeedAll(context.Background(), Spec{Count: 10}, nil)
	if err != nil {
		t.Fatalf("SeedAll: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}

	position := make(map[string]int)
	for i, table := range db.inserts {
		position[table] = i
	}
	if position["users"] > position["orders"] || position["orders"] > position["order_items"] {
		t.Fatalf("insert order violates dependencies: %v", db.inserts)
	}
	if position["products"] > position["order_items"] {
		t.Fatalf("products inserted after order_items: %v", db.inserts)
	}

	users := make(map[any]bool)
	for _, row := range db.rows["users"] {
		users[row["id"]] = true
	}
	orders := make(map[any]bool)
	for _, row := range db.rows["orders"] {
		if !users[row["user_id"]] {
			t.Fatalf("order references unknown user %v", row["user_id"])
		}
		orders[row["id"]] = true
	}
	for _, row := range db.rows["order_items"] {
		if !orders[row["order_id"]] {
			t.Fatalf("order_item references unknown order %v", row["order_id"])
		}
	}
}

func TestSeedAllPerTableOverrides(t *testing.T) {
	db := newFakeAdapter()
	e := newTestEngine(t, db, shopGraph(t))

	overrides := map[string]map[string][]any{
		"orders": {"status": {"archived"}},
	}
	if _, err := e.SeedAll(context.Background(), Spec{Count: 8}, overrides); err != nil {
		t.Fatalf("SeedAll: %v", err)
	}

	for _, row := range db.rows["orders"] {
		if row["status"] != "archived" {
			t.Fatalf("orders status %v escaped the per-table override", row["status"])
		}
	}
	// Tables without an entry stay heuristic-driven.
	for _, row := range db.rows["users"] {
		if row["name"] == nil || row["name"] == "" {
			t.Fatalf("users row lost generated values: %v", row)
		}
	}
}

func TestSeedAllFailFast(t *testing.T) {
	db := newFakeAdapter()
	db.failOn = "orders"
	e := newTestEngine(t, db, shopGraph(t))

	results, err := e.SeedAll(context.Background(), Spec{Count: 5}, nil)
	if err == nil {
		t.Fatal("SeedAll should fail when orders insert fails")
	}

	last := results[len(results)-1]
	if last.Table != "orders" || last.State != StateFailed {
		t.Fatalf("last result = %+v, want failed orders", last)
	}
	if e.TableState("order_items") != StatePending {
		t.Fatalf("order_items state = %v, want pending", e.TableState("order_items"))
	}
	if len(db.rows["order_items"]) != 0 {
		t.Fatal("order_items was seeded after an upstream failure")
	}
	if len(db.rows["users"]) != 5 {
		t.Fatalf("users has %d rows, completed work should survive", len(db.rows["users"]))
	}
}

func TestSeedAllCountLimit(t *testing.T) {
	db := newFakeAdapter()
	e := newTestEngine(t, db, shopGraph(t))

	_, err := e.SeedAll(context.Background(), Spec{Count: MaxRows + 1}, nil)
	var limitErr *LimitExceededError
	if !errors.As(err, &limitErr) {
		t.Fatalf("err = %v, want LimitExceededError", err)
	}
}

func TestSeedTableSelfReference(t *testing.T) {
	g, err := schema.NewGraph([]schema.Table{
		{
			Name: "employees",
			Columns: []schema.Column{
				{Name: "id", Type: "uuid", Kind: schema.KindUUID},
				textColumn("name"),
				{Name: "manager_id", Type: "uuid", Kind: schema.KindUUID, Nullable: true},
			},
			PrimaryKey:  []string{"id"},
			ForeignKeys: []schema.ForeignKey{{Column: "manager_id", RefTable: "employees", RefColumn: "id"}},
		},
	})
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}

	db := newFakeAdapter()
	e := newTestEngine(t, db, g)

	result, err := e.SeedTable(context.Background(), "employees", Spec{Count: 10})
	if err != nil {
		t.Fatalf("SeedTable: %v", err)
	}
	if result.Rows != 10 {
		t.Fatalf("inserted %d rows, want 10", result.Rows)
	}

	ids := make(map[any]bool)
	for _, row := range db.rows["employees"] {
		ids[row["id"]] = true
	}
	for _, row := range db.rows["employees"] {
		mgr := row["manager_id"]
		if mgr == nil {
			continue
		}
		if !ids[mgr] {
			t.Fatalf("manager_id %v does not reference a generated employee", mgr)
		}
	}
}

func TestSeedTableSelfReferenceNotNull(t *testing.T) {
	g, err := schema.NewGraph([]schema.Table{
		{
			Name: "categories",
			Columns: []schema.Column{
				{Name: "id", Type: "uuid", Kind: schema.KindUUID},
				textColumn("name"),
				{Name: "parent_id", Type: "uuid", Kind: schema.KindUUID},
			},
			PrimaryKey:  []string{"id"},
			ForeignKeys: []schema.ForeignKey{{Column: "parent_id", RefTable: "categories", RefColumn: "id"}},
		},
	})
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}

	db := newFakeAdapter()
	e := newTestEngine(t, db, g)

	// The first row has no candidate parent and the column cannot be null.
	_, err = e.SeedTable(context.Background(), "categories", Spec{Count: 3})
	var parentErr *EmptyParentError
	if !errors.As(err, &parentErr) {
		t.Fatalf("err = %v, want EmptyParentError", err)
	}
	if parentErr.Table != "categories" {
		t.Fatalf("error names table %q, want categories", parentErr.Table)
	}
}

func TestTableOrderDeterministic(t *testing.T) {
	e := newTestEngine(t, newFakeAdapter(), shopGraph(t))

	first, err := e.TableOrder()
	if err != nil {
		t.Fatalf("TableOrder: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := e.TableOrder()
		if err != nil {
			t.Fatalf("TableOrder: %v", err)
		}
		if fmt.Sprint(again) != fmt.Sprint(first) {
			t.Fatalf("order changed between runs: %v vs %v", first, again)
		}
	}
}

func TestDependencyTree(t *testing.T) {
	e := newTestEngine(t, newFakeAdapter(), shopGraph(t))

	levels, err := e.DependencyTree()
	if err != nil {
		t.Fatalf("DependencyTree: %v", err)
	}
	find := func(table string) int {
		for level, names := range levels {
			for _, n := range names {
				if n == table {
					return level
				}
			}
		}
		t.Fatalf("table %s missing from tree", table)
		return -1
	}
	if find("users") != 0 || find("products") != 0 {
		t.Fatal("root tables should sit at level 0")
	}
	if find("orders") != 1 {
		t.Fatalf("orders at level %d, want 1", find("orders"))
	}
	if find("order_items") != 2 {
		t.Fatalf("order_items at level %d, want 2", find("order_items"))
	}
}
