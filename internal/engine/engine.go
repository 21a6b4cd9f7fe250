// Package engine orchestrates a seeding run: it resolves table order,
// generates rows table by table, resolves foreign-key columns against live
// parent data and hands each batch to the persistence layer as one
// transaction.
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/nigilism131313-png/dataforge/internal/database"
	"github.com/nigilism131313-png/dataforge/internal/datagen"
	"github.com/nigilism131313-png/dataforge/internal/schema"
	"github.com/nigilism131313-png/dataforge/internal/topology"
)

// MaxRows bounds a single seed request. Requests above it are rejected
// before any generation work.
const MaxRows = 1000

// parentPoolSize bounds the sample of existing parent keys drawn per
// foreign-key column.
const parentPoolSize = 100

// State tracks one table through a seeding run.
type State int

const (
	StatePending State = iota
	StateReady
	StateSeeding
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateReady:
		return "ready"
	case StateSeeding:
		return "seeding"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Spec is one table's seeding request.
type Spec struct {
	Count  int
	Locale string
	// Overrides maps column names to explicit literal value sets; a nil
	// element is the null marker.
	Overrides map[string][]any
}

// Result is one table's outcome.
type Result struct {
	Table string
	Rows  int64
	State State
	Err   error
}

type LimitExceededError struct {
	Count int
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("requested row count %d outside [0, %d]", e.Count, MaxRows)
}

// EmptyParentError reports a foreign-key column whose parent table holds no
// rows to reference. It aborts the table and every not-yet-seeded
// descendant.
type EmptyParentError struct {
	Table  string
	Column string
}

func (e *EmptyParentError) Error() string {
	return fmt.Sprintf("parent table %q has no rows to satisfy foreign key column %q, seed it first", e.Table, e.Column)
}

// Engine runs against one schema snapshot and one adapter. It holds no
// state between runs beyond the snapshot itself.
type Engine struct {
	db     database.Adapter
	graph  *schema.Graph
	rng    *rand.Rand
	states map[string]State
}

func New(db database.Adapter, graph *schema.Graph) *Engine {
	return &Engine{
		db:     db,
		graph:  graph,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		states: make(map[string]State),
	}
}

// WithRand fixes the random source; used by tests for reproducibility.
func (e *Engine) WithRand(rng *rand.Rand) *Engine {
	e.rng = rng
	return e
}

func (e *Engine) Graph() *schema.Graph {
	return e.graph
}

// TableOrder returns the seeding order, parents before children.
func (e *Engine) TableOrder() ([]string, error) {
	return topology.Sort(e.graph)
}

// DependencyTree groups tables by dependency level for presentation.
func (e *Engine) DependencyTree() (map[int][]string, error) {
	return topology.Levels(e.graph)
}

// TableState reports where a table currently is in the run.
func (e *Engine) TableState(table string) State {
	return e.states[table]
}

// SeedTable generates and inserts spec.Count rows for one table. Validation
// failures surface before any generation work; the insert is a single
// transaction, so the table gains all rows or none.
func (e *Engine) SeedTable(ctx context.Context, table string, spec Spec) (Result, error) {
	result := Result{Table: table, State: StateFailed}

	if spec.Count < 0 || spec.Count > MaxRows {
		result.Err = &LimitExceededError{Count: spec.Count}
		return result, result.Err
	}
	if spec.Locale == "" {
		spec.Locale = "en_US"
	}

	gen, err := datagen.New(spec.Locale, e.rng)
	if err != nil {
		result.Err = err
		return result, err
	}

	t, ok := e.graph.Table(table)
	if !ok {
		result.Err = &schema.Error{Table: table, Detail: "unknown table"}
		return result, result.Err
	}
	if err := validateOverrides(t, spec.Overrides); err != nil {
		result.Err = err
		return result, err
	}

	e.states[table] = StateSeeding
	rows, columns, err := e.generateRows(ctx, t, spec, gen)
	if err != nil {
		e.states[table] = StateFailed
		result.Err = err
		return result, err
	}

	var inserted int64
	if len(rows) > 0 {
		inserted, err = e.db.InsertBatch(ctx, table, columns, rows)
		if err != nil {
			e.states[table] = StateFailed
			result.Err = fmt.Errorf("failed to insert batch into %s: %w", table, err)
			return result, result.Err
		}
	}

	e.states[table] = StateDone
	result.State = StateDone
	result.Rows = inserted
	result.Err = nil
	return result, nil
}

// SeedAll seeds every table in dependency order with the same count and
// locale. overrides pins columns per table (table name to column name to
// literal set); tables absent from it get no overrides. The run
// short-circuits on the first failure: completed tables' results are
// returned together with the failed table's marker, and later tables stay
// pending because their foreign-key targets may depend on the failed one.
func (e *Engine) SeedAll(ctx context.Context, spec Spec, overrides map[string]map[string][]any) ([]Result, error) {
	if spec.Count < 0 || spec.Count > MaxRows {
		return nil, &LimitExceededError{Count: spec.Count}
	}
	if spec.Locale == "" {
		spec.Locale = "en_US"
	}
	if !datagen.IsSupportedLocale(spec.Locale) {
		return nil, &datagen.UnsupportedLocaleError{Locale: spec.Locale}
	}

	order, err := e.TableOrder()
	if err != nil {
		return nil, err
	}

	e.states = make(map[string]State, len(order))
	for _, name := range order {
		e.states[name] = StatePending
	}

	var results []Result
	for _, name := range order {
		e.states[name] = StateReady
		result, err := e.SeedTable(ctx, name, Spec{
			Count:     spec.Count,
			Locale:    spec.Locale,
			Overrides: overrides[name],
		})
		results = append(results, result)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// validateOverrides rejects overrides naming unknown columns or carrying
// literals incompatible with the column's declared type, before any
// generation work. A nil literal is the null marker and requires a nullable
// column.
func validateOverrides(t *schema.Table, overrides map[string][]any) error {
	for column, values := range overrides {
		col, ok := t.Column(column)
		if !ok {
			return &schema.Error{Table: t.Name, Column: column, Detail: "override on unknown column"}
		}
		for _, v := range values {
			if v == nil {
				if !col.Nullable {
					return &schema.Error{Table: t.Name, Column: column, Detail: "null override on non-nullable column"}
				}
				continue
			}
			if !compatibleLiteral(col.Kind, v) {
				return &schema.Error{
					Table:  t.Name,
					Column: column,
					Detail: fmt.Sprintf("override literal %v (%T) incompatible with column type %s", v, v, col.Kind),
				}
			}
		}
	}
	return nil
}

// compatibleLiteral reports whether a caller-supplied literal can be stored
// in a column of the given kind. YAML and JSON decoders hand integers over
// as int, int64 or float64, so numeric kinds accept all three.
func compatibleLiteral(kind schema.Kind, v any) bool {
	switch kind {
	case schema.KindInteger:
		switch v.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float64:
			return true
		}
		return false
	case schema.KindDecimal:
		switch v.(type) {
		case int, int64, float32, float64:
			return true
		}
		return false
	case schema.KindBoolean:
		_, ok := v.(bool)
		return ok
	case schema.KindText, schema.KindEnum, schema.KindUUID, schema.KindJSON, schema.KindDateTime, schema.KindDate, schema.KindPoint:
		switch v.(type) {
		case string, time.Time:
			return true
		}
		return false
	default:
		return true
	}
}

// generateRows builds spec.Count row value slices for the table. The column
// list excludes auto-increment primary keys; order follows the table's
// declared column order.
func (e *Engine) generateRows(ctx context.Context, t *schema.Table, spec Spec, gen *datagen.Generator) ([][]any, []string, error) {
	var columns []string
	for _, col := range t.Columns {
		if col.AutoIncrement {
			continue
		}
		columns = append(columns, col.Name)
	}

	pools, err := e.sampleParentPools(ctx, t)
	if err != nil {
		return nil, nil, err
	}

	// Keys of rows generated earlier in this batch, for self-referencing
	// foreign keys. Only populated when the primary key value is generated
	// client-side.
	var batchKeys []any
	pkColumn := t.PrimaryKeyColumn()

	rows := make([][]any, 0, spec.Count)
	for i := 0; i < spec.Count; i++ {
		resolver := func(fk schema.ForeignKey) (any, error) {
			return e.resolveFK(t, fk, pools, batchKeys)
		}

		row := make([]any, 0, len(columns))
		var rowPK any
		for _, col := range t.Columns {
			if col.AutoIncrement {
				continue
			}
			value, err := gen.ValueFor(&datagen.Context{
				Table:     t,
				Column:    col,
				RowIndex:  i,
				Overrides: spec.Overrides,
				ResolveFK: resolver,
			})
			if err != nil {
				return nil, nil, err
			}
			if col.Name == pkColumn {
				rowPK = value
			}
			row = append(row, value)
		}
		if rowPK != nil {
			batchKeys = append(batchKeys, rowPK)
		}
		rows = append(rows, row)
	}
	return rows, columns, nil
}

// sampleParentPools draws a bounded sample of existing parent keys for each
// non-self foreign key, at this moment rather than at run start so rows
// seeded earlier in the same run are visible. An empty parent is a hard
// stop: a batch with placeholder foreign keys would break integrity.
func (e *Engine) sampleParentPools(ctx context.Context, t *schema.Table) (map[string][]any, error) {
	pools := make(map[string][]any, len(t.ForeignKeys))
	for _, fk := range t.ForeignKeys {
		keys, err := e.db.SampleKeys(ctx, fk.RefTable, fk.RefColumn, parentPoolSize)
		if err != nil {
			return nil, fmt.Errorf("failed to sample parent keys of %s.%s: %w", fk.RefTable, fk.RefColumn, err)
		}
		if len(keys) == 0 && !fk.SelfReferencing(t.Name) {
			return nil, &EmptyParentError{Table: fk.RefTable, Column: fk.Column}
		}
		pools[fk.Column] = keys
	}
	return pools, nil
}

// resolveFK draws one value for a foreign-key column, uniformly with
// replacement from the parent pool. A self-referencing column draws from
// rows already generated in this batch as well; when nothing is available
// it resolves to null if the column allows it.
func (e *Engine) resolveFK(t *schema.Table, fk schema.ForeignKey, pools map[string][]any, batchKeys []any) (any, error) {
	pool := pools[fk.Column]
	if fk.SelfReferencing(t.Name) {
		pool = append(append([]any{}, pool...), batchKeys...)
		if len(pool) == 0 {
			col, _ := t.Column(fk.Column)
			if col.Nullable {
				return nil, nil
			}
			return nil, &EmptyParentError{Table: t.Name, Column: fk.Column}
		}
	}
	if len(pool) == 0 {
		return nil, &EmptyParentError{Table: fk.RefTable, Column: fk.Column}
	}
	return pool[e.rng.Intn(len(pool))], nil
}
