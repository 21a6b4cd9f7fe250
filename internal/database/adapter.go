// Package database holds the persistence and introspection seam. Adapters
// own connections and transactions; the seeding engine only decides what to
// insert and in what order.
package database

import (
	"context"

	"github.com/nigilism131313-png/dataforge/internal/database/common"
	"github.com/nigilism131313-png/dataforge/internal/schema"
)

// Adapter is implemented once per database dialect.
type Adapter interface {
	Connect(ctx context.Context, url string) error
	Close() error
	Ping(ctx context.Context) error

	// Introspection. The results feed schema.NewGraph; adapters report the
	// snapshot as-is and never drop inconsistent edges.
	ListTables(ctx context.Context) ([]string, error)
	TableColumns(ctx context.Context, table string) ([]schema.Column, error)
	TableForeignKeys(ctx context.Context, table string) ([]schema.ForeignKey, error)
	PrimaryKey(ctx context.Context, table string) ([]string, error)

	// Persistence. InsertBatch runs the whole batch inside one transaction:
	// it inserts all rows or none.
	CountRows(ctx context.Context, table string) (int64, error)
	SampleKeys(ctx context.Context, table, column string, limit int) ([]any, error)
	InsertBatch(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
}

// ValidIdentifier reports whether name is safe to use as a SQL identifier.
func ValidIdentifier(name string) bool {
	return common.ValidIdentifier(name)
}

// LoadSchema introspects every table reachable through the adapter and
// builds the immutable schema snapshot for one seeding run.
func LoadSchema(ctx context.Context, db Adapter) (*schema.Graph, error) {
	names, err := db.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	tables := make([]schema.Table, 0, len(names))
	for _, name := range names {
		columns, err := db.TableColumns(ctx, name)
		if err != nil {
			return nil, err
		}
		fks, err := db.TableForeignKeys(ctx, name)
		if err != nil {
			return nil, err
		}
		pk, err := db.PrimaryKey(ctx, name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, schema.Table{
			Name:        name,
			Columns:     columns,
			PrimaryKey:  pk,
			ForeignKeys: fks,
		})
	}
	return schema.NewGraph(tables)
}
