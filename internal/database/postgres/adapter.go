package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"github.com/nigilism131313-png/dataforge/internal/database/common"
	"github.com/nigilism131313-png/dataforge/internal/schema"
)

type Adapter struct {
	pool *pgxpool.Pool
	qb   squirrel.StatementBuilderType
}

func New() *Adapter {
	return &Adapter{
		qb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (p *Adapter) Connect(ctx context.Context, url string) error {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return fmt.Errorf("failed to parse connection URL: %w", err)
	}

	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec
	config.MaxConns = 2
	config.MinConns = 0
	config.MaxConnLifetime = 15 * time.Minute
	config.MaxConnIdleTime = 3 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	p.pool = pool
	return nil
}

func (p *Adapter) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func (p *Adapter) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Adapter) ListTables(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (p *Adapter) TableColumns(ctx context.Context, table string) ([]schema.Column, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT column_name, data_type, udt_name, is_nullable,
		       COALESCE(column_default, ''), is_identity
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
		ORDER BY ordinal_position
	`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	type rawColumn struct {
		name, dataType, udtName, nullable, dflt, identity string
	}
	var raw []rawColumn
	for rows.Next() {
		var rc rawColumn
		if err := rows.Scan(&rc.name, &rc.dataType, &rc.udtName, &rc.nullable, &rc.dflt, &rc.identity); err != nil {
			return nil, err
		}
		raw = append(raw, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	columns := make([]schema.Column, 0, len(raw))
	for _, rc := range raw {
		col := schema.Column{
			Name:     rc.name,
			Type:     rc.dataType,
			Nullable: rc.nullable == "YES",
			AutoIncrement: rc.identity == "YES" ||
				strings.HasPrefix(rc.dflt, "nextval("),
		}

		switch rc.dataType {
		case "ARRAY":
			col.Kind = schema.KindArray
			col.Elem = schema.ElemKindOf(rc.udtName)
			col.Type = rc.udtName
		case "USER-DEFINED":
			values, err := p.enumValues(ctx, rc.udtName)
			if err != nil {
				return nil, err
			}
			if len(values) > 0 {
				col.Kind = schema.KindEnum
				col.EnumValues = values
				col.Type = rc.udtName
			} else {
				col.Kind = schema.KindOf(rc.udtName)
				col.Type = rc.udtName
			}
		default:
			col.Kind = schema.KindOf(rc.dataType)
		}
		columns = append(columns, col)
	}
	return columns, nil
}

// enumValues returns the labels of a Postgres enum type, or nil when the
// type is not an enum.
func (p *Adapter) enumValues(ctx context.Context, typeName string) ([]string, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT e.enumlabel
		FROM pg_type t
		JOIN pg_enum e ON t.oid = e.enumtypid
		WHERE t.typname = $1
		ORDER BY e.enumsortorder
	`, typeName)
	if err != nil {
		return nil, fmt.Errorf("failed to read enum values of %s: %w", typeName, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (p *Adapter) TableForeignKeys(ctx context.Context, table string) ([]schema.ForeignKey, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT kcu.column_name, ccu.table_name, ccu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		 AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
		  ON tc.constraint_name = ccu.constraint_name
		 AND tc.table_schema = ccu.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
		  AND tc.table_schema = 'public'
		  AND tc.table_name = $1
	`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read foreign keys of %s: %w", table, err)
	}
	defer rows.Close()

	var fks []schema.ForeignKey
	for rows.Next() {
		var fk schema.ForeignKey
		if err := rows.Scan(&fk.Column, &fk.RefTable, &fk.RefColumn); err != nil {
			return nil, err
		}
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}

func (p *Adapter) PrimaryKey(ctx context.Context, table string) ([]string, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		 AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
		  AND tc.table_schema = 'public'
		  AND tc.table_name = $1
		ORDER BY kcu.ordinal_position
	`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read primary key of %s: %w", table, err)
	}
	defer rows.Close()

	var pk []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		pk = append(pk, name)
	}
	return pk, rows.Err()
}

func (p *Adapter) CountRows(ctx context.Context, table string) (int64, error) {
	if err := common.CheckIdentifiers(table); err != nil {
		return 0, err
	}
	var count int64
	err := p.pool.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %q`, table)).Scan(&count)
	return count, err
}

func (p *Adapter) SampleKeys(ctx context.Context, table, column string, limit int) ([]any, error) {
	if err := common.CheckIdentifiers(table, column); err != nil {
		return nil, err
	}

	sql, args, err := p.qb.
		Select(fmt.Sprintf("%q", column)).
		From(fmt.Sprintf("%q", table)).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to sample keys from %s.%s: %w", table, column, err)
	}
	defer rows.Close()

	var keys []any
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		keys = append(keys, v)
	}
	return keys, rows.Err()
}

func (p *Adapter) InsertBatch(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := common.CheckIdentifiers(append([]string{table}, columns...)...); err != nil {
		return 0, err
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = fmt.Sprintf("%q", c)
	}

	builder := p.qb.Insert(fmt.Sprintf("%q", table)).Columns(quoted...)
	for _, row := range rows {
		values := make([]any, len(row))
		for i, v := range row {
			values[i] = convertValue(v)
		}
		builder = builder.Values(values...)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build insert for %s: %w", table, err)
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit insert into %s: %w", table, err)
	}
	return tag.RowsAffected(), nil
}

// convertValue adapts generated values to Postgres wire types. Slices become
// native arrays via pq.Array.
func convertValue(v any) any {
	switch vv := v.(type) {
	case []any:
		return pq.Array(vv)
	case []string:
		return pq.Array(vv)
	default:
		return v
	}
}
