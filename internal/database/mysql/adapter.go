package mysql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/nigilism131313-png/dataforge/internal/database/common"
	"github.com/nigilism131313-png/dataforge/internal/schema"
)

type Adapter struct {
	db *sqlx.DB
	qb squirrel.StatementBuilderType
}

func New() *Adapter {
	return &Adapter{
		qb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

func (m *Adapter) Connect(ctx context.Context, url string) error {
	db, err := sqlx.Open("mysql", url)
	if err != nil {
		return fmt.Errorf("failed to open mysql connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping mysql: %w", err)
	}
	m.db = db
	return nil
}

func (m *Adapter) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

func (m *Adapter) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

func (m *Adapter) ListTables(ctx context.Context) ([]string, error) {
	var tables []string
	err := m.db.SelectContext(ctx, &tables, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return tables, nil
}

func (m *Adapter) TableColumns(ctx context.Context, table string) ([]schema.Column, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT column_name, column_type, data_type, is_nullable, extra
		FROM information_schema.columns
		WHERE table_schema = DATABASE() AND table_name = ?
		ORDER BY ordinal_position
	`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var name, columnType, dataType, nullable, extra string
		if err := rows.Scan(&name, &columnType, &dataType, &nullable, &extra); err != nil {
			return nil, err
		}

		col := schema.Column{
			Name:          name,
			Type:          columnType,
			Nullable:      nullable == "YES",
			AutoIncrement: strings.Contains(strings.ToLower(extra), "auto_increment"),
		}
		if dataType == "enum" {
			col.Kind = schema.KindEnum
			col.EnumValues = schema.ParseEnumValues(columnType)
		} else {
			col.Kind = schema.KindOf(columnType)
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func (m *Adapter) TableForeignKeys(ctx context.Context, table string) ([]schema.ForeignKey, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT column_name, referenced_table_name, referenced_column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		  AND referenced_table_name IS NOT NULL
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

func (m *Adapter) PrimaryKey(ctx context.Context, table string) ([]string, error) {
	var pk []string
	err := m.db.SelectContext(ctx, &pk, `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		  AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position
	`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read primary key of %s: %w", table, err)
	}
	return pk, nil
}

func (m *Adapter) CountRows(ctx context.Context, table string) (int64, error) {
	if err := common.CheckIdentifiers(table); err != nil {
		return 0, err
	}
	var count int64
	err := m.db.GetContext(ctx, &count, fmt.Sprintf("SELECT COUNT(*) FROM `%s`", table))
	return count, err
}

func (m *Adapter) SampleKeys(ctx context.Context, table, column string, limit int) ([]any, error) {
	if err := common.CheckIdentifiers(table, column); err != nil {
		return nil, err
	}

	sql, args, err := m.qb.
		Select(fmt.Sprintf("`%s`", column)).
		From(fmt.Sprintf("`%s`", table)).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := m.db.QueryContext(ctx, sql, args...)
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
		keys = append(keys, normalizeKey(v))
	}
	return keys, rows.Err()
}

func (m *Adapter) InsertBatch(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := common.CheckIdentifiers(append([]string{table}, columns...)...); err != nil {
		return 0, err
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = fmt.Sprintf("`%s`", c)
	}

	builder := m.qb.Insert(fmt.Sprintf("`%s`", table)).Columns(quoted...)
	for _, row := range rows {
		values := make([]any, len(row))
		for i, v := range row {
			converted, err := convertValue(v)
			if err != nil {
				return 0, err
			}
			values[i] = converted
		}
		builder = builder.Values(values...)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build insert for %s: %w", table, err)
	}

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit insert into %s: %w", table, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return int64(len(rows)), nil
	}
	return affected, nil
}

// convertValue adapts generated values to MySQL parameters. Slices are
// stored as JSON text since MySQL has no array type.
func convertValue(v any) (any, error) {
	switch vv := v.(type) {
	case []any, []string:
		data, err := json.Marshal(vv)
		if err != nil {
			return nil, fmt.Errorf("failed to encode array value: %w", err)
		}
		return string(data), nil
	default:
		return v, nil
	}
}

// normalizeKey converts driver byte slices to strings so sampled keys
// compare and serialize cleanly.
func normalizeKey(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
