package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

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

func (s *Adapter) Connect(ctx context.Context, url string) error {
	path := strings.TrimPrefix(url, "sqlite://")
	path = strings.TrimPrefix(path, "file:")

	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	// FK enforcement is off by default in SQLite.
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	s.db = db
	return nil
}

func (s *Adapter) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Adapter) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Adapter) ListTables(ctx context.Context) ([]string, error) {
	var tables []string
	err := s.db.SelectContext(ctx, &tables, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return tables, nil
}

func (s *Adapter) TableColumns(ctx context.Context, table string) ([]schema.Column, error) {
	if err := common.CheckIdentifiers(table); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var (
			cid      int
			name     string
			declType string
			notNull  int
			dflt     any
			pk       int
		)
		if err := rows.Scan(&cid, &name, &declType, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}

		col := schema.Column{
			Name:     name,
			Type:     declType,
			Kind:     schema.KindOf(declType),
			Nullable: notNull == 0 && pk == 0,
			// A single INTEGER primary key aliases the rowid.
			AutoIncrement: pk == 1 && strings.EqualFold(declType, "INTEGER"),
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func (s *Adapter) TableForeignKeys(ctx context.Context, table string) ([]schema.ForeignKey, error) {
	if err := common.CheckIdentifiers(table); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("failed to read foreign keys of %s: %w", table, err)
	}
	defer rows.Close()

	var fks []schema.ForeignKey
	for rows.Next() {
		var (
			id, seq            int
			refTable, from     string
			to                 any // NULL when the FK targets the parent's PK implicitly
			onUpdate, onDelete string
			match              string
		)
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, err
		}

		fk := schema.ForeignKey{Column: from, RefTable: refTable}
		switch tv := to.(type) {
		case string:
			fk.RefColumn = tv
		case []byte:
			fk.RefColumn = string(tv)
		}
		fks = append(fks, fk)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Resolve implicit references to the parent's primary key.
	for i := range fks {
		if fks[i].RefColumn == "" {
			pk, err := s.PrimaryKey(ctx, fks[i].RefTable)
			if err != nil {
				return nil, err
			}
			if len(pk) > 0 {
				fks[i].RefColumn = pk[0]
			}
		}
	}
	return fks, nil
}

func (s *Adapter) PrimaryKey(ctx context.Context, table string) ([]string, error) {
	if err := common.CheckIdentifiers(table); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pk []string
	for rows.Next() {
		var (
			cid      int
			name     string
			declType string
			notNull  int
			dflt     any
			pkPos    int
		)
		if err := rows.Scan(&cid, &name, &declType, &notNull, &dflt, &pkPos); err != nil {
			return nil, err
		}
		if pkPos > 0 {
			pk = append(pk, name)
		}
	}
	return pk, rows.Err()
}

func (s *Adapter) CountRows(ctx context.Context, table string) (int64, error) {
	if err := common.CheckIdentifiers(table); err != nil {
		return 0, err
	}
	var count int64
	err := s.db.GetContext(ctx, &count, fmt.Sprintf("SELECT COUNT(*) FROM %s", table))
	return count, err
}

func (s *Adapter) SampleKeys(ctx context.Context, table, column string, limit int) ([]any, error) {
	if err := common.CheckIdentifiers(table, column); err != nil {
		return nil, err
	}

	sql, args, err := s.qb.Select(column).From(table).Limit(uint64(limit)).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, sql, args...)
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
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		keys = append(keys, v)
	}
	return keys, rows.Err()
}

func (s *Adapter) InsertBatch(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := common.CheckIdentifiers(append([]string{table}, columns...)...); err != nil {
		return 0, err
	}

	builder := s.qb.Insert(table).Columns(columns...)
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

	tx, err := s.db.BeginTxx(ctx, nil)
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

// convertValue adapts generated values to SQLite parameters: arrays become
// JSON text, timestamps ISO strings.
func convertValue(v any) any {
	switch vv := v.(type) {
	case []any, []string:
		data, err := json.Marshal(vv)
		if err != nil {
			return fmt.Sprintf("%v", vv)
		}
		return string(data)
	case time.Time:
		return vv.Format("2006-01-02 15:04:05")
	default:
		return v
	}
}
