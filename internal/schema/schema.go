package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a column's declared database type into the value domains
// the data generator understands.
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindDecimal
	KindBoolean
	KindDateTime
	KindDate
	KindUUID
	KindJSON
	KindArray
	KindEnum
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	case KindBoolean:
		return "boolean"
	case KindDateTime:
		return "datetime"
	case KindDate:
		return "date"
	case KindUUID:
		return "uuid"
	case KindJSON:
		return "json"
	case KindArray:
		return "array"
	case KindEnum:
		return "enum"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

type Column struct {
	Name          string
	Type          string // declared type as reported by the introspector
	Kind          Kind
	Nullable      bool
	AutoIncrement bool
	EnumValues    []string
	Elem          Kind // element kind when Kind == KindArray
}

type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// SelfReferencing reports whether the key points back at its own table.
func (fk ForeignKey) SelfReferencing(table string) bool {
	return fk.RefTable == table
}

type Table struct {
	Name        string
	Columns     []Column
	PrimaryKey  []string
	ForeignKeys []ForeignKey
}

func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// PrimaryKeyColumn returns the first primary-key column name, or "" when the
// table has no declared primary key.
func (t *Table) PrimaryKeyColumn() string {
	if len(t.PrimaryKey) == 0 {
		return ""
	}
	return t.PrimaryKey[0]
}

func (t *Table) ForeignKeyFor(column string) (ForeignKey, bool) {
	for _, fk := range t.ForeignKeys {
		if fk.Column == column {
			return fk, true
		}
	}
	return ForeignKey{}, false
}

// Error reports a schema inconsistency: an unknown table or column, or a
// foreign key referencing something absent from the snapshot.
type Error struct {
	Table  string
	Column string
	Detail string
}

func (e *Error) Error() string {
	switch {
	case e.Table != "" && e.Column != "":
		return fmt.Sprintf("schema error: table %q column %q: %s", e.Table, e.Column, e.Detail)
	case e.Table != "":
		return fmt.Sprintf("schema error: table %q: %s", e.Table, e.Detail)
	default:
		return fmt.Sprintf("schema error: %s", e.Detail)
	}
}

// Graph is an immutable snapshot of the schema for one seeding run. It owns
// the tables and exposes the foreign-key edge set used for ordering.
type Graph struct {
	tables map[string]*Table
	names  []string
}

// NewGraph validates the introspected tables and builds the snapshot. A
// foreign key referencing a table or column missing from the snapshot is an
// error, not a dropped edge: a dangling reference would corrupt ordering.
func NewGraph(tables []Table) (*Graph, error) {
	g := &Graph{tables: make(map[string]*Table, len(tables))}
	for i := range tables {
		t := tables[i]
		if _, dup := g.tables[t.Name]; dup {
			return nil, &Error{Table: t.Name, Detail: "duplicate table name"}
		}
		g.tables[t.Name] = &t
		g.names = append(g.names, t.Name)
	}
	sort.Strings(g.names)

	for _, name := range g.names {
		t := g.tables[name]
		for _, fk := range t.ForeignKeys {
			if _, ok := t.Column(fk.Column); !ok {
				return nil, &Error{Table: t.Name, Column: fk.Column, Detail: "foreign key on unknown column"}
			}
			parent, ok := g.tables[fk.RefTable]
			if !ok {
				return nil, &Error{Table: t.Name, Column: fk.Column,
					Detail: fmt.Sprintf("foreign key references unknown table %q", fk.RefTable)}
			}
			if _, ok := parent.Column(fk.RefColumn); !ok {
				return nil, &Error{Table: t.Name, Column: fk.Column,
					Detail: fmt.Sprintf("foreign key references unknown column %q.%q", fk.RefTable, fk.RefColumn)}
			}
		}
	}
	return g, nil
}

func (g *Graph) Table(name string) (*Table, bool) {
	t, ok := g.tables[name]
	return t, ok
}

// TableNames returns all table names in ascending lexicographic order.
func (g *Graph) TableNames() []string {
	out := make([]string, len(g.names))
	copy(out, g.names)
	return out
}

func (g *Graph) Len() int {
	return len(g.tables)
}

// DependenciesOf returns the distinct parent tables of name, excluding
// self-references, in ascending order. Self edges are permitted in the edge
// set but never constrain ordering.
func (g *Graph) DependenciesOf(name string) []string {
	t, ok := g.tables[name]
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	var deps []string
	for _, fk := range t.ForeignKeys {
		if fk.RefTable == name || seen[fk.RefTable] {
			continue
		}
		seen[fk.RefTable] = true
		deps = append(deps, fk.RefTable)
	}
	sort.Strings(deps)
	return deps
}

// DependentsOf returns the tables holding a foreign key into name, excluding
// name itself, in ascending order.
func (g *Graph) DependentsOf(name string) []string {
	var out []string
	for _, child := range g.names {
		if child == name {
			continue
		}
		for _, dep := range g.DependenciesOf(child) {
			if dep == name {
				out = append(out, child)
				break
			}
		}
	}
	return out
}

// KindOf derives the semantic kind from a declared column type such as
// "VARCHAR(255)", "timestamp with time zone" or "enum('a','b')".
func KindOf(declared string) Kind {
	t := strings.ToLower(strings.TrimSpace(declared))

	if strings.HasSuffix(t, "[]") || strings.Contains(t, "array") {
		return KindArray
	}
	if idx := strings.Index(t, "("); idx > 0 && !strings.HasPrefix(t, "enum") {
		t = t[:idx]
	}

	switch {
	case strings.HasPrefix(t, "enum"):
		return KindEnum
	case strings.Contains(t, "uuid"):
		return KindUUID
	case strings.Contains(t, "json"):
		return KindJSON
	case strings.Contains(t, "point") || strings.Contains(t, "geometry") || strings.Contains(t, "geography"):
		return KindPoint
	case strings.Contains(t, "bool"):
		return KindBoolean
	case strings.Contains(t, "int") || strings.Contains(t, "serial"):
		return KindInteger
	case strings.Contains(t, "decimal") || strings.Contains(t, "numeric") ||
		strings.Contains(t, "float") || strings.Contains(t, "double") || strings.Contains(t, "real") ||
		strings.Contains(t, "money"):
		return KindDecimal
	case strings.Contains(t, "timestamp") || strings.Contains(t, "datetime"):
		return KindDateTime
	case strings.Contains(t, "date") || strings.Contains(t, "time"):
		return KindDate
	default:
		return KindText
	}
}

// ElemKindOf derives the element kind of an array-typed column, accepting
// both "integer[]" and Postgres internal names like "_int4".
func ElemKindOf(declared string) Kind {
	t := strings.ToLower(strings.TrimSpace(declared))
	t = strings.TrimSuffix(t, "[]")
	t = strings.TrimPrefix(t, "_")
	t = strings.TrimSuffix(t, " array")
	return KindOf(t)
}

// ParseEnumValues extracts the declared value set from a type like
// "enum('active','inactive','pending')". Returns nil when the type carries
// no inline value list.
func ParseEnumValues(declared string) []string {
	t := strings.TrimSpace(declared)
	if !strings.HasPrefix(strings.ToLower(t), "enum") {
		return nil
	}
	open := strings.Index(t, "(")
	end := strings.LastIndex(t, ")")
	if open < 0 || end <= open {
		return nil
	}
	var values []string
	for _, part := range strings.Split(t[open+1:end], ",") {
		v := strings.Trim(strings.TrimSpace(part), `'"`)
		if v != "" {
			values = append(values, v)
		}
	}
	return values
}
