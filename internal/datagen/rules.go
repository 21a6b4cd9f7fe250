// Package datagen maps column signatures to generated values through an
// explicit ordered rule table: rules are evaluated top to bottom and the
// first match wins, so custom overrides always beat heuristics and every
// rule is independently testable.
package datagen

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nigilism131313-png/dataforge/internal/schema"
)

// Context carries everything a rule may inspect for one column of one row.
type Context struct {
	Table    *schema.Table
	Column   schema.Column
	RowIndex int

	// Overrides maps column names to explicit literal value sets. A nil
	// element in a set is the null marker: the only way a nullable column
	// receives null.
	Overrides map[string][]any

	// ResolveFK is set by the seeding engine while rows are generated. When
	// nil, foreign-key columns fall through to the type rules.
	ResolveFK func(fk schema.ForeignKey) (any, error)
}

type rule struct {
	name     string
	match    func(g *Generator, ctx *Context) bool
	generate func(g *Generator, ctx *Context) (any, error)
}

// Generator dispatches value generation for columns of one table batch.
// One Generator serves one locale and one random stream.
type Generator struct {
	faker *Faker
	rng   *rand.Rand
	rules []rule
}

// New builds a Generator for the locale. Fails with UnsupportedLocaleError
// before any generation work when the locale is off the allow-list.
func New(locale string, rng *rand.Rand) (*Generator, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	faker, err := NewFaker(locale, rng)
	if err != nil {
		return nil, err
	}
	return &Generator{faker: faker, rng: rng, rules: ruleTable()}, nil
}

// Faker exposes the underlying value library, for callers that need raw
// categories (templates, tests).
func (g *Generator) Faker() *Faker {
	return g.faker
}

// ValueFor evaluates the rule table for the column and returns the value
// from the first matching rule.
func (g *Generator) ValueFor(ctx *Context) (any, error) {
	for i := range g.rules {
		if g.rules[i].match(g, ctx) {
			return g.rules[i].generate(g, ctx)
		}
	}
	// The fallback rule matches everything, so this is unreachable for a
	// well-formed table.
	return nil, fmt.Errorf("no generation rule matched column %q", ctx.Column.Name)
}

// RuleName reports which rule would fire for the context, without generating
// a value. Used by tests and the schema inspection surface.
func (g *Generator) RuleName(ctx *Context) string {
	for i := range g.rules {
		if g.rules[i].match(g, ctx) {
			return g.rules[i].name
		}
	}
	return ""
}

// ruleTable returns the dispatch rules in precedence order:
// override, enum, foreign key, structural types, table overlays, column-name
// heuristics, declared-type fallback.
func ruleTable() []rule {
	rules := []rule{
		{
			name: "override",
			match: func(g *Generator, ctx *Context) bool {
				return len(ctx.Overrides[ctx.Column.Name]) > 0
			},
			generate: func(g *Generator, ctx *Context) (any, error) {
				set := ctx.Overrides[ctx.Column.Name]
				return set[g.rng.Intn(len(set))], nil
			},
		},
		{
			name: "enum",
			match: func(g *Generator, ctx *Context) bool {
				return ctx.Column.Kind == schema.KindEnum && len(ctx.Column.EnumValues) > 0
			},
			generate: func(g *Generator, ctx *Context) (any, error) {
				return g.faker.Choice(ctx.Column.EnumValues), nil
			},
		},
		{
			name: "foreign_key",
			match: func(g *Generator, ctx *Context) bool {
				if ctx.Table == nil || ctx.ResolveFK == nil {
					return false
				}
				_, ok := ctx.Table.ForeignKeyFor(ctx.Column.Name)
				return ok
			},
			generate: func(g *Generator, ctx *Context) (any, error) {
				fk, _ := ctx.Table.ForeignKeyFor(ctx.Column.Name)
				return ctx.ResolveFK(fk)
			},
		},
		{
			name: "uuid",
			match: func(g *Generator, ctx *Context) bool {
				name := strings.ToLower(ctx.Column.Name)
				return ctx.Column.Kind == schema.KindUUID ||
					strings.Contains(name, "uuid") || strings.Contains(name, "guid")
			},
			generate: func(g *Generator, ctx *Context) (any, error) {
				return uuid.NewString(), nil
			},
		},
		{
			name:  "json",
			match: kindIs(schema.KindJSON),
			generate: func(g *Generator, ctx *Context) (any, error) {
				return g.jsonValue()
			},
		},
		{
			name:  "array",
			match: kindIs(schema.KindArray),
			generate: func(g *Generator, ctx *Context) (any, error) {
				return g.arrayValue(ctx.Column.Elem), nil
			},
		},
		{
			name:  "point",
			match: kindIs(schema.KindPoint),
			generate: func(g *Generator, ctx *Context) (any, error) {
				lat := g.rng.Float64()*180 - 90
				lon := g.rng.Float64()*360 - 180
				return fmt.Sprintf("POINT(%.6f %.6f)", lon, lat), nil
			},
		},
	}

	rules = append(rules, overlayRules()...)
	rules = append(rules, heuristicRules()...)
	rules = append(rules, fallbackRule())
	return rules
}

func kindIs(k schema.Kind) func(*Generator, *Context) bool {
	return func(g *Generator, ctx *Context) bool {
		return ctx.Column.Kind == k
	}
}

// overlayRules narrow generation for recognized table names. They sit before
// the generic heuristics but never replace the type fallback.
func overlayRules() []rule {
	orderStatuses := []string{"pending", "completed", "cancelled", "processing", "shipped"}

	tableIs := func(names ...string) func(ctx *Context) bool {
		return func(ctx *Context) bool {
			if ctx.Table == nil {
				return false
			}
			t := strings.ToLower(ctx.Table.Name)
			for _, n := range names {
				if t == n {
					return true
				}
			}
			return false
		}
	}

	isUsers := tableIs("users", "user")
	isOrders := tableIs("orders", "order")

	return []rule{
		{
			name: "users_name",
			match: func(g *Generator, ctx *Context) bool {
				name := strings.ToLower(ctx.Column.Name)
				return isUsers(ctx) && (strings.Contains(name, "name") || strings.Contains(name, "user"))
			},
			generate: func(g *Generator, ctx *Context) (any, error) {
				return g.faker.Name(), nil
			},
		},
		{
			name: "orders_amount",
			match: func(g *Generator, ctx *Context) bool {
				name := strings.ToLower(ctx.Column.Name)
				return isOrders(ctx) && (strings.Contains(name, "amount") ||
					strings.Contains(name, "total") || strings.Contains(name, "price"))
			},
			generate: func(g *Generator, ctx *Context) (any, error) {
				return g.faker.Decimal(100, 5000), nil
			},
		},
		{
			name: "orders_status",
			match: func(g *Generator, ctx *Context) bool {
				return isOrders(ctx) && strings.Contains(strings.ToLower(ctx.Column.Name), "status")
			},
			generate: func(g *Generator, ctx *Context) (any, error) {
				return g.faker.Choice(orderStatuses), nil
			},
		},
		{
			name: "orders_date",
			match: func(g *Generator, ctx *Context) bool {
				return isOrders(ctx) && strings.Contains(strings.ToLower(ctx.Column.Name), "date")
			},
			generate: func(g *Generator, ctx *Context) (any, error) {
				return g.faker.DateThisYear(), nil
			},
		},
	}
}

// heuristicRules match on column-name substrings, most specific first.
func heuristicRules() []rule {
	nameRule := func(name string, gen func(g *Generator, ctx *Context) (any, error), subs ...string) rule {
		return rule{
			name: name,
			match: func(g *Generator, ctx *Context) bool {
				col := strings.ToLower(ctx.Column.Name)
				for _, s := range subs {
					if strings.Contains(col, s) {
						return true
					}
				}
				return false
			},
			generate: gen,
		}
	}

	return []rule{
		nameRule("email", func(g *Generator, ctx *Context) (any, error) {
			return g.faker.Email(), nil
		}, "email"),
		nameRule("phone", func(g *Generator, ctx *Context) (any, error) {
			return g.faker.Phone(), nil
		}, "phone", "tel"),
		nameRule("timestamps", func(g *Generator, ctx *Context) (any, error) {
			return g.faker.DateTimeBetween(365 * 24 * time.Hour), nil
		}, "created_at", "updated_at"),
		nameRule("person_name", func(g *Generator, ctx *Context) (any, error) {
			return g.faker.Name(), nil
		}, "name", "user", "author"),
		nameRule("address", func(g *Generator, ctx *Context) (any, error) {
			return g.faker.Address(), nil
		}, "address"),
		nameRule("city", func(g *Generator, ctx *Context) (any, error) {
			return g.faker.City(), nil
		}, "city"),
		nameRule("country", func(g *Generator, ctx *Context) (any, error) {
			return g.faker.Country(), nil
		}, "country"),
		nameRule("company", func(g *Generator, ctx *Context) (any, error) {
			return g.faker.Company(), nil
		}, "company"),
		nameRule("money", func(g *Generator, ctx *Context) (any, error) {
			return g.faker.Decimal(100, 5000), nil
		}, "price", "amount", "total"),
		{
			name: "flag",
			match: func(g *Generator, ctx *Context) bool {
				return strings.HasPrefix(strings.ToLower(ctx.Column.Name), "is_")
			},
			generate: func(g *Generator, ctx *Context) (any, error) {
				return g.faker.Bool(), nil
			},
		},
		nameRule("status", func(g *Generator, ctx *Context) (any, error) {
			return g.faker.Choice([]string{"active", "inactive", "pending"}), nil
		}, "status"),
		nameRule("prose", func(g *Generator, ctx *Context) (any, error) {
			return g.faker.Paragraph(), nil
		}, "description", "bio"),
	}
}

// fallbackRule generates by declared column kind and matches every column.
func fallbackRule() rule {
	return rule{
		name: "type_fallback",
		match: func(g *Generator, ctx *Context) bool {
			return true
		},
		generate: func(g *Generator, ctx *Context) (any, error) {
			switch ctx.Column.Kind {
			case schema.KindInteger:
				return g.faker.RandomInt(1, 1000000), nil
			case schema.KindDecimal:
				return g.faker.Decimal(10, 1000), nil
			case schema.KindBoolean:
				return g.faker.Bool(), nil
			case schema.KindDateTime:
				return g.faker.DateTimeBetween(365 * 24 * time.Hour), nil
			case schema.KindDate:
				return g.faker.DateThisYear(), nil
			case schema.KindText:
				return g.faker.Text(50), nil
			default:
				return g.faker.Word(), nil
			}
		},
	}
}

// jsonValue builds one of {object, array, scalar}, the mode chosen
// uniformly, and returns it serialized.
func (g *Generator) jsonValue() (string, error) {
	var v any
	switch g.rng.Intn(3) {
	case 0: // object
		tags := make([]string, 1+g.rng.Intn(5))
		for i := range tags {
			tags[i] = g.faker.Word()
		}
		v = map[string]any{
			"id":     g.faker.RandomInt(1, 1000),
			"name":   g.faker.Word(),
			"value":  g.faker.RandomInt(1, 100),
			"active": g.faker.Bool(),
			"tags":   tags,
		}
	case 1: // array
		n := 1 + g.rng.Intn(5)
		items := make([]any, n)
		for i := range items {
			items[i] = map[string]any{
				"id":    i,
				"name":  g.faker.Word(),
				"value": g.faker.RandomInt(1, 100),
			}
		}
		v = items
	default: // scalar wrapper
		v = map[string]any{
			"data":  g.faker.Word(),
			"value": g.faker.RandomInt(1, 100000),
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal json value: %w", err)
	}
	return string(data), nil
}

// arrayValue builds a short slice whose elements match the declared element
// kind; unrecognized element kinds fall back to words.
func (g *Generator) arrayValue(elem schema.Kind) []any {
	n := 1 + g.rng.Intn(5)
	out := make([]any, n)
	for i := range out {
		switch elem {
		case schema.KindInteger:
			out[i] = g.faker.RandomInt(1, 100)
		case schema.KindBoolean:
			out[i] = g.faker.Bool()
		default:
			out[i] = g.faker.Word()
		}
	}
	return out
}
