package datagen

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/nigilism131313-png/dataforge/internal/schema"
)

func newGenerator(t *testing.T) *Generator {
	t.Helper()
	g, err := New("en_US", rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func TestNewRejectsUnknownLocale(t *testing.T) {
	_, err := New("xx_XX", nil)
	var lerr *UnsupportedLocaleError
	if !errors.As(err, &lerr) {
		t.Fatalf("expected *UnsupportedLocaleError, got %v", err)
	}
	if lerr.Locale != "xx_XX" {
		t.Errorf("Locale = %q", lerr.Locale)
	}
}

func TestOverrideBeatsEverything(t *testing.T) {
	g := newGenerator(t)
	// Enum column with a custom override: the override must win.
	ctx := &Context{
		Column: schema.Column{
			Name: "role", Kind: schema.KindEnum,
			EnumValues: []string{"admin", "user", "moderator"},
		},
		Overrides: map[string][]any{"role": {"root", "guest"}},
	}

	if name := g.RuleName(ctx); name != "override" {
		t.Fatalf("RuleName = %q, want override", name)
	}
	for i := 0; i < 50; i++ {
		v, err := g.ValueFor(ctx)
		if err != nil {
			t.Fatalf("ValueFor: %v", err)
		}
		if v != "root" && v != "guest" {
			t.Fatalf("override produced %v, want element of override set", v)
		}
	}
}

func TestOverrideNullMarker(t *testing.T) {
	g := newGenerator(t)
	ctx := &Context{
		Column:    schema.Column{Name: "note", Kind: schema.KindText, Nullable: true},
		Overrides: map[string][]any{"note": {nil}},
	}

	v, err := g.ValueFor(ctx)
	if err != nil {
		t.Fatalf("ValueFor: %v", err)
	}
	if v != nil {
		t.Errorf("null marker produced %v, want nil", v)
	}
}

func TestEnumRestrictedToDeclaredValues(t *testing.T) {
	g := newGenerator(t)
	ctx := &Context{
		Column: schema.Column{
			Name: "role", Kind: schema.KindEnum,
			EnumValues: []string{"admin", "user", "moderator"},
		},
	}

	for i := 0; i < 20; i++ {
		v, err := g.ValueFor(ctx)
		if err != nil {
			t.Fatalf("ValueFor: %v", err)
		}
		s, ok := v.(string)
		if !ok || (s != "admin" && s != "user" && s != "moderator") {
			t.Fatalf("enum produced %v, want declared value", v)
		}
	}
}

func TestForeignKeyDelegation(t *testing.T) {
	g := newGenerator(t)
	table := &schema.Table{
		Name:        "orders",
		Columns:     []schema.Column{{Name: "user_id", Kind: schema.KindInteger}},
		ForeignKeys: []schema.ForeignKey{{Column: "user_id", RefTable: "users", RefColumn: "id"}},
	}
	ctx := &Context{
		Table:  table,
		Column: table.Columns[0],
		ResolveFK: func(fk schema.ForeignKey) (any, error) {
			if fk.RefTable != "users" {
				return nil, fmt.Errorf("unexpected fk %+v", fk)
			}
			return 42, nil
		},
	}

	if name := g.RuleName(ctx); name != "foreign_key" {
		t.Fatalf("RuleName = %q, want foreign_key", name)
	}
	v, err := g.ValueFor(ctx)
	if err != nil {
		t.Fatalf("ValueFor: %v", err)
	}
	if v != 42 {
		t.Errorf("fk value = %v, want 42", v)
	}

	// Without a resolver the FK column falls through to type rules.
	ctx.ResolveFK = nil
	if name := g.RuleName(ctx); name == "foreign_key" {
		t.Error("foreign_key rule matched without a resolver")
	}
}

func TestUUIDRule(t *testing.T) {
	g := newGenerator(t)
	pattern := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

	for _, col := range []schema.Column{
		{Name: "id", Kind: schema.KindUUID},
		{Name: "session_guid", Kind: schema.KindText},
	} {
		v, err := g.ValueFor(&Context{Column: col})
		if err != nil {
			t.Fatalf("ValueFor(%s): %v", col.Name, err)
		}
		if !pattern.MatchString(v.(string)) {
			t.Errorf("column %s produced %v, want RFC-4122 v4 uuid", col.Name, v)
		}
	}
}

func TestJSONRuleProducesValidJSON(t *testing.T) {
	g := newGenerator(t)
	ctx := &Context{Column: schema.Column{Name: "payload", Kind: schema.KindJSON}}

	for i := 0; i < 20; i++ {
		v, err := g.ValueFor(ctx)
		if err != nil {
			t.Fatalf("ValueFor: %v", err)
		}
		var decoded any
		if err := json.Unmarshal([]byte(v.(string)), &decoded); err != nil {
			t.Fatalf("invalid json %q: %v", v, err)
		}
	}
}

func TestArrayRuleMatchesElementType(t *testing.T) {
	g := newGenerator(t)

	v, err := g.ValueFor(&Context{Column: schema.Column{
		Name: "scores", Kind: schema.KindArray, Elem: schema.KindInteger,
	}})
	if err != nil {
		t.Fatalf("ValueFor: %v", err)
	}
	arr := v.([]any)
	if len(arr) == 0 || len(arr) > 5 {
		t.Fatalf("array length %d out of range", len(arr))
	}
	for _, el := range arr {
		if _, ok := el.(int); !ok {
			t.Errorf("integer array element %v has type %T", el, el)
		}
	}
}

func TestPointRuleWithinValidRanges(t *testing.T) {
	g := newGenerator(t)
	pattern := regexp.MustCompile(`^POINT\((-?\d+\.\d{6}) (-?\d+\.\d{6})\)$`)
	ctx := &Context{Column: schema.Column{Name: "location", Kind: schema.KindPoint}}

	for i := 0; i < 50; i++ {
		v, err := g.ValueFor(ctx)
		if err != nil {
			t.Fatalf("ValueFor: %v", err)
		}
		m := pattern.FindStringSubmatch(v.(string))
		if m == nil {
			t.Fatalf("point value %q not in POINT(lon lat) form", v)
		}
		lon, _ := strconv.ParseFloat(m[1], 64)
		lat, _ := strconv.ParseFloat(m[2], 64)
		if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
			t.Errorf("coordinates out of range: lon=%v lat=%v", lon, lat)
		}
	}
}

func TestOrdersOverlay(t *testing.T) {
	g := newGenerator(t)
	orders := &schema.Table{Name: "orders"}

	ctx := &Context{Table: orders, Column: schema.Column{Name: "total_amount", Kind: schema.KindDecimal}}
	if name := g.RuleName(ctx); name != "orders_amount" {
		t.Fatalf("RuleName = %q, want orders_amount", name)
	}
	for i := 0; i < 30; i++ {
		v, err := g.ValueFor(ctx)
		if err != nil {
			t.Fatalf("ValueFor: %v", err)
		}
		amount := v.(float64)
		if amount < 100 || amount >= 5000 {
			t.Errorf("order amount %v outside [100, 5000)", amount)
		}
	}

	statusCtx := &Context{Table: orders, Column: schema.Column{Name: "status", Kind: schema.KindText}}
	v, err := g.ValueFor(statusCtx)
	if err != nil {
		t.Fatalf("ValueFor: %v", err)
	}
	switch v {
	case "pending", "completed", "cancelled", "processing", "shipped":
	default:
		t.Errorf("order status %v not in the order vocabulary", v)
	}
}

func TestNameHeuristics(t *testing.T) {
	g := newGenerator(t)
	products := &schema.Table{Name: "products"}

	cases := []struct {
		column string
		kind   schema.Kind
		rule   string
	}{
		{"email", schema.KindText, "email"},
		{"contact_phone", schema.KindText, "phone"},
		{"created_at", schema.KindDateTime, "timestamps"},
		{"author", schema.KindText, "person_name"},
		{"billing_address", schema.KindText, "address"},
		{"city", schema.KindText, "city"},
		{"country", schema.KindText, "country"},
		{"company", schema.KindText, "company"},
		{"unit_price", schema.KindDecimal, "money"},
		{"is_active", schema.KindBoolean, "flag"},
		{"status", schema.KindText, "status"},
		{"description", schema.KindText, "prose"},
		{"sku", schema.KindText, "type_fallback"},
	}
	for _, tc := range cases {
		ctx := &Context{Table: products, Column: schema.Column{Name: tc.column, Kind: tc.kind}}
		if got := g.RuleName(ctx); got != tc.rule {
			t.Errorf("RuleName(%s) = %q, want %q", tc.column, got, tc.rule)
		}
	}
}

func TestNullableColumnsNeverForcedNull(t *testing.T) {
	g := newGenerator(t)
	ctx := &Context{Column: schema.Column{Name: "nickname", Kind: schema.KindText, Nullable: true}}

	for i := 0; i < 100; i++ {
		v, err := g.ValueFor(ctx)
		if err != nil {
			t.Fatalf("ValueFor: %v", err)
		}
		if v == nil {
			t.Fatal("nullable column generated nil without an override null marker")
		}
	}
}

func TestFallbackByKind(t *testing.T) {
	g := newGenerator(t)

	cases := []struct {
		kind  schema.Kind
		check func(v any) bool
	}{
		{schema.KindInteger, func(v any) bool { n, ok := v.(int); return ok && n >= 1 && n <= 1000000 }},
		{schema.KindDecimal, func(v any) bool { f, ok := v.(float64); return ok && f >= 10 && f < 1000 }},
		{schema.KindBoolean, func(v any) bool { _, ok := v.(bool); return ok }},
		{schema.KindText, func(v any) bool { s, ok := v.(string); return ok && len(s) > 0 && len(s) <= 50 }},
	}
	for _, tc := range cases {
		v, err := g.ValueFor(&Context{Column: schema.Column{Name: "xyzzy", Kind: tc.kind}})
		if err != nil {
			t.Fatalf("ValueFor(%v): %v", tc.kind, err)
		}
		if !tc.check(v) {
			t.Errorf("fallback for %v produced %v (%T)", tc.kind, v, v)
		}
	}
}

func TestFakerLocaleData(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, locale := range SupportedLocales {
		f, err := NewFaker(locale, rng)
		if err != nil {
			t.Fatalf("NewFaker(%s): %v", locale, err)
		}
		if f.Name() == "" || f.City() == "" || f.Company() == "" {
			t.Errorf("locale %s produced empty values", locale)
		}
		if !strings.Contains(f.Email(), "@") {
			t.Errorf("locale %s produced malformed email", locale)
		}
	}
}

func TestFakerTextValidUTF8AllLocales(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for _, locale := range SupportedLocales {
		f, err := NewFaker(locale, rng)
		if err != nil {
			t.Fatalf("NewFaker(%s): %v", locale, err)
		}
		for i := 0; i < 50; i++ {
			for kind, s := range map[string]string{
				"sentence":  f.Sentence(),
				"paragraph": f.Paragraph(),
				"text":      f.Text(40),
			} {
				if !utf8.ValidString(s) {
					t.Fatalf("locale %s: %s produced invalid UTF-8: %q", locale, kind, s)
				}
			}
		}
	}
}

func TestFakerSentenceCapitalizesFirstRune(t *testing.T) {
	for _, locale := range []string{"en_US", "ru_RU", "uk_UA"} {
		f, err := NewFaker(locale, rand.New(rand.NewSource(5)))
		if err != nil {
			t.Fatalf("NewFaker(%s): %v", locale, err)
		}
		s := f.Sentence()
		r, _ := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError {
			t.Fatalf("locale %s: sentence starts with invalid rune: %q", locale, s)
		}
		if unicode.IsLetter(r) && !unicode.IsUpper(r) {
			t.Errorf("locale %s: first rune %q not capitalized in %q", locale, r, s)
		}
	}
}

func TestFakerEmailUniqueSequence(t *testing.T) {
	f, err := NewFaker("en_US", rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("NewFaker: %v", err)
	}
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		e := f.Email()
		if seen[e] {
			t.Fatalf("duplicate email %q", e)
		}
		seen[e] = true
	}
}
