// Package config loads and validates the project configuration file. The
// file is optional: every knob has a default and the CLI flags win over it.
package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/nigilism131313-png/dataforge/internal/datagen"
	"github.com/nigilism131313-png/dataforge/internal/engine"
	"github.com/nigilism131313-png/dataforge/internal/schema"
)

type Config struct {
	Database Database             `yaml:"database" mapstructure:"database"`
	Defaults Defaults             `yaml:"defaults" mapstructure:"defaults"`
	Tables   map[string]TableSpec `yaml:"tables,omitempty" mapstructure:"tables"`
}

type Database struct {
	Provider string `yaml:"provider" mapstructure:"provider"`
	// URL takes precedence over URLEnv when both are set.
	URL    string `yaml:"url,omitempty" mapstructure:"url"`
	URLEnv string `yaml:"url_env" mapstructure:"url_env"`
}

type Defaults struct {
	Count  int    `yaml:"count" mapstructure:"count"`
	Locale string `yaml:"locale" mapstructure:"locale"`
}

// TableSpec overrides the run defaults for one table. Count is a pointer so
// an explicit `count: 0` (skip this table) is distinguishable from unset.
type TableSpec struct {
	Count  *int   `yaml:"count,omitempty" mapstructure:"count"`
	Locale string `yaml:"locale,omitempty" mapstructure:"locale"`
	// CustomValues pins columns to explicit value sets, picked uniformly.
	CustomValues map[string][]any `yaml:"custom_values,omitempty" mapstructure:"custom_values"`
	// DependsOn is advisory: detected foreign keys always win, this only
	// exists so a config reader can state intent and get warned on drift.
	DependsOn []string `yaml:"depends_on,omitempty" mapstructure:"depends_on"`
}

type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Detail)
}

var supportedProviders = []string{"postgresql", "postgres", "mysql", "sqlite", "sqlite3"}

func intp(n int) *int {
	return &n
}

// Load unmarshals whatever viper has read (config file, env) and fills in
// defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// LoadFile reads a specific config file, bypassing viper's search path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Database.Provider == "" {
		c.Database.Provider = "postgresql"
	}
	if c.Database.URLEnv == "" {
		c.Database.URLEnv = "DATABASE_URL"
	}
	if c.Defaults.Count == 0 {
		c.Defaults.Count = 10
	}
	if c.Defaults.Locale == "" {
		c.Defaults.Locale = "en_US"
	}
}

func (c *Config) Validate() error {
	supported := false
	for _, provider := range supportedProviders {
		if c.Database.Provider == provider {
			supported = true
			break
		}
	}
	if !supported {
		return &ValidationError{
			Field:  "database.provider",
			Detail: fmt.Sprintf("unsupported provider %q, supported: %v", c.Database.Provider, supportedProviders),
		}
	}

	if c.Defaults.Count < 0 || c.Defaults.Count > engine.MaxRows {
		return &ValidationError{
			Field:  "defaults.count",
			Detail: fmt.Sprintf("must be between 0 and %d", engine.MaxRows),
		}
	}
	if !datagen.IsSupportedLocale(c.Defaults.Locale) {
		return &ValidationError{
			Field:  "defaults.locale",
			Detail: fmt.Sprintf("unsupported locale %q", c.Defaults.Locale),
		}
	}

	for name, table := range c.Tables {
		if table.Count != nil && (*table.Count < 0 || *table.Count > engine.MaxRows) {
			return &ValidationError{
				Field:  fmt.Sprintf("tables.%s.count", name),
				Detail: fmt.Sprintf("must be between 0 and %d", engine.MaxRows),
			}
		}
		if table.Locale != "" && !datagen.IsSupportedLocale(table.Locale) {
			return &ValidationError{
				Field:  fmt.Sprintf("tables.%s.locale", name),
				Detail: fmt.Sprintf("unsupported locale %q", table.Locale),
			}
		}
	}
	return nil
}

// GetDatabaseURL resolves the connection string, preferring the inline URL
// over the environment variable.
func (c *Config) GetDatabaseURL() (string, error) {
	if c.Database.URL != "" {
		return c.Database.URL, nil
	}
	dbURL := os.Getenv(c.Database.URLEnv)
	if dbURL == "" {
		return "", fmt.Errorf("database URL not found in environment variable %s", c.Database.URLEnv)
	}
	return dbURL, nil
}

// SpecFor builds the engine request for one table, layering the table's
// overrides over the run defaults.
func (c *Config) SpecFor(table string) engine.Spec {
	spec := engine.Spec{Count: c.Defaults.Count, Locale: c.Defaults.Locale}
	ts, ok := c.Tables[table]
	if !ok {
		return spec
	}
	if ts.Count != nil {
		spec.Count = *ts.Count
	}
	if ts.Locale != "" {
		spec.Locale = ts.Locale
	}
	if len(ts.CustomValues) > 0 {
		spec.Overrides = ts.CustomValues
	}
	return spec
}

// CheckDependsOn compares declared depends_on lists against the foreign
// keys actually found in the schema and returns one warning per mismatch.
// Declarations never change seeding order.
func (c *Config) CheckDependsOn(g *schema.Graph) []string {
	var warnings []string
	names := make([]string, 0, len(c.Tables))
	for name := range c.Tables {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		declared := c.Tables[name].DependsOn
		if len(declared) == 0 {
			continue
		}
		if _, ok := g.Table(name); !ok {
			warnings = append(warnings, fmt.Sprintf("table %q in config not found in database", name))
			continue
		}
		actual := make(map[string]bool)
		for _, dep := range g.DependenciesOf(name) {
			actual[dep] = true
		}
		for _, dep := range declared {
			if !actual[dep] {
				warnings = append(warnings, fmt.Sprintf("table %q declares dependency on %q but no foreign key was detected", name, dep))
			}
		}
	}
	return warnings
}

// WriteExample writes a starter config file. It refuses to overwrite.
func WriteExample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}

	example := Config{
		Database: Database{Provider: "postgresql", URLEnv: "DATABASE_URL"},
		Defaults: Defaults{Count: 10, Locale: "en_US"},
		Tables: map[string]TableSpec{
			"users": {Count: intp(50)},
			"orders": {
				Count: intp(200),
				CustomValues: map[string][]any{
					"status": {"pending", "shipped", "delivered"},
				},
			},
		},
	}
	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to encode example config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
