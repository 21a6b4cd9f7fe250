package database

import (
	"github.com/nigilism131313-png/dataforge/internal/database/mysql"
	"github.com/nigilism131313-png/dataforge/internal/database/postgres"
	"github.com/nigilism131313-png/dataforge/internal/database/sqlite"
)

// New returns the adapter for the provider name. Unknown providers default
// to Postgres, matching the config layer's default.
func New(provider string) Adapter {
	switch provider {
	case "mysql":
		return mysql.New()
	case "sqlite", "sqlite3":
		return sqlite.New()
	default:
		return postgres.New()
	}
}
