package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nigilism131313-png/dataforge/internal/config"
	"github.com/nigilism131313-png/dataforge/internal/database"
	"github.com/nigilism131313-png/dataforge/internal/engine"
)

// session bundles what every command needs: config, a live connection and
// the engine built from the introspected schema.
type session struct {
	cfg    *config.Config
	db     database.Adapter
	engine *engine.Engine
}

func (s *session) Close() {
	s.db.Close()
}

// openSession loads the config, applies flag overrides, connects and
// introspects. Callers must Close it.
func openSession(ctx context.Context, cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if provider, _ := cmd.Flags().GetString("provider"); provider != "" {
		cfg.Database.Provider = provider
	}
	if url, _ := cmd.Flags().GetString("url"); url != "" {
		cfg.Database.URL = url
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dbURL, err := cfg.GetDatabaseURL()
	if err != nil {
		return nil, err
	}

	db := database.New(cfg.Database.Provider)
	if err := db.Connect(ctx, dbURL); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	graph, err := database.LoadSchema(ctx, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}

	return &session{
		cfg:    cfg,
		db:     db,
		engine: engine.New(db, graph),
	}, nil
}
