// Package mcpserver exposes the seeding engine over the Model Context
// Protocol. One Session wraps one database connection and one schema
// snapshot; the snapshot is taken at connect time and reused by every tool
// call until the server exits.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"github.com/nigilism131313-png/dataforge/internal/database"
	"github.com/nigilism131313-png/dataforge/internal/engine"
	"github.com/nigilism131313-png/dataforge/internal/schema"
)

const serverVersion = "1.0.0"

type Session struct {
	db     database.Adapter
	graph  *schema.Graph
	engine *engine.Engine
}

// NewSession connects the adapter and introspects the schema.
func NewSession(ctx context.Context, db database.Adapter, url string) (*Session, error) {
	if err := db.Connect(ctx, url); err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	graph, err := database.LoadSchema(ctx, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	return &Session{
		db:     db,
		graph:  graph,
		engine: engine.New(db, graph),
	}, nil
}

func (s *Session) Close() error {
	return s.db.Close()
}

// Serve registers the seeding tools and blocks on the stdio transport.
func (s *Session) Serve() error {
	srv := server.NewMCPServer(
		"dataforge",
		serverVersion,
		server.WithToolCapabilities(false),
		server.WithLogging(),
	)
	registerTools(srv, s)
	return server.ServeStdio(srv)
}
