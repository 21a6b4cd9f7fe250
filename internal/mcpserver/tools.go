package mcpserver

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nigilism131313-png/dataforge/internal/datagen"
	"github.com/nigilism131313-png/dataforge/internal/engine"
)

func registerTools(srv *server.MCPServer, s *Session) {
	schemaTool := mcp.NewTool("get_schema_summary",
		mcp.WithDescription("Summarize every table in the connected database: columns, primary key, foreign keys and current row count"),
	)

	orderTool := mcp.NewTool("get_table_order",
		mcp.WithDescription("Return the safe seeding order, parent tables before their children"),
	)

	treeTool := mcp.NewTool("get_dependency_tree",
		mcp.WithDescription("Group tables by dependency level: level 0 has no foreign keys, each next level depends only on earlier ones"),
	)

	seedTool := mcp.NewTool("seed_table",
		mcp.WithDescription(fmt.Sprintf("Generate and insert fake rows into one table, resolving foreign keys against existing parent rows. Count is capped at %d.", engine.MaxRows)),
		mcp.WithString("table",
			mcp.Required(),
			mcp.Description("Name of the table to seed"),
		),
		mcp.WithNumber("count",
			mcp.Description("Number of rows to insert (default: 10)"),
		),
		mcp.WithString("locale",
			mcp.Description(fmt.Sprintf("Locale for generated text, one of: %s (default: en_US)", strings.Join(datagen.SupportedLocales, ", "))),
		),
		mcp.WithString("custom_values",
			mcp.Description(`JSON object pinning columns to literal value sets, e.g. {"status": ["active", "banned"]}; values are picked uniformly and beat all heuristics`),
		),
	)

	seedAllTool := mcp.NewTool("seed_all_tables",
		mcp.WithDescription("Seed every table in dependency order with the same row count. Stops at the first failure and reports what completed."),
		mcp.WithNumber("count",
			mcp.Description("Number of rows per table (default: 10)"),
		),
		mcp.WithString("locale",
			mcp.Description("Locale for generated text (default: en_US)"),
		),
		mcp.WithString("custom_values",
			mcp.Description(`JSON object keyed by table name, each value pinning that table's columns to literal sets, e.g. {"orders": {"status": ["pending"]}}`),
		),
	)

	srv.AddTool(schemaTool, schemaSummaryHandler(s))
	srv.AddTool(orderTool, tableOrderHandler(s))
	srv.AddTool(treeTool, dependencyTreeHandler(s))
	srv.AddTool(seedTool, seedTableHandler(s))
	srv.AddTool(seedAllTool, seedAllHandler(s))
}
