package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nigilism131313-png/dataforge/internal/engine"
)

type handlerFunc = func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

type tableSummary struct {
	Name        string          `json:"name"`
	Columns     []columnSummary `json:"columns"`
	PrimaryKey  []string        `json:"primary_key,omitempty"`
	ForeignKeys []fkSummary     `json:"foreign_keys,omitempty"`
	RowCount    int64           `json:"row_count"`
}

type columnSummary struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Nullable   bool     `json:"nullable"`
	EnumValues []string `json:"enum_values,omitempty"`
}

type fkSummary struct {
	Column     string `json:"column"`
	References string `json:"references"`
}

func schemaSummaryHandler(s *Session) handlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var summaries []tableSummary
		for _, name := range s.graph.TableNames() {
			t, _ := s.graph.Table(name)

			count, err := s.db.CountRows(ctx, name)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to count rows of %s: %v", name, err)), nil
			}

			summary := tableSummary{Name: name, PrimaryKey: t.PrimaryKey, RowCount: count}
			for _, col := range t.Columns {
				summary.Columns = append(summary.Columns, columnSummary{
					Name:       col.Name,
					Type:       col.Type,
					Nullable:   col.Nullable,
					EnumValues: col.EnumValues,
				})
			}
			for _, fk := range t.ForeignKeys {
				summary.ForeignKeys = append(summary.ForeignKeys, fkSummary{
					Column:     fk.Column,
					References: fmt.Sprintf("%s.%s", fk.RefTable, fk.RefColumn),
				})
			}
			summaries = append(summaries, summary)
		}
		return jsonResult(summaries)
	}
}

func tableOrderHandler(s *Session) handlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		order, err := s.engine.TableOrder()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to resolve table order: %v", err)), nil
		}
		return jsonResult(map[string]any{"order": order})
	}
}

func dependencyTreeHandler(s *Session) handlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		levels, err := s.engine.DependencyTree()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to resolve dependency tree: %v", err)), nil
		}

		depths := make([]int, 0, len(levels))
		for depth := range levels {
			depths = append(depths, depth)
		}
		sort.Ints(depths)

		type level struct {
			Level  int      `json:"level"`
			Tables []string `json:"tables"`
		}
		tree := make([]level, 0, len(depths))
		for _, depth := range depths {
			tree = append(tree, level{Level: depth, Tables: levels[depth]})
		}
		return jsonResult(tree)
	}
}

func seedTableHandler(s *Session) handlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		table, err := request.RequireString("table")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Missing table parameter: %v", err)), nil
		}

		spec := engine.Spec{
			Count:  request.GetInt("count", 10),
			Locale: request.GetString("locale", "en_US"),
		}
		if raw := request.GetString("custom_values", ""); raw != "" {
			if err := json.Unmarshal([]byte(raw), &spec.Overrides); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Invalid custom_values JSON: %v", err)), nil
			}
		}

		result, err := s.engine.SeedTable(ctx, table, spec)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Seeding %s failed: %v", table, err)), nil
		}
		return jsonResult(map[string]any{
			"table":         result.Table,
			"rows_inserted": result.Rows,
			"state":         result.State.String(),
		})
	}
}

func seedAllHandler(s *Session) handlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		spec := engine.Spec{
			Count:  request.GetInt("count", 10),
			Locale: request.GetString("locale", "en_US"),
		}
		var overrides map[string]map[string][]any
		if raw := request.GetString("custom_values", ""); raw != "" {
			if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Invalid custom_values JSON: %v", err)), nil
			}
		}

		results, err := s.engine.SeedAll(ctx, spec, overrides)

		type tableResult struct {
			Table string `json:"table"`
			Rows  int64  `json:"rows_inserted"`
			State string `json:"state"`
			Error string `json:"error,omitempty"`
		}
		report := make([]tableResult, 0, len(results))
		for _, r := range results {
			tr := tableResult{Table: r.Table, Rows: r.Rows, State: r.State.String()}
			if r.Err != nil {
				tr.Error = r.Err.Error()
			}
			report = append(report, tr)
		}

		if err != nil {
			// Partial progress is still worth reporting; completed tables
			// keep their rows.
			data, merr := json.MarshalIndent(report, "", "  ")
			if merr != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Seeding failed: %v", err)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("Seeding stopped: %v\nCompleted so far:\n%s", err, data)), nil
		}
		return jsonResult(report)
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
