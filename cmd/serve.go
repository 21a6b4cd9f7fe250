package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nigilism131313-png/dataforge/internal/config"
	"github.com/nigilism131313-png/dataforge/internal/database"
	"github.com/nigilism131313-png/dataforge/internal/mcpserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as an MCP server over stdio",
	Long: `Expose the seeding engine as Model Context Protocol tools so an AI
assistant can inspect the schema and seed tables. Logs go to stderr; stdout
carries the protocol.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// stdout belongs to the protocol.
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if provider, _ := cmd.Flags().GetString("provider"); provider != "" {
			cfg.Database.Provider = provider
		}
		if url, _ := cmd.Flags().GetString("url"); url != "" {
			cfg.Database.URL = url
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		dbURL, err := cfg.GetDatabaseURL()
		if err != nil {
			return err
		}

		session, err := mcpserver.NewSession(cmd.Context(), database.New(cfg.Database.Provider), dbURL)
		if err != nil {
			return err
		}
		defer session.Close()

		logger.Info("mcp server ready", "provider", cfg.Database.Provider)
		return session.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
