package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Seed every table using the per-table settings from the config file",
	Long: `Run a full seeding pass driven by the config file: tables are visited in
dependency order and each one uses its configured count, locale and custom
values, falling back to the run defaults.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx, cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if warnings := s.cfg.CheckDependsOn(s.engine.Graph()); len(warnings) > 0 {
			for _, w := range warnings {
				color.Yellow("⚠ %s", w)
			}
			fmt.Println()
		}

		order, err := s.engine.TableOrder()
		if err != nil {
			return err
		}

		fmt.Printf("🌱 Applying config to %d tables\n\n", len(order))
		for _, table := range order {
			spec := s.cfg.SpecFor(table)
			result, err := s.engine.SeedTable(ctx, table, spec)
			if err != nil {
				color.Red("  ✗ %-24s %v", table, err)
				return fmt.Errorf("seeding stopped at %s: %w", table, err)
			}
			color.Green("  ✓ %-24s %d rows", result.Table, result.Rows)
		}

		fmt.Println()
		color.Green("✓ All tables seeded")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)
}
