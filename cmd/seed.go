package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	seedCount  int
	seedLocale string
)

var seedCmd = &cobra.Command{
	Use:   "seed <table>",
	Short: "Seed one table with fake data",
	Long: `Generate and insert fake rows into a single table. Foreign key columns
are filled with keys sampled from the parent tables, so parents must hold
rows before their children are seeded.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table := args[0]

		s, err := openSession(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		spec := s.cfg.SpecFor(table)
		if cmd.Flags().Changed("count") {
			spec.Count = seedCount
		}
		if cmd.Flags().Changed("locale") {
			spec.Locale = seedLocale
		}

		fmt.Printf("🌱 Seeding %s with %d rows (%s)\n", table, spec.Count, spec.Locale)
		result, err := s.engine.SeedTable(cmd.Context(), table, spec)
		if err != nil {
			color.Red("✗ %v", err)
			return err
		}

		color.Green("✓ Inserted %d rows into %s", result.Rows, result.Table)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().IntVarP(&seedCount, "count", "c", 10, "Number of rows to insert")
	seedCmd.Flags().StringVarP(&seedLocale, "locale", "l", "en_US", "Locale for generated text")
}
