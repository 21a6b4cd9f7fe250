package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nigilism131313-png/dataforge/internal/engine"
)

var (
	seedAllCount  int
	seedAllLocale string
)

var seedAllCmd = &cobra.Command{
	Use:   "seed-all",
	Short: "Seed every table in dependency order",
	Long: `Seed all tables with the same row count, parents before children. The
run stops at the first failure; tables seeded before it keep their rows.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		spec := engine.Spec{Count: seedAllCount, Locale: seedAllLocale}
		if !cmd.Flags().Changed("count") {
			spec.Count = s.cfg.Defaults.Count
		}
		if !cmd.Flags().Changed("locale") {
			spec.Locale = s.cfg.Defaults.Locale
		}

		order, err := s.engine.TableOrder()
		if err != nil {
			return err
		}
		fmt.Printf("🌱 Seeding %d tables, %d rows each (%s)\n\n", len(order), spec.Count, spec.Locale)

		results, err := s.engine.SeedAll(cmd.Context(), spec, nil)
		for _, r := range results {
			if r.Err != nil {
				color.Red("  ✗ %-24s %v", r.Table, r.Err)
			} else {
				color.Green("  ✓ %-24s %d rows", r.Table, r.Rows)
			}
		}
		if err != nil {
			fmt.Println()
			return fmt.Errorf("seeding stopped: %w", err)
		}

		fmt.Println()
		color.Green("✓ All tables seeded")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedAllCmd)
	seedAllCmd.Flags().IntVarP(&seedAllCount, "count", "c", 10, "Number of rows per table")
	seedAllCmd.Flags().StringVarP(&seedAllLocale, "locale", "l", "en_US", "Locale for generated text")
}
