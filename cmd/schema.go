package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Show the introspected database schema",
	Long:  `Connect to the database and print every table with its columns, primary key, foreign keys and current row count.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx, cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		g := s.engine.Graph()
		bold := color.New(color.Bold)
		dim := color.New(color.FgHiBlack)

		for _, name := range g.TableNames() {
			t, _ := g.Table(name)
			count, err := s.db.CountRows(ctx, name)
			if err != nil {
				return fmt.Errorf("failed to count rows of %s: %w", name, err)
			}

			bold.Printf("%s", name)
			dim.Printf("  (%d rows)\n", count)

			for _, col := range t.Columns {
				marker := " "
				for _, pk := range t.PrimaryKey {
					if pk == col.Name {
						marker = "*"
					}
				}
				nullable := ""
				if col.Nullable {
					nullable = " null"
				}
				extra := ""
				if len(col.EnumValues) > 0 {
					extra = fmt.Sprintf(" [%s]", strings.Join(col.EnumValues, ", "))
				}
				fmt.Printf("  %s %-24s %s%s%s\n", marker, col.Name, col.Type, nullable, extra)
			}
			for _, fk := range t.ForeignKeys {
				color.Yellow("    %s -> %s.%s", fk.Column, fk.RefTable, fk.RefColumn)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
