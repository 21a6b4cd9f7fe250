package cmd

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nigilism131313-png/dataforge/internal/topology"
)

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Show the safe seeding order",
	Long:  `Print the topological order in which tables can be seeded so that every foreign key finds its parent rows already in place.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		order, err := s.engine.TableOrder()
		if err != nil {
			var cycleErr *topology.CycleError
			if errors.As(err, &cycleErr) {
				color.Red("✗ %v", cycleErr)
				color.Yellow("Tables involved: %v", cycleErr.Tables)
				return fmt.Errorf("cannot seed a schema with circular dependencies")
			}
			return err
		}

		for i, table := range order {
			fmt.Printf("%2d. %s\n", i+1, table)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(orderCmd)
}
