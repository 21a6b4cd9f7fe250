package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nigilism131313-png/dataforge/internal/topology"
)

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Show the table dependency tree",
	Long:  `Group tables by dependency level. Level 0 tables have no foreign keys; each next level only references tables from earlier levels.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		levels, err := s.engine.DependencyTree()
		if err != nil {
			return err
		}

		depths := make([]int, 0, len(levels))
		for depth := range levels {
			depths = append(depths, depth)
		}
		sort.Ints(depths)

		for _, depth := range depths {
			color.New(color.Bold).Printf("Level %d:\n", depth)
			for _, table := range levels[depth] {
				fmt.Printf("  %s\n", table)
			}
		}

		view, err := topology.Visualize(s.engine.Graph())
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(strings.TrimRight(view, "\n"))

		if warnings := s.cfg.CheckDependsOn(s.engine.Graph()); len(warnings) > 0 {
			fmt.Println()
			for _, w := range warnings {
				color.Yellow("⚠ %s", w)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(depsCmd)
}
