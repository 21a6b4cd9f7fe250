package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nigilism131313-png/dataforge/internal/config"
	"github.com/nigilism131313-png/dataforge/template"
)

var initTemplate string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter dataforge.yml in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		const path = "dataforge.yml"

		if initTemplate != "" {
			data, err := template.Read(initTemplate)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config file %s already exists", path)
			}
			if err := os.WriteFile(path, data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			color.Green("✓ Created %s from template %s", path, initTemplate)
			return nil
		}

		if err := config.WriteExample(path); err != nil {
			return err
		}
		color.Green("✓ Created %s", path)
		fmt.Println("Edit it to match your schema, then run: dataforge seed-all")
		return nil
	},
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List available config templates",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range template.Names() {
			fmt.Println(name)
		}
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(templatesCmd)
	initCmd.Flags().StringVarP(&initTemplate, "template", "t", "", "Start from a named template (see: dataforge templates)")
}
