package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nigilism131313-png/dataforge/internal/datagen"
)

var localesCmd = &cobra.Command{
	Use:   "locales",
	Short: "List supported data locales",
	Run: func(cmd *cobra.Command, args []string) {
		for _, locale := range datagen.SupportedLocales {
			fmt.Println(locale)
		}
	},
}

func init() {
	rootCmd.AddCommand(localesCmd)
}
