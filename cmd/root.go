package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	Version = "1.0.0"
)

func showBanner() {
	c := color.New(color.FgCyan, color.Bold)
	c.Println("  ____        _        _____                    ")
	c.Println(" |  _ \\  __ _| |_ __ _|  ___|__  _ __ __ _  ___ ")
	c.Println(" | | | |/ _` | __/ _` | |_ / _ \\| '__/ _` |/ _ \\")
	c.Println(" | |_| | (_| | || (_| |  _| (_) | | | (_| |  __/")
	c.Println(" |____/ \\__,_|\\__\\__,_|_|  \\___/|_|  \\__, |\\___|")
	c.Println("                                     |___/      ")
	fmt.Print("        ")
	color.New(color.FgWhite).Print("Dependency-aware database seeding  ")
	color.New(color.FgYellow, color.Bold).Printf("v%s\n", Version)
}

var rootCmd = &cobra.Command{
	Use:   "dataforge",
	Short: "Seed relational databases with realistic fake data",
	Long: `
DataForge introspects your database schema, orders tables by their foreign
key dependencies and fills them with realistic fake data. Generated child
rows always reference real parent rows.

Database support:
- PostgreSQL
- MySQL
- SQLite`,

	Run: func(cmd *cobra.Command, args []string) {
		showVersion, _ := cmd.Flags().GetBool("version")
		if showVersion {
			fmt.Printf("DataForge CLI version %s\n", Version)
			return
		}
		showBanner()
		fmt.Println()
		cmd.Help()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./dataforge.yml)")
	rootCmd.PersistentFlags().String("url", "", "database connection URL (overrides config)")
	rootCmd.PersistentFlags().String("provider", "", "database provider: postgresql, mysql or sqlite (overrides config)")

	rootCmd.Flags().BoolP("version", "v", false, "Show CLI version")
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		godotenv.Load(".env")
		godotenv.Load(".env.local")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("dataforge")
	}

	viper.AutomaticEnv()
	viper.ReadInConfig()
}
