package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	envFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "dirpage",
	Short: "Server-rendered local business directory pages",
	Long: `dirpage serves directory listing pages. Each request is resolved to a
directory key from its path or subdomain, the directory is loaded from the
directory API (falling back to sample data when the API misbehaves), and the
page is rendered with live search over its listings.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnvFile(envFile)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".dirpage.yml", "config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadEnvFile loads path into the environment when it exists. Variables
// already set win over the file.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}
