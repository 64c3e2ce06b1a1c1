package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/dirpage/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize dirpage configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure dirpage and generates a .dirpage.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
