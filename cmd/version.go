package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version and Commit are set via ldflags at build time.
var (
	Version = "dev"
	Commit  = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the dirpage build version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), versionString())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func versionString() string {
	v := "dirpage " + Version
	if Commit != "" {
		v += " (" + Commit + ")"
	}
	return fmt.Sprintf("%s %s %s/%s", v, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
