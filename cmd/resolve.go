package cmd

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/dirpage/internal/resolver"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <url>...",
	Short: "Show which directory key each URL resolves to",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		res, err := resolver.New(cfg.Resolver)
		if err != nil {
			return err
		}

		for _, raw := range args {
			u, err := url.Parse(raw)
			if err != nil {
				return fmt.Errorf("parsing %q: %w", raw, err)
			}
			key, ok := res.Resolve(resolver.Navigation{Host: u.Host, Path: u.Path})
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t(root: %s)\n", raw, cfg.Site.RootPolicy)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", raw, key)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
