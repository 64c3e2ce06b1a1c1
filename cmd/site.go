package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/dirpage/internal/render"
	"github.com/ziadkadry99/dirpage/internal/site"
)

var siteCmd = &cobra.Command{
	Use:   "site [key]...",
	Short: "Export directory pages as a static website",
	Long: `Renders each directory to {output}/{key}/index.html plus a homepage and a
directories.json manifest. Live search needs the server; the static pages
show every listing.`,
	RunE: runSite,
}

func init() {
	siteCmd.Flags().String("output", "site", "output directory")
	siteCmd.Flags().String("base-url", "", "public URL the site is served from")
	siteCmd.Flags().Bool("stored", false, "export every directory in the API database")
	siteCmd.Flags().Int("concurrency", 4, "max parallel renders")
	rootCmd.AddCommand(siteCmd)
}

func runSite(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	outputDir, _ := cmd.Flags().GetString("output")
	baseURL, _ := cmd.Flags().GetString("base-url")
	stored, _ := cmd.Flags().GetBool("stored")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	ctx := cmd.Context()

	keys, err := collectKeys(ctx, cfg, args, stored)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return fmt.Errorf("no directories to export: pass keys or --stored")
	}

	exporter := &site.Exporter{
		Loader:    buildLoader(cfg, nil, logger),
		OutputDir: outputDir,
		BaseURL:   baseURL,
		Homepage: render.HomepageContent{
			Title:       cfg.Site.HomepageTitle,
			Description: cfg.Site.HomepageDescription,
			Keywords:    cfg.Site.HomepageKeywords,
		},
		Concurrency: concurrency,
	}
	pages, err := exporter.Export(ctx, keys)
	if err != nil {
		return err
	}

	for _, p := range pages {
		fmt.Fprintf(os.Stderr, "  %-30s %s (%s, %d listings)\n", p.Key, p.Path, p.Source, p.Listings)
	}
	fmt.Fprintf(os.Stderr, "Exported %d directories to %s\n", len(pages), outputDir)
	return nil
}
