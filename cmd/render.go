package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/dirpage/internal/render"
	"github.com/ziadkadry99/dirpage/internal/search"
	"github.com/ziadkadry99/dirpage/internal/view"
)

var renderCmd = &cobra.Command{
	Use:   "render <key>",
	Short: "Render one directory page to a file or stdout",
	Long: `Loads a directory through the configured API (with mock fallback) and writes
the finished HTML page. Useful for previews and static snapshots.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	renderCmd.Flags().StringP("query", "q", "", "search term applied before writing")
	renderCmd.Flags().String("url", "", "canonical page URL (default https://<key>.example/)")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	output, _ := cmd.Flags().GetString("output")
	query, _ := cmd.Flags().GetString("query")
	pageURL, _ := cmd.Flags().GetString("url")
	key := args[0]
	if pageURL == "" {
		pageURL = "https://" + key + ".example/"
	}

	// The one-shot render does not need the shared cache.
	res, err := buildLoader(cfg, nil, logger).Load(context.Background(), key)
	if err != nil {
		return err
	}
	logger.Debug("Loaded directory", zap.String("key", key), zap.String("source", string(res.Source)))

	doc := view.NewDocument()
	rend := render.New(doc, pageURL)
	if err := rend.Render(res.Payload); err != nil {
		return fmt.Errorf("rendering %s: %w", key, err)
	}
	if query != "" && rend.State() == render.Content {
		if err := search.Apply(doc, search.NewIndex(rend.Listings()).Filter(query)); err != nil {
			return fmt.Errorf("applying search: %w", err)
		}
		if err := doc.SetAttribute(view.Search, "value", query); err != nil {
			return err
		}
	}

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", output, err)
		}
		defer f.Close()
		w = f
	}
	if err := doc.Render(w); err != nil {
		return fmt.Errorf("writing page: %w", err)
	}
	if output != "" {
		fmt.Fprintf(os.Stderr, "Wrote %s (%s, %d listings)\n", output, res.Source, len(res.Payload.Listings))
	}
	return nil
}
