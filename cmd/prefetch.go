package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/dirpage/internal/loader"
	"github.com/ziadkadry99/dirpage/internal/progress"
)

var prefetchCmd = &cobra.Command{
	Use:   "prefetch [key]...",
	Short: "Load directories ahead of traffic to warm the payload cache",
	Long: `Loads the given directories concurrently through the configured loader.
With a redis cache this warms the cache shared by running servers. With
--stored, every directory in the local API database is prefetched.`,
	RunE: runPrefetch,
}

func init() {
	prefetchCmd.Flags().Int("concurrency", 4, "max parallel loads")
	prefetchCmd.Flags().Bool("stored", false, "prefetch every directory in the API database")
	rootCmd.AddCommand(prefetchCmd)
}

type prefetchResult struct {
	key      string
	source   loader.Source
	listings int
	err      error
}

func runPrefetch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	concurrency, _ := cmd.Flags().GetInt("concurrency")
	if concurrency < 1 {
		concurrency = 1
	}
	stored, _ := cmd.Flags().GetBool("stored")

	keys, err := collectKeys(ctx, cfg, args, stored)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return fmt.Errorf("no directories to prefetch: pass keys or --stored")
	}

	payloadCache, err := buildCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if payloadCache != nil {
		defer payloadCache.Close()
	}
	l := buildLoader(cfg, payloadCache, logger)

	reporter := progress.NewReporter()
	reporter.Start(len(keys))

	results := make([]prefetchResult, len(keys))
	p := pool.New().WithMaxGoroutines(concurrency)
	for i, key := range keys {
		i, key := i, key
		p.Go(func() {
			res, err := l.Load(ctx, key)
			r := prefetchResult{key: key, source: res.Source, err: err}
			if err == nil {
				r.listings = len(res.Payload.Listings)
			}
			results[i] = r
			reporter.Step(fmt.Sprintf("%s: %s", key, res.Source))
		})
	}
	p.Wait()
	reporter.Finish()

	var failed, mocked int
	for _, r := range results {
		switch {
		case r.err != nil:
			failed++
			logger.Error("Prefetch failed", zap.String("key", r.key), zap.Error(r.err))
		case r.source == loader.SourceMock:
			mocked++
			fmt.Fprintf(os.Stderr, "  %-30s mock (API unavailable)\n", r.key)
		default:
			fmt.Fprintf(os.Stderr, "  %-30s %s, %d listings\n", r.key, r.source, r.listings)
		}
	}
	fmt.Fprintf(os.Stderr, "Prefetched %d directories (%d mock, %d failed)\n", len(keys), mocked, failed)
	if failed > 0 {
		return fmt.Errorf("%d directories failed to load", failed)
	}
	return nil
}

