package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/dirpage/internal/api"
	"github.com/ziadkadry99/dirpage/internal/db"
	"github.com/ziadkadry99/dirpage/internal/resolver"
	"github.com/ziadkadry99/dirpage/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the directory page server",
	Long: `Starts the HTTP server that renders directory pages, the live search
socket, and (when api.enabled is set) the SQLite-backed directory API.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	payloadCache, err := buildCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if payloadCache != nil {
		defer payloadCache.Close()
	}

	renders, err := buildRenderStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer renders.Close()

	res, err := resolver.New(cfg.Resolver)
	if err != nil {
		return fmt.Errorf("creating resolver: %w", err)
	}

	srv := server.New(server.Config{
		Port:     cfg.Server.Port,
		AllowAll: cfg.Server.AllowAll,
	}, server.Deps{
		Resolver:  res,
		Loader:    buildLoader(cfg, payloadCache, logger),
		Renders:   renders,
		RenderTTL: cfg.Search.RenderTTL,
		Site:      cfg.Site,
		Debounce:  cfg.Search.Debounce,
		Logger:    logger,
	})

	if cfg.API.Enabled {
		database, err := db.Open(cfg.API.DBPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()
		api.RegisterRoutes(srv.Router(), api.NewStore(database), logger)
		logger.Info("Directory API enabled", zap.String("db", cfg.API.DBPath))
		if selfAPIPortMismatch(cfg) {
			logger.Warn("loader.api_base points at another local port; pages will not reach this server's API",
				zap.String("api_base", cfg.LoaderAPIBase()),
				zap.Int("port", cfg.Server.Port),
			)
		}
	}

	logger.Info("Starting dirpage",
		zap.String("version", Version),
		zap.String("brand", cfg.Site.Brand),
		zap.Int("port", cfg.Server.Port),
		zap.String("strategy", string(cfg.Resolver.Strategy)),
		zap.String("root_policy", string(cfg.Site.RootPolicy)),
		zap.String("api_base", cfg.LoaderAPIBase()),
		zap.String("cache", string(cfg.Cache.Backend)),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
