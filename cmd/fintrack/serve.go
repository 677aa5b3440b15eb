package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"time"

	"github.com/google/subcommands"
	"golang.org/x/sync/errgroup"

	"fintrack/internal/cache"
	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/services"
	"fintrack/internal/worker"
)

type serveCmd struct {
	app             *app
	port            string
	shutdownTimeout time.Duration
	follow          bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the JSON API" }
func (*serveCmd) Usage() string {
	return `serve [-port <port>] [-follow]

  Serves the transaction and dashboard API until interrupted. With -follow
  and AMQP configured, the list is re-read whenever another process
  publishes a change. Concurrent writers still overwrite each other.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.port, "port", "", "Listen port (default $PORT)")
	f.DurationVar(&c.shutdownTimeout, "shutdown-timeout", 30*time.Second, "Grace period for in-flight requests")
	f.BoolVar(&c.follow, "follow", false, "Reload the list when another process publishes a change")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rt, err := c.app.open(ctx)
	if err != nil {
		return c.app.fail("%v", err)
	}
	defer func() {
		if err := rt.Close(); err != nil {
			rt.Logger.Warn("Failed to close backend", log.FieldError, err)
		}
	}()

	if err := c.run(ctx, rt); err != nil {
		return c.app.fail("%v", err)
	}
	return subcommands.ExitSuccess
}

func (c *serveCmd) run(ctx context.Context, rt *cli.Runtime) error {
	cfg, logger := rt.Config, rt.Logger
	port := cfg.Port
	if c.port != "" {
		port = c.port
	}

	snapshots := cache.NewLRUCache[services.Snapshot](cfg.CacheSize, cfg.CacheTTL)
	caches := cache.NewManager(logger)
	caches.Register(snapshots)

	limiter := ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute})
	srv := apphttp.NewServer(":"+port,
		services.NewTransactionService(rt.Store),
		services.NewDashboardService(rt.Store, snapshots, logger),
		apphttp.Options{
			Currency:    cfg.Currency,
			MonthWindow: cfg.MonthWindow,
			Limiter:     limiter,
			Logger:      logger,
		})

	ctx, cancel := cli.SignalContext(ctx, logger)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting fintrack server", "port", port, log.FieldBackend, cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), c.shutdownTimeout)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error { return caches.Run(gctx, time.Minute) })
	g.Go(func() error { return limiter.Run(gctx, 5*time.Minute) })
	if broker := rt.Backend.Broker; c.follow && broker != nil {
		syncer := worker.NewSyncWorker(rt.Store, broker.Source(), logger)
		g.Go(func() error {
			// Losing the broker only stops reloads; the API keeps serving.
			if err := syncer.Run(gctx, broker); err != nil {
				logger.Warn("Sync worker stopped", log.FieldError, err)
			}
			return nil
		})
	} else if c.follow {
		logger.Warn("Ignoring -follow: AMQP is not configured or unreachable")
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", log.FieldError, err)
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
