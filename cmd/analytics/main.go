package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rickgao/kalshi-analytics/internal/analytics"
	"github.com/rickgao/kalshi-analytics/internal/api"
	"github.com/rickgao/kalshi-analytics/internal/auth"
	"github.com/rickgao/kalshi-analytics/internal/cache"
	"github.com/rickgao/kalshi-analytics/internal/config"
	"github.com/rickgao/kalshi-analytics/internal/database"
	"github.com/rickgao/kalshi-analytics/internal/feed"
	"github.com/rickgao/kalshi-analytics/internal/gateway"
	"github.com/rickgao/kalshi-analytics/internal/metrics"
	"github.com/rickgao/kalshi-analytics/internal/poller"
	"github.com/rickgao/kalshi-analytics/internal/ratelimit"
	"github.com/rickgao/kalshi-analytics/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/analytics.local.yaml", "path to config file")
	flag.Parse()

	// Bootstrap logger until the configured level is known
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	level, _ := config.ParseLevel(cfg.Log.Level)
	logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With("instance_id", cfg.Instance.ID)
	slog.SetDefault(logger)

	logger.Info("starting analytics",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"api_url", cfg.API.RestURL,
		"trade_source", cfg.Trades.Source,
		"cache", cfg.Cache.Backend,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("analytics failed", "error", err)
		os.Exit(1)
	}
	logger.Info("analytics stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var signer *auth.Signer
	if cfg.API.APIKey != "" {
		s, err := auth.LoadSigner(cfg.API.APIKey, cfg.API.PrivateKeyPath)
		if err != nil {
			return fmt.Errorf("load signer: %w", err)
		}
		signer = s
	}

	limiter := ratelimit.New(cfg.API.RequestsPerMinute, ratelimit.WithWaitHook(m.ObserveLimiterWait))

	opts := []api.ClientOption{
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, cfg.API.RetryBackoff),
		api.WithLimiter(limiter),
		api.WithMetrics(m),
	}
	if signer != nil {
		opts = append(opts, api.WithSigner(signer))
	}
	var gw gateway.Gateway = api.NewClient(cfg.API.RestURL, opts...)

	var checks []healthCheck

	switch cfg.Cache.Backend {
	case config.CacheMemory:
		gw = gateway.NewCached(gw, cache.NewMemory(), cfg.Cache.TTL,
			gateway.WithCacheLogger(logger), gateway.WithCacheMetrics(m))
	case config.CacheRedis:
		store, err := cache.DialRedis(ctx, cfg.Cache.Redis.Addr, cfg.Cache.Redis.Password, cfg.Cache.Redis.DB, cfg.Cache.Redis.KeyPrefix)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer store.Close()
		gw = gateway.NewCached(gw, store, cfg.Cache.TTL,
			gateway.WithCacheLogger(logger), gateway.WithCacheMetrics(m))
		checks = append(checks, healthCheck{name: "redis", check: store.Ping})
		logger.Info("redis cache connected", "addr", cfg.Cache.Redis.Addr)
	}

	// Trade windows bypass the cache so live and recorded sources stay fresh.
	switch cfg.Trades.Source {
	case config.TradeSourceStream:
		tape := feed.NewTape(cfg.Feed.TradesPerMarket)
		feedCfg := feed.Config{
			Client: feed.ClientConfig{
				URL:               cfg.API.WSURL,
				PingTimeout:       cfg.Feed.PingTimeout,
				WriteTimeout:      cfg.Feed.WriteTimeout,
				HeartbeatInterval: cfg.Feed.PingTimeout / 2,
				BufferSize:        cfg.Feed.BufferSize,
			},
			SubscribeTimeout:   feed.DefaultConfig().SubscribeTimeout,
			ReconnectBaseDelay: cfg.Feed.ReconnectBaseDelay,
			ReconnectMaxDelay:  cfg.Feed.ReconnectMaxDelay,
		}
		if signer != nil {
			feedCfg.Client.Headers = signer.WebSocketHeaders
		}

		f := feed.NewFeed(feedCfg, tape, feed.WithLogger(logger.With("component", "feed")), feed.WithMetrics(m))
		go f.Run(ctx)
		gw = gateway.WithTradeSource(gw, tape)
		logger.Info("trade feed started", "url", cfg.API.WSURL)

	case config.TradeSourceTimescale:
		pool, err := database.Connect(ctx, cfg.Database.Timescale)
		if err != nil {
			return fmt.Errorf("connect timescale: %w", err)
		}
		defer pool.Close()
		gw = gateway.WithTradeSource(gw, database.NewTradeStore(pool, logger))
		checks = append(checks, healthCheck{name: "timescaledb", check: pool.Ping})
		logger.Info("database connected",
			"host", cfg.Database.Timescale.Host,
			"database", cfg.Database.Timescale.Name,
		)
	}

	engine := analytics.NewEngine(gw, analytics.Config{
		ScanMarketLimit:      cfg.Analytics.ScanMarketLimit,
		DashboardMarketLimit: cfg.Analytics.DashboardMarketLimit,
		DashboardEventLimit:  cfg.Analytics.DashboardEventLimit,
		LiquiditySample:      cfg.Analytics.LiquiditySample,
		MaxOpportunities:     cfg.Analytics.MaxOpportunities,
		MinSpreadPct:         cfg.Analytics.MinSpreadPct,
		Notional:             cfg.Analytics.Notional,
		Concurrency:          cfg.Analytics.Concurrency,
		TradeLimit:           cfg.Trades.FetchLimit,
		RequestTimeout:       cfg.Analytics.RequestTimeout,
	}, analytics.WithLogger(logger), analytics.WithMetrics(m))

	var svc analyticsService = engine
	if cfg.Analytics.RefreshInterval > 0 {
		p := poller.New(poller.Config{Interval: cfg.Analytics.RefreshInterval}, engine, logger.With("component", "poller"))
		if err := p.Start(ctx); err != nil {
			return fmt.Errorf("start poller: %w", err)
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer stopCancel()
			if err := p.Stop(stopCtx); err != nil {
				logger.Error("poller shutdown error", "error", err)
			}
		}()
		svc = p
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           createHandler(svc, gw, checks, cfg.Metrics.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting http server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}
