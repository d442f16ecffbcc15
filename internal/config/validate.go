package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.API.RestURL == "" {
		return errors.New("api.rest_url is required")
	}
	if c.API.MaxRetries < 0 {
		return errors.New("api.max_retries must be >= 0")
	}
	if c.API.RequestsPerMinute < 1 {
		return errors.New("api.requests_per_minute must be >= 1")
	}
	if (c.API.APIKey == "") != (c.API.PrivateKeyPath == "") {
		return errors.New("api.api_key and api.private_key_path must be set together")
	}

	switch c.Cache.Backend {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.Cache.Redis.Addr == "" {
			return errors.New("cache.redis.addr is required")
		}
	default:
		return fmt.Errorf("cache.backend must be one of none, memory, redis, got %q", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errors.New("cache.ttl must be >= 0")
	}

	switch c.Trades.Source {
	case TradeSourceREST:
	case TradeSourceStream:
		if c.API.WSURL == "" {
			return errors.New("api.ws_url is required for trades.source stream")
		}
		if c.Feed.TradesPerMarket < 1 {
			return errors.New("feed.trades_per_market must be >= 1")
		}
	case TradeSourceTimescale:
		if err := c.Database.Timescale.validate("database.timescale"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("trades.source must be one of rest, stream, timescale, got %q", c.Trades.Source)
	}
	if c.Trades.FetchLimit < 1 {
		return errors.New("trades.fetch_limit must be >= 1")
	}

	if c.Analytics.Concurrency < 1 {
		return errors.New("analytics.concurrency must be >= 1")
	}
	if c.Analytics.MaxOpportunities < 1 {
		return errors.New("analytics.max_opportunities must be >= 1")
	}
	if c.Analytics.MinSpreadPct < 0 {
		return errors.New("analytics.min_spread_pct must be >= 0")
	}
	if c.Analytics.RefreshInterval < 0 {
		return errors.New("analytics.refresh_interval must be >= 0")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path)
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}

// ParseLevel maps log.level onto a slog level.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return 0, fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", level)
	}
	return l, nil
}
