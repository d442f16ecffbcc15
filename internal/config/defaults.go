package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultRestURL           = "https://api.elections.kalshi.com/trade-api/v2"
	DefaultWSURL             = "wss://api.elections.kalshi.com/trade-api/ws/v2"
	DefaultAPITimeout        = 30 * time.Second
	DefaultMaxRetries        = 3
	DefaultRetryBackoff      = 1 * time.Second
	DefaultRequestsPerMinute = 45

	DefaultCacheBackend   = CacheMemory
	DefaultCacheTTL       = 5 * time.Minute
	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "kalshi-analytics:"

	DefaultTradeSource     = TradeSourceREST
	DefaultTradeFetchLimit = 100

	DefaultFeedBufferSize     = 1000
	DefaultTradesPerMarket    = 200
	DefaultReconnectBaseDelay = 1 * time.Second
	DefaultReconnectMaxDelay  = 60 * time.Second
	DefaultPingTimeout        = 60 * time.Second
	DefaultWriteTimeout       = 5 * time.Second

	DefaultDBPort    = 5432
	DefaultDBSSLMode = "prefer"
	DefaultMaxConns  = 4
	DefaultMinConns  = 1

	DefaultScanMarketLimit      = 500
	DefaultDashboardMarketLimit = 1000
	DefaultDashboardEventLimit  = 1000
	DefaultLiquiditySample      = 50
	DefaultMaxOpportunities     = 50
	DefaultMinSpreadPct         = 1.0
	DefaultNotional             = 1000.0
	DefaultConcurrency          = 8
	DefaultRequestTimeout       = 2 * time.Minute

	DefaultServerPort  = 8080
	DefaultMetricsPath = "/metrics"
	DefaultLogLevel    = "info"
)

// ApplyDefaults fills zero-valued optional fields.
func (c *Config) ApplyDefaults() {
	// API defaults
	if c.API.RestURL == "" {
		c.API.RestURL = DefaultRestURL
	}
	if c.API.WSURL == "" {
		c.API.WSURL = DefaultWSURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}
	if c.API.RetryBackoff == 0 {
		c.API.RetryBackoff = DefaultRetryBackoff
	}
	if c.API.RequestsPerMinute == 0 {
		c.API.RequestsPerMinute = DefaultRequestsPerMinute
	}

	// Cache defaults
	if c.Cache.Backend == "" {
		c.Cache.Backend = DefaultCacheBackend
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = DefaultCacheTTL
	}
	if c.Cache.Redis.Addr == "" {
		c.Cache.Redis.Addr = DefaultRedisAddr
	}
	if c.Cache.Redis.KeyPrefix == "" {
		c.Cache.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// Trades defaults
	if c.Trades.Source == "" {
		c.Trades.Source = DefaultTradeSource
	}
	if c.Trades.FetchLimit == 0 {
		c.Trades.FetchLimit = DefaultTradeFetchLimit
	}

	// Feed defaults
	if c.Feed.BufferSize == 0 {
		c.Feed.BufferSize = DefaultFeedBufferSize
	}
	if c.Feed.TradesPerMarket == 0 {
		c.Feed.TradesPerMarket = DefaultTradesPerMarket
	}
	if c.Feed.ReconnectBaseDelay == 0 {
		c.Feed.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if c.Feed.ReconnectMaxDelay == 0 {
		c.Feed.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}
	if c.Feed.PingTimeout == 0 {
		c.Feed.PingTimeout = DefaultPingTimeout
	}
	if c.Feed.WriteTimeout == 0 {
		c.Feed.WriteTimeout = DefaultWriteTimeout
	}

	// Database defaults
	applyDBDefaults(&c.Database.Timescale)

	// Analytics defaults
	if c.Analytics.ScanMarketLimit == 0 {
		c.Analytics.ScanMarketLimit = DefaultScanMarketLimit
	}
	if c.Analytics.DashboardMarketLimit == 0 {
		c.Analytics.DashboardMarketLimit = DefaultDashboardMarketLimit
	}
	if c.Analytics.DashboardEventLimit == 0 {
		c.Analytics.DashboardEventLimit = DefaultDashboardEventLimit
	}
	if c.Analytics.LiquiditySample == 0 {
		c.Analytics.LiquiditySample = DefaultLiquiditySample
	}
	if c.Analytics.MaxOpportunities == 0 {
		c.Analytics.MaxOpportunities = DefaultMaxOpportunities
	}
	if c.Analytics.MinSpreadPct == 0 {
		c.Analytics.MinSpreadPct = DefaultMinSpreadPct
	}
	if c.Analytics.Notional == 0 {
		c.Analytics.Notional = DefaultNotional
	}
	if c.Analytics.Concurrency == 0 {
		c.Analytics.Concurrency = DefaultConcurrency
	}
	if c.Analytics.RequestTimeout == 0 {
		c.Analytics.RequestTimeout = DefaultRequestTimeout
	}

	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
