package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Trade sources selectable under trades.source.
const (
	TradeSourceREST      = "rest"
	TradeSourceStream    = "stream"
	TradeSourceTimescale = "timescale"
)

// Cache backends selectable under cache.backend.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config is the root configuration for an analytics instance.
type Config struct {
	Instance  InstanceConfig  `yaml:"instance"`
	API       APIConfig       `yaml:"api"`
	Cache     CacheConfig     `yaml:"cache"`
	Trades    TradesConfig    `yaml:"trades"`
	Feed      FeedConfig      `yaml:"feed"`
	Database  DatabaseConfig  `yaml:"database"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Server    ServerConfig    `yaml:"server"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Log       LogConfig       `yaml:"log"`
}

// InstanceConfig identifies this instance in logs.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// APIConfig holds exchange REST/WebSocket settings.
type APIConfig struct {
	RestURL           string        `yaml:"rest_url"`
	WSURL             string        `yaml:"ws_url"`
	APIKey            string        `yaml:"api_key"`          // API key ID (KALSHI-ACCESS-KEY)
	PrivateKeyPath    string        `yaml:"private_key_path"` // RSA private key PEM file
	Timeout           time.Duration `yaml:"timeout"`
	MaxRetries        int           `yaml:"max_retries"`
	RetryBackoff      time.Duration `yaml:"retry_backoff"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
}

// CacheConfig holds read cache settings.
type CacheConfig struct {
	Backend string        `yaml:"backend"`
	TTL     time.Duration `yaml:"ttl"`
	Redis   RedisConfig   `yaml:"redis"`
}

// RedisConfig holds a Redis connection.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// TradesConfig selects where trade windows come from.
type TradesConfig struct {
	Source     string `yaml:"source"`
	FetchLimit int    `yaml:"fetch_limit"`
}

// FeedConfig holds live trade feed settings.
type FeedConfig struct {
	BufferSize         int           `yaml:"buffer_size"`
	TradesPerMarket    int           `yaml:"trades_per_market"`
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
	PingTimeout        time.Duration `yaml:"ping_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig holds the TimescaleDB connection of a kalshi-data gatherer.
// Only read when trades.source is "timescale".
type DatabaseConfig struct {
	Timescale DBConfig `yaml:"timescale"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// AnalyticsConfig holds scan sizes and scoring constants.
type AnalyticsConfig struct {
	ScanMarketLimit      int           `yaml:"scan_market_limit"`
	DashboardMarketLimit int           `yaml:"dashboard_market_limit"`
	DashboardEventLimit  int           `yaml:"dashboard_event_limit"`
	LiquiditySample      int           `yaml:"liquidity_sample"`
	MaxOpportunities     int           `yaml:"max_opportunities"`
	MinSpreadPct         float64       `yaml:"min_spread_pct"`
	Notional             float64       `yaml:"notional"`
	Concurrency          int           `yaml:"concurrency"`
	RequestTimeout       time.Duration `yaml:"request_timeout"`
	RefreshInterval      time.Duration `yaml:"refresh_interval"` // Background scan refresh, 0 disables
}

// ServerConfig holds the HTTP listener.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Path string `yaml:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads config and applies default values.
func LoadWithDefaults(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// LoadAndValidate loads config, applies defaults, and validates.
func LoadAndValidate(path string) (*Config, error) {
	cfg, err := LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}
