// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/tradedeck/internal/model"
	"github.com/jeranaias/tradedeck/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete tradedeck configuration.
type Config struct {
	Version string `toml:"version"`

	Backend BackendConfig `toml:"backend"`
	Markets MarketsConfig `toml:"markets"`
	Stream  StreamConfig  `toml:"stream"`
	Orders  OrdersConfig  `toml:"orders"`
	Storage StorageConfig `toml:"storage"`
	UI      UIConfig      `toml:"ui"`
	Logging LoggingConfig `toml:"logging"`
}

// BackendConfig points the client at the dashboard backend.
type BackendConfig struct {
	// BaseURL is the backend address, scheme included.
	BaseURL string `toml:"base_url"`
	// Token is the bearer token for authenticated endpoints. May be a
	// plaintext token or an ENC:-sealed value the vault opens at startup.
	Token string `toml:"token"`
	// TimeoutSecs bounds a single plain request.
	TimeoutSecs int `toml:"timeout_secs"`
	// RateLimitRPS caps client-side request rate so panel refreshers
	// cannot hammer the backend.
	RateLimitRPS float64 `toml:"rate_limit_rps"`
	// RateLimitBurst is the limiter burst size.
	RateLimitBurst int `toml:"rate_limit_burst"`
	// MaxRetries bounds attempts per idempotent request.
	MaxRetries int `toml:"max_retries"`
}

// MarketsConfig selects exchanges and symbols.
type MarketsConfig struct {
	// Default is the market shown first: "hyperliquid" or "binance".
	Default string `toml:"default"`
	// Symbols is the ticker-strip watchlist (base symbols, e.g. "BTC").
	Symbols []string `toml:"symbols"`
	// LiveFeeds enables the websocket price feeds.
	LiveFeeds bool `toml:"live_feeds"`
	// HyperliquidWS overrides the Hyperliquid websocket URL. Empty uses
	// the built-in endpoint.
	HyperliquidWS string `toml:"hyperliquid_ws"`
	// BinanceWS overrides the Binance combined-stream URL. Empty uses
	// the built-in endpoint.
	BinanceWS string `toml:"binance_ws"`
}

// StreamConfig tunes the assistant task-stream consumer.
type StreamConfig struct {
	// PollIntervalMs is the fixed delay between chunk polls.
	PollIntervalMs int `toml:"poll_interval_ms"`
	// PollBudget bounds polls per task before a best-effort flush.
	PollBudget int `toml:"poll_budget"`
}

// OrdersConfig tunes order entry.
type OrdersConfig struct {
	// ArmWindowSecs is how long one valid TOTP code keeps order entry
	// unlocked. Ignored until an arming secret is enrolled.
	ArmWindowSecs int `toml:"arm_window_secs"`
	// ConfirmBeforeSubmit shows a confirmation step on the order ticket.
	ConfirmBeforeSubmit bool `toml:"confirm_before_submit"`
}

// StorageConfig places local state.
type StorageConfig struct {
	// StateDir overrides the state directory. Empty uses ~/.tradedeck.
	StateDir string `toml:"state_dir"`
	// MaxConversations bounds saved conversations; oldest pruned first.
	MaxConversations int `toml:"max_conversations"`
	// ActivityMaxRows bounds the SQLite activity mirror.
	ActivityMaxRows int `toml:"activity_max_rows"`
}

// UIConfig tunes the terminal interface.
type UIConfig struct {
	// Theme selects the color theme: "dark" or "light".
	Theme string `toml:"theme"`
	// CompactMode tightens padding for small terminals.
	CompactMode bool `toml:"compact_mode"`
	// ChartPeriod is the default candle period.
	ChartPeriod string `toml:"chart_period"`
	// RefreshAccountSecs is the balances/positions/orders poll cadence.
	RefreshAccountSecs int `toml:"refresh_account_secs"`
	// RefreshMarketSecs is the kline/ticker poll cadence.
	RefreshMarketSecs int `toml:"refresh_market_secs"`
	// ShowActivityFeed toggles the dashboard activity pane.
	ShowActivityFeed bool `toml:"show_activity_feed"`
}

// LoggingConfig tunes the zap logger.
type LoggingConfig struct {
	// Level is the minimum level: "debug", "info", "warn", "error".
	Level string `toml:"level"`
	// File overrides the log path. Empty uses <state_dir>/tradedeck.log.
	File string `toml:"file"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with production defaults.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Backend: BackendConfig{
			BaseURL:        "http://127.0.0.1:8000",
			Token:          "",
			TimeoutSecs:    30,
			RateLimitRPS:   8,
			RateLimitBurst: 16,
			MaxRetries:     3,
		},

		Markets: MarketsConfig{
			Default:   string(model.MarketHyperliquid),
			Symbols:   []string{"BTC", "ETH", "SOL"},
			LiveFeeds: true,
		},

		Stream: StreamConfig{
			PollIntervalMs: 150,
			PollBudget:     120,
		},

		Orders: OrdersConfig{
			ArmWindowSecs:       300,
			ConfirmBeforeSubmit: true,
		},

		Storage: StorageConfig{
			StateDir:         "",
			MaxConversations: 100,
			ActivityMaxRows:  5000,
		},

		UI: UIConfig{
			Theme:              "dark",
			CompactMode:        false,
			ChartPeriod:        "1m",
			RefreshAccountSecs: 10,
			RefreshMarketSecs:  5,
			ShowActivityFeed:   true,
		},

		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// StateDir returns the tradedeck state directory. TRADEDECK_STATE_DIR
// overrides the default ~/.tradedeck.
func StateDir() (string, error) {
	if dir := os.Getenv("TRADEDECK_STATE_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".tradedeck"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ResolveStateDir returns the effective state directory for this config,
// honoring the storage.state_dir override.
func (c *Config) ResolveStateDir() (string, error) {
	if c.Storage.StateDir != "" {
		return c.Storage.StateDir, nil
	}
	return StateDir()
}

// ResolveLogFile returns the effective log path for this config.
func (c *Config) ResolveLogFile() (string, error) {
	if c.Logging.File != "" {
		return c.Logging.File, nil
	}
	dir, err := c.ResolveStateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tradedeck.log"), nil
}

// ensureSecurePermissions tightens config files to 0600. The token field
// makes world-readable configs a credential leak.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0o600 {
		if err := os.Chmod(path, 0o600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD
// =============================================================================

// LoadDotEnv folds a .env file from the working directory into the
// environment. Missing files are fine; dev setups use this for
// TRADEDECK_TOKEN.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: could not load .env: %v\n", err)
	}
}

// Load reads ~/.tradedeck/config.toml over defaults, applies TRADEDECK_*
// environment overrides, and validates. A missing file is not an error.
func Load() (*Config, error) {
	LoadDotEnv()

	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := decodeTOML(cfg, path); err != nil {
				return nil, fmt.Errorf("failed to load config: %w", err)
			}
		}
	}

	fillDefaults(cfg)
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath reads a specific TOML file over defaults, applies
// environment overrides, and validates.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := decodeTOML(cfg, path); err != nil {
		return nil, err
	}
	fillDefaults(cfg)
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func decodeTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// fillDefaults replaces zero values with defaults so a sparse file stays
// usable. Booleans keep whatever the file said.
func fillDefaults(cfg *Config) {
	d := Default()

	if cfg.Version == "" {
		cfg.Version = d.Version
	}

	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = d.Backend.BaseURL
	}
	if cfg.Backend.TimeoutSecs == 0 {
		cfg.Backend.TimeoutSecs = d.Backend.TimeoutSecs
	}
	if cfg.Backend.RateLimitRPS == 0 {
		cfg.Backend.RateLimitRPS = d.Backend.RateLimitRPS
	}
	if cfg.Backend.RateLimitBurst == 0 {
		cfg.Backend.RateLimitBurst = d.Backend.RateLimitBurst
	}
	if cfg.Backend.MaxRetries == 0 {
		cfg.Backend.MaxRetries = d.Backend.MaxRetries
	}

	if cfg.Markets.Default == "" {
		cfg.Markets.Default = d.Markets.Default
	}
	if len(cfg.Markets.Symbols) == 0 {
		cfg.Markets.Symbols = append([]string(nil), d.Markets.Symbols...)
	}
	cfg.Markets.Symbols = normalizeSymbols(cfg.Markets.Symbols)

	if cfg.Stream.PollIntervalMs == 0 {
		cfg.Stream.PollIntervalMs = d.Stream.PollIntervalMs
	}
	if cfg.Stream.PollBudget == 0 {
		cfg.Stream.PollBudget = d.Stream.PollBudget
	}

	if cfg.Orders.ArmWindowSecs == 0 {
		cfg.Orders.ArmWindowSecs = d.Orders.ArmWindowSecs
	}

	if cfg.Storage.MaxConversations == 0 {
		cfg.Storage.MaxConversations = d.Storage.MaxConversations
	}
	if cfg.Storage.ActivityMaxRows == 0 {
		cfg.Storage.ActivityMaxRows = d.Storage.ActivityMaxRows
	}

	if cfg.UI.Theme == "" {
		cfg.UI.Theme = d.UI.Theme
	}
	if cfg.UI.ChartPeriod == "" {
		cfg.UI.ChartPeriod = d.UI.ChartPeriod
	}
	if cfg.UI.RefreshAccountSecs == 0 {
		cfg.UI.RefreshAccountSecs = d.UI.RefreshAccountSecs
	}
	if cfg.UI.RefreshMarketSecs == 0 {
		cfg.UI.RefreshMarketSecs = d.UI.RefreshMarketSecs
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = d.Logging.Level
	}
}

// normalizeSymbols uppercases, trims, and dedupes the watchlist
// preserving order.
func normalizeSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// =============================================================================
// SAVE
// =============================================================================

// Save writes the configuration to the default TOML path.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to a TOML file with 0600
// permissions. The token field must never be world-readable.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError is one bad field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors collects every bad field so the user fixes the file in
// one pass.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var validThemes = map[string]bool{"dark": true, "light": true}

var validChartPeriods = map[string]bool{
	"1m": true, "5m": true, "15m": true, "1h": true, "4h": true, "1d": true,
}

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

// Validate checks every field and returns all problems at once.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.Backend.BaseURL); err != nil {
		errs = append(errs, ValidationError{
			Field:   "backend.base_url",
			Message: fmt.Sprintf("invalid URL: %v", err),
		})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{
			Field:   "backend.base_url",
			Message: fmt.Sprintf("unsupported scheme %q, must be http or https", u.Scheme),
		})
	}
	if c.Backend.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "backend.timeout_secs",
			Message: "cannot be negative",
		})
	}
	if c.Backend.RateLimitRPS < 0 {
		errs = append(errs, ValidationError{
			Field:   "backend.rate_limit_rps",
			Message: "cannot be negative",
		})
	}
	if c.Backend.RateLimitBurst < 0 {
		errs = append(errs, ValidationError{
			Field:   "backend.rate_limit_burst",
			Message: "cannot be negative",
		})
	}

	if _, err := model.ParseMarket(c.Markets.Default); err != nil {
		errs = append(errs, ValidationError{
			Field:   "markets.default",
			Message: err.Error(),
		})
	}

	if c.Stream.PollIntervalMs < 50 || c.Stream.PollIntervalMs > 5000 {
		errs = append(errs, ValidationError{
			Field:   "stream.poll_interval_ms",
			Message: fmt.Sprintf("must be between 50 and 5000, got %d", c.Stream.PollIntervalMs),
		})
	}
	if c.Stream.PollBudget < 1 || c.Stream.PollBudget > 10000 {
		errs = append(errs, ValidationError{
			Field:   "stream.poll_budget",
			Message: fmt.Sprintf("must be between 1 and 10000, got %d", c.Stream.PollBudget),
		})
	}

	if c.Orders.ArmWindowSecs < 30 || c.Orders.ArmWindowSecs > 3600 {
		errs = append(errs, ValidationError{
			Field:   "orders.arm_window_secs",
			Message: fmt.Sprintf("must be between 30 and 3600, got %d", c.Orders.ArmWindowSecs),
		})
	}

	if c.Storage.MaxConversations < 1 {
		errs = append(errs, ValidationError{
			Field:   "storage.max_conversations",
			Message: "must be at least 1",
		})
	}
	if c.Storage.ActivityMaxRows < 0 {
		errs = append(errs, ValidationError{
			Field:   "storage.activity_max_rows",
			Message: "cannot be negative",
		})
	}

	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme %q, must be one of: dark, light", c.UI.Theme),
		})
	}
	if !validChartPeriods[strings.ToLower(c.UI.ChartPeriod)] {
		errs = append(errs, ValidationError{
			Field:   "ui.chart_period",
			Message: fmt.Sprintf("invalid period %q, must be one of: 1m, 5m, 15m, 1h, 4h, 1d", c.UI.ChartPeriod),
		})
	}
	if c.UI.RefreshAccountSecs < 1 {
		errs = append(errs, ValidationError{
			Field:   "ui.refresh_account_secs",
			Message: "must be at least 1",
		})
	}
	if c.UI.RefreshMarketSecs < 1 {
		errs = append(errs, ValidationError{
			Field:   "ui.refresh_market_secs",
			Message: "must be at least 1",
		})
	}

	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level %q, must be one of: debug, info, warn, error", c.Logging.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// Timeout returns the request timeout as a duration.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSecs) * time.Second
}

// PollInterval returns the poll delay as a duration.
func (s StreamConfig) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalMs) * time.Millisecond
}

// ArmWindow returns the arming window as a duration.
func (o OrdersConfig) ArmWindow() time.Duration {
	return time.Duration(o.ArmWindowSecs) * time.Second
}

// RefreshAccount returns the account poll cadence as a duration.
func (u UIConfig) RefreshAccount() time.Duration {
	return time.Duration(u.RefreshAccountSecs) * time.Second
}

// RefreshMarket returns the market poll cadence as a duration.
func (u UIConfig) RefreshMarket() time.Duration {
	return time.Duration(u.RefreshMarketSecs) * time.Second
}

// DefaultMarket returns the configured default market, falling back to
// Hyperliquid on a bad value. Validate reports the bad value; this keeps
// render paths total.
func (m MarketsConfig) DefaultMarket() model.Market {
	market, err := model.ParseMarket(m.Default)
	if err != nil {
		return model.MarketHyperliquid
	}
	return market
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies TRADEDECK_* environment variables.
//
// Supported variables:
//   - TRADEDECK_BACKEND_URL: overrides backend.base_url
//   - TRADEDECK_TOKEN: overrides backend.token
//   - TRADEDECK_MARKET: overrides markets.default
//   - TRADEDECK_SYMBOLS: comma-separated, overrides markets.symbols
//   - TRADEDECK_LIVE_FEEDS: "1"/"true" or "0"/"false"
//   - TRADEDECK_THEME: overrides ui.theme
//   - TRADEDECK_CHART_PERIOD: overrides ui.chart_period
//   - TRADEDECK_LOG_LEVEL: overrides logging.level
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("TRADEDECK_BACKEND_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("TRADEDECK_TOKEN"); v != "" {
		c.Backend.Token = v
	}
	if v := os.Getenv("TRADEDECK_MARKET"); v != "" {
		c.Markets.Default = v
	}
	if v := os.Getenv("TRADEDECK_SYMBOLS"); v != "" {
		c.Markets.Symbols = normalizeSymbols(strings.Split(v, ","))
	}
	if v := os.Getenv("TRADEDECK_LIVE_FEEDS"); v != "" {
		c.Markets.LiveFeeds = v == "1" || strings.ToLower(v) == "true"
	}
	if v := os.Getenv("TRADEDECK_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("TRADEDECK_CHART_PERIOD"); v != "" {
		c.UI.ChartPeriod = v
	}
	if v := os.Getenv("TRADEDECK_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// =============================================================================
// DYNAMIC KEY ACCESS
// =============================================================================

// Get reads a config value by dotted key, e.g. "ui.theme". Backs the
// `tradedeck config get` command.
func (c *Config) Get(key string) (interface{}, error) {
	parts := strings.Split(key, ".")
	v := reflect.ValueOf(c).Elem()

	for _, part := range parts {
		if v.Kind() != reflect.Struct {
			return nil, fmt.Errorf("invalid config key: %s", key)
		}
		field := fieldByTOMLName(v, part)
		if !field.IsValid() {
			return nil, fmt.Errorf("unknown config key: %s", key)
		}
		v = field
	}

	return v.Interface(), nil
}

// Set writes a config value by dotted key, parsing the string form into
// the field's type. Backs the `tradedeck config set` command.
func (c *Config) Set(key, value string) error {
	parts := strings.Split(key, ".")
	v := reflect.ValueOf(c).Elem()

	for _, part := range parts {
		if v.Kind() != reflect.Struct {
			return fmt.Errorf("invalid config key: %s", key)
		}
		field := fieldByTOMLName(v, part)
		if !field.IsValid() {
			return fmt.Errorf("unknown config key: %s", key)
		}
		v = field
	}

	if !v.CanSet() {
		return fmt.Errorf("config key not settable: %s", key)
	}
	return setFieldValue(v, value)
}

// fieldByTOMLName resolves a struct field by its toml tag, falling back
// to a case-insensitive field-name match.
func fieldByTOMLName(v reflect.Value, name string) reflect.Value {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("toml")
		if tag == name {
			return v.Field(i)
		}
	}
	return v.FieldByNameFunc(func(field string) bool {
		return strings.EqualFold(field, name)
	})
}

func setFieldValue(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", value)
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer %q", value)
		}
		field.SetInt(n)
	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", value)
		}
		field.SetFloat(f)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported field type %s", field.Type())
		}
		field.Set(reflect.ValueOf(normalizeSymbols(strings.Split(value, ","))))
	default:
		return fmt.Errorf("unsupported field type %s", field.Kind())
	}
	return nil
}

// Keys returns every settable dotted key, sorted by section order.
func Keys() []string {
	var keys []string
	collectKeys(reflect.TypeOf(Config{}), "", &keys)
	return keys
}

func collectKeys(t reflect.Type, prefix string, out *[]string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("toml")
		if tag == "" {
			continue
		}
		name := tag
		if prefix != "" {
			name = prefix + "." + tag
		}
		if f.Type.Kind() == reflect.Struct {
			collectKeys(f.Type, name, out)
			continue
		}
		*out = append(*out, name)
	}
}

// =============================================================================
// SINGLETON
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the process-wide configuration, loading on first
// access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal replaces the global configuration. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting clears singleton state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
