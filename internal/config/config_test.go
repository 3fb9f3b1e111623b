// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// =============================================================================
// DEFAULTS AND LOADING
// =============================================================================

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Backend.BaseURL != "http://127.0.0.1:8000" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Stream.PollIntervalMs != 150 {
		t.Errorf("PollIntervalMs = %d, want 150", cfg.Stream.PollIntervalMs)
	}
	if cfg.Stream.PollBudget != 120 {
		t.Errorf("PollBudget = %d, want 120", cfg.Stream.PollBudget)
	}
	if cfg.Markets.Default != "hyperliquid" {
		t.Errorf("Markets.Default = %q", cfg.Markets.Default)
	}
	if !cfg.Markets.LiveFeeds {
		t.Error("LiveFeeds should default on")
	}
	if len(cfg.Markets.Symbols) == 0 {
		t.Error("Symbols should have defaults")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[backend]
base_url = "https://desk.example.com"

[stream]
poll_interval_ms = 200

[ui]
theme = "light"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	if cfg.Backend.BaseURL != "https://desk.example.com" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Stream.PollIntervalMs != 200 {
		t.Errorf("PollIntervalMs = %d, want 200 from file", cfg.Stream.PollIntervalMs)
	}
	// Fields the file omits keep defaults.
	if cfg.Stream.PollBudget != 120 {
		t.Errorf("PollBudget = %d, want default 120", cfg.Stream.PollBudget)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Theme = %q", cfg.UI.Theme)
	}
	if len(cfg.Markets.Symbols) != 3 {
		t.Errorf("Symbols = %v, want defaults", cfg.Markets.Symbols)
	}
}

func TestLoadFromPathBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Error("expected error for malformed TOML")
	}
}

func TestLoadFromPathInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[ui]
theme = "solarized"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "ui.theme") {
		t.Errorf("error should name the field, got %v", err)
	}
}

func TestNormalizeSymbols(t *testing.T) {
	got := normalizeSymbols([]string{"btc", " ETH ", "", "BTC", "sol"})
	want := []string{"BTC", "ETH", "SOL"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("symbol[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidateRejectsBadFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad scheme", func(c *Config) { c.Backend.BaseURL = "ftp://x" }, "backend.base_url"},
		{"bad market", func(c *Config) { c.Markets.Default = "kraken" }, "markets.default"},
		{"poll too fast", func(c *Config) { c.Stream.PollIntervalMs = 10 }, "stream.poll_interval_ms"},
		{"poll budget zero", func(c *Config) { c.Stream.PollBudget = 0 }, "stream.poll_budget"},
		{"arm window short", func(c *Config) { c.Orders.ArmWindowSecs = 5 }, "orders.arm_window_secs"},
		{"bad theme", func(c *Config) { c.UI.Theme = "sepia" }, "ui.theme"},
		{"bad period", func(c *Config) { c.UI.ChartPeriod = "2m" }, "ui.chart_period"},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error should name %s, got %v", tt.field, err)
			}
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.UI.Theme = "sepia"
	cfg.Logging.Level = "trace"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}

	errs, ok := err.(ValidateErrors)
	if !ok {
		t.Fatalf("expected ValidateErrors, got %T", err)
	}
	if len(errs) != 2 {
		t.Errorf("got %d errors, want 2: %v", len(errs), errs)
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("TRADEDECK_BACKEND_URL", "https://env.example.com")
	t.Setenv("TRADEDECK_TOKEN", "tok-from-env")
	t.Setenv("TRADEDECK_MARKET", "binance")
	t.Setenv("TRADEDECK_SYMBOLS", "doge, pepe")
	t.Setenv("TRADEDECK_LIVE_FEEDS", "0")
	t.Setenv("TRADEDECK_LOG_LEVEL", "debug")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Backend.BaseURL != "https://env.example.com" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Token != "tok-from-env" {
		t.Errorf("Token = %q", cfg.Backend.Token)
	}
	if cfg.Markets.Default != "binance" {
		t.Errorf("Markets.Default = %q", cfg.Markets.Default)
	}
	if len(cfg.Markets.Symbols) != 2 || cfg.Markets.Symbols[0] != "DOGE" {
		t.Errorf("Symbols = %v", cfg.Markets.Symbols)
	}
	if cfg.Markets.LiveFeeds {
		t.Error("LiveFeeds should be off")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q", cfg.Logging.Level)
	}
}

// =============================================================================
// SAVE
// =============================================================================

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Backend.BaseURL = "https://rt.example.com"
	cfg.UI.Theme = "light"
	cfg.Markets.Symbols = []string{"BTC", "DOGE"}

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("config perms = %o, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if loaded.Backend.BaseURL != "https://rt.example.com" {
		t.Errorf("BaseURL = %q", loaded.Backend.BaseURL)
	}
	if loaded.UI.Theme != "light" {
		t.Errorf("Theme = %q", loaded.UI.Theme)
	}
	if len(loaded.Markets.Symbols) != 2 || loaded.Markets.Symbols[1] != "DOGE" {
		t.Errorf("Symbols = %v", loaded.Markets.Symbols)
	}
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

func TestDerivedDurations(t *testing.T) {
	cfg := Default()

	if cfg.Backend.Timeout() != 30*time.Second {
		t.Errorf("Timeout = %v", cfg.Backend.Timeout())
	}
	if cfg.Stream.PollInterval() != 150*time.Millisecond {
		t.Errorf("PollInterval = %v", cfg.Stream.PollInterval())
	}
	if cfg.Orders.ArmWindow() != 5*time.Minute {
		t.Errorf("ArmWindow = %v", cfg.Orders.ArmWindow())
	}
}

func TestDefaultMarketFallback(t *testing.T) {
	cfg := Default()
	cfg.Markets.Default = "garbage"
	if got := cfg.Markets.DefaultMarket(); string(got) != "hyperliquid" {
		t.Errorf("DefaultMarket = %q, want hyperliquid fallback", got)
	}
}

// =============================================================================
// DYNAMIC KEY ACCESS
// =============================================================================

func TestGetSet(t *testing.T) {
	cfg := Default()

	v, err := cfg.Get("ui.theme")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != "dark" {
		t.Errorf("ui.theme = %v", v)
	}

	if err := cfg.Set("ui.theme", "light"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Theme = %q after Set", cfg.UI.Theme)
	}

	if err := cfg.Set("stream.poll_budget", "50"); err != nil {
		t.Fatalf("Set int: %v", err)
	}
	if cfg.Stream.PollBudget != 50 {
		t.Errorf("PollBudget = %d", cfg.Stream.PollBudget)
	}

	if err := cfg.Set("markets.live_feeds", "false"); err != nil {
		t.Fatalf("Set bool: %v", err)
	}
	if cfg.Markets.LiveFeeds {
		t.Error("LiveFeeds should be false")
	}

	if err := cfg.Set("markets.symbols", "btc,eth"); err != nil {
		t.Fatalf("Set slice: %v", err)
	}
	if len(cfg.Markets.Symbols) != 2 || cfg.Markets.Symbols[0] != "BTC" {
		t.Errorf("Symbols = %v", cfg.Markets.Symbols)
	}

	if _, err := cfg.Get("no.such.key"); err == nil {
		t.Error("Get of unknown key should fail")
	}
	if err := cfg.Set("stream.poll_budget", "abc"); err == nil {
		t.Error("Set with bad integer should fail")
	}
}

func TestKeys(t *testing.T) {
	keys := Keys()
	want := map[string]bool{
		"backend.base_url":        false,
		"stream.poll_interval_ms": false,
		"ui.theme":                false,
		"version":                 false,
	}
	for _, k := range keys {
		if _, ok := want[k]; ok {
			want[k] = true
		}
	}
	for k, found := range want {
		if !found {
			t.Errorf("Keys() missing %q", k)
		}
	}
}

// =============================================================================
// SINGLETON
// =============================================================================

func TestGlobalConcurrentAccess(t *testing.T) {
	ResetGlobalForTesting()
	t.Cleanup(ResetGlobalForTesting)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetGlobal(Default())
		}()
		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}
	wg.Wait()
}

// =============================================================================
// LIVE RELOAD
// =============================================================================

func TestWatcherReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[ui]\ntheme = \"dark\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 4)
	w, err := NewWatcher(path, func(c *Config) { reloaded <- c }, nil)
	if err != nil {
		t.Fatal(err)
	}
	w.debounce = 50 * time.Millisecond
	if err := w.Watch(); err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("[ui]\ntheme = \"light\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.UI.Theme != "light" {
			t.Errorf("reloaded theme = %q, want light", cfg.UI.Theme)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcherKeepsPreviousOnBadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[ui]\ntheme = \"dark\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 4)
	w, err := NewWatcher(path, func(c *Config) { reloaded <- c }, nil)
	if err != nil {
		t.Fatal(err)
	}
	w.debounce = 50 * time.Millisecond
	if err := w.Watch(); err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	// Broken file: no callback, watcher stays alive.
	if err := os.WriteFile(path, []byte("not [valid"), 0o600); err != nil {
		t.Fatal(err)
	}
	select {
	case <-reloaded:
		t.Fatal("broken file must not trigger the callback")
	case <-time.After(500 * time.Millisecond):
	}

	// Fixed file: reload comes through.
	if err := os.WriteFile(path, []byte("[ui]\ntheme = \"light\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	select {
	case cfg := <-reloaded:
		if cfg.UI.Theme != "light" {
			t.Errorf("reloaded theme = %q", cfg.UI.Theme)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for recovery reload")
	}
}
