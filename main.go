// tradedeck - a terminal dashboard for Hyperliquid and Binance accounts.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/jeranaias/tradedeck/internal/api"
	"github.com/jeranaias/tradedeck/internal/cache"
	"github.com/jeranaias/tradedeck/internal/cli"
	"github.com/jeranaias/tradedeck/internal/config"
	"github.com/jeranaias/tradedeck/internal/logging"
	"github.com/jeranaias/tradedeck/internal/market"
	"github.com/jeranaias/tradedeck/internal/model"
	"github.com/jeranaias/tradedeck/internal/security"
	"github.com/jeranaias/tradedeck/internal/storage"
	"github.com/jeranaias/tradedeck/internal/tasks"
	"github.com/jeranaias/tradedeck/internal/ui/app"
	"github.com/jeranaias/tradedeck/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.4.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// taskHistoryLimit caps finished assistant tasks kept for the task panel.
const taskHistoryLimit = 50

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdAsk:
		cli.HandleAsk(args)
	case cli.CmdStatus:
		cli.HandleStatus(args)
	case cli.CmdConfig:
		cli.HandleConfig(args)
	case cli.CmdMarkets:
		cli.HandleMarkets(args)
	case cli.CmdExport:
		cli.HandleExport(args)
	case cli.CmdVersion:
		cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.HandleHelp()
	default:
		runTUI(args)
	}
}

// =============================================================================
// TUI STARTUP
// =============================================================================

// runTUI wires every service and hands control to Bubble Tea. It only
// returns through fail() or a clean program exit.
func runTUI(args cli.Args) {
	if err := cli.RequiresTTY("run the dashboard"); err != nil {
		fail(err)
	}

	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		fail(fmt.Errorf("load configuration: %w", err))
	}
	if args.Market != "" {
		m, err := model.ParseMarket(args.Market)
		if err != nil {
			fail(err)
		}
		cfg.Markets.Default = string(m)
	}

	stateDir, err := cfg.ResolveStateDir()
	if err != nil {
		fail(err)
	}

	logPath, err := cfg.ResolveLogFile()
	if err != nil {
		fail(err)
	}
	logger, closeLog, err := logging.New(logging.Options{
		Dir:      filepath.Dir(logPath),
		Filename: filepath.Base(logPath),
		Level:    cfg.Logging.Level,
	})
	if err != nil {
		fail(fmt.Errorf("open log file: %w", err))
	}
	defer closeLog()

	token, armingSecret, err := unlockSecrets(cfg, stateDir)
	if err != nil {
		fail(err)
	}

	client := api.New(cfg.Backend.BaseURL, logger).
		WithToken(token).
		WithMaxRetries(cfg.Backend.MaxRetries).
		WithRateLimit(cfg.Backend.RateLimitRPS, cfg.Backend.RateLimitBurst)

	store, err := storage.NewConversationStoreWithDir(filepath.Join(stateDir, "conversations"))
	if err != nil {
		fail(fmt.Errorf("open conversation store: %w", err))
	}
	if cfg.Storage.MaxConversations > 0 {
		store.MaxConversations = cfg.Storage.MaxConversations
	}

	activity, err := storage.OpenActivityLog(filepath.Join(stateDir, "activity.db"))
	if err != nil {
		fail(fmt.Errorf("open activity log: %w", err))
	}
	defer activity.Close()
	if cfg.Storage.ActivityMaxRows > 0 {
		activity.SetMaxRows(cfg.Storage.ActivityMaxRows)
	}

	board := market.NewBoard(0)
	feedCtx, stopFeeds := context.WithCancel(context.Background())
	service := market.NewService(board, buildFeeds(cfg, logger)...)
	service.Start(feedCtx)
	defer func() {
		stopFeeds()
		service.Wait()
	}()

	cacheMgr := cache.NewManager()
	snapshotPath := filepath.Join(stateDir, "cache.json")
	if n, err := cacheMgr.LoadSnapshot(snapshotPath, decodeCacheEntry); err != nil {
		logger.Warn("cache snapshot ignored", zap.Error(err))
	} else if n > 0 {
		logger.Debug("cache snapshot restored", zap.Int("entries", n))
	}
	defer func() {
		if err := cacheMgr.SaveSnapshot(snapshotPath, cache.RateLimitsKey(), cache.ProgramsKey()); err != nil {
			logger.Warn("cache snapshot save failed", zap.Error(err))
		}
	}()

	tracker := tasks.NewTracker(taskHistoryLimit, logger)
	runner := tasks.NewRunner(tracker, logger)
	defer runner.Stop()

	var interlock *security.Interlock
	if armingSecret != "" {
		interlock = security.NewInterlock(armingSecret, cfg.Orders.ArmWindow())
	}

	m := app.New(styles.NewThemeForMode(cfg.UI.Theme), app.Services{
		Config:    cfg,
		Logger:    logger,
		Client:    client,
		Cache:     cacheMgr,
		Board:     board,
		Market:    service,
		Tracker:   tracker,
		Runner:    runner,
		Store:     store,
		Activity:  activity,
		Interlock: interlock,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	m.SetSend(p.Send)

	watcher := watchConfig(p, logger)
	if watcher != nil {
		defer watcher.Close()
	}

	logger.Info("dashboard starting",
		zap.String("version", Version),
		zap.String("backend", cfg.Backend.BaseURL),
		zap.String("market", cfg.Markets.Default))

	if _, err := p.Run(); err != nil {
		fail(fmt.Errorf("run dashboard: %w", err))
	}
}

// decodeCacheEntry restores the slow-moving classes the shutdown hook
// snapshots. Everything else refetches on the first tick.
func decodeCacheEntry(key string, raw json.RawMessage) (any, bool) {
	switch key {
	case cache.RateLimitsKey():
		var limits []model.RateLimit
		if json.Unmarshal(raw, &limits) != nil {
			return nil, false
		}
		return limits, true
	case cache.ProgramsKey():
		var programs []model.Program
		if json.Unmarshal(raw, &programs) != nil {
			return nil, false
		}
		return programs, true
	default:
		return nil, false
	}
}

// buildFeeds returns the live websocket feeds, or none when disabled.
func buildFeeds(cfg *config.Config, logger *zap.Logger) []market.Feed {
	if !cfg.Markets.LiveFeeds {
		return nil
	}
	symbols := cfg.Markets.Symbols
	return []market.Feed{
		market.NewHyperliquidFeed(symbols, market.FeedConfig{URL: cfg.Markets.HyperliquidWS}, logger),
		market.NewBinanceFeed(symbols, market.FeedConfig{URL: cfg.Markets.BinanceWS}, logger),
	}
}

// unlockSecrets resolves the backend token and order-arming TOTP secret,
// prompting for the vault passphrase once when either is sealed.
//
// SECURITY: the passphrase is read without echo, zeroed after use, and
// the vault is locked again before the TUI starts.
func unlockSecrets(cfg *config.Config, stateDir string) (token, armingSecret string, err error) {
	token = cfg.Backend.Token
	vault := security.NewVault(filepath.Join(stateDir, "vault"))

	sealed := security.IsEncrypted(token)
	enrolled := vault.Provisioned() && vault.Has(security.SecretArmingTOTP)
	if !sealed && !enrolled {
		return token, "", nil
	}
	if sealed && !vault.Provisioned() {
		return "", "", fmt.Errorf("backend token is sealed but no vault is provisioned in %s", vault.Dir())
	}

	fmt.Fprint(os.Stderr, "Vault passphrase: ")
	passphrase, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", "", fmt.Errorf("read passphrase: %w", err)
	}
	defer security.ZeroBytes(passphrase)

	if err := vault.Unlock(string(passphrase)); err != nil {
		return "", "", err
	}
	defer vault.Lock()

	if sealed {
		if token, err = vault.DecryptString(token); err != nil {
			return "", "", fmt.Errorf("unseal backend token: %w", err)
		}
	}
	if enrolled {
		if armingSecret, err = vault.Load(security.SecretArmingTOTP); err != nil {
			return "", "", fmt.Errorf("load arming secret: %w", err)
		}
	}
	return token, armingSecret, nil
}

// watchConfig hot-reloads the config file into the running UI. A watch
// failure is logged and ignored; editing config without restart is a
// convenience, not a requirement.
func watchConfig(p *tea.Program, logger *zap.Logger) *config.Watcher {
	path, err := config.ConfigPath()
	if err != nil {
		logger.Warn("config watch disabled", zap.Error(err))
		return nil
	}
	watcher, err := config.NewWatcher(path, func(cfg *config.Config) {
		p.Send(app.ConfigReloadedMsg{Config: cfg})
	}, logger)
	if err != nil {
		logger.Warn("config watch disabled", zap.Error(err))
		return nil
	}
	if err := watcher.Watch(); err != nil {
		logger.Warn("config watch disabled", zap.Error(err))
		watcher.Close()
		return nil
	}
	return watcher
}

// fail prints the error and exits with its mapped code.
func fail(err error) {
	fmt.Fprintf(os.Stderr, "%s %v\n", cli.ErrorStyle.Render("Error:"), err)
	os.Exit(cli.GetExitCode(err))
}
