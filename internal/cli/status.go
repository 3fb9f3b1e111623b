// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Status command handler for the tradedeck CLI.
//
// Handles the "tradedeck status" command: config location, backend
// reachability, rate-limit headroom, vault and arming state.
//
// Command: status
// Aliases: s
//
// Examples:
//   tradedeck status          Human-readable status report
//   tradedeck status --json   Machine-readable for scripts

package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/tradedeck/internal/config"
	"github.com/jeranaias/tradedeck/internal/model"
	"github.com/jeranaias/tradedeck/internal/security"
)

// statusProbeTimeout bounds the backend reachability check.
const statusProbeTimeout = 5 * time.Second

// statusReport is the JSON shape of the status command.
type statusReport struct {
	ConfigPath  string            `json:"config_path"`
	StateDir    string            `json:"state_dir"`
	BackendURL  string            `json:"backend_url"`
	Reachable   bool              `json:"reachable"`
	ProbeError  string            `json:"probe_error,omitempty"`
	RateLimits  []model.RateLimit `json:"rate_limits,omitempty"`
	Market      string            `json:"default_market"`
	Symbols     []string          `json:"symbols"`
	LiveFeeds   bool              `json:"live_feeds"`
	Provisioned bool              `json:"vault_provisioned"`
	Enrolled    bool              `json:"arming_enrolled"`
}

// HandleStatusCommand handles the "status" command.
func HandleStatusCommand(args Args) error {
	cfg, err := loadConfig()
	if err != nil {
		if args.JSON {
			printJSONError("status", err)
		}
		return err
	}

	report, err := buildStatusReport(cfg)
	if err != nil {
		if args.JSON {
			printJSONError("status", err)
		}
		return err
	}

	if args.JSON {
		printJSON("status", report)
		return nil
	}

	printStatusReport(report)
	return nil
}

// buildStatusReport gathers the local state and probes the backend.
func buildStatusReport(cfg *config.Config) (*statusReport, error) {
	configPath, err := config.ConfigPath()
	if err != nil {
		return nil, err
	}
	stateDir, err := cfg.ResolveStateDir()
	if err != nil {
		return nil, err
	}

	vault := security.NewVault(filepath.Join(stateDir, "vault"))

	report := &statusReport{
		ConfigPath:  configPath,
		StateDir:    stateDir,
		BackendURL:  cfg.Backend.BaseURL,
		Market:      string(cfg.Markets.DefaultMarket()),
		Symbols:     cfg.Markets.Symbols,
		LiveFeeds:   cfg.Markets.LiveFeeds,
		Provisioned: vault.Provisioned(),
		Enrolled:    vault.Has(security.SecretArmingTOTP),
	}

	client, err := newBackendClient(cfg)
	if err != nil {
		report.ProbeError = err.Error()
		return report, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), statusProbeTimeout)
	defer cancel()

	limits, err := client.RateLimits(ctx)
	if err != nil {
		report.ProbeError = err.Error()
		return report, nil
	}
	report.Reachable = true
	report.RateLimits = limits
	return report, nil
}

// printStatusReport renders the human-readable status.
func printStatusReport(r *statusReport) {
	fmt.Println(TitleStyle.Render("tradedeck status"))

	fmt.Println(SectionStyle.Render("Configuration"))
	fmt.Printf("  %s %s\n", RenderLabel("Config file:"), ValueStyle.Render(r.ConfigPath))
	fmt.Printf("  %s %s\n", RenderLabel("State dir:"), ValueStyle.Render(r.StateDir))
	fmt.Printf("  %s %s\n", RenderLabel("Default market:"), ValueStyle.Render(r.Market))
	fmt.Printf("  %s %s\n", RenderLabel("Watchlist:"), ValueStyle.Render(strings.Join(r.Symbols, ", ")))
	fmt.Printf("  %s %s\n", RenderLabel("Live feeds:"), renderBool(r.LiveFeeds))

	fmt.Println(SectionStyle.Render("Backend"))
	fmt.Printf("  %s %s\n", RenderLabel("Address:"), ValueStyle.Render(r.BackendURL))
	if r.Reachable {
		fmt.Printf("  %s %s\n", RenderLabel("Reachable:"), RenderStatus("ok"))
		for _, rl := range r.RateLimits {
			fmt.Printf("  %s %s\n",
				RenderLabel(rl.Market.DisplayName()+":"),
				ValueStyle.Render(fmt.Sprintf("%d/%d requests (%.0f%% headroom)",
					rl.Used, rl.Cap, rl.Headroom()*100)))
		}
	} else {
		fmt.Printf("  %s %s %s\n",
			RenderLabel("Reachable:"),
			RenderStatus("fail"),
			DimStyle.Render(r.ProbeError))
	}

	fmt.Println(SectionStyle.Render("Security"))
	fmt.Printf("  %s %s\n", RenderLabel("Token vault:"), renderProvisioned(r.Provisioned))
	fmt.Printf("  %s %s\n", RenderLabel("Order arming:"), renderEnrolled(r.Enrolled))
	fmt.Println()
}

func renderBool(v bool) string {
	if v {
		return SuccessStyle.Render("enabled")
	}
	return DimStyle.Render("disabled")
}

func renderProvisioned(v bool) string {
	if v {
		return SuccessStyle.Render("provisioned")
	}
	return DimStyle.Render("not provisioned (plaintext token)")
}

func renderEnrolled(v bool) string {
	if v {
		return SuccessStyle.Render("enrolled (TOTP required)")
	}
	return WarningStyle.Render("not enrolled (orders ungated)")
}
