// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// client.go - Backend client construction shared by CLI commands.

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/jeranaias/tradedeck/internal/api"
	"github.com/jeranaias/tradedeck/internal/config"
	"github.com/jeranaias/tradedeck/internal/security"
)

// loadConfig loads .env overrides and the config file.
func loadConfig() (*config.Config, error) {
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		return nil, WrapError(err, "load configuration")
	}
	return cfg, nil
}

// newBackendClient builds an API client from config, resolving a sealed
// token interactively when necessary. CLI commands log nowhere, so the
// client gets a nop logger.
func newBackendClient(cfg *config.Config) (*api.Client, error) {
	token, err := resolveToken(cfg)
	if err != nil {
		return nil, err
	}

	client := api.New(cfg.Backend.BaseURL, nil).
		WithToken(token).
		WithMaxRetries(cfg.Backend.MaxRetries).
		WithRateLimit(cfg.Backend.RateLimitRPS, cfg.Backend.RateLimitBurst)
	return client, nil
}

// resolveToken returns the backend bearer token, opening the vault when
// the configured value is ENC:-sealed.
//
// SECURITY: the passphrase is read without echo and zeroed after use.
func resolveToken(cfg *config.Config) (string, error) {
	token := cfg.Backend.Token
	if !security.IsEncrypted(token) {
		return token, nil
	}

	if err := RequiresTTY("unlock the token vault"); err != nil {
		return "", err
	}

	stateDir, err := cfg.ResolveStateDir()
	if err != nil {
		return "", err
	}
	vault := security.NewVault(filepath.Join(stateDir, "vault"))
	if !vault.Provisioned() {
		return "", fmt.Errorf("backend token is sealed but no vault is provisioned in %s", vault.Dir())
	}

	fmt.Fprint(os.Stderr, "Vault passphrase: ")
	passphrase, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", WrapError(err, "read passphrase")
	}
	defer security.ZeroBytes(passphrase)

	if err := vault.Unlock(string(passphrase)); err != nil {
		return "", err
	}
	defer vault.Lock()

	return vault.DecryptString(token)
}
