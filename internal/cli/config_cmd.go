// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration command handler for the tradedeck CLI.
//
// Handles the "tradedeck config" command.
//
// Command: config
// Subcommands: show (default), get, set, path, keys
//
// Examples:
//   tradedeck config show
//   tradedeck config get backend.base_url
//   tradedeck config set markets.default binance
//   tradedeck config path

package cli

import (
	"fmt"
	"strings"

	"github.com/jeranaias/tradedeck/internal/config"
)

// HandleConfigCommand handles the "config" command.
func HandleConfigCommand(args Args) error {
	switch strings.ToLower(args.Subcommand) {
	case "", "show":
		return configShow(args)
	case "get":
		return configGet(args)
	case "set":
		return configSet(args)
	case "path":
		return configPath(args)
	case "keys":
		return configKeys(args)
	default:
		return NewValidationErrorWithExample(
			"subcommand",
			args.Subcommand,
			"unknown config subcommand",
			"tradedeck config [show|get|set|path|keys]",
		)
	}
}

// configShow prints every key with its current value.
func configShow(args Args) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if args.JSON {
		values := make(map[string]interface{})
		for _, key := range config.Keys() {
			if v, err := cfg.Get(key); err == nil {
				values[key] = v
			}
		}
		printJSON("config", values)
		return nil
	}

	fmt.Println(TitleStyle.Render("tradedeck configuration"))
	var section string
	for _, key := range config.Keys() {
		value, err := cfg.Get(key)
		if err != nil {
			continue
		}
		s, _, found := strings.Cut(key, ".")
		if !found {
			s = "general"
		}
		if s != section {
			section = s
			fmt.Println(SectionStyle.Render(section))
		}
		display := fmt.Sprintf("%v", value)
		if display == "" {
			display = DimStyle.Render("(unset)")
		} else if strings.HasSuffix(key, ".token") {
			// SECURITY: never echo credentials.
			display = DimStyle.Render("(set, hidden)")
		} else {
			display = ValueStyle.Render(display)
		}
		fmt.Printf("  %s %s\n", RenderLabel(key+":", 28), display)
	}
	fmt.Println()
	return nil
}

// configGet prints one value.
func configGet(args Args) error {
	if args.ConfigKey == "" {
		return ErrMissingArgument("key", "tradedeck config get backend.base_url")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	value, err := cfg.Get(args.ConfigKey)
	if err != nil {
		return NewNotFoundError("config key", args.ConfigKey)
	}
	if args.JSON {
		printJSON("config.get", map[string]interface{}{args.ConfigKey: value})
		return nil
	}
	fmt.Printf("%v\n", value)
	return nil
}

// configSet updates one value and saves the file.
func configSet(args Args) error {
	if args.ConfigKey == "" || args.ConfigVal == "" {
		return ErrMissingArgument("key value", "tradedeck config set markets.default binance")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Set(args.ConfigKey, args.ConfigVal); err != nil {
		return err
	}
	// Reject values the TUI would refuse at startup.
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return WrapError(err, "save configuration")
	}
	if !args.Quiet {
		fmt.Printf("%s %s = %s\n",
			SuccessStyle.Render("[OK]"),
			args.ConfigKey,
			args.ConfigVal)
	}
	return nil
}

// configPath prints the config file location.
func configPath(args Args) error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if args.JSON {
		printJSON("config.path", map[string]string{"path": path})
		return nil
	}
	fmt.Println(path)
	return nil
}

// configKeys lists every settable key.
func configKeys(args Args) error {
	keys := config.Keys()
	if args.JSON {
		printJSON("config.keys", keys)
		return nil
	}
	for _, key := range keys {
		fmt.Println(key)
	}
	return nil
}
