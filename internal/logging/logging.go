// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the application logger.
//
// The TUI owns stdout and stderr, so the logger always writes to a file
// under the state directory. Components receive a *zap.Logger through
// their constructors; zap.NewNop() is the default everywhere so tests
// stay silent without setup.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures the file logger.
type Options struct {
	// Dir is the directory log files are written into.
	Dir string

	// Filename is the log file name inside Dir.
	Filename string

	// Level is the minimum level: "debug", "info", "warn", "error".
	Level string

	// Development switches to the console encoder with caller info.
	Development bool
}

// DefaultOptions returns the standard log location under the state dir.
func DefaultOptions(stateDir string) Options {
	return Options{
		Dir:      filepath.Join(stateDir, "logs"),
		Filename: "tradedeck.log",
		Level:    "info",
	}
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

// New creates a file-backed zap logger. The caller owns the returned
// close function and should defer it before the program exits.
func New(opts Options) (*zap.Logger, func(), error) {
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}

	path := filepath.Join(opts.Dir, opts.Filename)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	level, err := ParseLevel(opts.Level)
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if opts.Development {
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(f), level)
	logger := zap.New(core)

	closeFn := func() {
		logger.Sync()
		f.Close()
	}
	return logger, closeFn, nil
}

// ParseLevel maps a config string to a zap level.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}
