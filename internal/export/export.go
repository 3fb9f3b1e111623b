// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes conversation transcripts to files for sharing
// outside the dashboard.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/tradedeck/internal/model"
	"github.com/jeranaias/tradedeck/internal/util"
)

// =============================================================================
// FORMATS
// =============================================================================

// Format selects a transcript encoding.
type Format string

const (
	// FormatMarkdown renders a readable transcript with a metadata
	// header and the side-channel activity as quoted lines.
	FormatMarkdown Format = "markdown"

	// FormatJSON writes the conversation's full local mirror, suitable
	// for re-import or inspection.
	FormatJSON Format = "json"
)

// ParseFormat normalizes a user-supplied format name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown export format %q (markdown, json)", name)
	}
}

// extension returns the file extension for a format.
func (f Format) extension() string {
	if f == FormatJSON {
		return ".json"
	}
	return ".md"
}

// =============================================================================
// TRANSCRIPT EXPORT
// =============================================================================

// Render encodes a conversation in the given format.
func Render(conv *model.Conversation, format Format) ([]byte, error) {
	if conv == nil {
		return nil, fmt.Errorf("export: nil conversation")
	}
	if len(conv.Messages) == 0 {
		return nil, fmt.Errorf("export: conversation has no messages")
	}

	switch format {
	case FormatJSON:
		return renderJSON(conv)
	case FormatMarkdown, "":
		return renderMarkdown(conv)
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// WriteTranscript renders the conversation and writes it under
// stateDir/exports, returning the file path. An empty stateDir falls
// back to the working directory.
func WriteTranscript(conv *model.Conversation, format Format, stateDir string) (string, error) {
	if format == "" {
		format = FormatMarkdown
	}

	data, err := Render(conv, format)
	if err != nil {
		return "", err
	}

	dir := "."
	if stateDir != "" {
		dir = filepath.Join(stateDir, "exports")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(dir, exportFilename(conv, format))
	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return path, nil
}

// exportFilename derives a filesystem-safe name from the title and a
// timestamp so repeated exports never collide.
func exportFilename(conv *model.Conversation, format Format) string {
	title := slugify(conv.Title)
	if title == "" {
		title = "conversation"
	}
	stamp := time.Now().Format("20060102-150405")
	return fmt.Sprintf("%s-%s%s", title, stamp, format.extension())
}

// slugify keeps letters, digits, and dashes, lowercased, capped at 40
// bytes on a rune boundary.
func slugify(s string) string {
	var sb strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				sb.WriteByte('-')
				lastDash = true
			}
		}
		if sb.Len() >= 40 {
			break
		}
	}
	return strings.Trim(sb.String(), "-")
}
