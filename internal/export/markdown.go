// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/tradedeck/internal/model"
)

// renderMarkdown writes a human-readable transcript: YAML frontmatter,
// one heading per message, activity entries quoted beneath the answer
// they arrived with.
func renderMarkdown(conv *model.Conversation) ([]byte, error) {
	var sb strings.Builder

	sb.WriteString("---\n")
	sb.WriteString(fmt.Sprintf("title: %s\n", escapeYAML(conv.Title)))
	if conv.ID != "" {
		sb.WriteString(fmt.Sprintf("conversation_id: %s\n", conv.ID))
	}
	if conv.Mode != "" {
		sb.WriteString(fmt.Sprintf("mode: %s\n", conv.Mode))
	}
	sb.WriteString(fmt.Sprintf("date: %s\n", conv.CreatedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("messages: %d\n", len(conv.Messages)))
	if conv.Rounds > 0 {
		sb.WriteString(fmt.Sprintf("rounds: %d\n", conv.Rounds))
	}
	sb.WriteString(fmt.Sprintf("exported: %s\n", time.Now().Format(time.RFC3339)))
	sb.WriteString("generator: tradedeck\n")
	sb.WriteString("---\n\n")

	sb.WriteString(fmt.Sprintf("# %s\n\n", conv.Title))

	for _, msg := range conv.Messages {
		sb.WriteString(fmt.Sprintf("## %s", msg.Role.DisplayName()))
		if !msg.Timestamp.IsZero() {
			sb.WriteString(fmt.Sprintf(" — %s", msg.Timestamp.Format("2006-01-02 15:04:05")))
		}
		sb.WriteString("\n\n")

		for _, entry := range msg.Activity {
			sb.WriteString(fmt.Sprintf("> _%s_: %s\n", entry.Kind, strings.ReplaceAll(entry.Text, "\n", " ")))
		}
		if len(msg.Activity) > 0 {
			sb.WriteString("\n")
		}

		content := msg.DisplayContent()
		if content == "" {
			content = "_(no content)_"
		}
		sb.WriteString(content)
		sb.WriteString("\n\n")

		if msg.Interrupted {
			sb.WriteString(fmt.Sprintf("_(paused at round %d)_\n\n", msg.Round))
		}
		if msg.IsError {
			sb.WriteString("_(assistant error)_\n\n")
		}
	}

	return []byte(sb.String()), nil
}

// escapeYAML quotes a frontmatter value when it contains characters
// that would break a bare scalar.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#\"'\n{}[]") {
		return fmt.Sprintf("%q", strings.ReplaceAll(s, "\n", " "))
	}
	return s
}
