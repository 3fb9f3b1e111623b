// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jeranaias/tradedeck/internal/model"
)

func testConversation() *model.Conversation {
	conv := model.NewConversation("analysis", "en")
	conv.AddUserMessage("What is BTC funding doing?")
	msg := conv.StartAssistantMessage()
	msg.AddActivity(model.ActivityReasoning, "checking funding history")
	msg.AppendChunk("Funding is ")
	msg.AppendChunk("slightly positive.")
	msg.Finalize("")
	return conv
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{"empty defaults to markdown", "", FormatMarkdown, false},
		{"md alias", "md", FormatMarkdown, false},
		{"markdown", "markdown", FormatMarkdown, false},
		{"json", "JSON", FormatJSON, false},
		{"unknown", "pdf", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRenderMarkdown(t *testing.T) {
	conv := testConversation()

	data, err := Render(conv, FormatMarkdown)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	text := string(data)

	for _, want := range []string{
		"generator: tradedeck",
		"## You",
		"## Assistant",
		"Funding is slightly positive.",
		"checking funding history",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("markdown missing %q:\n%s", want, text)
		}
	}
}

func TestRenderJSONRoundTrip(t *testing.T) {
	conv := testConversation()

	data, err := Render(conv, FormatJSON)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	var env jsonEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Generator != "tradedeck" {
		t.Errorf("generator = %q", env.Generator)
	}
	if len(env.Conversation.Messages) != 2 {
		t.Errorf("messages = %d, want 2", len(env.Conversation.Messages))
	}
	if got := env.Conversation.Messages[1].Content; got != "Funding is slightly positive." {
		t.Errorf("assistant content = %q", got)
	}
}

func TestRenderEmptyConversation(t *testing.T) {
	conv := model.NewConversation("analysis", "en")
	if _, err := Render(conv, FormatMarkdown); err == nil {
		t.Fatal("expected error for empty conversation")
	}
	if _, err := Render(nil, FormatMarkdown); err == nil {
		t.Fatal("expected error for nil conversation")
	}
}

func TestWriteTranscript(t *testing.T) {
	dir := t.TempDir()
	conv := testConversation()

	path, err := WriteTranscript(conv, FormatMarkdown, dir)
	if err != nil {
		t.Fatalf("WriteTranscript: %v", err)
	}
	if filepath.Dir(path) != filepath.Join(dir, "exports") {
		t.Errorf("path %q not under exports dir", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("exported file missing: %v", err)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"What is BTC funding doing?", "what-is-btc-funding-doing"},
		{"  spaces   everywhere  ", "spaces-everywhere"},
		{"???", ""},
	}
	for _, tt := range tests {
		if got := slugify(tt.input); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
