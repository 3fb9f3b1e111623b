// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestChunkDecodeFieldSpellings(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantKind ChunkKind
		wantText string
	}{
		{
			"event_type with string data",
			`{"event_type":"content","data":"Hel"}`,
			KindContent, "Hel",
		},
		{
			"type with object data",
			`{"type":"reasoning","data":{"text":"considering exposure"}}`,
			KindReasoning, "considering exposure",
		},
		{
			"content field on object data",
			`{"event_type":"content","data":{"content":"lo"}}`,
			KindContent, "lo",
		},
		{
			"bare content shorthand",
			`{"content":"plain"}`,
			KindContent, "plain",
		},
		{
			"tool call falls back to name",
			`{"event_type":"tool_call","data":{"name":"fetch_klines"}}`,
			KindToolCall, "fetch_klines",
		},
		{
			"message field",
			`{"type":"save_suggestion","data":{"message":"save as program?"}}`,
			KindSaveSuggestion, "save as program?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Chunk
			if err := json.Unmarshal([]byte(tt.in), &c); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if c.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", c.Kind, tt.wantKind)
			}
			if got := c.Text(); got != tt.wantText {
				t.Errorf("Text = %q, want %q", got, tt.wantText)
			}
		})
	}
}

func TestChunkDecodeUntagged(t *testing.T) {
	var c Chunk
	err := json.Unmarshal([]byte(`{"data":"orphan"}`), &c)
	if !errors.Is(err, ErrChunkUntagged) {
		t.Errorf("err = %v, want ErrChunkUntagged", err)
	}
}

func TestChunkTerminalClassification(t *testing.T) {
	terminal := []ChunkKind{KindDone, KindInterrupted, KindError}
	for _, k := range terminal {
		if !k.Terminal() {
			t.Errorf("%s should be terminal", k)
		}
	}
	nonTerminal := []ChunkKind{KindContent, KindReasoning, KindToolCall, KindToolResult, KindSaveSuggestion, ChunkKind("future_kind")}
	for _, k := range nonTerminal {
		if k.Terminal() {
			t.Errorf("%s should not be terminal", k)
		}
	}
}

func TestChunkSideChannelClassification(t *testing.T) {
	side := []ChunkKind{KindReasoning, KindToolCall, KindToolResult, KindSaveSuggestion}
	for _, k := range side {
		if !k.SideChannel() {
			t.Errorf("%s should be side-channel", k)
		}
	}
	if KindContent.SideChannel() || KindDone.SideChannel() {
		t.Error("content/done misclassified as side-channel")
	}
}

func TestChunkTerminalPayloads(t *testing.T) {
	var done Chunk
	if err := json.Unmarshal([]byte(`{"event_type":"done","data":{"content":"final","conversation_id":"c-42"}}`), &done); err != nil {
		t.Fatal(err)
	}
	if done.Text() != "final" {
		t.Errorf("done Text = %q", done.Text())
	}
	if done.ConversationID() != "c-42" {
		t.Errorf("ConversationID = %q", done.ConversationID())
	}

	var paused Chunk
	if err := json.Unmarshal([]byte(`{"event_type":"interrupted","data":{"round":3}}`), &paused); err != nil {
		t.Fatal(err)
	}
	if paused.Round() != 3 {
		t.Errorf("Round = %d, want 3", paused.Round())
	}
}

func TestChunkErrorText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"error field", `{"event_type":"error","data":{"error":"rate limited"}}`, "rate limited"},
		{"message field", `{"event_type":"error","data":{"message":"backend down"}}`, "backend down"},
		{"string data", `{"event_type":"error","data":"plain failure"}`, "plain failure"},
		{"empty payload fallback", `{"event_type":"error","data":{}}`, "task failed"},
		{"no payload fallback", `{"event_type":"error"}`, "task failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Chunk
			if err := json.Unmarshal([]byte(tt.in), &c); err != nil {
				t.Fatal(err)
			}
			if got := c.ErrorText(); got != tt.want {
				t.Errorf("ErrorText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBatchDecodeArraySpellings(t *testing.T) {
	asChunks := `{"chunks":[{"event_type":"content","data":"a"}],"next_offset":1,"status":"running"}`
	asEvents := `{"events":[{"type":"content","data":"a"}],"next_offset":1,"status":"running"}`

	for _, in := range []string{asChunks, asEvents} {
		var b Batch
		if err := json.Unmarshal([]byte(in), &b); err != nil {
			t.Fatalf("unmarshal %s: %v", in, err)
		}
		if len(b.Chunks) != 1 || b.Chunks[0].Kind != KindContent {
			t.Errorf("chunks = %+v", b.Chunks)
		}
		if b.NextOffset == nil || *b.NextOffset != 1 {
			t.Errorf("NextOffset = %v", b.NextOffset)
		}
		if b.Completed() {
			t.Error("running batch reported completed")
		}
	}
}

func TestBatchDecodeSkipsMalformed(t *testing.T) {
	in := `{"chunks":[{"event_type":"content","data":"ok"},{"data":"untagged"},"not an object",{"event_type":"done"}],"status":"completed"}`
	var b Batch
	if err := json.Unmarshal([]byte(in), &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(b.Chunks) != 2 {
		t.Fatalf("chunks = %d, want 2 (bad entries skipped)", len(b.Chunks))
	}
	if b.Chunks[0].Kind != KindContent || b.Chunks[1].Kind != KindDone {
		t.Errorf("kinds = %s, %s", b.Chunks[0].Kind, b.Chunks[1].Kind)
	}
	if !b.Completed() {
		t.Error("completed status missed")
	}
}

func TestBatchDecodeAbsentOffset(t *testing.T) {
	var b Batch
	if err := json.Unmarshal([]byte(`{"chunks":[],"status":"running"}`), &b); err != nil {
		t.Fatal(err)
	}
	if b.NextOffset != nil {
		t.Errorf("NextOffset = %v, want nil", b.NextOffset)
	}
}
