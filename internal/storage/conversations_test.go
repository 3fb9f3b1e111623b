// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/tradedeck/internal/model"
)

// =============================================================================
// CONVERSATION STORE TESTS
// =============================================================================

func TestNewConversationStoreWithDir(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewConversationStoreWithDir(tempDir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	if store.BaseDir != tempDir {
		t.Errorf("BaseDir = %q, want %q", store.BaseDir, tempDir)
	}
	if store.MaxConversations != 100 {
		t.Errorf("MaxConversations = %d, want 100", store.MaxConversations)
	}
}

func TestConversationStore_SaveAndLoad(t *testing.T) {
	store, err := NewConversationStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	conv := model.NewConversation("trade", "en")
	conv.AddUserMessage("What is my BTC exposure?")
	asst := conv.StartAssistantMessage()
	asst.AppendChunk("Checking positions.")
	asst.Finalize("Your BTC exposure is 0.5 BTC long.")

	key, err := store.Save("", conv)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if key == "" {
		t.Error("Expected non-empty key")
	}
	if !strings.HasPrefix(key, "local_") {
		t.Errorf("Unadopted conversation key should start with 'local_', got %q", key)
	}

	loaded, err := store.Load(key)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Mode != "trade" {
		t.Errorf("Loaded Mode = %q, want %q", loaded.Mode, "trade")
	}
	if len(loaded.Messages) != 2 {
		t.Fatalf("Loaded Messages count = %d, want 2", len(loaded.Messages))
	}
	if loaded.Messages[1].Content != "Your BTC exposure is 0.5 BTC long." {
		t.Errorf("Assistant content = %q", loaded.Messages[1].Content)
	}
}

func TestConversationStore_AdoptedConversationKeyedByID(t *testing.T) {
	store, err := NewConversationStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	conv := model.NewConversation("", "")
	conv.AddUserMessage("hello")
	conv.Adopt("c-42")

	key, err := store.Save("", conv)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if key != "c-42" {
		t.Errorf("Adopted conversation key = %q, want %q", key, "c-42")
	}

	if _, err := store.Load("c-42"); err != nil {
		t.Errorf("Load by backend ID failed: %v", err)
	}
}

func TestConversationStore_AdoptionMigratesKey(t *testing.T) {
	store, err := NewConversationStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	// First save before the backend has assigned an identity.
	conv := model.NewConversation("", "")
	conv.AddUserMessage("first exchange")
	localKey, err := store.Save("", conv)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// The task completes and the conversation adopts its backend ID.
	conv.Adopt("c-99")
	newKey, err := store.Save(localKey, conv)
	if err != nil {
		t.Fatalf("Save after adoption failed: %v", err)
	}
	if newKey != "c-99" {
		t.Errorf("Key after adoption = %q, want %q", newKey, "c-99")
	}

	// The file now lives under the backend ID; the provisional file is gone.
	if _, err := store.Load("c-99"); err != nil {
		t.Errorf("Load by adopted ID failed: %v", err)
	}
	if _, err := store.Load(localKey); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("Provisional file should be removed, Load returned %v", err)
	}

	metas, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(metas) != 1 {
		t.Errorf("List count after migration = %d, want 1", len(metas))
	}
}

func TestConversationStore_LoadNotFound(t *testing.T) {
	store, err := NewConversationStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	_, err = store.Load("nonexistent-key")
	if !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("Expected ErrConversationNotFound, got %v", err)
	}
}

func TestConversationStore_List(t *testing.T) {
	store, err := NewConversationStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	older := model.NewConversation("", "")
	older.AddUserMessage("older question about ETH funding")
	older.UpdatedAt = base

	newer := model.NewConversation("", "")
	newer.AddUserMessage("newer question about BTC basis")
	newer.UpdatedAt = base.Add(time.Hour)

	if _, err := store.Save("", older); err != nil {
		t.Fatalf("Save older failed: %v", err)
	}
	if _, err := store.Save("", newer); err != nil {
		t.Fatalf("Save newer failed: %v", err)
	}

	metas, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("List count = %d, want 2", len(metas))
	}

	// Most recent first.
	if !strings.Contains(metas[0].Preview, "newer question") {
		t.Errorf("First listed preview = %q, want the newer conversation", metas[0].Preview)
	}
	if metas[0].MessageCount != 1 {
		t.Errorf("MessageCount = %d, want 1", metas[0].MessageCount)
	}
	if metas[0].Title == "" {
		t.Error("Title should be derived from the first user message")
	}
	if metas[0].ID != "" {
		t.Errorf("Unadopted conversation meta ID = %q, want empty", metas[0].ID)
	}
}

func TestConversationStore_LoadByIndex(t *testing.T) {
	store, err := NewConversationStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	conv := model.NewConversation("", "")
	conv.AddUserMessage("only one")
	if _, err := store.Save("", conv); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.LoadByIndex(0)
	if err != nil {
		t.Fatalf("LoadByIndex failed: %v", err)
	}
	if len(loaded.Messages) != 1 {
		t.Errorf("Messages = %d, want 1", len(loaded.Messages))
	}

	if _, err := store.LoadByIndex(5); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("Out-of-range index should return ErrConversationNotFound, got %v", err)
	}
}

func TestConversationStore_Search(t *testing.T) {
	store, err := NewConversationStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	a := model.NewConversation("", "")
	a.AddUserMessage("funding rate history for SOL")
	b := model.NewConversation("", "")
	b.AddUserMessage("open order status")

	store.Save("", a)
	store.Save("", b)

	results, err := store.Search("FUNDING")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Search results = %d, want 1", len(results))
	}
	if !strings.Contains(results[0].Preview, "funding rate") {
		t.Errorf("Search matched wrong conversation: %q", results[0].Preview)
	}
}

func TestConversationStore_SearchMessages(t *testing.T) {
	store, err := NewConversationStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	conv := model.NewConversation("", "")
	conv.AddUserMessage("question")
	asst := conv.StartAssistantMessage()
	asst.Finalize("The liquidation price is far below the mark.")
	store.Save("", conv)

	// Matches assistant content, which List previews never include.
	results, err := store.SearchMessages("liquidation")
	if err != nil {
		t.Fatalf("SearchMessages failed: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("SearchMessages results = %d, want 1", len(results))
	}

	// Empty query lists everything.
	all, err := store.SearchMessages("")
	if err != nil {
		t.Fatalf("SearchMessages empty query failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("Empty query results = %d, want 1", len(all))
	}
}

func TestConversationStore_Delete(t *testing.T) {
	store, err := NewConversationStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	conv := model.NewConversation("", "")
	conv.AddUserMessage("delete me")
	key, _ := store.Save("", conv)

	if err := store.Delete(key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := store.Load(key); !errors.Is(err, ErrConversationNotFound) {
		t.Error("Conversation should not exist after delete")
	}
}

func TestConversationStore_DeleteNotFound(t *testing.T) {
	store, err := NewConversationStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	if err := store.Delete("missing"); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("Expected ErrConversationNotFound, got %v", err)
	}
}

func TestConversationStore_EnforceLimit(t *testing.T) {
	store, err := NewConversationStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	store.MaxConversations = 2

	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	keys := make([]string, 3)
	for i := 0; i < 3; i++ {
		conv := model.NewConversation("", "")
		conv.AddUserMessage("conversation")
		conv.UpdatedAt = base.Add(time.Duration(i) * time.Hour)
		keys[i], err = store.Save("", conv)
		if err != nil {
			t.Fatalf("Save %d failed: %v", i, err)
		}
	}

	metas, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("After limit, count = %d, want 2", len(metas))
	}

	// The oldest conversation was pruned.
	if _, err := store.Load(keys[0]); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("Oldest conversation should be pruned, Load returned %v", err)
	}
	if _, err := store.Load(keys[2]); err != nil {
		t.Errorf("Newest conversation should survive: %v", err)
	}
}

func TestConversationStore_Clear(t *testing.T) {
	store, err := NewConversationStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	conv := model.NewConversation("", "")
	conv.AddUserMessage("gone soon")
	store.Save("", conv)

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	metas, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(metas) != 0 {
		t.Errorf("After Clear, count = %d, want 0", len(metas))
	}
}

// =============================================================================
// EXPORT TESTS
// =============================================================================

func TestExportMarkdown(t *testing.T) {
	conv := model.NewConversation("", "")
	conv.AddUserMessage("Show my positions")
	asst := conv.StartAssistantMessage()
	asst.AppendChunk("Looking")
	asst.FinalizeInterrupted(2)
	conv.Adopt("c-7")

	md := ExportMarkdown(conv)

	if !strings.Contains(md, "**User**") {
		t.Error("Export should label user messages")
	}
	if !strings.Contains(md, "**Assistant**") {
		t.Error("Export should label assistant messages")
	}
	if !strings.Contains(md, "Conversation: c-7") {
		t.Error("Export should include the adopted conversation ID")
	}
	if !strings.Contains(md, "paused, round 2") {
		t.Errorf("Export should mark the interrupted round, got:\n%s", md)
	}
}

func TestExportJSON(t *testing.T) {
	conv := model.NewConversation("scout", "")
	conv.AddUserMessage("hi")

	data, err := ExportJSON(conv)
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}
	if !strings.Contains(string(data), `"mode": "scout"`) {
		t.Errorf("Exported JSON missing mode, got:\n%s", data)
	}
}

// =============================================================================
// FORMATTING TESTS
// =============================================================================

func TestFormatConversationList(t *testing.T) {
	out := FormatConversationList(nil)
	if out != "No saved conversations." {
		t.Errorf("Empty list output = %q", out)
	}

	metas := []ConversationMeta{
		{
			Key:          "c-1",
			Title:        "BTC exposure check",
			UpdatedAt:    time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC),
			MessageCount: 4,
		},
	}
	out = FormatConversationList(metas)
	if !strings.Contains(out, "c-1") || !strings.Contains(out, "BTC exposure check") {
		t.Errorf("Formatted list missing fields:\n%s", out)
	}
	if !strings.Contains(out, "2026-08-20 09:30") {
		t.Errorf("Formatted list missing timestamp:\n%s", out)
	}
}
