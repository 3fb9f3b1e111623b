// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/tradedeck/internal/model"
	"github.com/jeranaias/tradedeck/internal/util"
)

// =============================================================================
// STORED CONVERSATION TYPE
// =============================================================================

// StoredConversation wraps a conversation with its file key. The key is
// what the store files the conversation under; it differs from the
// conversation ID until the backend identity has been adopted.
type StoredConversation struct {
	Key          string              `json:"key"`
	SavedAt      time.Time           `json:"saved_at"`
	Conversation *model.Conversation `json:"conversation"`
}

// ConversationMeta contains metadata for listing conversations.
type ConversationMeta struct {
	Key          string    `json:"key"`
	ID           string    `json:"id"` // Backend ID, empty until adopted
	Title        string    `json:"title"`
	Mode         string    `json:"mode"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
	Preview      string    `json:"preview"` // First user message truncated
}

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// ConversationStore handles conversation persistence.
type ConversationStore struct {
	// BaseDir is the directory for storing conversations
	// Default: ~/.tradedeck/conversations/
	BaseDir string

	// MaxConversations limits stored conversations (0 = unlimited)
	MaxConversations int
}

// NewConversationStore creates a store under the user home directory.
func NewConversationStore() (*ConversationStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewConversationStoreWithDir(filepath.Join(homeDir, ".tradedeck", "conversations"))
}

// NewConversationStoreWithDir creates a store with a custom directory.
func NewConversationStoreWithDir(baseDir string) (*ConversationStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	return &ConversationStore{
		BaseDir:          baseDir,
		MaxConversations: 100,
	}, nil
}

// =============================================================================
// SAVE OPERATIONS
// =============================================================================

// Save persists a conversation and returns its file key. Pass the key
// from the previous Save, or "" on first save. Unadopted conversations
// get a provisional local key; once the conversation carries its
// backend ID the file migrates to that ID so reopening by
// conversation_id finds it.
func (s *ConversationStore) Save(key string, conv *model.Conversation) (string, error) {
	if conv == nil {
		return "", errors.New("cannot save nil conversation")
	}

	if key == "" {
		key = conv.ID
	}
	if key == "" {
		key = generateLocalKey()
	}

	// Migrate provisional files to the adopted backend identity.
	oldKey := ""
	if conv.ID != "" && key != conv.ID {
		oldKey = key
		key = conv.ID
	}

	rec := StoredConversation{
		Key:          key,
		SavedAt:      time.Now(),
		Conversation: conv,
	}

	data, err := json.MarshalIndent(&rec, "", "  ")
	if err != nil {
		return "", err
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	if err := util.AtomicWriteFile(s.filePath(key), data, 0644); err != nil {
		return "", err
	}

	// Remove the provisional file only after the adopted one is on disk.
	if oldKey != "" {
		os.Remove(s.filePath(oldKey))
	}

	if s.MaxConversations > 0 {
		s.enforceLimit()
	}

	return key, nil
}

// enforceLimit removes oldest conversations if over limit.
func (s *ConversationStore) enforceLimit() {
	metas, err := s.List()
	if err != nil || len(metas) <= s.MaxConversations {
		return
	}

	// Sort by updated time (oldest first)
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.Before(metas[j].UpdatedAt)
	})

	excess := len(metas) - s.MaxConversations
	for i := 0; i < excess; i++ {
		s.Delete(metas[i].Key)
	}
}

// =============================================================================
// LOAD OPERATIONS
// =============================================================================

// Load retrieves a conversation by file key (or adopted backend ID).
func (s *ConversationStore) Load(key string) (*model.Conversation, error) {
	data, err := os.ReadFile(s.filePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	var rec StoredConversation
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	if rec.Conversation == nil {
		return nil, ErrConversationNotFound
	}

	return rec.Conversation, nil
}

// LoadByIndex loads a conversation by its index in the list (0 = most recent).
func (s *ConversationStore) LoadByIndex(index int) (*model.Conversation, error) {
	metas, err := s.List()
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= len(metas) {
		return nil, ErrConversationNotFound
	}

	return s.Load(metas[index].Key)
}

// =============================================================================
// LIST OPERATIONS
// =============================================================================

// List returns all saved conversations (most recent first).
func (s *ConversationStore) List() ([]ConversationMeta, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []ConversationMeta{}, nil
		}
		return nil, err
	}

	var metas []ConversationMeta

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		key := strings.TrimSuffix(entry.Name(), ".json")

		conv, err := s.Load(key)
		if err != nil {
			continue // Skip corrupted files
		}

		// Get first user message as preview
		preview := ""
		for _, msg := range conv.Messages {
			if msg.Role == model.RoleUser {
				preview = truncateString(msg.Content, 80)
				break
			}
		}

		metas = append(metas, ConversationMeta{
			Key:          key,
			ID:           conv.ID,
			Title:        conv.Title,
			Mode:         conv.Mode,
			CreatedAt:    conv.CreatedAt,
			UpdatedAt:    conv.UpdatedAt,
			MessageCount: len(conv.Messages),
			Preview:      preview,
		})
	}

	// Sort by updated time (most recent first)
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})

	return metas, nil
}

// Search finds conversations whose title or preview matches a query.
func (s *ConversationStore) Search(query string) ([]ConversationMeta, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(query)
	var results []ConversationMeta

	for _, meta := range all {
		if strings.Contains(strings.ToLower(meta.Title), query) ||
			strings.Contains(strings.ToLower(meta.Preview), query) {
			results = append(results, meta)
		}
	}

	return results, nil
}

// SearchMessages searches conversations by message content.
// Returns conversations where any message contains the query string
// (case-insensitive).
func (s *ConversationStore) SearchMessages(query string) ([]ConversationMeta, error) {
	if query == "" {
		return s.List()
	}

	query = strings.ToLower(query)
	all, err := s.List()
	if err != nil {
		return nil, err
	}

	var results []ConversationMeta

	for _, meta := range all {
		conv, err := s.Load(meta.Key)
		if err != nil {
			continue
		}

		for _, msg := range conv.Messages {
			if strings.Contains(strings.ToLower(msg.Content), query) {
				results = append(results, meta)
				break // Found a match, move to next conversation
			}
		}
	}

	return results, nil
}

// =============================================================================
// DELETE OPERATIONS
// =============================================================================

// Delete removes a conversation by file key.
func (s *ConversationStore) Delete(key string) error {
	if err := os.Remove(s.filePath(key)); err != nil {
		if os.IsNotExist(err) {
			return ErrConversationNotFound
		}
		return err
	}

	return nil
}

// Clear removes all saved conversations.
func (s *ConversationStore) Clear() error {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			os.Remove(filepath.Join(s.BaseDir, entry.Name()))
		}
	}

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// filePath returns the file path for a conversation key.
func (s *ConversationStore) filePath(key string) string {
	return filepath.Join(s.BaseDir, key+".json")
}

// generateLocalKey creates a provisional key for a conversation that
// has no backend identity yet. The prefix keeps local keys visually
// distinct from adopted conversation IDs.
func generateLocalKey() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "local_" + hex.EncodeToString(bytes)
}

// truncateString truncates a string to maxLen characters, adding "..." if truncated.
// Uses rune-based truncation for proper Unicode handling.
func truncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrConversationNotFound is returned when a conversation doesn't exist.
// Use errors.Is(err, ErrConversationNotFound) to check for this error.
var ErrConversationNotFound = &ConversationError{Message: "conversation not found"}

// ConversationError represents a conversation-related error.
// It implements the error interface and can be compared using errors.Is.
type ConversationError struct {
	Message string
}

// Error implements the error interface.
func (e *ConversationError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing conversation errors.
func (e *ConversationError) Is(target error) bool {
	t, ok := target.(*ConversationError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// LIST FORMATTING
// =============================================================================

// FormatConversationList formats saved conversations as a plain table
// for the ask REPL and the conversations CLI listing.
func FormatConversationList(metas []ConversationMeta) string {
	if len(metas) == 0 {
		return "No saved conversations."
	}

	var sb strings.Builder
	sb.WriteString("Conversations:\n")
	sb.WriteString("-----------------------------------------------------\n")
	sb.WriteString(formatPadded("Key", 16) + " " + formatPadded("Updated", 17) + " " + formatPadded("Msgs", 5) + " Title\n")
	sb.WriteString("-----------------------------------------------------\n")

	for _, m := range metas {
		keyStr := m.Key
		if len(keyStr) > 16 {
			keyStr = keyStr[:16]
		}
		updatedStr := m.UpdatedAt.Format("2006-01-02 15:04")
		title := m.Title
		if title == "" {
			title = m.Preview
		}

		sb.WriteString(formatPadded(keyStr, 16) + " " +
			formatPadded(updatedStr, 17) + " " +
			formatPadded(strconv.Itoa(m.MessageCount), 5) + " " +
			truncateString(title, 40) + "\n")
	}
	return sb.String()
}

// formatPadded pads a string to the specified width with spaces.
func formatPadded(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return s
	}
	padding := width - len(runes)
	for i := 0; i < padding; i++ {
		s += " "
	}
	return s
}

// =============================================================================
// TRANSCRIPT EXPORT
// =============================================================================

// ExportMarkdown renders a conversation as a Markdown transcript with
// role labels, timestamps, and interruption markers.
func ExportMarkdown(conv *model.Conversation) string {
	var sb strings.Builder
	title := conv.Title
	if title == "" {
		title = "Conversation"
	}
	sb.WriteString("# " + title + "\n\n")
	if conv.ID != "" {
		sb.WriteString("Conversation: " + conv.ID + "\n\n")
	}
	sb.WriteString("Created: " + conv.CreatedAt.Format(time.RFC3339) + "\n\n")
	sb.WriteString("---\n\n")

	for _, msg := range conv.Messages {
		role := "**User**"
		switch msg.Role {
		case model.RoleAssistant:
			role = "**Assistant**"
		case model.RoleSystem:
			role = "**System**"
		}
		sb.WriteString(role + " (" + msg.Timestamp.Format("15:04") + "):\n\n")
		sb.WriteString(msg.Content)
		if msg.Interrupted {
			sb.WriteString("\n\n*(paused, round " + strconv.Itoa(msg.Round) + ")*")
		}
		sb.WriteString("\n\n---\n\n")
	}

	return sb.String()
}

// ExportJSON renders a conversation as pretty-printed JSON.
func ExportJSON(conv *model.Conversation) ([]byte, error) {
	return json.MarshalIndent(conv, "", "  ")
}
