// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures the panels render.
package model

import (
	"strings"
	"time"
)

// MaxMessages caps the locally mirrored history. Older messages are
// pruned to keep memory bounded; the backend owns the full history.
const MaxMessages = 1000

// =============================================================================
// CONVERSATION
// =============================================================================

// Conversation mirrors one backend conversation for rendering.
//
// The ID is backend-owned: it stays empty until a task completes
// successfully and the terminal chunk's conversation_id is adopted.
// Error outcomes never adopt, so a failed first exchange cannot pin the
// panel to a conversation the backend may consider half-created.
type Conversation struct {
	// Identity (backend-owned, adopted on done)
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Request tags forwarded on every submission
	Mode string `json:"mode,omitempty"`
	Lang string `json:"lang,omitempty"`

	// Messages, append-only; the last one may be streaming
	Messages []*Message `json:"messages"`

	// Rounds counts interruption rounds seen on this conversation.
	Rounds int `json:"rounds,omitempty"`
}

// NewConversation creates an empty local conversation. The backend ID
// arrives later, on the first successful completion.
func NewConversation(mode, lang string) *Conversation {
	now := time.Now()
	return &Conversation{
		Mode:      mode,
		Lang:      lang,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  make([]*Message, 0),
	}
}

// =============================================================================
// IDENTITY ADOPTION
// =============================================================================

// Adopt records the backend conversation ID. Only the first non-empty
// ID wins; later adoptions of a different ID are ignored and reported.
// Callers invoke this only from the done terminal path.
func (c *Conversation) Adopt(id string) bool {
	if id == "" {
		return false
	}
	if c.ID == "" {
		c.ID = id
		c.UpdatedAt = time.Now()
		return true
	}
	return c.ID == id
}

// Adopted reports whether the conversation has its backend identity.
func (c *Conversation) Adopted() bool {
	return c.ID != ""
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// AddMessage appends a message and refreshes bookkeeping.
func (c *Conversation) AddMessage(msg *Message) {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
	c.refreshTitle()
	c.prune()
}

// AddUserMessage creates and appends an operator message.
func (c *Conversation) AddUserMessage(content string) *Message {
	msg := NewUserMessage(content)
	c.AddMessage(msg)
	return msg
}

// StartAssistantMessage creates and appends a streaming assistant
// message that the task consumer will fill.
func (c *Conversation) StartAssistantMessage() *Message {
	msg := NewAssistantMessage()
	c.AddMessage(msg)
	return msg
}

// LastMessage returns the most recent message, nil when empty.
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// MessageByID finds a message by ID, nil when absent.
func (c *Conversation) MessageByID(id string) *Message {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].ID == id {
			return c.Messages[i]
		}
	}
	return nil
}

// RecordRound stores the highest interruption round seen.
func (c *Conversation) RecordRound(round int) {
	if round > c.Rounds {
		c.Rounds = round
	}
}

// refreshTitle derives the title from the first user message.
func (c *Conversation) refreshTitle() {
	if c.Title != "" {
		return
	}
	for _, msg := range c.Messages {
		if msg.Role == RoleUser && msg.Content != "" {
			title := strings.ReplaceAll(msg.Content, "\n", " ")
			title = strings.ReplaceAll(title, "\r", "")
			// Rune-safe truncation; titles show in narrow list columns
			runes := []rune(title)
			if len(runes) > 50 {
				title = string(runes[:47]) + "..."
			}
			c.Title = title
			return
		}
	}
}

// prune drops the oldest messages beyond MaxMessages.
func (c *Conversation) prune() {
	if len(c.Messages) <= MaxMessages {
		return
	}
	excess := len(c.Messages) - MaxMessages
	c.Messages = append(c.Messages[:0:0], c.Messages[excess:]...)
}
