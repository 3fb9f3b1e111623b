// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures the panels render.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

// =============================================================================
// ROLE
// =============================================================================

// Role identifies the author of a message.
type Role string

const (
	// RoleUser is a message typed by the operator.
	RoleUser Role = "user"

	// RoleAssistant is a message produced by the backend assistant.
	RoleAssistant Role = "assistant"

	// RoleSystem is a local status line shown inline in the transcript.
	RoleSystem Role = "system"
)

// DisplayName returns the label rendered in the transcript gutter.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// SIDE-CHANNEL ACTIVITY
// =============================================================================

// ActivityKind tags a side-channel entry attached to an assistant message.
type ActivityKind string

const (
	ActivityReasoning      ActivityKind = "reasoning"
	ActivityToolCall       ActivityKind = "tool_call"
	ActivityToolResult     ActivityKind = "tool_result"
	ActivitySaveSuggestion ActivityKind = "save_suggestion"
)

// ActivityEntry is one side-channel chunk, kept separate from the text
// buffer but in arrival order relative to its siblings.
type ActivityEntry struct {
	Kind ActivityKind `json:"kind"`
	Text string       `json:"text"`
	At   time.Time    `json:"at"`
}

// =============================================================================
// MESSAGE
// =============================================================================

// Message is a single transcript entry. Assistant messages start in the
// streaming state: content chunks accumulate in a private builder and the
// renderer reads snapshots until the terminal event freezes the message.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content is the final text. Empty while streaming.
	Content string `json:"content"`

	// IsStreaming marks a message still receiving chunks.
	IsStreaming bool `json:"-"`

	// Activity is the ordered side-channel log (reasoning, tool calls,
	// tool results, save suggestions) for this message.
	Activity []ActivityEntry `json:"activity,omitempty"`

	// Interrupted marks a resumable pause rather than a failure.
	Interrupted bool `json:"interrupted,omitempty"`

	// Round is the interruption round reported by the backend.
	Round int `json:"round,omitempty"`

	// IsError marks a message whose content is failure text.
	IsError bool `json:"is_error,omitempty"`

	// Stats captures streaming timings for assistant messages.
	Stats *Stats `json:"stats,omitempty"`

	// PERFORMANCE: strings.Builder avoids quadratic append cost while
	// chunks arrive. Never accessed concurrently; the update loop is the
	// only writer.
	streamBuf strings.Builder
}

// NewUserMessage creates a finalized user message.
func NewUserMessage(content string) *Message {
	return &Message{
		ID:        generateMessageID(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewAssistantMessage creates an assistant message in the streaming state.
func NewAssistantMessage() *Message {
	return &Message{
		ID:          generateMessageID(),
		Role:        RoleAssistant,
		Timestamp:   time.Now(),
		IsStreaming: true,
		Stats:       NewStats(),
	}
}

// NewSystemMessage creates a finalized system message.
func NewSystemMessage(content string) *Message {
	return &Message{
		ID:        generateMessageID(),
		Role:      RoleSystem,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// AppendChunk appends streamed text to the message. No-op once the
// message is finalized, which keeps terminal handling idempotent.
func (m *Message) AppendChunk(text string) {
	if !m.IsStreaming {
		return
	}
	m.streamBuf.WriteString(text)
	if m.Stats != nil {
		m.Stats.RecordChunk()
	}
}

// AddActivity appends a side-channel entry in arrival order.
func (m *Message) AddActivity(kind ActivityKind, text string) {
	m.Activity = append(m.Activity, ActivityEntry{
		Kind: kind,
		Text: text,
		At:   time.Now(),
	})
}

// DisplayContent returns what the renderer should show right now:
// the live buffer while streaming, the frozen content after.
func (m *Message) DisplayContent() string {
	if m.IsStreaming {
		return m.streamBuf.String()
	}
	return m.Content
}

// Finalize freezes the message with the given text. When final is empty
// the accumulated buffer becomes the content. Idempotent.
func (m *Message) Finalize(final string) {
	if !m.IsStreaming {
		return
	}
	if final == "" {
		final = m.streamBuf.String()
	}
	m.Content = final
	m.IsStreaming = false
	m.streamBuf.Reset()
	if m.Stats != nil {
		m.Stats.Finalize()
	}
}

// FinalizeInterrupted freezes the message as a resumable pause, keeping
// whatever text accumulated and recording the backend's round counter.
// Idempotent like Finalize.
func (m *Message) FinalizeInterrupted(round int) {
	if !m.IsStreaming {
		return
	}
	m.Finalize("")
	m.Interrupted = true
	m.Round = round
}

// FinalizeError discards any buffered content and freezes the message
// with the failure text. Idempotent like Finalize.
func (m *Message) FinalizeError(text string) {
	if !m.IsStreaming {
		return
	}
	m.streamBuf.Reset()
	m.Finalize(text)
	m.IsError = true
}

// generateMessageID returns a "msg_" prefixed random identifier.
func generateMessageID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "msg_" + hex.EncodeToString([]byte(time.Now().Format("150405.000")))
	}
	return "msg_" + hex.EncodeToString(b)
}

// =============================================================================
// STREAMING STATISTICS
// =============================================================================

// Stats tracks timings for one streamed assistant message.
type Stats struct {
	StartTime  time.Time     `json:"start_time"`
	FirstChunk time.Time     `json:"first_chunk,omitempty"`
	ChunkCount int           `json:"chunk_count"`
	Duration   time.Duration `json:"duration"`
}

// NewStats starts the clock for a streaming message.
func NewStats() *Stats {
	return &Stats{StartTime: time.Now()}
}

// RecordChunk notes one content chunk, capturing first-chunk latency.
func (s *Stats) RecordChunk() {
	if s.FirstChunk.IsZero() {
		s.FirstChunk = time.Now()
	}
	s.ChunkCount++
}

// Finalize fixes the total duration. Idempotent.
func (s *Stats) Finalize() {
	if s.Duration == 0 {
		s.Duration = time.Since(s.StartTime)
	}
}

// TTFC returns time to first chunk, zero if nothing arrived.
func (s *Stats) TTFC() time.Duration {
	if s.FirstChunk.IsZero() {
		return 0
	}
	return s.FirstChunk.Sub(s.StartTime)
}
