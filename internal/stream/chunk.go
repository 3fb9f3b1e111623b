// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// =============================================================================
// CHUNK KINDS
// =============================================================================

// ChunkKind is the tag of the chunk union. New kinds added here must be
// handled in applyChunk; unknown kinds arriving from newer backends are
// skipped rather than failing the stream.
type ChunkKind string

const (
	// KindContent carries a fragment of the answer text.
	KindContent ChunkKind = "content"

	// Side-channel kinds, logged in order but kept out of the text buffer.
	KindReasoning      ChunkKind = "reasoning"
	KindToolCall       ChunkKind = "tool_call"
	KindToolResult     ChunkKind = "tool_result"
	KindSaveSuggestion ChunkKind = "save_suggestion"

	// Terminal kinds. The first one ends consumption of the task.
	KindDone        ChunkKind = "done"
	KindInterrupted ChunkKind = "interrupted"
	KindError       ChunkKind = "error"
)

// Terminal reports whether this kind ends the stream.
func (k ChunkKind) Terminal() bool {
	switch k {
	case KindDone, KindInterrupted, KindError:
		return true
	default:
		return false
	}
}

// SideChannel reports whether this kind belongs in the activity log.
func (k ChunkKind) SideChannel() bool {
	switch k {
	case KindReasoning, KindToolCall, KindToolResult, KindSaveSuggestion:
		return true
	default:
		return false
	}
}

// =============================================================================
// CHUNK
// =============================================================================

// ErrChunkUntagged is returned when a chunk carries no recognizable
// event type under either accepted field name.
var ErrChunkUntagged = errors.New("chunk has no event type")

// Chunk is one ordered unit of task output. Data stays raw; the typed
// accessors below pull out the fields each kind is known to carry.
type Chunk struct {
	Kind ChunkKind
	Data json.RawMessage
}

// chunkWire tolerates the two field spellings seen across backends:
// {"event_type": ..., "data": ...} and {"type": ..., "data": ...}.
// A bare {"content": "..."} shorthand is mapped to a content chunk.
type chunkWire struct {
	EventType string          `json:"event_type"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Content   *string         `json:"content"`
}

// UnmarshalJSON decodes a chunk, accepting either tag spelling.
func (c *Chunk) UnmarshalJSON(b []byte) error {
	var w chunkWire
	if err := json.Unmarshal(b, &w); err != nil {
		return fmt.Errorf("decode chunk: %w", err)
	}

	kind := w.EventType
	if kind == "" {
		kind = w.Type
	}
	if kind == "" {
		if w.Content != nil {
			c.Kind = KindContent
			quoted, err := json.Marshal(*w.Content)
			if err != nil {
				return fmt.Errorf("requote content: %w", err)
			}
			c.Data = quoted
			return nil
		}
		return ErrChunkUntagged
	}

	c.Kind = ChunkKind(kind)
	c.Data = w.Data
	return nil
}

// chunkPayload is the union of object fields chunks are known to carry.
type chunkPayload struct {
	Content        string `json:"content"`
	Text           string `json:"text"`
	Message        string `json:"message"`
	Error          string `json:"error"`
	Name           string `json:"name"`
	ConversationID string `json:"conversation_id"`
	Round          int    `json:"round"`
}

// payload decodes Data as an object, tolerating absence and scalars.
func (c Chunk) payload() chunkPayload {
	var p chunkPayload
	if len(c.Data) == 0 {
		return p
	}
	// A bare JSON string is the whole text payload.
	var s string
	if err := json.Unmarshal(c.Data, &s); err == nil {
		p.Content = s
		return p
	}
	_ = json.Unmarshal(c.Data, &p)
	return p
}

// Text returns the textual payload of the chunk: the data itself when it
// is a plain string, otherwise the first of content/text/message. Tool
// chunks without text fall back to their tool name.
func (c Chunk) Text() string {
	p := c.payload()
	switch {
	case p.Content != "":
		return p.Content
	case p.Text != "":
		return p.Text
	case p.Message != "":
		return p.Message
	case p.Name != "" && (c.Kind == KindToolCall || c.Kind == KindToolResult):
		return p.Name
	default:
		return ""
	}
}

// ConversationID returns the conversation identity carried on a done
// chunk, empty when absent.
func (c Chunk) ConversationID() string {
	return c.payload().ConversationID
}

// Round returns the interruption round counter, zero when absent.
func (c Chunk) Round() int {
	return c.payload().Round
}

// ErrorText returns the failure text of an error chunk, with a generic
// fallback so the transcript never shows an empty error.
func (c Chunk) ErrorText() string {
	p := c.payload()
	switch {
	case p.Error != "":
		return p.Error
	case p.Message != "":
		return p.Message
	case p.Content != "":
		return p.Content
	default:
		return "task failed"
	}
}

// =============================================================================
// BATCH
// =============================================================================

// StatusCompleted is the poll response status that ends the loop.
const StatusCompleted = "completed"

// Batch is one poll response: the chunks since the requested offset,
// the server's next offset when it moved, and the task status.
type Batch struct {
	Chunks     []Chunk
	NextOffset *int64
	Status     string
}

// batchWire tolerates the two array spellings seen across backends.
type batchWire struct {
	Chunks     []json.RawMessage `json:"chunks"`
	Events     []json.RawMessage `json:"events"`
	NextOffset *int64            `json:"next_offset"`
	Status     string            `json:"status"`
}

// UnmarshalJSON decodes a batch, accepting chunks or events as the
// array name. Malformed or untagged chunks inside the array are skipped
// so one bad entry cannot poison the batch.
func (b *Batch) UnmarshalJSON(data []byte) error {
	var w batchWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode batch: %w", err)
	}

	raw := w.Chunks
	if raw == nil {
		raw = w.Events
	}

	b.Chunks = make([]Chunk, 0, len(raw))
	for _, r := range raw {
		if len(bytes.TrimSpace(r)) == 0 {
			continue
		}
		var c Chunk
		if err := json.Unmarshal(r, &c); err != nil {
			continue
		}
		b.Chunks = append(b.Chunks, c)
	}
	b.NextOffset = w.NextOffset
	b.Status = w.Status
	return nil
}

// Completed reports whether the server considers the task finished.
func (b Batch) Completed() bool {
	return b.Status == StatusCompleted
}
