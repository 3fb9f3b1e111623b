// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jeranaias/tradedeck/internal/stream"
)

// MaxEventSize is the maximum allowed size for a single SSE line.
const MaxEventSize = 64 * 1024

// =============================================================================
// SSE SOURCE
// =============================================================================

// SSESource parses a text/event-stream body into chunks. It implements
// stream.EventSource for the push consumer.
type SSESource struct {
	body   io.ReadCloser
	reader *bufio.Reader
}

// NewSSESource wraps a response body. Close releases the connection.
func NewSSESource(body io.ReadCloser) *SSESource {
	return &SSESource{
		body:   body,
		reader: bufio.NewReader(body),
	}
}

// Next returns the next chunk. It reports io.EOF on a clean stream end
// or a "[DONE]" sentinel, and skips events it cannot decode.
func (s *SSESource) Next() (stream.Chunk, error) {
	for {
		eventType, data, err := s.readEvent()
		if err != nil {
			return stream.Chunk{}, err
		}

		if bytes.Equal(data, []byte("[DONE]")) {
			return stream.Chunk{}, io.EOF
		}

		var chunk stream.Chunk
		if err := json.Unmarshal(data, &chunk); err == nil {
			return chunk, nil
		}

		// Untagged payload with an SSE event name: the event line is
		// the tag.
		if eventType != "" {
			retagged, merr := json.Marshal(map[string]json.RawMessage{
				"event_type": json.RawMessage(fmt.Sprintf("%q", eventType)),
				"data":       json.RawMessage(data),
			})
			if merr == nil {
				if err := json.Unmarshal(retagged, &chunk); err == nil {
					return chunk, nil
				}
			}
		}

		// Malformed event: skip and keep reading.
	}
}

// readEvent reads one SSE event: its optional event name and the joined
// data lines. A blank line terminates an event.
func (s *SSESource) readEvent() (string, []byte, error) {
	var eventType string
	var dataLines [][]byte

	for {
		line, err := s.reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF && len(dataLines) > 0 {
				// Final event without a trailing blank line.
				return eventType, bytes.Join(dataLines, []byte("\n")), nil
			}
			return "", nil, err
		}

		// RELIABILITY: bound single-line size against a misbehaving backend
		if len(line) > MaxEventSize {
			return "", nil, fmt.Errorf("sse event exceeds %d bytes", MaxEventSize)
		}

		line = bytes.TrimRight(line, "\r\n")

		// Blank line ends the event.
		if len(line) == 0 {
			if len(dataLines) > 0 {
				return eventType, bytes.Join(dataLines, []byte("\n")), nil
			}
			continue
		}

		switch {
		case bytes.HasPrefix(line, []byte("event:")):
			eventType = string(bytes.TrimSpace(line[6:]))
		case bytes.HasPrefix(line, []byte("data:")):
			dataLines = append(dataLines, bytes.TrimSpace(line[5:]))
		}
		// Other fields (id:, retry:, comments) are ignored.
	}
}

// Close releases the underlying connection.
func (s *SSESource) Close() error {
	return s.body.Close()
}
