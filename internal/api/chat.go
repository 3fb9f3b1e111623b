// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// =============================================================================
// CHAT SUBMISSION
// =============================================================================

// ChatRequest is the body of POST /api/hyper-ai/chat.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
	Mode           string `json:"mode,omitempty"`
	Lang           string `json:"lang,omitempty"`
}

// ChatHandle is the task-handle response to a chat submission.
type ChatHandle struct {
	TaskID         string `json:"task_id"`
	ConversationID string `json:"conversation_id"`
}

// SubmitResult is the outcome of a chat submission. Modern backends
// answer with a task handle for offset polling; legacy deployments
// answer the POST itself with an event stream. Exactly one of Handle
// and Stream is set.
type SubmitResult struct {
	Handle *ChatHandle
	Stream *SSESource
}

// SubmitChat posts a chat message and returns either a task handle or,
// when the backend streams the response directly, a live event source.
//
// The caller owns the returned stream and must drain or close it. The
// request context controls the stream's lifetime.
func (c *Client) SubmitChat(ctx context.Context, chatReq ChatRequest) (*SubmitResult, error) {
	if strings.TrimSpace(chatReq.Message) == "" {
		return nil, fmt.Errorf("chat: empty message")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/hyper-ai/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Accept", "application/json, text/event-stream")

	// The stream client has no timeout: a legacy backend holds this
	// connection open for the whole answer.
	resp, err := sharedStreamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, readErr := readResponse(resp)
		if readErr != nil {
			return nil, readErr
		}
		return nil, handleErrorResponse(resp, body)
	}

	if isEventStream(resp.Header.Get("Content-Type")) {
		c.logger.Debug("chat answered with direct stream")
		return &SubmitResult{Stream: NewSSESource(resp.Body)}, nil
	}

	defer resp.Body.Close()
	body, err := readResponse(resp)
	if err != nil {
		return nil, err
	}

	var handle ChatHandle
	if err := json.Unmarshal(body, &handle); err != nil {
		return nil, fmt.Errorf("parse submission response: %w", err)
	}
	if handle.TaskID == "" {
		return nil, fmt.Errorf("submission response missing task_id")
	}

	c.logger.Debug("chat submitted",
		zap.String("task_id", handle.TaskID),
		zap.String("conversation_id", handle.ConversationID))
	return &SubmitResult{Handle: &handle}, nil
}

// isEventStream reports whether a Content-Type is an SSE stream.
func isEventStream(contentType string) bool {
	mediaType := contentType
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = mediaType[:i]
	}
	return strings.TrimSpace(strings.ToLower(mediaType)) == "text/event-stream"
}
