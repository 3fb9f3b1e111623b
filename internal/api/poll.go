// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jeranaias/tradedeck/internal/stream"
)

// FetchChunks retrieves one batch of task output at the given offset.
// It implements stream.Fetcher for the poll consumer.
//
// Polls are single-attempt: the poll loop is its own retry mechanism,
// and client-side backoff would fight its cadence. The batch decoder
// tolerates both envelope spellings the backend has shipped
// (chunks/events, event_type/type); an expired task surfaces as
// ErrNotFound, which the poll loop treats as a transport stop.
func (c *Client) FetchChunks(ctx context.Context, taskID string, offset int64) (stream.Batch, error) {
	if taskID == "" {
		return stream.Batch{}, fmt.Errorf("poll: empty task id")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return stream.Batch{}, err
	}

	query := url.Values{}
	query.Set("offset", strconv.FormatInt(offset, 10))

	var batch stream.Batch
	endpoint := c.endpoint("/api/ai-stream/"+url.PathEscape(taskID), query)
	if err := c.once(ctx, http.MethodGet, endpoint, nil, &batch); err != nil {
		return stream.Batch{}, err
	}
	return batch, nil
}
