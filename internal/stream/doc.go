// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream implements the incremental task-stream consumer.
//
// The backend runs long tasks (chat completions, AI analysis) and
// exposes their output as an ordered sequence of chunks. This package
// consumes that sequence through a single interface, Consumer, with one
// implementation per transport:
//
//   - Poller fetches chunks since an offset cursor over plain HTTP,
//     sleeping a fixed interval between polls, bounded by a poll budget.
//   - Pusher drains a server-push event source (SSE) chunk by chunk.
//
// Both route chunks identically: content chunks grow an accumulator
// whose snapshots drive progressive rendering, side-channel chunks
// (reasoning, tool calls, tool results, save suggestions) go to an
// ordered activity log, and the first terminal chunk (done, interrupted,
// error) ends the run. Chunks after a terminal are never applied.
//
// Failure policy: transport errors and budget exhaustion flush whatever
// content accumulated rather than discarding it — showing something
// beats showing nothing. Only a server-signaled error chunk replaces
// the buffer with error text.
package stream
