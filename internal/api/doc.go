// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP client for the trading backend.
//
// The backend owns all exchange connectivity, signing, and AI
// generation; this client only submits requests and renders what comes
// back. It covers four surfaces:
//
//   - chat submission (POST /api/hyper-ai/chat), answering with a task
//     handle or, on legacy deployments, a direct event stream
//   - task output polling (GET /api/ai-stream/{task_id}), the Fetcher
//     behind the poll consumer
//   - market data (klines with precomputed indicator series)
//   - account state (balances, positions, open orders, rate limits)
//
// All requests share one pooled HTTP client, a client-side rate
// limiter, and retry with exponential backoff that honors Retry-After.
package api
