// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/jeranaias/tradedeck/internal/model"
)

// =============================================================================
// ACCOUNT STATE
// =============================================================================

// Balances fetches account balances for one market.
func (c *Client) Balances(ctx context.Context, market model.Market) ([]model.Balance, error) {
	query := url.Values{}
	query.Set("market", string(market))

	var resp struct {
		Balances []model.Balance `json:"balances"`
	}
	if err := c.getJSON(ctx, "/api/account/balances", query, &resp); err != nil {
		return nil, err
	}
	return resp.Balances, nil
}

// Positions fetches open positions for one market.
func (c *Client) Positions(ctx context.Context, market model.Market) ([]model.Position, error) {
	query := url.Values{}
	query.Set("market", string(market))

	var resp struct {
		Positions []model.Position `json:"positions"`
	}
	if err := c.getJSON(ctx, "/api/account/positions", query, &resp); err != nil {
		return nil, err
	}
	return resp.Positions, nil
}

// RateLimits fetches the backend-reported request budgets, one entry
// per market.
func (c *Client) RateLimits(ctx context.Context) ([]model.RateLimit, error) {
	var resp struct {
		RateLimits []model.RateLimit `json:"rate_limits"`
	}
	if err := c.getJSON(ctx, "/api/account/rate-limits", nil, &resp); err != nil {
		return nil, err
	}
	return resp.RateLimits, nil
}

// OpenOrders fetches working orders, optionally filtered by symbol.
func (c *Client) OpenOrders(ctx context.Context, market model.Market, symbol string) ([]model.Order, error) {
	query := url.Values{}
	query.Set("market", string(market))
	if symbol != "" {
		query.Set("symbol", symbol)
	}

	var resp struct {
		Orders []model.Order `json:"orders"`
	}
	if err := c.getJSON(ctx, "/api/orders/open", query, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

// =============================================================================
// ACTIVITY AND PROGRAMS
// =============================================================================

// Activity fetches the most recent activity feed events.
func (c *Client) Activity(ctx context.Context, limit int) ([]model.ActivityEvent, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var resp struct {
		Events []model.ActivityEvent `json:"events"`
	}
	if err := c.getJSON(ctx, "/api/activity", query, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// Programs fetches the backend's rule programs for the programs panel.
func (c *Client) Programs(ctx context.Context) ([]model.Program, error) {
	var resp struct {
		Programs []model.Program `json:"programs"`
	}
	if err := c.getJSON(ctx, "/api/programs", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Programs, nil
}
