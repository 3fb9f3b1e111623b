// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jeranaias/tradedeck/internal/model"
)

// =============================================================================
// ORDER SUBMISSION
// =============================================================================

// PlaceOrder submits an order ticket and returns the accepted order.
// Execution semantics are entirely backend-owned; the ticket is
// validated locally only for form-level mistakes.
func (c *Client) PlaceOrder(ctx context.Context, ticket model.OrderTicket) (*model.Order, error) {
	if err := ticket.Validate(); err != nil {
		return nil, err
	}

	var resp struct {
		Order model.Order `json:"order"`
	}
	if err := c.postJSON(ctx, "/api/orders", ticket, &resp); err != nil {
		return nil, err
	}
	if resp.Order.ID == "" {
		return nil, fmt.Errorf("order response missing id")
	}
	return &resp.Order, nil
}

// CancelOrder cancels one working order.
func (c *Client) CancelOrder(ctx context.Context, market model.Market, orderID string) error {
	if orderID == "" {
		return fmt.Errorf("cancel: empty order id")
	}

	body := struct {
		Market model.Market `json:"market"`
	}{Market: market}

	path := "/api/orders/" + url.PathEscape(orderID) + "/cancel"
	return c.postJSON(ctx, path, body, nil)
}
