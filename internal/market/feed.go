// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package market

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jeranaias/tradedeck/internal/model"
)

// =============================================================================
// FEED TYPES
// =============================================================================

// Tick is one live price observation from a feed.
type Tick struct {
	Market model.Market
	Symbol string
	Price  decimal.Decimal
	At     time.Time
}

// FeedStatus describes connection health for the status bar.
type FeedStatus struct {
	Market      model.Market
	Connected   bool
	LastMessage time.Time
	Reconnects  int
}

// Feed is a live market data subscription.
type Feed interface {
	// Market identifies which exchange the feed covers.
	Market() model.Market

	// Run blocks, maintaining the subscription (with reconnects) until
	// ctx is canceled.
	Run(ctx context.Context)

	// Ticks delivers price updates. The channel is never closed; stop
	// consuming after canceling Run's context.
	Ticks() <-chan Tick

	// Status returns a snapshot of connection health.
	Status() FeedStatus
}

// =============================================================================
// FEED CONFIGURATION
// =============================================================================

// Feed timing defaults.
const (
	DefaultDialTimeout  = 10 * time.Second
	DefaultReadTimeout  = 60 * time.Second
	DefaultPingInterval = 20 * time.Second
	DefaultReconnectMin = 1 * time.Second
	DefaultReconnectMax = 30 * time.Second

	// tickBuffer absorbs bursts between UI frames.
	tickBuffer = 256
)

// FeedConfig tunes a feed. Zero values select the defaults; URL
// overrides the exchange endpoint (used by tests).
type FeedConfig struct {
	URL          string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	PingInterval time.Duration
	ReconnectMin time.Duration
	ReconnectMax time.Duration
}

func (c FeedConfig) withDefaults() FeedConfig {
	if c.DialTimeout <= 0 {
		c.DialTimeout = DefaultDialTimeout
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.PingInterval <= 0 {
		c.PingInterval = DefaultPingInterval
	}
	if c.ReconnectMin <= 0 {
		c.ReconnectMin = DefaultReconnectMin
	}
	if c.ReconnectMax <= 0 {
		c.ReconnectMax = DefaultReconnectMax
	}
	return c
}

// =============================================================================
// WEBSOCKET FEED ENGINE
// =============================================================================

// wsFeed is the shared engine behind both exchange feeds. The exchange
// specifics are two hooks: an optional post-dial subscribe writer and
// a frame decoder.
type wsFeed struct {
	market    model.Market
	cfg       FeedConfig
	subscribe func(*websocket.Conn) error
	decode    func([]byte) []Tick

	dialer *websocket.Dialer
	ticks  chan Tick
	logger *zap.Logger

	mu     sync.RWMutex
	status FeedStatus
}

func newWSFeed(market model.Market, cfg FeedConfig, subscribe func(*websocket.Conn) error, decode func([]byte) []Tick, logger *zap.Logger) *wsFeed {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	return &wsFeed{
		market:    market,
		cfg:       cfg,
		subscribe: subscribe,
		decode:    decode,
		dialer: &websocket.Dialer{
			HandshakeTimeout: cfg.DialTimeout,
			ReadBufferSize:   4096,
			WriteBufferSize:  4096,
		},
		ticks:  make(chan Tick, tickBuffer),
		logger: logger,
		status: FeedStatus{Market: market},
	}
}

func (f *wsFeed) Market() model.Market { return f.market }
func (f *wsFeed) Ticks() <-chan Tick   { return f.ticks }

func (f *wsFeed) Status() FeedStatus {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.status
}

// Run dials, subscribes, and reads until ctx is canceled. Every dial
// failure or dropped connection retries with capped exponential
// backoff; a healthy connection resets the backoff.
func (f *wsFeed) Run(ctx context.Context) {
	backoff := f.cfg.ReconnectMin

	for attempt := 0; ; attempt++ {
		if ctx.Err() != nil {
			return
		}
		if attempt > 0 {
			f.bumpReconnects()
			if !sleepCtx(ctx, backoff) {
				return
			}
			backoff *= 2
			if backoff > f.cfg.ReconnectMax {
				backoff = f.cfg.ReconnectMax
			}
		}

		conn, _, err := f.dialer.DialContext(ctx, f.cfg.URL, nil)
		if err != nil {
			if ctx.Err() == nil {
				f.logger.Warn("feed dial failed",
					zap.String("market", string(f.market)),
					zap.Error(err))
			}
			continue
		}

		if f.subscribe != nil {
			if err := f.subscribe(conn); err != nil {
				f.logger.Warn("feed subscribe failed",
					zap.String("market", string(f.market)),
					zap.Error(err))
				conn.Close()
				continue
			}
		}

		f.setConnected(true)
		backoff = f.cfg.ReconnectMin
		f.readLoop(ctx, conn)
		conn.Close()
		f.setConnected(false)
	}
}

// readLoop reads frames until the connection drops or ctx is canceled.
// A watchdog goroutine sends client pings and force-closes the
// connection on cancel so ReadMessage unblocks.
func (f *wsFeed) readLoop(ctx context.Context, conn *websocket.Conn) {
	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(f.cfg.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				conn.Close()
				return
			case <-done:
				return
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(f.cfg.DialTimeout))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					conn.Close()
					return
				}
			}
		}
	}()

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(f.cfg.ReadTimeout))
	})

	for {
		// RELIABILITY: a silent connection trips the deadline and
		// reconnects instead of serving stale prices forever.
		conn.SetReadDeadline(time.Now().Add(f.cfg.ReadTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				f.logger.Warn("feed read failed",
					zap.String("market", string(f.market)),
					zap.Error(err))
			}
			return
		}

		f.touch()
		for _, tick := range f.decode(data) {
			select {
			case f.ticks <- tick:
			default:
				// PERFORMANCE: drop the tick rather than stall the
				// read loop behind a slow consumer. The next frame
				// carries a fresher price anyway.
			}
		}
	}
}

func (f *wsFeed) setConnected(connected bool) {
	f.mu.Lock()
	f.status.Connected = connected
	f.mu.Unlock()
}

func (f *wsFeed) bumpReconnects() {
	f.mu.Lock()
	f.status.Reconnects++
	f.mu.Unlock()
}

func (f *wsFeed) touch() {
	f.mu.Lock()
	f.status.LastMessage = time.Now()
	f.mu.Unlock()
}

// sleepCtx sleeps for d unless ctx ends first. Returns false on cancel.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
