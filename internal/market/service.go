// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package market

import (
	"context"
	"sync"

	"github.com/jeranaias/tradedeck/internal/model"
)

// =============================================================================
// FEED SERVICE
// =============================================================================

// Service runs a set of feeds and folds their ticks into one board.
type Service struct {
	board *Board
	feeds []Feed

	// OnTick, when set before Start, is called after each tick lands on
	// the board. The TUI uses it to bridge ticks into program messages.
	OnTick func(Tick)

	wg sync.WaitGroup
}

// NewService wires feeds to a board.
func NewService(board *Board, feeds ...Feed) *Service {
	return &Service{board: board, feeds: feeds}
}

// Board returns the shared ticker board.
func (s *Service) Board() *Board { return s.board }

// Start launches every feed and its drain goroutine. Cancel ctx to
// stop the feeds, then Wait for the goroutines to finish.
func (s *Service) Start(ctx context.Context) {
	for _, feed := range s.feeds {
		feed := feed
		s.wg.Add(2)
		go func() {
			defer s.wg.Done()
			feed.Run(ctx)
		}()
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case tick := <-feed.Ticks():
					s.board.Apply(tick)
					if s.OnTick != nil {
						s.OnTick(tick)
					}
				}
			}
		}()
	}
}

// Wait blocks until every feed goroutine has exited.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Statuses returns per-feed connection health, ordered as configured.
func (s *Service) Statuses() []FeedStatus {
	out := make([]FeedStatus, 0, len(s.feeds))
	for _, feed := range s.feeds {
		out = append(out, feed.Status())
	}
	return out
}

// StatusFor returns the health of one market's feed.
func (s *Service) StatusFor(market model.Market) (FeedStatus, bool) {
	for _, feed := range s.feeds {
		if feed.Market() == market {
			return feed.Status(), true
		}
	}
	return FeedStatus{}, false
}
