// Package simulation plays the agent against the in-process market, game
// after game, and reports how it scored.
package simulation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/cheggaaa/pb"

	"github.com/Sokpao/Agent-TAC/agent"
	"github.com/Sokpao/Agent-TAC/bridge"
	"github.com/Sokpao/Agent-TAC/config"
	"github.com/Sokpao/Agent-TAC/market"
	"github.com/Sokpao/Agent-TAC/types"
)

// GameSink receives the summary of every finished game.
type GameSink func(summary types.GameSummary) error

type Options struct {
	Games       int
	FirstGameID int
	Seed        int64
	// Step is how much game time passes between market updates.
	Step time.Duration
	// Progress, when set, receives a progress bar.
	Progress io.Writer
}

var DefaultOptions = Options{
	Games:       1,
	FirstGameID: 1,
	Seed:        1,
	Step:        10 * time.Second,
}

type Simulation struct {
	rules    config.Rules
	logger   *slog.Logger
	observer agent.Observer
	sinks    []GameSink

	lock    *sync.Mutex
	current *agent.Agent
}

func New(rules config.Rules, logger *slog.Logger, observer agent.Observer) *Simulation {
	return &Simulation{
		rules:    rules,
		logger:   logger,
		observer: observer,
		lock:     &sync.Mutex{},
	}
}

func (s *Simulation) AddSink(sink GameSink) {
	s.sinks = append(s.sinks, sink)
}

// Snapshot reports the agent of the game in progress, or of the last game
// once the run is over.
func (s *Simulation) Snapshot() agent.Snapshot {
	s.lock.Lock()
	current := s.current
	s.lock.Unlock()

	if current == nil {
		return agent.Snapshot{Auctions: []agent.AuctionState{}}
	}
	return current.Snapshot()
}

func (s *Simulation) Run(ctx context.Context, opts Options) (Report, error) {
	if opts.Step <= 0 {
		opts.Step = DefaultOptions.Step
	}

	var bar *pb.ProgressBar
	if opts.Progress != nil {
		bar = pb.New(opts.Games)
		bar.Output = opts.Progress
		bar.Start()
		defer bar.Finish()
	}

	t := time.Now()
	report := Report{Games: []types.GameSummary{}}
	for i := 0; i < opts.Games; i++ {
		summary, err := s.Play(ctx, opts.FirstGameID+i, opts.Seed+int64(i), opts.Step)
		if err != nil {
			report.Duration = time.Since(t)
			return report, err
		}
		report.Games = append(report.Games, summary)
		if bar != nil {
			bar.Increment()
		}
	}
	report.Duration = time.Since(t)
	return report, nil
}

// Play runs one complete game and settles it.
func (s *Simulation) Play(ctx context.Context, gameID int, seed int64, step time.Duration) (types.GameSummary, error) {
	m := market.New(s.rules, seed, s.logger)
	a := agent.New(s.rules, s.logger, s.observer)

	s.lock.Lock()
	s.current = a
	s.lock.Unlock()

	m.Start(gameID)
	a.Init(m)
	a.GameStarted()

	for m.Running() {
		if err := ctx.Err(); err != nil {
			return types.GameSummary{}, fmt.Errorf("game %d: %w", gameID, err)
		}
		for _, event := range m.Advance(step) {
			Deliver(a, event)
		}
	}

	summary := m.Score()
	s.logger.Info("game settled", "game", gameID, "score", summary.Score, "utility", summary.Utility, "cost", summary.Cost)
	for _, sink := range s.sinks {
		if err := sink(summary); err != nil {
			s.logger.Warn("failed to record game", "game", gameID, "error", err)
		}
	}
	return summary, nil
}

// Deliver hands one market event to the agent. Holdings need no callback:
// the agent reads them straight off the market.
func Deliver(hooks bridge.Hooks, event market.Event) {
	switch event.Kind {
	case types.MsgQuote:
		hooks.QuoteUpdated(event.Quote)
	case types.MsgQuoteCategory:
		hooks.QuoteCategoryUpdated(event.Category)
	case types.MsgBidStatus:
		switch event.Status {
		case types.BidStatusUpdated:
			hooks.BidUpdated(event.Bid)
		case types.BidStatusRejected:
			hooks.BidRejected(event.Bid, event.Reason)
		case types.BidStatusError:
			hooks.BidError(event.Bid, event.Reason)
		}
	case types.MsgAuctionClosed:
		hooks.AuctionClosed(event.Auction)
	case types.MsgGameStop:
		hooks.GameStopped()
	}
}
