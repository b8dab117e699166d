package agent

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/Sokpao/Agent-TAC/bidsync"
	"github.com/Sokpao/Agent-TAC/config"
	"github.com/Sokpao/Agent-TAC/planner"
	"github.com/Sokpao/Agent-TAC/pricing"
	"github.com/Sokpao/Agent-TAC/rebalancer"
	"github.com/Sokpao/Agent-TAC/types"
)

/*

The agent is driven entirely by runtime callbacks, one at a time.
	GameStarted plans the allocation and sweeps every auction once
	QuoteUpdated reprices one auction and brings its bid in line
	Late in the game a flight quote may move the flight to an adjacent day

The allocation and price memory live in a per-game context and are only
touched from callbacks. The snapshot is the only state shared with other
goroutines.

*/

type game struct {
	catalog    *types.Catalog
	planner    *planner.Planner
	rebalancer *rebalancer.Rebalancer
	alloc      types.Allocation
	memory     pricing.Memory
}

type Agent struct {
	rules    config.Rules
	logger   *slog.Logger
	observer Observer

	engine *pricing.Engine
	sync   *bidsync.Synchronizer

	rt   types.Runtime
	game *game

	lock     *sync.Mutex
	snapshot Snapshot
}

func New(rules config.Rules, logger *slog.Logger, observer Observer) *Agent {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Agent{
		rules:    rules,
		logger:   logger,
		observer: observer,
		engine:   pricing.New(rules),
		sync:     bidsync.New(rules.Bids.PendingLimit),
		lock:     &sync.Mutex{},
		snapshot: Snapshot{Auctions: []AuctionState{}},
	}
}

func (a *Agent) Init(rt types.Runtime) {
	a.rt = rt
	a.logger.Info("agent initialized")
}

func (a *Agent) GameStarted() {
	if a.rt == nil {
		a.logger.Error("game started before init")
		return
	}

	catalog := a.rt.Catalog()
	plan, err := planner.New(a.rules, catalog, a.logger)
	if err != nil {
		a.logger.Error("failed to build planner", "error", err)
		return
	}
	rb, err := rebalancer.New(a.rules, catalog, a.rt.Clients())
	if err != nil {
		a.logger.Error("failed to build rebalancer", "error", err)
		return
	}

	a.game = &game{
		catalog:    catalog,
		planner:    plan,
		rebalancer: rb,
		alloc:      plan.Plan(a.rt.Clients()),
		memory:     pricing.Memory{},
	}
	a.sync.Reset()

	for _, auction := range catalog.Auctions() {
		a.rt.SetAllocation(auction.ID, a.game.alloc[auction.ID])
	}

	a.logger.Info("game started", "game", a.rt.GameID(), "auctions", catalog.Len(), "clients", len(a.rt.Clients()))

	for _, auction := range catalog.Auctions() {
		need := a.game.alloc[auction.ID] - a.rt.Own(auction.ID)
		decision := a.engine.Initial(auction, need)
		if decision.Hold {
			continue
		}
		a.game.memory.Remember(auction.ID, decision.Price)
		a.apply(a.sync.Reconcile(auction.ID, decision.Points, a.rt.ActiveBid(auction.ID)))
	}

	a.publish(true)
}

func (a *Agent) QuoteUpdated(quote types.Quote) {
	if a.game == nil {
		return
	}
	auction, ok := a.game.catalog.Auction(quote.Auction)
	if !ok {
		a.logger.Warn("quote for unknown auction", "auction", quote.Auction)
		return
	}
	if quote.Closed {
		return
	}

	a.update(auction, &quote)
	a.publish(true)
}

// QuoteCategoryUpdated marks the end of a round of quotes. Every quote was
// already acted on as it arrived, so only the snapshot is refreshed.
func (a *Agent) QuoteCategoryUpdated(category types.Category) {
	if a.game == nil {
		return
	}
	a.logger.Debug("category quotes updated", "category", category.String())
	a.publish(true)
}

func (a *Agent) BidUpdated(bid types.Bid) {
	a.sync.Forget(bid.Auction)
	a.logger.Debug("bid updated", "auction", bid.Auction, "bid", bid.ID)
}

func (a *Agent) BidRejected(bid types.Bid, reason string) {
	a.sync.Forget(bid.Auction)
	a.logger.Warn("bid rejected", "auction", bid.Auction, "bid", bid.ID, "reason", reason)
	a.emit(types.EventBidRejected, bid.Auction, bid.Quantity(), firstPrice(&bid), reason)
}

func (a *Agent) BidError(bid types.Bid, reason string) {
	a.sync.Forget(bid.Auction)
	a.logger.Warn("bid error", "auction", bid.Auction, "bid", bid.ID, "reason", reason)
	a.emit(types.EventBidError, bid.Auction, bid.Quantity(), firstPrice(&bid), reason)
}

func (a *Agent) AuctionClosed(auction int) {
	a.sync.Forget(auction)
	if a.game != nil {
		a.logger.Info("auction closed", "auction", auction, "alloc", a.game.alloc[auction], "own", a.rt.Own(auction))
	}
	a.publish(true)
}

func (a *Agent) GameStopped() {
	if a.rt == nil {
		return
	}
	a.logger.Info("game stopped", "game", a.rt.GameID())
	a.emit(types.EventGameStopped, -1, 0, 0, "")
	a.publish(false)
}

// Allocation is the agent's current target for an auction.
func (a *Agent) Allocation(auction int) int {
	if a.game == nil {
		return 0
	}
	return a.game.alloc[auction]
}

func (a *Agent) update(auction types.Auction, quote *types.Quote) {
	in := a.input(auction, quote)
	if auction.Category != types.CategoryFlight {
		a.place(in, a.engine.Price(in))
		return
	}

	if !a.game.rebalancer.Applies(auction, in.Need(), in.Remaining) {
		a.place(in, a.engine.Price(in))
		return
	}

	result := a.game.rebalancer.Rebalance(auction, in.Need(), in.Remaining, a.game.alloc, a.rt)
	if !result.Migrated {
		a.place(in, a.engine.Pin(in))
		return
	}
	a.migrated(result)
}

func (a *Agent) migrated(result rebalancer.Result) {
	for _, id := range result.Changed {
		a.rt.SetAllocation(id, a.game.alloc[id])
	}
	a.logger.Info("flight migrated", "from", result.From, "to", result.To, "quantity", result.Quantity)
	a.emit(types.EventFlightMigrated, result.To, result.Quantity, 0, fmt.Sprintf("from %d", result.From))

	for _, id := range result.Changed {
		auction, _ := a.game.catalog.Auction(id)
		in := a.input(auction, a.quote(id))
		if id == result.To {
			a.place(in, a.engine.Pin(in))
			continue
		}
		a.place(in, a.engine.Price(in))
	}
}

func (a *Agent) place(in pricing.Input, decision pricing.Decision) {
	id := in.Auction.ID
	if in.Quote != nil && in.Quote.Closed {
		return
	}

	switch {
	case decision.Abandon:
		a.game.memory.Remember(id, decision.Price)
		a.game.alloc[id] = 0
		a.rt.SetAllocation(id, 0)
		a.logger.Info("allocation abandoned", "auction", id, "price", decision.Price, "ceiling", a.rules.Hotel.Ceiling)
		a.emit(types.EventAllocationAbandoned, id, in.Need(), decision.Price, "")
		a.apply(a.sync.Withdraw(id, in.ActiveBid))

	case decision.Hold:
		need := in.Need()
		if need < 0 && in.Auction.Category != types.CategoryEntertainment {
			need = 0
		}
		price := a.game.memory.Last(id, firstPrice(in.ActiveBid))
		a.apply(a.sync.Keep(id, need, price, in.ActiveBid))

	default:
		a.game.memory.Remember(id, decision.Price)
		a.apply(a.sync.Reconcile(id, decision.Points, in.ActiveBid))
	}
}

func (a *Agent) apply(action bidsync.Action) {
	if action.Kind == bidsync.Noop {
		return
	}

	if err := a.sync.Apply(a.rt, action); err != nil {
		a.logger.Warn("failed to place bid", "auction", action.Auction, "error", err)
		a.emit(types.EventBidError, action.Auction, action.Bid.Quantity(), firstPrice(&action.Bid), err.Error())
		return
	}

	a.logger.Debug("placed bid", "action", action.Kind.String(), "auction", action.Auction, "alloc", a.game.alloc[action.Auction], "own", a.rt.Own(action.Auction), "points", fmt.Sprint([]types.BidPoint(action.Bid.Points)))
	kind := types.EventBidSubmitted
	if action.Kind == bidsync.Replace {
		kind = types.EventBidReplaced
	}
	a.emit(kind, action.Auction, action.Bid.Quantity(), firstPrice(&action.Bid), "")
}

func (a *Agent) input(auction types.Auction, quote *types.Quote) pricing.Input {
	return pricing.Input{
		Auction:    auction,
		Allocation: a.game.alloc[auction.ID],
		Own:        a.rt.Own(auction.ID),
		Elapsed:    a.rt.GameTime(),
		Remaining:  a.rt.GameTimeLeft(),
		Length:     a.rt.GameLength(),
		Quote:      quote,
		ActiveBid:  a.rt.ActiveBid(auction.ID),
	}
}

func (a *Agent) quote(auction int) *types.Quote {
	quote, ok := a.rt.Quote(auction)
	if !ok {
		return nil
	}
	return &quote
}

func (a *Agent) emit(kind string, auction int, quantity int, price float64, detail string) {
	event := types.AgentEvent{
		Kind:     kind,
		Auction:  auction,
		Quantity: quantity,
		Price:    price,
		Detail:   detail,
	}
	if a.rt != nil {
		event.GameID = a.rt.GameID()
		event.At = a.rt.GameTime()
	}
	a.observer.Observe(event)
}

func firstPrice(bid *types.Bid) float64 {
	if bid == nil || len(bid.Points) == 0 {
		return 0
	}
	return bid.Points[0].Price
}
