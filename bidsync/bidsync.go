package bidsync

import (
	"fmt"

	"github.com/Sokpao/Agent-TAC/types"
)

type Kind int

const (
	Noop Kind = iota
	Submit
	Replace
)

func (k Kind) String() string {
	switch k {
	case Submit:
		return "submit"
	case Replace:
		return "replace"
	}
	return "noop"
}

// Action is the one thing to do for an auction. Previous is set only for
// Replace.
type Action struct {
	Kind     Kind
	Auction  int
	Previous *types.Bid
	Bid      types.Bid
}

func (a Action) String() string {
	return fmt.Sprintf("%s auction=%d points=%v", a.Kind, a.Auction, []types.BidPoint(a.Bid.Points))
}

type Stats struct {
	Submitted int `json:"submitted"`
	Replaced  int `json:"replaced"`
	Noops     int `json:"noops"`
	Expired   int `json:"expired"`
}

// BidPlacer is the part of the runtime that carries out actions.
type BidPlacer interface {
	SubmitBid(bid types.Bid) error
	ReplaceBid(old *types.Bid, bid types.Bid) error
}

/*

The synchronizer compares what we want to bid with what the runtime says is
active for the auction.
	No active bid: submit, unless a submission is already on its way
	Active bid with different points: replace it
	Otherwise: nothing

A submitted bid is pending until the runtime reports it active, or until it
is rejected and forgotten. Nothing is submitted twice for the same auction
while a bid is pending, but a pending mark that has waited out limit
reconciles without a report is dropped and the bid is submitted again.

*/

type Synchronizer struct {
	limit   int
	pending map[int]int
	stats   Stats
}

// New returns a synchronizer whose pending marks survive at most limit
// reconciles without a status report.
func New(limit int) *Synchronizer {
	if limit < 1 {
		limit = 1
	}
	return &Synchronizer{
		limit:   limit,
		pending: map[int]int{},
	}
}

func (s *Synchronizer) Reset() {
	s.pending = map[int]int{}
	s.stats = Stats{}
}

// Reconcile decides how to make the auction's active bid carry points.
// Empty points mean there is nothing to bid for.
func (s *Synchronizer) Reconcile(auction int, points types.BidPoints, active *types.Bid) Action {
	if active != nil {
		delete(s.pending, auction)
		if active.Points.Equal(points) || (len(points) == 0 && active.Quantity() == 0) {
			return s.noop(auction)
		}
		if len(points) == 0 {
			points = types.BidPoints{{Quantity: 0, Price: 0}}
		}
		return s.replace(auction, active, points)
	}

	if points.IsZero() {
		return s.noop(auction)
	}
	if waited, ok := s.pending[auction]; ok {
		if waited < s.limit {
			s.pending[auction] = waited + 1
			return s.noop(auction)
		}
		s.stats.Expired++
	}
	s.pending[auction] = 0
	s.stats.Submitted++
	return Action{Kind: Submit, Auction: auction, Bid: bidFor(auction, points)}
}

// Keep leaves the active bid's prices alone but makes sure its quantity
// still matches the need, resizing it at price when it does not.
func (s *Synchronizer) Keep(auction int, need int, price float64, active *types.Bid) Action {
	if active == nil || active.Quantity() == need {
		return s.noop(auction)
	}
	delete(s.pending, auction)
	return s.replace(auction, active, types.BidPoints{{Quantity: need, Price: price}})
}

// Withdraw zeroes the active bid, if there is one worth zeroing.
func (s *Synchronizer) Withdraw(auction int, active *types.Bid) Action {
	return s.Reconcile(auction, nil, active)
}

// Forget drops the pending mark so the next reconcile may submit again.
func (s *Synchronizer) Forget(auction int) {
	delete(s.pending, auction)
}

func (s *Synchronizer) Pending(auction int) bool {
	_, ok := s.pending[auction]
	return ok
}

func (s *Synchronizer) Stats() Stats {
	return s.stats
}

// Apply carries out the action. A failed submission is forgotten at once.
func (s *Synchronizer) Apply(placer BidPlacer, action Action) error {
	var err error
	switch action.Kind {
	case Submit:
		err = placer.SubmitBid(action.Bid)
	case Replace:
		err = placer.ReplaceBid(action.Previous, action.Bid)
	default:
		return nil
	}
	if err != nil {
		s.Forget(action.Auction)
		return fmt.Errorf("%s auction %d: %w", action.Kind, action.Auction, err)
	}
	return nil
}

func (s *Synchronizer) noop(auction int) Action {
	s.stats.Noops++
	return Action{Kind: Noop, Auction: auction}
}

func (s *Synchronizer) replace(auction int, active *types.Bid, points types.BidPoints) Action {
	s.stats.Replaced++
	return Action{Kind: Replace, Auction: auction, Previous: active, Bid: bidFor(auction, points)}
}

func bidFor(auction int, points types.BidPoints) types.Bid {
	bid := types.NewBid(auction)
	bid.Points = points.Copy()
	return bid
}
