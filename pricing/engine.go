package pricing

import (
	"time"

	"github.com/Sokpao/Agent-TAC/config"
	"github.com/Sokpao/Agent-TAC/types"
)

// Input is everything the engine looks at for one auction. Quote and
// ActiveBid may be nil.
type Input struct {
	Auction    types.Auction
	Allocation int
	Own        int

	Elapsed   time.Duration
	Remaining time.Duration
	Length    time.Duration

	Quote     *types.Quote
	ActiveBid *types.Bid
}

func (in Input) Need() int {
	return in.Allocation - in.Own
}

func (in Input) progress() float64 {
	if in.Length <= 0 {
		return 1
	}
	p := float64(in.Elapsed) / float64(in.Length)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

type Decision struct {
	// Points sum to the input's need. Empty when Hold or Abandon is set.
	Points types.BidPoints
	// Price is the base price to remember for the auction.
	Price float64
	// Hold leaves whatever bid is active as it is.
	Hold bool
	// Abandon means the need is too expensive: zero the allocation and
	// withdraw the bid.
	Abandon bool
}

func hold() Decision {
	return Decision{Hold: true}
}

type Engine struct {
	rules config.Rules
}

func New(rules config.Rules) *Engine {
	return &Engine{rules: rules}
}

// Price is a pure function of its input.
func (e *Engine) Price(in Input) Decision {
	switch in.Auction.Category {
	case types.CategoryFlight:
		return e.flight(in)
	case types.CategoryHotel:
		return e.hotel(in)
	case types.CategoryEntertainment:
		return e.entertainment(in)
	}
	return hold()
}

func nonNegative(price float64) float64 {
	if price < 0 {
		return 0
	}
	return price
}
