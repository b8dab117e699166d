package rebalancer

import (
	"time"

	"github.com/Sokpao/Agent-TAC/config"
	"github.com/Sokpao/Agent-TAC/types"
)

// Market is the slice of the runtime the rebalancer reads.
type Market interface {
	Quote(auction int) (types.Quote, bool)
	Own(auction int) int
}

type Result struct {
	Considered bool
	Migrated   bool

	From     int
	To       int
	Quantity int

	// Changed lists every auction whose allocation moved, the two flights
	// first, then drained hotel nights.
	Changed []int
}

type stay struct {
	arrival   int
	departure int
}

// Rebalancer tracks the travel dates it has planned for each client so a
// move never leaves anyone with less than one night.
type Rebalancer struct {
	rules   config.Rules
	catalog *types.Catalog
	drain   []config.HotelDrain
	stays   []stay
}

func New(rules config.Rules, catalog *types.Catalog, clients []types.Preferences) (*Rebalancer, error) {
	drain, err := rules.HotelDrainOrder()
	if err != nil {
		return nil, err
	}
	stays := make([]stay, len(clients))
	for i, client := range clients {
		stays[i] = stay{arrival: client.Arrival, departure: client.Departure}
	}
	return &Rebalancer{
		rules:   rules,
		catalog: catalog,
		drain:   drain,
		stays:   stays,
	}, nil
}

func (r *Rebalancer) Applies(auction types.Auction, need int, remaining time.Duration) bool {
	return auction.Category == types.CategoryFlight && need > 0 && remaining < r.rules.Rebalance.TimeLeft
}

/*

Look one day over for a cheaper flight.
	Arrivals move a day later, departures a day earlier
	Move only if the saving beats the penalty for changing dates
	Moving shortens the stay by a night, so release that night's hotel rooms
	Every ticket moved needs a client whose stay keeps at least one night

*/

func (r *Rebalancer) Rebalance(auction types.Auction, need int, remaining time.Duration, alloc types.Allocation, market Market) Result {
	result := Result{From: auction.ID, To: auction.ID}
	if !r.Applies(auction, need, remaining) {
		return result
	}
	result.Considered = true

	adjacent, vacated := r.adjacentDay(auction)
	if r.rules.IsProtectedDay(adjacent) {
		return result
	}
	to, ok := r.catalog.AuctionFor(types.CategoryFlight, auction.Type, adjacent)
	if !ok {
		return result
	}

	current, ok := market.Quote(auction.ID)
	if !ok || current.Closed {
		return result
	}
	candidate, ok := market.Quote(to)
	if !ok || candidate.Closed {
		return result
	}
	if current.AskPrice-candidate.AskPrice <= r.rules.Rebalance.Penalty {
		return result
	}
	movable := r.movable(auction)
	if len(movable) < need {
		return result
	}
	for _, i := range movable[:need] {
		r.shift(i, auction.Type)
	}

	alloc.Add(auction.ID, -need)
	alloc.Add(to, need)

	result.Migrated = true
	result.To = to
	result.Quantity = need
	result.Changed = append([]int{auction.ID, to}, r.releaseNight(vacated, need, alloc, market)...)
	return result
}

func (r *Rebalancer) adjacentDay(auction types.Auction) (adjacent int, vacated int) {
	if auction.Type == types.TypeInflight {
		return auction.Day + 1, auction.Day
	}
	return auction.Day - 1, auction.Day - 1
}

// movable lists the clients flying on the auction whose stay would still
// have a night left after moving to the adjacent day.
func (r *Rebalancer) movable(auction types.Auction) []int {
	out := []int{}
	for i, s := range r.stays {
		if auction.Type == types.TypeInflight && s.arrival == auction.Day && s.departure > auction.Day+1 {
			out = append(out, i)
		}
		if auction.Type == types.TypeOutflight && s.departure == auction.Day && s.arrival < auction.Day-1 {
			out = append(out, i)
		}
	}
	return out
}

func (r *Rebalancer) shift(i int, flight types.AuctionType) {
	if flight == types.TypeInflight {
		r.stays[i].arrival++
		return
	}
	r.stays[i].departure--
}

// releaseNight drains up to quantity unowned rooms for the night, walking
// the drain order.
func (r *Rebalancer) releaseNight(night int, quantity int, alloc types.Allocation, market Market) []int {
	changed := []int{}
	for _, step := range r.drain {
		if quantity <= 0 {
			break
		}
		id, ok := r.catalog.AuctionFor(types.CategoryHotel, step.Type, night)
		if !ok {
			continue
		}

		available := alloc[id] - market.Own(id)
		if available <= 0 {
			continue
		}
		take := available
		if take > quantity {
			take = quantity
		}
		if step.Strategy == config.DrainOne && take > 1 {
			take = 1
		}

		alloc.Add(id, -take)
		quantity -= take
		changed = append(changed, id)
	}
	return changed
}
