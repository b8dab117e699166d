package market

import "github.com/Sokpao/Agent-TAC/types"

const (
	packageValue  = 1000
	travelPenalty = 100
)

type travelPackage struct {
	arrival   int
	departure int
	hotel     types.AuctionType
	utility   int
}

// Score settles the holdings into client packages, greedily and in client
// order, and reports utility minus spend.
func (m *Market) Score() types.GameSummary {
	m.lock.Lock()
	defer m.lock.Unlock()

	held := map[int]int{}
	for id, n := range m.own {
		if n > 0 {
			held[id] = n
		}
	}

	summary := types.GameSummary{
		GameID:  m.gameID,
		Cost:    m.spent,
		Clients: len(m.clients),
	}
	for _, client := range m.clients {
		pkg, ok := m.bestPackage(client, held)
		if !ok {
			continue
		}
		m.consume(pkg, held)
		summary.Satisfied++
		summary.Utility += float64(pkg.utility + m.entertain(client, pkg, held))
	}
	summary.Score = summary.Utility - summary.Cost
	return summary
}

func (m *Market) bestPackage(client types.Preferences, held map[int]int) (travelPackage, bool) {
	best := travelPackage{}
	found := false
	for arrival := 1; arrival < m.rules.Days; arrival++ {
		for departure := arrival + 1; departure <= m.rules.Days; departure++ {
			if !m.has(held, types.CategoryFlight, types.TypeInflight, arrival) || !m.has(held, types.CategoryFlight, types.TypeOutflight, departure) {
				continue
			}
			for _, hotel := range []types.AuctionType{types.TypeGoodHotel, types.TypeCheapHotel} {
				if !m.hasNights(held, hotel, arrival, departure) {
					continue
				}
				utility := packageValue - travelPenalty*(abs(arrival-client.Arrival)+abs(departure-client.Departure))
				if hotel == types.TypeGoodHotel {
					utility += client.HotelValue
				}
				if !found || utility > best.utility {
					best = travelPackage{arrival: arrival, departure: departure, hotel: hotel, utility: utility}
					found = true
				}
			}
		}
	}
	return best, found
}

func (m *Market) consume(pkg travelPackage, held map[int]int) {
	take := func(category types.Category, typ types.AuctionType, day int) {
		if id, ok := m.catalog.AuctionFor(category, typ, day); ok {
			held[id]--
		}
	}
	take(types.CategoryFlight, types.TypeInflight, pkg.arrival)
	take(types.CategoryFlight, types.TypeOutflight, pkg.departure)
	for night := pkg.arrival; night < pkg.departure; night++ {
		take(types.CategoryHotel, pkg.hotel, night)
	}
}

// entertain hands out at most one event per night and each kind at most
// once, best value first.
func (m *Market) entertain(client types.Preferences, pkg travelPackage, held map[int]int) int {
	bonus := 0
	used := map[types.AuctionType]bool{}
	for night := pkg.arrival; night < pkg.departure; night++ {
		bestID, bestKind, bestValue := -1, types.AuctionType(0), 0
		for _, kind := range types.EventKinds {
			if used[kind] || client.Events[kind] <= bestValue {
				continue
			}
			id, ok := m.catalog.AuctionFor(types.CategoryEntertainment, kind, night)
			if !ok || held[id] <= 0 {
				continue
			}
			bestID, bestKind, bestValue = id, kind, client.Events[kind]
		}
		if bestID < 0 {
			continue
		}
		held[bestID]--
		used[bestKind] = true
		bonus += bestValue
	}
	return bonus
}

func (m *Market) has(held map[int]int, category types.Category, typ types.AuctionType, day int) bool {
	id, ok := m.catalog.AuctionFor(category, typ, day)
	return ok && held[id] > 0
}

func (m *Market) hasNights(held map[int]int, hotel types.AuctionType, arrival, departure int) bool {
	for night := arrival; night < departure; night++ {
		if !m.has(held, types.CategoryHotel, hotel, night) {
			return false
		}
	}
	return true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
