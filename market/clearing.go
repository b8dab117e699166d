package market

import (
	"math"
	"sort"
	"time"

	"github.com/Sokpao/Agent-TAC/types"
)

const (
	flightMin = 150.0
	flightMax = 800.0
)

func (m *Market) openQuotes() {
	for _, auction := range m.catalog.Auctions() {
		quote := &types.Quote{Auction: auction.ID}
		switch auction.Category {
		case types.CategoryFlight:
			quote.AskPrice = 250 + m.r.Float64()*150
			m.drift[auction.ID] = -10 + m.r.Float64()*40
		case types.CategoryHotel:
			quote.AskPrice = 0
		case types.CategoryEntertainment:
			quote.AskPrice = 60 + m.r.Float64()*60
			quote.BidPrice = quote.AskPrice - 20 - m.r.Float64()*20
		}
		m.quotes[auction.ID] = quote
	}
}

// Advance moves the game clock forward and returns everything that happened,
// in order: bid status from earlier bid calls, fills, quotes, closings and,
// once time runs out, the game stop.
func (m *Market) Advance(d time.Duration) []Event {
	m.lock.Lock()
	defer m.lock.Unlock()

	if !m.running {
		return nil
	}

	events := m.pending
	m.pending = []Event{}

	m.elapsed += d
	if m.elapsed > m.rules.GameLength {
		m.elapsed = m.rules.GameLength
	}

	m.movePrices(d)
	events = append(events, m.clear()...)

	quoted := map[types.Category]bool{}
	for _, id := range m.sortedQuotes() {
		quote := m.quotes[id]
		if quote.Closed {
			continue
		}
		closes, isHotel := m.hotelClose[id]
		if m.elapsed >= m.rules.GameLength || (isHotel && m.elapsed >= closes) {
			events = append(events, m.close(id)...)
			continue
		}
		events = append(events, Event{Kind: types.MsgQuote, Quote: *quote})
		auction, _ := m.catalog.Auction(id)
		quoted[auction.Category] = true
	}
	for _, category := range []types.Category{types.CategoryFlight, types.CategoryHotel, types.CategoryEntertainment} {
		if quoted[category] {
			events = append(events, Event{Kind: types.MsgQuoteCategory, Category: category})
		}
	}

	if m.elapsed >= m.rules.GameLength {
		m.running = false
		events = append(events, Event{Kind: types.MsgGameStop})
	}
	return events
}

func (m *Market) progress() float64 {
	return float64(m.elapsed) / float64(m.rules.GameLength)
}

// movePrices walks every open quote. Flights step once per ten seconds of
// game time, like the reference server.
func (m *Market) movePrices(d time.Duration) {
	scale := d.Seconds() / 10
	for _, id := range m.sortedQuotes() {
		quote := m.quotes[id]
		if quote.Closed {
			continue
		}
		auction, _ := m.catalog.Auction(id)
		switch auction.Category {
		case types.CategoryFlight:
			bias := 10 + (m.drift[id]-10)*m.progress()
			step := (-10 + m.r.Float64()*(20+bias)) * scale
			quote.AskPrice = math.Min(flightMax, math.Max(flightMin, quote.AskPrice+step))
		case types.CategoryHotel:
			quote.AskPrice += m.r.Float64() * 8 * scale * (1 + m.progress())
			m.updateHQW(quote)
		case types.CategoryEntertainment:
			quote.AskPrice = math.Max(1, quote.AskPrice-5+m.r.Float64()*10)
			quote.BidPrice = math.Max(0, quote.AskPrice-20-m.r.Float64()*20)
		}
	}
}

func (m *Market) updateHQW(quote *types.Quote) {
	quote.HQW = 0
	quote.HQWBid = ""
	bid, ok := m.active[quote.Auction]
	if !ok {
		return
	}
	quote.HQWBid = bid.ID
	for _, point := range bid.Points {
		if point.Quantity > 0 && point.Price > quote.AskPrice {
			quote.HQW += point.Quantity
		}
	}
}

// clear fills bids on the continuous auctions.
func (m *Market) clear() []Event {
	events := []Event{}
	ids := []int{}
	for id := range m.active {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		bid := m.active[id]
		auction, _ := m.catalog.Auction(id)
		if auction.Category == types.CategoryHotel {
			continue
		}
		quote := m.quotes[id]

		filled := false
		for i, point := range bid.Points {
			switch {
			case point.Quantity > 0 && point.Price >= quote.AskPrice:
				m.own[id] += point.Quantity
				m.spent += float64(point.Quantity) * quote.AskPrice
			case point.Quantity < 0 && point.Price <= quote.BidPrice && m.own[id] >= -point.Quantity:
				m.own[id] += point.Quantity
				m.spent += float64(point.Quantity) * quote.BidPrice
			default:
				continue
			}
			bid.Points[i].Quantity = 0
			filled = true
		}
		if !filled {
			continue
		}

		remaining := types.BidPoints{}
		for _, point := range bid.Points {
			if point.Quantity != 0 {
				remaining = append(remaining, point)
			}
		}
		if len(remaining) == 0 {
			delete(m.active, id)
			remaining = types.BidPoints{{Quantity: 0, Price: 0}}
		} else {
			bid.Points = remaining
		}
		events = append(events, Event{Kind: types.MsgHolding, Auction: id, Own: m.own[id]})
		events = append(events, Event{Kind: types.MsgBidStatus, Status: types.BidStatusUpdated, Bid: types.Bid{ID: bid.ID, Auction: id, Points: remaining.Copy()}})
	}
	return events
}

// close settles a hotel at its final ask and shuts the auction.
func (m *Market) close(id int) []Event {
	events := []Event{}
	quote := m.quotes[id]
	auction, _ := m.catalog.Auction(id)

	if bid, ok := m.active[id]; ok && auction.Category == types.CategoryHotel {
		for _, point := range bid.Points {
			if point.Quantity > 0 && point.Price > quote.AskPrice {
				m.own[id] += point.Quantity
				m.spent += float64(point.Quantity) * quote.AskPrice
			}
		}
		events = append(events, Event{Kind: types.MsgHolding, Auction: id, Own: m.own[id]})
	}

	delete(m.active, id)
	quote.Closed = true
	events = append(events, Event{Kind: types.MsgQuote, Quote: *quote})
	events = append(events, Event{Kind: types.MsgAuctionClosed, Auction: id})
	return events
}

func (m *Market) sortedQuotes() []int {
	ids := []int{}
	for id := range m.quotes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
