package market

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/Sokpao/Agent-TAC/config"
	"github.com/Sokpao/Agent-TAC/types"
	"github.com/Sokpao/Agent-TAC/util"
)

var NoGame = errors.New("no game in progress")
var ClosedAuction = errors.New("auction is closed")
var EmptyBid = errors.New("bid has no points")

// Event is something the market reports back to the agent. Kind is one of
// the types.Msg* constants.
type Event struct {
	Kind     string
	Quote    types.Quote
	Category types.Category
	Status   string
	Bid      types.Bid
	Reason   string
	Auction  int
	Own      int
}

/*

Market is an in-process TAC game. Time only moves when Advance is called, so
games are deterministic for a given seed and run as fast as the agent can
keep up.
	Flights and entertainment clear continuously against the ask
	Hotels clear when they close, one per interval from a third of the way in
	Bid status is reported on the next Advance, never from inside a bid call

*/

type Market struct {
	rules  config.Rules
	logger *slog.Logger
	r      *rand.Rand

	lock *sync.Mutex

	gameID  int
	running bool
	elapsed time.Duration

	catalog *types.Catalog
	clients []types.Preferences

	quotes     map[int]*types.Quote
	drift      map[int]float64
	own        map[int]int
	allocation map[int]int
	active     map[int]*types.Bid
	hotelClose map[int]time.Duration

	spent   float64
	pending []Event
}

func New(rules config.Rules, seed int64, logger *slog.Logger) *Market {
	return &Market{
		rules:  rules,
		logger: logger,
		r:      rand.New(rand.NewSource(seed)),
		lock:   &sync.Mutex{},
	}
}

// Start sets up a fresh game: catalog, client preferences, opening quotes and
// the entertainment endowment.
func (m *Market) Start(gameID int) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.gameID = gameID
	m.running = true
	m.elapsed = 0
	m.catalog = types.StandardCatalog(m.rules.Days)
	m.clients = m.generateClients()
	m.quotes = map[int]*types.Quote{}
	m.drift = map[int]float64{}
	m.own = map[int]int{}
	m.allocation = map[int]int{}
	m.active = map[int]*types.Bid{}
	m.hotelClose = map[int]time.Duration{}
	m.spent = 0
	m.pending = []Event{}

	m.openQuotes()
	m.scheduleHotels()
	m.endow()

	m.logger.Debug("market started", "game", gameID, "auctions", m.catalog.Len(), "clients", len(m.clients))
}

func (m *Market) generateClients() []types.Preferences {
	clients := []types.Preferences{}
	for i := 0; i < m.rules.Clients; i++ {
		arrival := util.RandomIntIn(m.r, 1, m.rules.Days-1)
		departure := util.RandomIntIn(m.r, arrival+1, m.rules.Days)
		events := map[types.AuctionType]int{}
		for _, kind := range types.EventKinds {
			events[kind] = util.RandomIntIn(m.r, 0, 200)
		}
		clients = append(clients, types.Preferences{
			Arrival:    arrival,
			Departure:  departure,
			HotelValue: util.RandomIntIn(m.r, 50, 150),
			Events:     events,
		})
	}
	return clients
}

func (m *Market) endow() {
	tickets := m.catalog.InCategory(types.CategoryEntertainment)
	if len(tickets) == 0 {
		return
	}
	for i := 0; i < len(tickets); i++ {
		m.own[tickets[m.r.Intn(len(tickets))].ID]++
	}
}

func (m *Market) scheduleHotels() {
	hotels := m.catalog.InCategory(types.CategoryHotel)
	order := m.r.Perm(len(hotels))
	interval := m.rules.GameLength / time.Duration(len(hotels)+4)
	for slot, i := range order {
		m.hotelClose[hotels[i].ID] = interval * time.Duration(slot+4)
	}
}

func (m *Market) GameID() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.gameID
}

func (m *Market) GameTime() time.Duration {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.elapsed
}

func (m *Market) GameTimeLeft() time.Duration {
	m.lock.Lock()
	defer m.lock.Unlock()
	left := m.rules.GameLength - m.elapsed
	if left < 0 {
		return 0
	}
	return left
}

func (m *Market) GameLength() time.Duration {
	return m.rules.GameLength
}

func (m *Market) Running() bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.running
}

func (m *Market) Catalog() *types.Catalog {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.catalog
}

func (m *Market) Clients() []types.Preferences {
	m.lock.Lock()
	defer m.lock.Unlock()
	return append([]types.Preferences{}, m.clients...)
}

func (m *Market) Quote(auction int) (types.Quote, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()
	quote, ok := m.quotes[auction]
	if !ok {
		return types.Quote{}, false
	}
	return *quote, true
}

func (m *Market) Own(auction int) int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.own[auction]
}

func (m *Market) ActiveBid(auction int) *types.Bid {
	m.lock.Lock()
	defer m.lock.Unlock()
	bid, ok := m.active[auction]
	if !ok {
		return nil
	}
	out := *bid
	out.Points = bid.Points.Copy()
	return &out
}

func (m *Market) Allocation(auction int) int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.allocation[auction]
}

func (m *Market) SetAllocation(auction int, alloc int) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.allocation[auction] = alloc
}

func (m *Market) SubmitBid(bid types.Bid) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if err := m.accept(bid); err != nil {
		return err
	}
	m.place(bid)
	return nil
}

func (m *Market) ReplaceBid(old *types.Bid, bid types.Bid) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	current, ok := m.active[bid.Auction]
	if old == nil || !ok || current.ID != old.ID {
		return types.StaleBid
	}
	if err := m.accept(bid); err != nil {
		return err
	}
	m.place(bid)
	return nil
}

func (m *Market) accept(bid types.Bid) error {
	if !m.running {
		return NoGame
	}
	if _, ok := m.catalog.Auction(bid.Auction); !ok {
		return fmt.Errorf("%w: %d", types.UnknownAuction, bid.Auction)
	}
	if m.quotes[bid.Auction].Closed {
		return ClosedAuction
	}
	if len(bid.Points) == 0 {
		return EmptyBid
	}
	return nil
}

// place stores the bid or queues a rejection. Flights and hotels cannot be
// sold back to the market.
func (m *Market) place(bid types.Bid) {
	auction, _ := m.catalog.Auction(bid.Auction)
	bid.ID = util.RandomGuid()
	bid.Points = bid.Points.Copy()

	if auction.Category != types.CategoryEntertainment {
		for _, point := range bid.Points {
			if point.Quantity < 0 {
				m.pending = append(m.pending, Event{Kind: types.MsgBidStatus, Status: types.BidStatusRejected, Bid: bid, Reason: "cannot sell " + auction.Category.String()})
				return
			}
		}
	}

	if bid.Points.IsZero() {
		delete(m.active, bid.Auction)
	} else {
		m.active[bid.Auction] = &bid
	}
	m.pending = append(m.pending, Event{Kind: types.MsgBidStatus, Status: types.BidStatusUpdated, Bid: bid})
}
