package bridge

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/Sokpao/Agent-TAC/types"
)

// Transport moves encoded envelopes. Implementations deliver inbound
// payloads to the subscribed handler from any goroutine.
type Transport interface {
	Subscribe(handler func(payload []byte)) error
	Publish(payload []byte) error
	Close() error
}

/*

Runtime mirrors a remote auction server from the events it sends, and turns
bid calls into outbound commands.

Game time is the last elapsed value the server reported, plus wall time since
that report.

*/

type Runtime struct {
	transport Transport
	now       func() time.Time

	lock *sync.Mutex

	gameID     int
	length     time.Duration
	elapsed    time.Duration
	reportedAt time.Time
	running    bool

	catalog    *types.Catalog
	clients    []types.Preferences
	quotes     map[int]types.Quote
	own        map[int]int
	allocation map[int]int
	active     map[int]*types.Bid
}

func NewRuntime(transport Transport, now func() time.Time) *Runtime {
	if now == nil {
		now = time.Now
	}
	return &Runtime{
		transport:  transport,
		now:        now,
		lock:       &sync.Mutex{},
		catalog:    types.NewCatalog(nil),
		quotes:     map[int]types.Quote{},
		own:        map[int]int{},
		allocation: map[int]int{},
		active:     map[int]*types.Bid{},
	}
}

func (r *Runtime) GameID() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.gameID
}

func (r *Runtime) GameTime() time.Duration {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.gameTime()
}

func (r *Runtime) gameTime() time.Duration {
	elapsed := r.elapsed
	if r.running {
		elapsed += r.now().Sub(r.reportedAt)
	}
	if elapsed > r.length {
		return r.length
	}
	return elapsed
}

func (r *Runtime) GameTimeLeft() time.Duration {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.length - r.gameTime()
}

func (r *Runtime) GameLength() time.Duration {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.length
}

func (r *Runtime) Catalog() *types.Catalog {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.catalog
}

func (r *Runtime) Clients() []types.Preferences {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]types.Preferences{}, r.clients...)
}

func (r *Runtime) Quote(auction int) (types.Quote, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	quote, ok := r.quotes[auction]
	return quote, ok
}

func (r *Runtime) Own(auction int) int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.own[auction]
}

func (r *Runtime) ActiveBid(auction int) *types.Bid {
	r.lock.Lock()
	defer r.lock.Unlock()
	bid, ok := r.active[auction]
	if !ok {
		return nil
	}
	out := *bid
	out.Points = bid.Points.Copy()
	return &out
}

func (r *Runtime) Allocation(auction int) int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.allocation[auction]
}

func (r *Runtime) SetAllocation(auction int, alloc int) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.allocation[auction] = alloc
}

// SubmitBid sends the bid. It only becomes active once the server reports it.
func (r *Runtime) SubmitBid(bid types.Bid) error {
	return r.send(types.BidCommand{Op: types.BidOpSubmit, Bid: bid})
}

func (r *Runtime) ReplaceBid(old *types.Bid, bid types.Bid) error {
	r.lock.Lock()
	current, ok := r.active[bid.Auction]
	r.lock.Unlock()
	if old == nil || !ok || current.ID != old.ID {
		return types.StaleBid
	}
	return r.send(types.BidCommand{Op: types.BidOpReplace, Replaces: old.ID, Bid: bid})
}

func (r *Runtime) send(command types.BidCommand) error {
	if _, ok := r.Catalog().Auction(command.Bid.Auction); !ok {
		return types.UnknownAuction
	}
	payload, err := json.Marshal(command)
	if err != nil {
		return err
	}
	return r.transport.Publish(payload)
}

func (r *Runtime) start(msg types.GameStartMsg) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.gameID = msg.GameID
	r.length = msg.Length
	r.elapsed = 0
	r.reportedAt = r.now()
	r.running = true
	r.catalog = types.NewCatalog(msg.Auctions)
	r.clients = append([]types.Preferences{}, msg.Clients...)
	r.quotes = map[int]types.Quote{}
	r.own = map[int]int{}
	r.allocation = map[int]int{}
	r.active = map[int]*types.Bid{}
	for id, n := range msg.Own {
		r.own[id] = n
	}
}

func (r *Runtime) clock(elapsed time.Duration) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.elapsed = elapsed
	r.reportedAt = r.now()
}

func (r *Runtime) quote(msg types.QuoteMsg) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.quotes[msg.Quote.Auction] = msg.Quote
	if msg.Elapsed > 0 {
		r.elapsed = msg.Elapsed
		r.reportedAt = r.now()
	}
}

func (r *Runtime) holding(msg types.HoldingMsg) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.own[msg.Auction] = msg.Own
}

func (r *Runtime) bidUpdated(bid types.Bid) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if bid.Points.IsZero() {
		delete(r.active, bid.Auction)
		return
	}
	stored := bid
	stored.Points = bid.Points.Copy()
	r.active[bid.Auction] = &stored
}

func (r *Runtime) closed(auction int) {
	r.lock.Lock()
	defer r.lock.Unlock()
	quote := r.quotes[auction]
	quote.Auction = auction
	quote.Closed = true
	r.quotes[auction] = quote
	delete(r.active, auction)
}

func (r *Runtime) stop() {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.elapsed = r.gameTime()
	r.running = false
}
