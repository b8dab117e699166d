package bridge_test

import (
	"fmt"
	"sync"

	"github.com/Sokpao/Agent-TAC/types"
)

type recordingHooks struct {
	lock    sync.Mutex
	rt      types.Runtime
	calls   []string
	onStart func(rt types.Runtime)
}

func (h *recordingHooks) record(call string) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.calls = append(h.calls, call)
}

func (h *recordingHooks) Calls() []string {
	h.lock.Lock()
	defer h.lock.Unlock()
	return append([]string{}, h.calls...)
}

func (h *recordingHooks) Count(call string) int {
	n := 0
	for _, c := range h.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func (h *recordingHooks) Runtime() types.Runtime {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.rt
}

func (h *recordingHooks) Init(rt types.Runtime) {
	h.lock.Lock()
	h.rt = rt
	h.lock.Unlock()
	h.record("init")
}

func (h *recordingHooks) GameStarted() {
	h.record("started")
	if h.onStart != nil {
		h.onStart(h.rt)
	}
}

func (h *recordingHooks) QuoteUpdated(quote types.Quote) {
	h.record(fmt.Sprintf("quote:%d", quote.Auction))
}

func (h *recordingHooks) QuoteCategoryUpdated(category types.Category) {
	h.record("category:" + category.String())
}

func (h *recordingHooks) BidUpdated(bid types.Bid) {
	h.record(fmt.Sprintf("updated:%d", bid.Auction))
}

func (h *recordingHooks) BidRejected(bid types.Bid, reason string) {
	h.record(fmt.Sprintf("rejected:%d:%s", bid.Auction, reason))
}

func (h *recordingHooks) BidError(bid types.Bid, reason string) {
	h.record(fmt.Sprintf("error:%d", bid.Auction))
}

func (h *recordingHooks) AuctionClosed(auction int) {
	h.record(fmt.Sprintf("closed:%d", auction))
}

func (h *recordingHooks) GameStopped() {
	h.record("stopped")
}

type recordingTransport struct {
	lock      sync.Mutex
	published [][]byte
	handler   func([]byte)
}

func (t *recordingTransport) Subscribe(handler func([]byte)) error {
	t.handler = handler
	return nil
}

func (t *recordingTransport) Publish(payload []byte) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.published = append(t.published, payload)
	return nil
}

func (t *recordingTransport) Published() [][]byte {
	t.lock.Lock()
	defer t.lock.Unlock()
	return append([][]byte{}, t.published...)
}

func (t *recordingTransport) Close() error {
	return nil
}
