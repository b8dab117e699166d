package natsbridge_test

import (
	"errors"
	"sync"

	. "github.com/Sokpao/Agent-TAC/nats/natsbridge"
	"github.com/nats-io/nats.go"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// fakeConn is a single-process message bus keyed by subject.
type fakeConn struct {
	lock     sync.Mutex
	handlers map[string][]nats.MsgHandler
	drained  bool
	err      error
}

func newFakeConn() *fakeConn {
	return &fakeConn{handlers: map[string][]nats.MsgHandler{}}
}

func (c *fakeConn) Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	c.handlers[subject] = append(c.handlers[subject], cb)
	return &nats.Subscription{Subject: subject}, nil
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	c.lock.Lock()
	handlers := append([]nats.MsgHandler{}, c.handlers[subject]...)
	c.lock.Unlock()
	for _, h := range handlers {
		h(&nats.Msg{Subject: subject, Data: data})
	}
	return nil
}

func (c *fakeConn) Drain() error {
	c.drained = true
	return nil
}

var _ = Describe("Transport", func() {
	var (
		conn   *fakeConn
		agent  *Transport
		server *Transport
	)

	BeforeEach(func() {
		conn = newFakeConn()
		agent = ForAgent(conn, "alice")
		server = ForServer(conn, "alice")
	})

	It("names subjects after the agent", func() {
		Ω(EventsSubject("alice")).Should(Equal("tac.alice.events"))
		Ω(BidsSubject("alice")).Should(Equal("tac.alice.bids"))
	})

	It("carries events to the agent and bids to the server", func() {
		toAgent := [][]byte{}
		toServer := [][]byte{}
		Ω(agent.Subscribe(func(p []byte) { toAgent = append(toAgent, p) })).Should(Succeed())
		Ω(server.Subscribe(func(p []byte) { toServer = append(toServer, p) })).Should(Succeed())

		Ω(server.Publish([]byte("quote"))).Should(Succeed())
		Ω(agent.Publish([]byte("bid"))).Should(Succeed())

		Ω(toAgent).Should(Equal([][]byte{[]byte("quote")}))
		Ω(toServer).Should(Equal([][]byte{[]byte("bid")}))
	})

	It("keeps agents apart", func() {
		other := ForServer(conn, "bob")
		received := 0
		Ω(agent.Subscribe(func([]byte) { received++ })).Should(Succeed())
		Ω(other.Publish([]byte("quote"))).Should(Succeed())
		Ω(received).Should(BeZero())
	})

	It("wraps subscription failures", func() {
		conn.err = errors.New("no responders")
		err := agent.Subscribe(func([]byte) {})
		Ω(err).Should(MatchError(ContainSubstring("tac.alice.events")))
		Ω(errors.Is(err, conn.err)).Should(BeTrue())
	})

	It("drains on close", func() {
		Ω(agent.Close()).Should(Succeed())
		Ω(conn.drained).Should(BeTrue())
	})
})
