package natsbridge

import (
	"fmt"

	"github.com/nats-io/nats.go"
)

// Conn is the part of *nats.Conn the bridge uses.
type Conn interface {
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
	Publish(subject string, data []byte) error
	Drain() error
}

func EventsSubject(agent string) string {
	return fmt.Sprintf("tac.%s.events", agent)
}

func BidsSubject(agent string) string {
	return fmt.Sprintf("tac.%s.bids", agent)
}

func Connect(url string, agent string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("tac-agent-"+agent),
		nats.MaxReconnects(-1),
	)
}

// Transport publishes on one subject and listens on another.
type Transport struct {
	conn     Conn
	inbound  string
	outbound string
}

// ForAgent listens for game events and sends bid commands.
func ForAgent(conn Conn, agent string) *Transport {
	return &Transport{conn: conn, inbound: EventsSubject(agent), outbound: BidsSubject(agent)}
}

// ForServer is the other end: it listens for bid commands and sends events.
func ForServer(conn Conn, agent string) *Transport {
	return &Transport{conn: conn, inbound: BidsSubject(agent), outbound: EventsSubject(agent)}
}

func (t *Transport) Subscribe(handler func(payload []byte)) error {
	_, err := t.conn.Subscribe(t.inbound, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", t.inbound, err)
	}
	return nil
}

func (t *Transport) Publish(payload []byte) error {
	return t.conn.Publish(t.outbound, payload)
}

// Close drains the connection so in-flight messages are still delivered.
func (t *Transport) Close() error {
	return t.conn.Drain()
}
