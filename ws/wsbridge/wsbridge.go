package wsbridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var AlreadySubscribed = errors.New("already subscribed")

const writeTimeout = 5 * time.Second

// Transport is one websocket connection. Every message is a text frame
// carrying one envelope.
type Transport struct {
	conn   *websocket.Conn
	logger *slog.Logger

	writeLock *sync.Mutex
	lock      *sync.Mutex
	reading   bool
	done      chan struct{}
}

func New(conn *websocket.Conn, logger *slog.Logger) *Transport {
	return &Transport{
		conn:      conn,
		logger:    logger,
		writeLock: &sync.Mutex{},
		lock:      &sync.Mutex{},
		done:      make(chan struct{}),
	}
}

// Dial connects to a remote auction server.
func Dial(ctx context.Context, url string, logger *slog.Logger) (*Transport, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return New(conn, logger), nil
}

// Subscribe starts the reader. The handler runs on the reader goroutine.
func (t *Transport) Subscribe(handler func(payload []byte)) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.reading {
		return AlreadySubscribed
	}
	t.reading = true

	go func() {
		defer close(t.done)
		for {
			_, payload, err := t.conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					t.logger.Warn("websocket read failed", "error", err)
				}
				return
			}
			handler(payload)
		}
	}()
	return nil
}

func (t *Transport) Publish(payload []byte) error {
	t.writeLock.Lock()
	defer t.writeLock.Unlock()
	_ = t.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return t.conn.WriteMessage(websocket.TextMessage, payload)
}

// Done is closed once the reader stops.
func (t *Transport) Done() <-chan struct{} {
	return t.done
}

func (t *Transport) Close() error {
	t.writeLock.Lock()
	_ = t.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	t.writeLock.Unlock()
	return t.conn.Close()
}

// Handler upgrades incoming connections and hands each one to serve, which
// owns the transport until it returns.
func Handler(logger *slog.Logger, serve func(t *Transport)) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  16 * 1024,
		WriteBufferSize: 16 * 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(rw, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", "error", err)
			return
		}
		t := New(conn, logger)
		defer t.Close()
		serve(t)
	}
}
