package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Sokpao/Agent-TAC/types"
)

// Hooks are the callbacks the agent exposes to a runtime.
type Hooks interface {
	Init(rt types.Runtime)
	GameStarted()
	QuoteUpdated(quote types.Quote)
	QuoteCategoryUpdated(category types.Category)
	BidUpdated(bid types.Bid)
	BidRejected(bid types.Bid, reason string)
	BidError(bid types.Bid, reason string)
	AuctionClosed(auction int)
	GameStopped()
}

// Dispatcher decodes inbound payloads and replays them, one at a time, onto
// the runtime mirror and then the hooks. Handle may be called from any
// goroutine; the hooks only ever run on the goroutine inside Run.
type Dispatcher struct {
	runtime *Runtime
	hooks   Hooks
	logger  *slog.Logger
	inbox   chan types.Envelope
	done    chan struct{}
}

func NewDispatcher(runtime *Runtime, hooks Hooks, logger *slog.Logger, buffer int) *Dispatcher {
	return &Dispatcher{
		runtime: runtime,
		hooks:   hooks,
		logger:  logger,
		inbox:   make(chan types.Envelope, buffer),
		done:    make(chan struct{}),
	}
}

func (d *Dispatcher) Handle(payload []byte) {
	var envelope types.Envelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		d.logger.Warn("dropping malformed message", "error", err)
		return
	}
	select {
	case d.inbox <- envelope:
	case <-d.done:
	}
}

func (d *Dispatcher) Run(ctx context.Context) error {
	defer close(d.done)
	d.hooks.Init(d.runtime)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case envelope := <-d.inbox:
			if err := d.dispatch(envelope); err != nil {
				d.logger.Warn("failed to dispatch message", "type", envelope.Type, "error", err)
			}
		}
	}
}

func (d *Dispatcher) dispatch(envelope types.Envelope) error {
	switch envelope.Type {
	case types.MsgGameStart:
		var msg types.GameStartMsg
		if err := json.Unmarshal(envelope.Payload, &msg); err != nil {
			return err
		}
		d.runtime.start(msg)
		d.hooks.GameStarted()

	case types.MsgClock:
		var msg types.ClockMsg
		if err := json.Unmarshal(envelope.Payload, &msg); err != nil {
			return err
		}
		d.runtime.clock(msg.Elapsed)

	case types.MsgQuote:
		var msg types.QuoteMsg
		if err := json.Unmarshal(envelope.Payload, &msg); err != nil {
			return err
		}
		d.runtime.quote(msg)
		d.hooks.QuoteUpdated(msg.Quote)

	case types.MsgQuoteCategory:
		var msg types.QuoteCategoryMsg
		if err := json.Unmarshal(envelope.Payload, &msg); err != nil {
			return err
		}
		d.hooks.QuoteCategoryUpdated(msg.Category)

	case types.MsgHolding:
		var msg types.HoldingMsg
		if err := json.Unmarshal(envelope.Payload, &msg); err != nil {
			return err
		}
		d.runtime.holding(msg)

	case types.MsgBidStatus:
		var msg types.BidStatusMsg
		if err := json.Unmarshal(envelope.Payload, &msg); err != nil {
			return err
		}
		switch msg.Status {
		case types.BidStatusUpdated:
			d.runtime.bidUpdated(msg.Bid)
			d.hooks.BidUpdated(msg.Bid)
		case types.BidStatusRejected:
			d.hooks.BidRejected(msg.Bid, msg.Reason)
		case types.BidStatusError:
			d.hooks.BidError(msg.Bid, msg.Reason)
		default:
			return fmt.Errorf("unknown bid status %q", msg.Status)
		}

	case types.MsgAuctionClosed:
		var msg types.AuctionClosedMsg
		if err := json.Unmarshal(envelope.Payload, &msg); err != nil {
			return err
		}
		d.runtime.closed(msg.Auction)
		d.hooks.AuctionClosed(msg.Auction)

	case types.MsgGameStop:
		d.runtime.stop()
		d.hooks.GameStopped()

	default:
		return fmt.Errorf("unknown message type %q", envelope.Type)
	}
	return nil
}

// Serve wires a transport to the hooks and blocks until ctx is done.
func Serve(ctx context.Context, transport Transport, hooks Hooks, logger *slog.Logger) error {
	runtime := NewRuntime(transport, nil)
	dispatcher := NewDispatcher(runtime, hooks, logger, 256)

	if err := transport.Subscribe(dispatcher.Handle); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer transport.Close()

	logger.Info("bridge serving")
	err := dispatcher.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
