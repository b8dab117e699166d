package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Sokpao/Agent-TAC/market"
	"github.com/Sokpao/Agent-TAC/types"
)

// Server plays a simulated market over a transport, speaking the same
// messages a remote auction server would.
type Server struct {
	market    *market.Market
	transport Transport
	logger    *slog.Logger
}

func NewServer(m *market.Market, transport Transport, logger *slog.Logger) (*Server, error) {
	s := &Server{
		market:    m,
		transport: transport,
		logger:    logger,
	}
	if err := transport.Subscribe(s.handleCommand); err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	return s, nil
}

func (s *Server) Start(gameID int) error {
	s.market.Start(gameID)

	own := map[int]int{}
	for _, auction := range s.market.Catalog().Auctions() {
		if n := s.market.Own(auction.ID); n != 0 {
			own[auction.ID] = n
		}
	}
	return s.publish(types.MsgGameStart, types.GameStartMsg{
		GameID:   gameID,
		Length:   s.market.GameLength(),
		Auctions: s.market.Catalog().Auctions(),
		Clients:  s.market.Clients(),
		Own:      own,
	})
}

// Step advances the market and publishes everything that happened.
func (s *Server) Step(d time.Duration) error {
	events := s.market.Advance(d)
	if len(events) == 0 {
		return nil
	}
	if err := s.publish(types.MsgClock, types.ClockMsg{Elapsed: s.market.GameTime()}); err != nil {
		return err
	}
	for _, event := range events {
		if err := s.publishEvent(event); err != nil {
			return err
		}
	}
	return nil
}

// Play runs one game to the end, advancing the market by step every tick.
func (s *Server) Play(ctx context.Context, gameID int, step time.Duration, tick time.Duration) error {
	if err := s.Start(gameID); err != nil {
		return err
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for s.market.Running() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.Step(step); err != nil {
				return err
			}
		}
	}
	s.logger.Info("market game finished", "game", gameID, "score", s.market.Score().Score)
	return nil
}

func (s *Server) publishEvent(event market.Event) error {
	switch event.Kind {
	case types.MsgQuote:
		return s.publish(event.Kind, types.QuoteMsg{Quote: event.Quote, Elapsed: s.market.GameTime()})
	case types.MsgQuoteCategory:
		return s.publish(event.Kind, types.QuoteCategoryMsg{Category: event.Category})
	case types.MsgHolding:
		return s.publish(event.Kind, types.HoldingMsg{Auction: event.Auction, Own: event.Own})
	case types.MsgBidStatus:
		return s.publish(event.Kind, types.BidStatusMsg{Status: event.Status, Bid: event.Bid, Reason: event.Reason})
	case types.MsgAuctionClosed:
		return s.publish(event.Kind, types.AuctionClosedMsg{Auction: event.Auction})
	case types.MsgGameStop:
		return s.publish(event.Kind, types.GameStopMsg{GameID: s.market.GameID()})
	}
	return fmt.Errorf("unknown market event %q", event.Kind)
}

func (s *Server) handleCommand(payload []byte) {
	var command types.BidCommand
	if err := json.Unmarshal(payload, &command); err != nil {
		s.logger.Warn("dropping malformed bid command", "error", err)
		return
	}

	var err error
	switch command.Op {
	case types.BidOpSubmit:
		err = s.market.SubmitBid(command.Bid)
	case types.BidOpReplace:
		err = s.market.ReplaceBid(&types.Bid{ID: command.Replaces, Auction: command.Bid.Auction}, command.Bid)
	default:
		err = fmt.Errorf("unknown op %q", command.Op)
	}
	if err == nil {
		return
	}

	s.logger.Debug("bid command failed", "auction", command.Bid.Auction, "error", err)
	if err := s.publish(types.MsgBidStatus, types.BidStatusMsg{Status: types.BidStatusError, Bid: command.Bid, Reason: err.Error()}); err != nil {
		s.logger.Warn("failed to report bid error", "error", err)
	}
}

func (s *Server) publish(msgType string, payload interface{}) error {
	raw, err := types.NewEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	err = s.transport.Publish(raw)
	if errors.Is(err, LostMessage) {
		s.logger.Debug("message lost", "type", msgType)
		return nil
	}
	return err
}
