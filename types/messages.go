package types

import (
	"encoding/json"
	"time"
)

const (
	MsgGameStart     = "game_start"
	MsgClock         = "clock"
	MsgQuote         = "quote"
	MsgQuoteCategory = "quote_category"
	MsgHolding       = "holding"
	MsgBidStatus     = "bid_status"
	MsgAuctionClosed = "auction_closed"
	MsgGameStop      = "game_stop"
)

const (
	BidStatusUpdated  = "updated"
	BidStatusRejected = "rejected"
	BidStatusError    = "error"
)

const (
	BidOpSubmit  = "submit"
	BidOpReplace = "replace"
)

// Envelope frames every message exchanged with a remote runtime.
type Envelope struct {
	Type    string          `json:"t"`
	Payload json.RawMessage `json:"p"`
}

func NewEnvelope(msgType string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}

type GameStartMsg struct {
	GameID   int           `json:"g"`
	Length   time.Duration `json:"l"`
	Auctions []Auction     `json:"a"`
	Clients  []Preferences `json:"c"`
	Own      map[int]int   `json:"o"`
}

type ClockMsg struct {
	Elapsed time.Duration `json:"e"`
}

type QuoteMsg struct {
	Quote   Quote         `json:"q"`
	Elapsed time.Duration `json:"e"`
}

// QuoteCategoryMsg follows the last quote of a category in one round.
type QuoteCategoryMsg struct {
	Category Category `json:"c"`
}

type HoldingMsg struct {
	Auction int `json:"a"`
	Own     int `json:"o"`
}

type BidStatusMsg struct {
	Status string `json:"s"`
	Bid    Bid    `json:"b"`
	Reason string `json:"r,omitempty"`
}

type AuctionClosedMsg struct {
	Auction int `json:"a"`
}

type GameStopMsg struct {
	GameID int `json:"g"`
}

// BidCommand is the only message the agent sends to a remote runtime.
type BidCommand struct {
	Op       string `json:"op"`
	Replaces string `json:"r,omitempty"`
	Bid      Bid    `json:"b"`
}
