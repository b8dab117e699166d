package types

import (
	"errors"
	"fmt"
	"time"
)

var UnknownAuction = errors.New("unknown auction")
var StaleBid = errors.New("bid is no longer the active bid")

type Category int

const (
	CategoryFlight Category = iota
	CategoryHotel
	CategoryEntertainment
)

func (c Category) String() string {
	switch c {
	case CategoryFlight:
		return "flight"
	case CategoryHotel:
		return "hotel"
	case CategoryEntertainment:
		return "entertainment"
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// AuctionType is the direction, quality or kind of an auction; its meaning
// depends on the auction's category.
type AuctionType int

const (
	TypeOutflight AuctionType = 0
	TypeInflight  AuctionType = 1

	TypeCheapHotel AuctionType = 0
	TypeGoodHotel  AuctionType = 1

	TypeWrestling AuctionType = 1
	TypeAmusement AuctionType = 2
	TypeMuseum    AuctionType = 3
)

var EventKinds = []AuctionType{TypeWrestling, TypeAmusement, TypeMuseum}

var eventNames = map[AuctionType]string{
	TypeWrestling: "wrestling",
	TypeAmusement: "amusement",
	TypeMuseum:    "museum",
}

var hotelNames = map[AuctionType]string{
	TypeCheapHotel: "cheap",
	TypeGoodHotel:  "good",
}

func EventName(kind AuctionType) string {
	if name, ok := eventNames[kind]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(kind))
}

func ParseEventKind(name string) (AuctionType, error) {
	for kind, n := range eventNames {
		if n == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown entertainment kind %q", name)
}

func ParseHotelType(name string) (AuctionType, error) {
	for kind, n := range hotelNames {
		if n == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown hotel type %q", name)
}

type Auction struct {
	ID       int         `json:"id"`
	Category Category    `json:"c"`
	Type     AuctionType `json:"t"`
	Day      int         `json:"d"`
}

func (a Auction) String() string {
	switch a.Category {
	case CategoryFlight:
		if a.Type == TypeInflight {
			return fmt.Sprintf("inflight/day%d", a.Day)
		}
		return fmt.Sprintf("outflight/day%d", a.Day)
	case CategoryHotel:
		return fmt.Sprintf("%s-hotel/day%d", hotelNames[a.Type], a.Day)
	}
	return fmt.Sprintf("%s/day%d", EventName(a.Type), a.Day)
}

// Preferences are the fixed per-client values supplied at game start.
type Preferences struct {
	Arrival    int                 `json:"a"`
	Departure  int                 `json:"d"`
	HotelValue int                 `json:"h"`
	Events     map[AuctionType]int `json:"e"`
}

func (p Preferences) Stay() int {
	return p.Departure - p.Arrival
}

type Quote struct {
	Auction  int     `json:"a"`
	AskPrice float64 `json:"ask"`
	BidPrice float64 `json:"bid"`
	Closed   bool    `json:"cl"`

	// HQW is the quantity the bid identified by HQWBid would win at the
	// quoted price. Only hotel auctions report it.
	HQW    int    `json:"hqw"`
	HQWBid string `json:"hqwb,omitempty"`
}

func (q Quote) HasHQW(bid *Bid) bool {
	return bid != nil && bid.ID != "" && q.HQWBid == bid.ID
}

// Allocation maps auction id to the signed quantity the agent intends to hold.
type Allocation map[int]int

func (a Allocation) Add(auction int, delta int) int {
	a[auction] += delta
	return a[auction]
}

func (a Allocation) Copy() Allocation {
	out := Allocation{}
	for id, v := range a {
		out[id] = v
	}
	return out
}

// Runtime is the auction-ware collaborator. It owns the game clock, the
// catalog, quotes, holdings and the bid lifecycle.
type Runtime interface {
	GameID() int
	GameTime() time.Duration
	GameTimeLeft() time.Duration
	GameLength() time.Duration

	Catalog() *Catalog
	Clients() []Preferences

	Quote(auction int) (Quote, bool)
	Own(auction int) int
	ActiveBid(auction int) *Bid

	Allocation(auction int) int
	SetAllocation(auction int, alloc int)
	SubmitBid(bid Bid) error
	ReplaceBid(old *Bid, bid Bid) error
}
