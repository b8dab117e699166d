package types

import "sort"

type auctionKey struct {
	category Category
	typ      AuctionType
	day      int
}

// Catalog indexes the auctions of one game by id and by (category, type, day).
type Catalog struct {
	auctions []Auction
	byID     map[int]Auction
	byKey    map[auctionKey]int
}

func NewCatalog(auctions []Auction) *Catalog {
	c := &Catalog{
		byID:  map[int]Auction{},
		byKey: map[auctionKey]int{},
	}
	for _, a := range auctions {
		c.auctions = append(c.auctions, a)
		c.byID[a.ID] = a
		c.byKey[auctionKey{a.Category, a.Type, a.Day}] = a.ID
	}
	sort.Slice(c.auctions, func(i, j int) bool { return c.auctions[i].ID < c.auctions[j].ID })
	return c
}

// StandardCatalog lays out the reference game: inbound flights on days
// 1..days-1, outbound flights on days 2..days, both hotel qualities and every
// entertainment kind on days 1..days-1.
func StandardCatalog(days int) *Catalog {
	auctions := []Auction{}
	add := func(category Category, typ AuctionType, day int) {
		auctions = append(auctions, Auction{ID: len(auctions), Category: category, Type: typ, Day: day})
	}

	for d := 1; d < days; d++ {
		add(CategoryFlight, TypeInflight, d)
	}
	for d := 2; d <= days; d++ {
		add(CategoryFlight, TypeOutflight, d)
	}
	for _, hotel := range []AuctionType{TypeCheapHotel, TypeGoodHotel} {
		for d := 1; d < days; d++ {
			add(CategoryHotel, hotel, d)
		}
	}
	for _, kind := range EventKinds {
		for d := 1; d < days; d++ {
			add(CategoryEntertainment, kind, d)
		}
	}

	return NewCatalog(auctions)
}

func (c *Catalog) Len() int {
	return len(c.auctions)
}

func (c *Catalog) Auctions() []Auction {
	return c.auctions
}

func (c *Catalog) Auction(id int) (Auction, bool) {
	a, ok := c.byID[id]
	return a, ok
}

func (c *Catalog) AuctionFor(category Category, typ AuctionType, day int) (int, bool) {
	id, ok := c.byKey[auctionKey{category, typ, day}]
	return id, ok
}

func (c *Catalog) InCategory(category Category) []Auction {
	out := []Auction{}
	for _, a := range c.auctions {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out
}
