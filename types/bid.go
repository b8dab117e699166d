package types

import "fmt"

type BidPoint struct {
	Quantity int     `json:"q"`
	Price    float64 `json:"p"`
}

type BidPoints []BidPoint

func (b BidPoints) Quantity() int {
	total := 0
	for _, p := range b {
		total += p.Quantity
	}
	return total
}

func (b BidPoints) Equal(other BidPoints) bool {
	if len(b) != len(other) {
		return false
	}
	for i := range b {
		if b[i] != other[i] {
			return false
		}
	}
	return true
}

// IsZero reports whether the points buy or sell nothing. A fully
// transacted bid is reported back as a single (0, 0) point.
func (b BidPoints) IsZero() bool {
	for _, p := range b {
		if p.Quantity != 0 {
			return false
		}
	}
	return true
}

func (b BidPoints) Copy() BidPoints {
	out := make(BidPoints, len(b))
	copy(out, b)
	return out
}

// Bid is one or more points against a single auction. ID is assigned by
// the runtime once the bid is accepted for processing.
type Bid struct {
	ID      string    `json:"id,omitempty"`
	Auction int       `json:"a"`
	Points  BidPoints `json:"pts"`
}

func NewBid(auction int) Bid {
	return Bid{Auction: auction, Points: BidPoints{}}
}

func (b *Bid) AddBidPoint(quantity int, price float64) {
	b.Points = append(b.Points, BidPoint{Quantity: quantity, Price: price})
}

func (b Bid) Quantity() int {
	return b.Points.Quantity()
}

func (b Bid) String() string {
	return fmt.Sprintf("bid[%s] auction=%d points=%v", b.ID, b.Auction, []BidPoint(b.Points))
}
