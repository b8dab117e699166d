package pricing

import "github.com/Sokpao/Agent-TAC/types"

// Initial prices the opening sweep right after the game starts, before any
// quote has arrived. Auctions without need, and flights or hotels with
// surplus, get nothing.
func (e *Engine) Initial(auction types.Auction, need int) Decision {
	var price float64

	switch auction.Category {
	case types.CategoryFlight:
		if need > 0 {
			price = e.rules.Flight.Floor
		}
	case types.CategoryHotel:
		if need > 0 {
			price = e.rules.Hotel.InitialPrice
		}
	case types.CategoryEntertainment:
		if need < 0 {
			price = e.rules.Entertainment.SellStart
		} else if need > 0 {
			price = e.rules.Entertainment.BuyStart
		}
	}

	if price <= 0 {
		return hold()
	}
	return Decision{
		Points: types.BidPoints{{Quantity: need, Price: price}},
		Price:  price,
	}
}
