package pricing

import "github.com/Sokpao/Agent-TAC/types"

/*

Hotels are ascending auctions with one clearing price per level.
	Only reprice while nothing is owned and the active bid is being outbid
	Bid ask*overbid plus one increment per extra room
	Above the ceiling, give the rooms up instead of bidding

*/

func (e *Engine) hotel(in Input) Decision {
	need := in.Need()
	if need <= 0 || in.Own > 0 || in.Quote == nil || in.Quote.Closed {
		return hold()
	}

	if in.ActiveBid != nil && !(in.Quote.HasHQW(in.ActiveBid) && in.Quote.HQW < in.Allocation) {
		return hold()
	}

	price := e.HotelPrice(*in.Quote, need)
	if price > e.rules.Hotel.Ceiling {
		return Decision{Price: price, Abandon: true}
	}

	return Decision{
		Points: types.BidPoints{{Quantity: need, Price: price}},
		Price:  price,
	}
}

func (e *Engine) HotelPrice(quote types.Quote, quantity int) float64 {
	rules := e.rules.Hotel
	price := quote.AskPrice*rules.OverbidFactor + float64(quantity-1)*rules.Increment
	if price <= 0 {
		return rules.InitialPrice
	}
	return price
}
