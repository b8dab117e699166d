package pricing

import (
	"github.com/Sokpao/Agent-TAC/config"
	"github.com/Sokpao/Agent-TAC/types"
)

/*

Entertainment is traded both ways.
	Selling starts high and decays, then drops to fixed floors near the end
	Buying starts low and rises to a cap
	Two or more units get laddered: the bulk at the base price, the last
	two units at successively less attractive prices

*/

func (e *Engine) entertainment(in Input) Decision {
	need := in.Need()
	switch {
	case need < 0:
		price := e.SellPrice(in)
		return Decision{Points: e.sellLadder(need, price), Price: price}
	case need > 0:
		price := e.BuyPrice(in)
		return Decision{Points: e.buyLadder(need, price), Price: price}
	}
	return hold()
}

func (e *Engine) SellPrice(in Input) float64 {
	rules := e.rules.Entertainment

	price := rules.SellStart - rules.SellDecay*in.progress()

	var pinned *config.SellFloor
	for i, f := range rules.SellFloors {
		if in.Remaining < f.TimeLeft && (pinned == nil || f.TimeLeft < pinned.TimeLeft) {
			pinned = &rules.SellFloors[i]
		}
	}
	if pinned != nil {
		price = pinned.Price
	}

	if price <= 0 {
		return rules.SellFallback
	}
	return price
}

func (e *Engine) BuyPrice(in Input) float64 {
	rules := e.rules.Entertainment

	price := rules.BuyStart + rules.BuyRise*in.progress()
	if price > rules.BuyCap {
		price = rules.BuyCap
	}
	if price <= 0 {
		return rules.BuyStart
	}
	return price
}

func (e *Engine) sellLadder(need int, price float64) types.BidPoints {
	step := e.rules.Entertainment.LadderStep
	switch need {
	case -1:
		return types.BidPoints{{Quantity: -1, Price: price}}
	case -2:
		return types.BidPoints{
			{Quantity: -1, Price: price},
			{Quantity: -1, Price: price + step},
		}
	}
	return types.BidPoints{
		{Quantity: need + 2, Price: price},
		{Quantity: -1, Price: price + step},
		{Quantity: -1, Price: price + 2*step},
	}
}

func (e *Engine) buyLadder(need int, price float64) types.BidPoints {
	rules := e.rules.Entertainment
	step := rules.LadderStep
	switch need {
	case 1:
		single := price
		if single > rules.SingleCap {
			single = rules.SingleCap
		}
		return types.BidPoints{{Quantity: 1, Price: single}}
	case 2:
		return types.BidPoints{
			{Quantity: 1, Price: price},
			{Quantity: 1, Price: nonNegative(price - step)},
		}
	}
	return types.BidPoints{
		{Quantity: need - 2, Price: price},
		{Quantity: 1, Price: nonNegative(price - step)},
		{Quantity: 1, Price: nonNegative(price - 2*step)},
	}
}
