package pricing

import "github.com/Sokpao/Agent-TAC/types"

/*

Flights only ever get bought.
	Price climbs linearly from the floor to the ceiling over the game
	Once little enough time is left, pay the ceiling rather than miss out

*/

func (e *Engine) flight(in Input) Decision {
	need := in.Need()
	if need <= 0 {
		return hold()
	}

	price := e.FlightPrice(in)
	return Decision{
		Points: types.BidPoints{{Quantity: need, Price: price}},
		Price:  price,
	}
}

func (e *Engine) FlightPrice(in Input) float64 {
	rules := e.rules.Flight
	if in.Remaining <= rules.SnapTimeLeft {
		return rules.Ceiling
	}

	price := rules.Floor + (rules.Ceiling-rules.Floor)*in.progress()
	if price <= 0 {
		return rules.Floor
	}
	return price
}

// Pin prices the full need at the flight ceiling.
func (e *Engine) Pin(in Input) Decision {
	need := in.Need()
	if need <= 0 {
		return hold()
	}
	price := e.rules.Flight.Ceiling
	return Decision{
		Points: types.BidPoints{{Quantity: need, Price: price}},
		Price:  price,
	}
}
