package pricing

// Memory is the last base price computed per auction. It is never cleared
// during a game; a stale price for a closed auction is harmless.
type Memory map[int]float64

func (m Memory) Remember(auction int, price float64) {
	m[auction] = price
}

// Last returns the remembered price, or fallback when none is usable.
func (m Memory) Last(auction int, fallback float64) float64 {
	if price, ok := m[auction]; ok && price > 0 {
		return price
	}
	return fallback
}
