package market

import "github.com/Sokpao/Agent-TAC/types"

// SetClients replaces the generated preferences. Use it before the agent
// reads them.
func (m *Market) SetClients(clients []types.Preferences) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.clients = append([]types.Preferences{}, clients...)
}

func (m *Market) SetAsk(auction int, ask float64) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if quote, ok := m.quotes[auction]; ok {
		quote.AskPrice = ask
	}
}

func (m *Market) SetOwn(auction int, own int) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.own[auction] = own
}

func (m *Market) Spent() float64 {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.spent
}
