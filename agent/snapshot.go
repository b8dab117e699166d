package agent

import (
	"time"

	"github.com/Sokpao/Agent-TAC/bidsync"
	"github.com/Sokpao/Agent-TAC/types"
)

type AuctionState struct {
	Auction    types.Auction `json:"auction"`
	Allocation int           `json:"allocation"`
	Own        int           `json:"own"`
	Price      float64       `json:"price"`
}

// Snapshot is a copy of the agent's state taken after the last callback.
type Snapshot struct {
	GameID    int            `json:"game_id"`
	Running   bool           `json:"running"`
	Elapsed   time.Duration  `json:"elapsed"`
	Remaining time.Duration  `json:"remaining"`
	Auctions  []AuctionState `json:"auctions"`
	Actions   bidsync.Stats  `json:"actions"`
}

func (s Snapshot) Copy() Snapshot {
	out := s
	out.Auctions = append([]AuctionState{}, s.Auctions...)
	return out
}

func (a *Agent) Snapshot() Snapshot {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.snapshot.Copy()
}

func (a *Agent) publish(running bool) {
	snapshot := Snapshot{
		Running:  running,
		Auctions: []AuctionState{},
		Actions:  a.sync.Stats(),
	}
	if a.rt != nil {
		snapshot.GameID = a.rt.GameID()
		snapshot.Elapsed = a.rt.GameTime()
		snapshot.Remaining = a.rt.GameTimeLeft()
	}
	if a.game != nil {
		for _, auction := range a.game.catalog.Auctions() {
			snapshot.Auctions = append(snapshot.Auctions, AuctionState{
				Auction:    auction,
				Allocation: a.game.alloc[auction.ID],
				Own:        a.rt.Own(auction.ID),
				Price:      a.game.memory[auction.ID],
			})
		}
	}

	a.lock.Lock()
	a.snapshot = snapshot
	a.lock.Unlock()
}
