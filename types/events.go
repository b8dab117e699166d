package types

import "time"

const (
	EventBidSubmitted        = "bid_submitted"
	EventBidReplaced         = "bid_replaced"
	EventBidRejected         = "bid_rejected"
	EventBidError            = "bid_error"
	EventAllocationAbandoned = "allocation_abandoned"
	EventFlightMigrated      = "flight_migrated"
	EventGameStopped         = "game_stopped"
)

// AgentEvent is what observers see of the agent's decisions. Observers
// record or forward events; they never feed back into allocation.
type AgentEvent struct {
	Kind     string        `json:"k" db:"kind"`
	GameID   int           `json:"g" db:"game_id"`
	Auction  int           `json:"a" db:"auction"`
	Quantity int           `json:"q" db:"quantity"`
	Price    float64       `json:"p" db:"price"`
	Detail   string        `json:"d,omitempty" db:"detail"`
	At       time.Duration `json:"at" db:"at"`
}

type GameSummary struct {
	GameID    int     `json:"g" db:"game_id"`
	Utility   float64 `json:"u" db:"utility"`
	Cost      float64 `json:"c" db:"cost"`
	Score     float64 `json:"s" db:"score"`
	Clients   int     `json:"n" db:"clients"`
	Satisfied int     `json:"ok" db:"satisfied"`
}
