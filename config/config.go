package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Sokpao/Agent-TAC/types"
)

var InvalidRules = errors.New("invalid rules")

type Rules struct {
	Clients    int           `yaml:"clients" json:"clients"`
	Days       int           `yaml:"days" json:"days"`
	GameLength time.Duration `yaml:"game_length" json:"game_length"`

	Planner       PlannerRules       `yaml:"planner" json:"planner"`
	Flight        FlightRules        `yaml:"flight" json:"flight"`
	Hotel         HotelRules         `yaml:"hotel" json:"hotel"`
	Entertainment EntertainmentRules `yaml:"entertainment" json:"entertainment"`
	Rebalance     RebalanceRules     `yaml:"rebalance" json:"rebalance"`
	Bids          BidRules           `yaml:"bids" json:"bids"`
}

type PlannerRules struct {
	// Clients whose hotel value is strictly above this get the good hotel.
	HotelThreshold int `yaml:"hotel_threshold" json:"hotel_threshold"`
	// Entertainment is only planned for stays shorter than this many nights.
	StayCutoff int `yaml:"stay_cutoff" json:"stay_cutoff"`
	MaxEvents  int `yaml:"max_events" json:"max_events"`
	// Entertainment kinds in tie-break precedence, highest first.
	TieBreak []string `yaml:"tie_break" json:"tie_break"`
}

type FlightRules struct {
	Floor        float64       `yaml:"floor" json:"floor"`
	Ceiling      float64       `yaml:"ceiling" json:"ceiling"`
	SnapTimeLeft time.Duration `yaml:"snap_time_left" json:"snap_time_left"`
}

type HotelRules struct {
	InitialPrice  float64 `yaml:"initial_price" json:"initial_price"`
	OverbidFactor float64 `yaml:"overbid_factor" json:"overbid_factor"`
	Increment     float64 `yaml:"increment" json:"increment"`
	Ceiling       float64 `yaml:"ceiling" json:"ceiling"`
}

type EntertainmentRules struct {
	SellStart    float64     `yaml:"sell_start" json:"sell_start"`
	SellDecay    float64     `yaml:"sell_decay" json:"sell_decay"`
	SellFallback float64     `yaml:"sell_fallback" json:"sell_fallback"`
	SellFloors   []SellFloor `yaml:"sell_floors" json:"sell_floors"`

	BuyStart   float64 `yaml:"buy_start" json:"buy_start"`
	BuyRise    float64 `yaml:"buy_rise" json:"buy_rise"`
	BuyCap     float64 `yaml:"buy_cap" json:"buy_cap"`
	SingleCap  float64 `yaml:"single_cap" json:"single_cap"`
	LadderStep float64 `yaml:"ladder_step" json:"ladder_step"`
}

// SellFloor pins the selling price once less than TimeLeft remains.
type SellFloor struct {
	TimeLeft time.Duration `yaml:"time_left" json:"time_left"`
	Price    float64       `yaml:"price" json:"price"`
}

type RebalanceRules struct {
	TimeLeft      time.Duration `yaml:"time_left" json:"time_left"`
	Penalty       float64       `yaml:"penalty" json:"penalty"`
	ProtectedDays []int         `yaml:"protected_days" json:"protected_days"`
	DrainOrder    []DrainStep   `yaml:"drain_order" json:"drain_order"`
}

type BidRules struct {
	// Reconciles a submitted bid may wait for its status report before it
	// is submitted again.
	PendingLimit int `yaml:"pending_limit" json:"pending_limit"`
}

type DrainStep struct {
	Hotel    string `yaml:"hotel" json:"hotel"`
	Strategy string `yaml:"strategy" json:"strategy"`
}

const (
	DrainAll = "all"
	DrainOne = "one"
)

var DefaultRules = Rules{
	Clients:    8,
	Days:       5,
	GameLength: 12 * time.Minute,

	Planner: PlannerRules{
		HotelThreshold: 70,
		StayCutoff:     5,
		MaxEvents:      3,
		TieBreak:       []string{"wrestling", "amusement", "museum"},
	},
	Flight: FlightRules{
		Floor:        150,
		Ceiling:      1000,
		SnapTimeLeft: 200 * time.Second,
	},
	Hotel: HotelRules{
		InitialPrice:  200,
		OverbidFactor: 1.25,
		Increment:     50,
		Ceiling:       600,
	},
	Entertainment: EntertainmentRules{
		SellStart:    200,
		SellDecay:    120,
		SellFallback: 100,
		SellFloors: []SellFloor{
			{TimeLeft: 30 * time.Second, Price: 10},
			{TimeLeft: 60 * time.Second, Price: 20},
			{TimeLeft: 120 * time.Second, Price: 40},
		},
		BuyStart:   50,
		BuyRise:    100,
		BuyCap:     121,
		SingleCap:  80,
		LadderStep: 10,
	},
	Rebalance: RebalanceRules{
		TimeLeft:      120 * time.Second,
		Penalty:       100,
		ProtectedDays: []int{1, 5},
		DrainOrder: []DrainStep{
			{Hotel: "good", Strategy: DrainAll},
			{Hotel: "cheap", Strategy: DrainAll},
		},
	},
	Bids: BidRules{
		PendingLimit: 3,
	},
}

// Load reads rules from a YAML file. Keys missing from the file keep their
// DefaultRules value.
func Load(path string) (Rules, error) {
	rules := DefaultRules.Copy()
	raw, err := os.ReadFile(path)
	if err != nil {
		return rules, err
	}
	if err := yaml.Unmarshal(raw, &rules); err != nil {
		return rules, fmt.Errorf("%s: %w", path, err)
	}
	if err := rules.Validate(); err != nil {
		return rules, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

func (r Rules) Copy() Rules {
	out := r
	out.Planner.TieBreak = append([]string{}, r.Planner.TieBreak...)
	out.Entertainment.SellFloors = append([]SellFloor{}, r.Entertainment.SellFloors...)
	out.Rebalance.ProtectedDays = append([]int{}, r.Rebalance.ProtectedDays...)
	out.Rebalance.DrainOrder = append([]DrainStep{}, r.Rebalance.DrainOrder...)
	return out
}

func (r Rules) Validate() error {
	switch {
	case r.Clients <= 0:
		return fmt.Errorf("%w: clients must be positive", InvalidRules)
	case r.Days < 2:
		return fmt.Errorf("%w: days must be at least 2", InvalidRules)
	case r.GameLength <= 0:
		return fmt.Errorf("%w: game_length must be positive", InvalidRules)
	case r.Flight.Ceiling < r.Flight.Floor:
		return fmt.Errorf("%w: flight.ceiling below flight.floor", InvalidRules)
	case r.Hotel.Ceiling <= 0:
		return fmt.Errorf("%w: hotel.ceiling must be positive", InvalidRules)
	case r.Planner.MaxEvents < 0:
		return fmt.Errorf("%w: planner.max_events must not be negative", InvalidRules)
	case r.Bids.PendingLimit < 1:
		return fmt.Errorf("%w: bids.pending_limit must be at least 1", InvalidRules)
	}
	if _, err := r.EventOrder(); err != nil {
		return fmt.Errorf("%w: planner.tie_break: %s", InvalidRules, err)
	}
	if _, err := r.HotelDrainOrder(); err != nil {
		return fmt.Errorf("%w: rebalance.drain_order: %s", InvalidRules, err)
	}
	return nil
}

// EventOrder resolves the tie-break policy into entertainment kinds. Every
// kind must appear exactly once.
func (r Rules) EventOrder() ([]types.AuctionType, error) {
	if len(r.Planner.TieBreak) != len(types.EventKinds) {
		return nil, fmt.Errorf("expected %d kinds, got %d", len(types.EventKinds), len(r.Planner.TieBreak))
	}
	seen := map[types.AuctionType]bool{}
	order := []types.AuctionType{}
	for _, name := range r.Planner.TieBreak {
		kind, err := types.ParseEventKind(name)
		if err != nil {
			return nil, err
		}
		if seen[kind] {
			return nil, fmt.Errorf("%q listed twice", name)
		}
		seen[kind] = true
		order = append(order, kind)
	}
	return order, nil
}

type HotelDrain struct {
	Type     types.AuctionType
	Strategy string
}

func (r Rules) HotelDrainOrder() ([]HotelDrain, error) {
	order := []HotelDrain{}
	for _, step := range r.Rebalance.DrainOrder {
		typ, err := types.ParseHotelType(step.Hotel)
		if err != nil {
			return nil, err
		}
		strategy := step.Strategy
		if strategy == "" {
			strategy = DrainAll
		}
		if strategy != DrainAll && strategy != DrainOne {
			return nil, fmt.Errorf("unknown drain strategy %q", step.Strategy)
		}
		order = append(order, HotelDrain{Type: typ, Strategy: strategy})
	}
	return order, nil
}

func (r Rules) IsProtectedDay(day int) bool {
	for _, d := range r.Rebalance.ProtectedDays {
		if d == day {
			return true
		}
	}
	return false
}
