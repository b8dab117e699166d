package planner

import (
	"log/slog"

	"github.com/Sokpao/Agent-TAC/config"
	"github.com/Sokpao/Agent-TAC/types"
)

// Planner folds client preferences into a target quantity per auction. It
// only ever adds demand; selling comes from holdings exceeding the plan.
type Planner struct {
	rules      config.Rules
	catalog    *types.Catalog
	precedence []types.AuctionType
	logger     *slog.Logger
}

func New(rules config.Rules, catalog *types.Catalog, logger *slog.Logger) (*Planner, error) {
	precedence, err := rules.EventOrder()
	if err != nil {
		return nil, err
	}
	return &Planner{
		rules:      rules,
		catalog:    catalog,
		precedence: precedence,
		logger:     logger,
	}, nil
}

func (p *Planner) Plan(clients []types.Preferences) types.Allocation {
	alloc := types.Allocation{}
	for i, client := range clients {
		p.AddClient(alloc, i, client)
	}
	return alloc
}

func (p *Planner) AddClient(alloc types.Allocation, index int, client types.Preferences) {
	p.add(alloc, types.CategoryFlight, types.TypeInflight, client.Arrival)
	p.add(alloc, types.CategoryFlight, types.TypeOutflight, client.Departure)

	hotel := p.HotelType(client)
	for d := client.Arrival; d < client.Departure; d++ {
		p.add(alloc, types.CategoryHotel, hotel, d)
	}

	stay := client.Stay()
	if stay <= 0 || stay >= p.rules.Planner.StayCutoff {
		return
	}

	n := stay
	if n > p.rules.Planner.MaxEvents {
		n = p.rules.Planner.MaxEvents
	}
	for k, kind := range RankEvents(client.Events, p.precedence, n) {
		p.add(alloc, types.CategoryEntertainment, kind, client.Arrival+k)
	}

	p.logger.Debug("planned client",
		"client", index,
		"arrival", client.Arrival,
		"departure", client.Departure,
		"hotel", hotel,
	)
}

func (p *Planner) HotelType(client types.Preferences) types.AuctionType {
	if client.HotelValue > p.rules.Planner.HotelThreshold {
		return types.TypeGoodHotel
	}
	return types.TypeCheapHotel
}

func (p *Planner) add(alloc types.Allocation, category types.Category, typ types.AuctionType, day int) {
	id, ok := p.catalog.AuctionFor(category, typ, day)
	if !ok {
		p.logger.Warn("no auction for planned good", "category", category, "type", typ, "day", day)
		return
	}
	alloc.Add(id, 1)
}
