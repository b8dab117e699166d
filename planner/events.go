package planner

import (
	"sort"

	"github.com/Sokpao/Agent-TAC/types"
)

/*

Rank a client's entertainment values, highest first.
	Equal values fall back to the position in precedence, so the same
	inputs always produce the same sequence whatever n is.

*/

func RankEvents(values map[types.AuctionType]int, precedence []types.AuctionType, n int) []types.AuctionType {
	ranked := make([]types.AuctionType, len(precedence))
	copy(ranked, precedence)

	sort.SliceStable(ranked, func(i, j int) bool {
		return values[ranked[i]] > values[ranked[j]]
	})

	if n < 0 {
		n = 0
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}
