package simulation

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Sokpao/Agent-TAC/types"
)

type Report struct {
	Games    []types.GameSummary `json:"games"`
	Duration time.Duration       `json:"duration"`
}

func (r Report) Mean() float64 {
	if len(r.Games) == 0 {
		return 0
	}
	total := 0.0
	for _, game := range r.Games {
		total += game.Score
	}
	return total / float64(len(r.Games))
}

// Best and Worst return the index of the highest and lowest scoring game,
// or -1 for an empty report.
func (r Report) Best() int {
	best := -1
	for i, game := range r.Games {
		if best == -1 || game.Score > r.Games[best].Score {
			best = i
		}
	}
	return best
}

func (r Report) Worst() int {
	worst := -1
	for i, game := range r.Games {
		if worst == -1 || game.Score < r.Games[worst].Score {
			worst = i
		}
	}
	return worst
}

func (r Report) String() string {
	if len(r.Games) == 0 {
		return "no games played"
	}

	b := &strings.Builder{}
	fmt.Fprintf(b, "%s games in %s, mean score %s\n", humanize.Comma(int64(len(r.Games))), r.Duration.Round(time.Millisecond), humanize.Commaf(round(r.Mean())))
	for i, game := range r.Games {
		fmt.Fprintf(b, "  %s game (#%d): score %s = utility %s - cost %s, %d/%d clients\n",
			humanize.Ordinal(i+1), game.GameID,
			humanize.Commaf(round(game.Score)), humanize.Commaf(round(game.Utility)), humanize.Commaf(round(game.Cost)),
			game.Satisfied, game.Clients)
	}
	best, worst := r.Games[r.Best()], r.Games[r.Worst()]
	fmt.Fprintf(b, "best #%d (%s), worst #%d (%s)\n", best.GameID, humanize.Commaf(round(best.Score)), worst.GameID, humanize.Commaf(round(worst.Score)))
	return b.String()
}

func round(f float64) float64 {
	return float64(int64(f*100+sign(f)*0.5)) / 100
}

func sign(f float64) float64 {
	if f < 0 {
		return -1
	}
	return 1
}
