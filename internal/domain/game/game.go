package game

import (
	"strings"
	"time"
)

// PlayerResult is one side of a finished game as reported by the source.
type PlayerResult struct {
	Username string
	Rating   int
	Result   string // e.g. "win", "checkmated", "timeout", "agreed"
}

// Game is a normalized game record produced by the game source adapter.
// Evals, when present, holds the engine evaluation in centipawns from
// white's point of view after each ply.
type Game struct {
	UUID        string
	URL         string
	White       PlayerResult
	Black       PlayerResult
	TimeClass   string
	TimeControl string
	ECO         string
	PGN         string
	PlayedAt    time.Time
	Evals       []float64
}

// HeroIsWhite reports which side the given player was on.
func (g Game) HeroIsWhite(username string) bool {
	return strings.EqualFold(g.White.Username, username)
}

// HeroOutcome collapses the per-side raw results into win/loss/draw for the
// given player.
func (g Game) HeroOutcome(username string) string {
	hero, opp := g.White.Result, g.Black.Result
	if !g.HeroIsWhite(username) {
		hero, opp = opp, hero
	}
	switch {
	case hero == "win":
		return "win"
	case hero == opp:
		return "draw"
	default:
		return "loss"
	}
}

// ResultReason returns the raw result string explaining how the game ended
// from the hero's perspective: the opponent's result when the hero won,
// the hero's own result otherwise.
func (g Game) ResultReason(username string) string {
	hero, opp := g.White.Result, g.Black.Result
	if !g.HeroIsWhite(username) {
		hero, opp = opp, hero
	}
	if hero == "win" {
		return opp
	}
	return hero
}
