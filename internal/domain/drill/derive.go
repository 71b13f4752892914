package drill

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"

	"github.com/blunderfixer/blunderfixer/internal/domain/game"
	"github.com/blunderfixer/blunderfixer/internal/domain/syncjob"
)

// SwingThreshold flags any single-move evaluation loss of at least 1.50
// pawns, measured in centipawns.
const SwingThreshold = 150

// Candidate is a drill position derived from a game, before persistence.
type Candidate struct {
	Ply         int
	FEN         string
	InitialEval float64
	EvalSwing   float64
	LosingMove  string
	Material    Material
}

// Derive scans a game's move evaluations and returns the positions where
// the hero lost at least SwingThreshold centipawns in a single move. Games
// without evaluations yield no candidates. An unparsable PGN is reported
// as invalid game data.
func Derive(g game.Game, hero string) ([]Candidate, error) {
	if len(g.Evals) == 0 {
		return nil, nil
	}

	pgnOpt, err := chess.PGN(strings.NewReader(g.PGN))
	if err != nil {
		return nil, fmt.Errorf("%w: parse pgn for game %s: %v", syncjob.ErrInvalidGameData, g.UUID, err)
	}

	cg := chess.NewGame(pgnOpt)
	moves := cg.Moves()
	positions := cg.Positions()
	if len(moves) == 0 {
		return nil, nil
	}

	heroWhite := g.HeroIsWhite(hero)
	sign := 1.0
	if !heroWhite {
		sign = -1.0
	}

	n := len(moves)
	if len(g.Evals) < n {
		n = len(g.Evals)
	}

	var candidates []Candidate
	for ply := 0; ply < n; ply++ {
		pos := positions[ply]
		if (pos.Turn() == chess.White) != heroWhite {
			continue
		}

		before := 0.0
		if ply > 0 {
			before = g.Evals[ply-1]
		}
		after := g.Evals[ply]

		delta := sign * (before - after)
		if delta < SwingThreshold {
			continue
		}

		san := chess.AlgebraicNotation{}.Encode(pos, moves[ply])
		candidates = append(candidates, Candidate{
			Ply:         ply,
			FEN:         pos.String(),
			InitialEval: before,
			EvalSwing:   delta,
			LosingMove:  san,
			Material:    censusOf(pos),
		})
	}

	return candidates, nil
}

func censusOf(pos *chess.Position) Material {
	var (
		whiteQueen, blackQueen   bool
		whiteRooks, blackRooks   int
		whiteMinors, blackMinors int
	)

	for _, piece := range pos.Board().SquareMap() {
		white := piece.Color() == chess.White
		switch piece.Type() {
		case chess.Queen:
			if white {
				whiteQueen = true
			} else {
				blackQueen = true
			}
		case chess.Rook:
			if white {
				whiteRooks++
			} else {
				blackRooks++
			}
		case chess.Bishop, chess.Knight:
			if white {
				whiteMinors++
			} else {
				blackMinors++
			}
		}
	}

	return Material{
		WhiteQueen:  &whiteQueen,
		BlackQueen:  &blackQueen,
		WhiteRooks:  &whiteRooks,
		BlackRooks:  &blackRooks,
		WhiteMinors: &whiteMinors,
		BlackMinors: &blackMinors,
	}
}
