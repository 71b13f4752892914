package drill

// Phase buckets used by listing filters.
const (
	PhaseOpening = "opening"
	PhaseMiddle  = "middle"
	PhaseLate    = "late"
	PhaseEndgame = "endgame"
)

// DefaultOpeningThreshold is the full-move boundary below which positions
// with queens on the board count as opening.
const DefaultOpeningThreshold = 10

// ClassifyPhase returns one of opening|middle|late|endgame for a position.
// When the material census was never captured the answer falls back to a
// ply-only split between opening and middlegame.
func ClassifyPhase(ply int, m Material, openingThreshold int) string {
	moveNo := (ply + 1) / 2

	if m.WhiteQueen == nil || m.BlackQueen == nil ||
		m.WhiteRooks == nil || m.BlackRooks == nil ||
		m.WhiteMinors == nil || m.BlackMinors == nil {
		if moveNo < openingThreshold {
			return PhaseOpening
		}
		return PhaseMiddle
	}

	if moveNo < openingThreshold && (*m.WhiteQueen || *m.BlackQueen) {
		return PhaseOpening
	}

	whitePts := boolToInt(*m.WhiteQueen)*2 + *m.WhiteRooks + *m.WhiteMinors
	blackPts := boolToInt(*m.BlackQueen)*2 + *m.BlackRooks + *m.BlackMinors
	material := whitePts
	if blackPts > material {
		material = blackPts
	}

	switch {
	case material >= 5:
		return PhaseMiddle
	case material >= 3:
		return PhaseLate
	default:
		return PhaseEndgame
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
