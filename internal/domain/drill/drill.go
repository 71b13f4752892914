package drill

import (
	"sort"
	"time"
)

const (
	ResultPass = "pass"
	ResultFail = "fail"
)

// masteryWindow is the number of most recent attempts that must all be
// passes for a drill to count as mastered.
const masteryWindow = 5

// HistoryEntry is one recorded practice attempt on a drill.
type HistoryEntry struct {
	ID        int64
	DrillID   int64
	Result    string
	Reason    *string
	Moves     []string
	FinalEval *float64
	TimeUsed  *float64
	Timestamp time.Time
}

// Material is the piece census of a drill position, captured at derivation
// time so listings can classify game phase without re-parsing the PGN.
type Material struct {
	WhiteQueen  *bool
	BlackQueen  *bool
	WhiteRooks  *int
	BlackRooks  *int
	WhiteMinors *int
	BlackMinors *int
}

// Drill is a stored position where the player lost significant evaluation
// in a single move, subject to repeated practice.
type Drill struct {
	ID          int64
	GameID      string
	Username    string
	FEN         string
	Ply         int
	InitialEval float64
	EvalSwing   float64
	LosingMove  *string
	Material    Material

	Archived      bool
	LastDrilledAt *time.Time
	CreatedAt     time.Time

	History []HistoryEntry
}

// Mastered reports whether the five most recent history entries exist and
// are all passes. Fewer than five attempts is never mastered.
func Mastered(history []HistoryEntry) bool {
	if len(history) < masteryWindow {
		return false
	}
	recent := make([]HistoryEntry, len(history))
	copy(recent, history)
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].Timestamp.After(recent[j].Timestamp)
	})
	for _, h := range recent[:masteryWindow] {
		if h.Result != ResultPass {
			return false
		}
	}
	return true
}

// Mastered applies the mastery rule to the drill's loaded history.
func (d Drill) Mastered() bool {
	return Mastered(d.History)
}
