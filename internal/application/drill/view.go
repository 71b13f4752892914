package drill

import (
	"time"

	domain "github.com/blunderfixer/blunderfixer/internal/domain/drill"
)

// HistoryOutput is one practice attempt in API shape.
type HistoryOutput struct {
	ID        int64     `json:"id"`
	DrillID   int64     `json:"drill_id"`
	Result    string    `json:"result"`
	Reason    *string   `json:"reason"`
	Moves     []string  `json:"moves"`
	FinalEval *float64  `json:"final_eval"`
	TimeUsed  *float64  `json:"time_used"`
	Timestamp time.Time `json:"timestamp"`
}

// DrillOutput is the listing/detail projection of a drill joined with its
// game metadata.
type DrillOutput struct {
	ID               int64           `json:"id"`
	GameID           string          `json:"game_id"`
	Username         string          `json:"username"`
	FEN              string          `json:"fen"`
	Ply              int             `json:"ply"`
	InitialEval      float64         `json:"initial_eval"`
	EvalSwing        float64         `json:"eval_swing"`
	LosingMove       *string         `json:"losing_move"`
	CreatedAt        time.Time       `json:"created_at"`
	HeroResult       string          `json:"hero_result"`
	ResultReason     string          `json:"result_reason"`
	TimeControl      string          `json:"time_control"`
	TimeClass        string          `json:"time_class"`
	HeroRating       int             `json:"hero_rating"`
	OpponentUsername string          `json:"opponent_username"`
	OpponentRating   int             `json:"opponent_rating"`
	GamePlayedAt     time.Time       `json:"game_played_at"`
	ECO              string          `json:"eco,omitempty"`
	PGN              string          `json:"pgn,omitempty"`
	Phase            string          `json:"phase"`
	Archived         bool            `json:"archived"`
	Mastered         bool            `json:"mastered"`
	History          []HistoryOutput `json:"history"`
	LastDrilledAt    *time.Time      `json:"last_drilled_at"`
}

func toDrillOutput(dg domain.WithGame, openingThreshold int, includePGN bool) DrillOutput {
	d, g := dg.Drill, dg.Game
	heroIsWhite := g.HeroIsWhite(d.Username)

	heroRating, oppRating := g.White.Rating, g.Black.Rating
	oppUsername := g.Black.Username
	if !heroIsWhite {
		heroRating, oppRating = g.Black.Rating, g.White.Rating
		oppUsername = g.White.Username
	}

	history := make([]HistoryOutput, 0, len(d.History))
	for _, h := range d.History {
		history = append(history, HistoryOutput{
			ID:        h.ID,
			DrillID:   h.DrillID,
			Result:    h.Result,
			Reason:    h.Reason,
			Moves:     h.Moves,
			FinalEval: h.FinalEval,
			TimeUsed:  h.TimeUsed,
			Timestamp: h.Timestamp,
		})
	}

	out := DrillOutput{
		ID:               d.ID,
		GameID:           d.GameID,
		Username:         d.Username,
		FEN:              d.FEN,
		Ply:              d.Ply,
		InitialEval:      d.InitialEval,
		EvalSwing:        d.EvalSwing,
		LosingMove:       d.LosingMove,
		CreatedAt:        d.CreatedAt,
		HeroResult:       g.HeroOutcome(d.Username),
		ResultReason:     g.ResultReason(d.Username),
		TimeControl:      g.TimeControl,
		TimeClass:        g.TimeClass,
		HeroRating:       heroRating,
		OpponentUsername: oppUsername,
		OpponentRating:   oppRating,
		GamePlayedAt:     g.PlayedAt,
		ECO:              g.ECO,
		Phase:            domain.ClassifyPhase(d.Ply, d.Material, openingThreshold),
		Archived:         d.Archived,
		Mastered:         d.Mastered(),
		History:          history,
		LastDrilledAt:    d.LastDrilledAt,
	}
	if includePGN {
		out.PGN = g.PGN
	}
	return out
}
