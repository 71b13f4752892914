package drill

import (
	"context"

	"github.com/blunderfixer/blunderfixer/internal/domain/game"
)

// WithGame pairs a drill with the metadata of the game it came from, which
// listings need for opponent, rating and result columns.
type WithGame struct {
	Drill Drill
	Game  game.Game
}

// ListParams are the store-side filters for listing drills. Phase,
// hero-result and mastery filtering happen over the returned rows.
type ListParams struct {
	Username        string
	MinSwing        float64
	MaxSwing        float64
	Opponent        string
	IncludeArchived bool
	RecentFirst     bool
	Limit           int
	Offset          int
}

// Repository is the drill read/write store.
type Repository interface {
	List(ctx context.Context, p ListParams) ([]WithGame, error)
	RecentlyDrilled(ctx context.Context, username string, includeArchived bool, limit int) ([]WithGame, error)
	GetByID(ctx context.Context, id int64) (*WithGame, error)
	HistoryFor(ctx context.Context, drillID int64) ([]HistoryEntry, error)
	AppendHistory(ctx context.Context, drillID int64, entry HistoryEntry) (HistoryEntry, error)
	UpdateDrill(ctx context.Context, drillID int64, archived *bool, markPlayed bool) error
}
