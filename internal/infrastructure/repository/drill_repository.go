package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/blunderfixer/blunderfixer/internal/domain/drill"
	"github.com/blunderfixer/blunderfixer/internal/domain/game"
	"github.com/blunderfixer/blunderfixer/internal/infrastructure/db/models"
)

type DrillRepository struct {
	db *gorm.DB
}

func NewDrillRepository(db *gorm.DB) *DrillRepository {
	return &DrillRepository{db: db}
}

// UpsertGame stores a normalized game if it is not already known, keyed by
// the provider's stable game uuid. Re-syncing the same game is a no-op.
func (r *DrillRepository) UpsertGame(ctx context.Context, username string, g game.Game) (string, error) {
	row := models.Game{
		ID:            uuid.NewString(),
		Username:      username,
		GameUUID:      g.UUID,
		URL:           g.URL,
		WhiteUsername: g.White.Username,
		WhiteRating:   g.White.Rating,
		WhiteResult:   g.White.Result,
		BlackUsername: g.Black.Username,
		BlackRating:   g.Black.Rating,
		BlackResult:   g.Black.Result,
		TimeClass:     g.TimeClass,
		TimeControl:   g.TimeControl,
		ECO:           g.ECO,
		PGN:           g.PGN,
		PlayedAt:      g.PlayedAt,
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "game_uuid"}},
			DoNothing: true,
		}).
		Create(&row).Error
	if err != nil {
		return "", fmt.Errorf("upsert game %s: %w", g.UUID, err)
	}

	var stored models.Game
	if err := r.db.WithContext(ctx).
		Select("id").
		First(&stored, "game_uuid = ?", g.UUID).Error; err != nil {
		return "", fmt.Errorf("load game id for %s: %w", g.UUID, err)
	}
	return stored.ID, nil
}

// UpsertDrills inserts derived drill candidates, skipping any that already
// exist for the same (username, game, ply) identity.
func (r *DrillRepository) UpsertDrills(ctx context.Context, username, gameID string, candidates []drill.Candidate) (int64, error) {
	if len(candidates) == 0 {
		return 0, nil
	}

	rows := make([]models.Drill, 0, len(candidates))
	for _, c := range candidates {
		losing := c.LosingMove
		rows = append(rows, models.Drill{
			GameID:      gameID,
			Username:    username,
			FEN:         c.FEN,
			Ply:         c.Ply,
			InitialEval: c.InitialEval,
			EvalSwing:   c.EvalSwing,
			LosingMove:  &losing,
			WhiteQueen:  c.Material.WhiteQueen,
			BlackQueen:  c.Material.BlackQueen,
			WhiteRooks:  c.Material.WhiteRooks,
			BlackRooks:  c.Material.BlackRooks,
			WhiteMinors: c.Material.WhiteMinors,
			BlackMinors: c.Material.BlackMinors,
		})
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}, {Name: "game_id"}, {Name: "ply"}},
			DoNothing: true,
		}).
		Create(&rows)
	if result.Error != nil {
		return 0, fmt.Errorf("upsert drills for game %s: %w", gameID, result.Error)
	}
	return result.RowsAffected, nil
}

// List returns drills matching the SQL-side filters, ordered by
// last_drilled_at ascending with never-drilled first, or descending with
// never-drilled last when RecentFirst is set.
func (r *DrillRepository) List(ctx context.Context, p drill.ListParams) ([]drill.WithGame, error) {
	order := "drills.last_drilled_at ASC NULLS FIRST"
	if p.RecentFirst {
		order = "drills.last_drilled_at DESC NULLS LAST"
	}

	q := r.db.WithContext(ctx).
		Model(&models.Drill{}).
		Joins("JOIN games ON games.id = drills.game_id").
		Preload("Game").
		Preload("History").
		Where("drills.username = ?", p.Username).
		Where("drills.eval_swing >= ?", p.MinSwing).
		Order(order).
		Order("games.played_at DESC").
		Order("drills.created_at DESC")

	if p.MaxSwing > 0 {
		q = q.Where("drills.eval_swing <= ?", p.MaxSwing)
	}
	if !p.IncludeArchived {
		q = q.Where("drills.archived = ?", false)
	}
	if p.Opponent != "" {
		like := "%" + p.Opponent + "%"
		q = q.Where("games.white_username ILIKE ? OR games.black_username ILIKE ?", like, like)
	}
	if p.Offset > 0 {
		q = q.Offset(p.Offset)
	}
	if p.Limit > 0 {
		q = q.Limit(p.Limit)
	}

	var rows []models.Drill
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list drills: %w", err)
	}
	return toDomainDrills(rows), nil
}

// RecentlyDrilled returns drills that have been practiced at least once,
// most recent first. limit <= 0 means no limit.
func (r *DrillRepository) RecentlyDrilled(ctx context.Context, username string, includeArchived bool, limit int) ([]drill.WithGame, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Drill{}).
		Joins("JOIN games ON games.id = drills.game_id").
		Preload("Game").
		Preload("History").
		Where("drills.username = ?", username).
		Where("drills.last_drilled_at IS NOT NULL").
		Order("drills.last_drilled_at DESC")

	if !includeArchived {
		q = q.Where("drills.archived = ?", false)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []models.Drill
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list recently drilled: %w", err)
	}
	return toDomainDrills(rows), nil
}

func (r *DrillRepository) GetByID(ctx context.Context, id int64) (*drill.WithGame, error) {
	var row models.Drill
	err := r.db.WithContext(ctx).
		Preload("Game").
		Preload("History").
		First(&row, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, drill.ErrDrillNotFound
		}
		return nil, fmt.Errorf("get drill %d: %w", id, err)
	}
	dg := toDomainDrill(row)
	return &dg, nil
}

// HistoryFor returns a drill's practice history, most recent first.
func (r *DrillRepository) HistoryFor(ctx context.Context, drillID int64) ([]drill.HistoryEntry, error) {
	var rows []models.DrillHistory
	err := r.db.WithContext(ctx).
		Where("drill_id = ?", drillID).
		Order("timestamp DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list drill history: %w", err)
	}

	entries := make([]drill.HistoryEntry, 0, len(rows))
	for _, h := range rows {
		entries = append(entries, toDomainHistory(h))
	}
	return entries, nil
}

// AppendHistory records one practice attempt and advances the drill's
// last_drilled_at to the attempt timestamp.
func (r *DrillRepository) AppendHistory(ctx context.Context, drillID int64, entry drill.HistoryEntry) (drill.HistoryEntry, error) {
	row := models.DrillHistory{
		DrillID:   drillID,
		Result:    entry.Result,
		Reason:    entry.Reason,
		Moves:     entry.Moves,
		FinalEval: entry.FinalEval,
		TimeUsed:  entry.TimeUsed,
		Timestamp: entry.Timestamp,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var d models.Drill
		if err := tx.Select("id").First(&d, "id = ?", drillID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return drill.ErrDrillNotFound
			}
			return err
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		return tx.Model(&models.Drill{}).
			Where("id = ?", drillID).
			Update("last_drilled_at", entry.Timestamp).Error
	})
	if err != nil {
		if errors.Is(err, drill.ErrDrillNotFound) {
			return drill.HistoryEntry{}, err
		}
		return drill.HistoryEntry{}, fmt.Errorf("append drill history: %w", err)
	}
	return toDomainHistory(row), nil
}

// UpdateDrill applies an archive toggle and/or marks the drill as just
// played.
func (r *DrillRepository) UpdateDrill(ctx context.Context, drillID int64, archived *bool, markPlayed bool) error {
	updates := map[string]any{}
	if archived != nil {
		updates["archived"] = *archived
	}
	if markPlayed {
		updates["last_drilled_at"] = time.Now().UTC()
	}
	if len(updates) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.Drill{}).
		Where("id = ?", drillID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("update drill %d: %w", drillID, result.Error)
	}
	if result.RowsAffected == 0 {
		return drill.ErrDrillNotFound
	}
	return nil
}

func toDomainDrills(rows []models.Drill) []drill.WithGame {
	out := make([]drill.WithGame, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainDrill(row))
	}
	return out
}

func toDomainDrill(row models.Drill) drill.WithGame {
	history := make([]drill.HistoryEntry, 0, len(row.History))
	for _, h := range row.History {
		history = append(history, toDomainHistory(h))
	}

	return drill.WithGame{
		Drill: drill.Drill{
			ID:          row.ID,
			GameID:      row.GameID,
			Username:    row.Username,
			FEN:         row.FEN,
			Ply:         row.Ply,
			InitialEval: row.InitialEval,
			EvalSwing:   row.EvalSwing,
			LosingMove:  row.LosingMove,
			Material: drill.Material{
				WhiteQueen:  row.WhiteQueen,
				BlackQueen:  row.BlackQueen,
				WhiteRooks:  row.WhiteRooks,
				BlackRooks:  row.BlackRooks,
				WhiteMinors: row.WhiteMinors,
				BlackMinors: row.BlackMinors,
			},
			Archived:      row.Archived,
			LastDrilledAt: row.LastDrilledAt,
			CreatedAt:     row.CreatedAt,
			History:       history,
		},
		Game: game.Game{
			UUID:        row.Game.GameUUID,
			URL:         row.Game.URL,
			White:       game.PlayerResult{Username: row.Game.WhiteUsername, Rating: row.Game.WhiteRating, Result: row.Game.WhiteResult},
			Black:       game.PlayerResult{Username: row.Game.BlackUsername, Rating: row.Game.BlackRating, Result: row.Game.BlackResult},
			TimeClass:   row.Game.TimeClass,
			TimeControl: row.Game.TimeControl,
			ECO:         row.Game.ECO,
			PGN:         row.Game.PGN,
			PlayedAt:    row.Game.PlayedAt,
		},
	}
}

func toDomainHistory(h models.DrillHistory) drill.HistoryEntry {
	return drill.HistoryEntry{
		ID:        h.ID,
		DrillID:   h.DrillID,
		Result:    h.Result,
		Reason:    h.Reason,
		Moves:     h.Moves,
		FinalEval: h.FinalEval,
		TimeUsed:  h.TimeUsed,
		Timestamp: h.Timestamp,
	}
}
