package drill

import (
	"context"
	"fmt"
	"strings"

	domain "github.com/blunderfixer/blunderfixer/internal/domain/drill"
)

const (
	defaultListLimit   = 100
	defaultRecentLimit = 20
	maxListLimit       = 200
)

type ListDrillsInput struct {
	Username         string
	Limit            int
	OpeningThreshold int
	MinEvalSwing     float64
	MaxEvalSwing     float64
	Phases           []string
	HeroResults      []string
	Opponent         string
	IncludeArchived  bool
	IncludeMastered  bool
	RecentFirst      bool
}

type ListDrills interface {
	Execute(ctx context.Context, in ListDrillsInput) ([]DrillOutput, error)
}

type listDrills struct {
	repo domain.Repository
}

func NewListDrills(repo domain.Repository) ListDrills {
	return &listDrills{repo: repo}
}

// Execute lists a player's drills. Eval-swing, archive and opponent filters
// run in the store; mastery, phase and hero-result filters run here over
// batches of rows, fetching more until the limit is satisfied or the store
// runs dry.
func (uc *listDrills) Execute(ctx context.Context, in ListDrillsInput) ([]DrillOutput, error) {
	if strings.TrimSpace(in.Username) == "" {
		return nil, ErrInvalidUsername
	}

	limit := clampLimit(in.Limit, defaultListLimit)
	openingThreshold := in.OpeningThreshold
	if openingThreshold <= 0 {
		openingThreshold = domain.DefaultOpeningThreshold
	}

	phaseWhitelist := lowerSet(in.Phases)
	resultWhitelist := lowerSet(in.HeroResults)

	batchSize := limit * 4
	offset := 0
	results := make([]DrillOutput, 0, limit)

	for len(results) < limit {
		rows, err := uc.repo.List(ctx, domain.ListParams{
			Username:        in.Username,
			MinSwing:        in.MinEvalSwing,
			MaxSwing:        in.MaxEvalSwing,
			Opponent:        in.Opponent,
			IncludeArchived: in.IncludeArchived,
			RecentFirst:     in.RecentFirst,
			Limit:           batchSize,
			Offset:          offset,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrListDrills, err)
		}
		if len(rows) == 0 {
			break
		}

		for _, row := range rows {
			if !in.IncludeMastered && row.Drill.Mastered() {
				continue
			}

			out := toDrillOutput(row, openingThreshold, false)
			if len(resultWhitelist) > 0 && !resultWhitelist[out.HeroResult] {
				continue
			}
			if len(phaseWhitelist) > 0 && !phaseWhitelist[out.Phase] {
				continue
			}

			results = append(results, out)
			if len(results) == limit {
				break
			}
		}

		offset += batchSize
	}

	return results, nil
}

type RecentDrillsInput struct {
	Username        string
	Limit           int
	IncludeArchived bool
}

type RecentDrills interface {
	Execute(ctx context.Context, in RecentDrillsInput) ([]DrillOutput, error)
}

type recentDrills struct {
	repo domain.Repository
}

func NewRecentDrills(repo domain.Repository) RecentDrills {
	return &recentDrills{repo: repo}
}

// Execute returns the most recently practiced drills, newest first.
func (uc *recentDrills) Execute(ctx context.Context, in RecentDrillsInput) ([]DrillOutput, error) {
	if strings.TrimSpace(in.Username) == "" {
		return nil, ErrInvalidUsername
	}

	limit := clampLimit(in.Limit, defaultRecentLimit)
	rows, err := uc.repo.RecentlyDrilled(ctx, in.Username, in.IncludeArchived, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrListDrills, err)
	}

	results := make([]DrillOutput, 0, len(rows))
	for _, row := range rows {
		results = append(results, toDrillOutput(row, domain.DefaultOpeningThreshold, false))
	}
	return results, nil
}

type MasteredDrillsInput struct {
	Username        string
	Limit           int
	IncludeArchived bool
}

type MasteredDrills interface {
	Execute(ctx context.Context, in MasteredDrillsInput) ([]DrillOutput, error)
}

type masteredDrills struct {
	repo domain.Repository
}

func NewMasteredDrills(repo domain.Repository) MasteredDrills {
	return &masteredDrills{repo: repo}
}

// Execute returns drills whose five most recent attempts are all passes.
func (uc *masteredDrills) Execute(ctx context.Context, in MasteredDrillsInput) ([]DrillOutput, error) {
	if strings.TrimSpace(in.Username) == "" {
		return nil, ErrInvalidUsername
	}

	limit := clampLimit(in.Limit, defaultRecentLimit)
	rows, err := uc.repo.RecentlyDrilled(ctx, in.Username, in.IncludeArchived, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrListDrills, err)
	}

	results := make([]DrillOutput, 0, limit)
	for _, row := range rows {
		if !row.Drill.Mastered() {
			continue
		}
		results = append(results, toDrillOutput(row, domain.DefaultOpeningThreshold, false))
		if len(results) == limit {
			break
		}
	}
	return results, nil
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func lowerSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = true
	}
	return set
}
