package drill

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/blunderfixer/blunderfixer/internal/domain/drill"
)

type GetDrillInput struct {
	ID int64
}

type GetDrill interface {
	Execute(ctx context.Context, in GetDrillInput) (DrillOutput, error)
}

type getDrill struct {
	repo domain.Repository
}

func NewGetDrill(repo domain.Repository) GetDrill {
	return &getDrill{repo: repo}
}

func (uc *getDrill) Execute(ctx context.Context, in GetDrillInput) (DrillOutput, error) {
	row, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, domain.ErrDrillNotFound) {
			return DrillOutput{}, ErrDrillNotFound
		}
		return DrillOutput{}, fmt.Errorf("%w: %v", ErrGetDrill, err)
	}
	return toDrillOutput(*row, domain.DefaultOpeningThreshold, true), nil
}

type ReadDrillHistoryInput struct {
	DrillID int64
}

type ReadDrillHistory interface {
	Execute(ctx context.Context, in ReadDrillHistoryInput) ([]HistoryOutput, error)
}

type readDrillHistory struct {
	repo domain.Repository
}

func NewReadDrillHistory(repo domain.Repository) ReadDrillHistory {
	return &readDrillHistory{repo: repo}
}

func (uc *readDrillHistory) Execute(ctx context.Context, in ReadDrillHistoryInput) ([]HistoryOutput, error) {
	entries, err := uc.repo.HistoryFor(ctx, in.DrillID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGetDrill, err)
	}

	out := make([]HistoryOutput, 0, len(entries))
	for _, h := range entries {
		out = append(out, HistoryOutput{
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
	return out, nil
}
