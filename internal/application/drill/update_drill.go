package drill

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/blunderfixer/blunderfixer/internal/domain/drill"
)

type UpdateDrillInput struct {
	DrillID    int64
	Archived   *bool
	MarkPlayed bool
}

type UpdateDrill interface {
	Execute(ctx context.Context, in UpdateDrillInput) (DrillOutput, error)
}

type updateDrill struct {
	repo domain.Repository
}

func NewUpdateDrill(repo domain.Repository) UpdateDrill {
	return &updateDrill{repo: repo}
}

// Execute toggles the archive flag and/or bumps last_drilled_at, then
// returns the refreshed drill. Drills are never deleted, only archived.
func (uc *updateDrill) Execute(ctx context.Context, in UpdateDrillInput) (DrillOutput, error) {
	if err := uc.repo.UpdateDrill(ctx, in.DrillID, in.Archived, in.MarkPlayed); err != nil {
		if errors.Is(err, domain.ErrDrillNotFound) {
			return DrillOutput{}, ErrDrillNotFound
		}
		return DrillOutput{}, fmt.Errorf("%w: %v", ErrUpdateDrill, err)
	}

	row, err := uc.repo.GetByID(ctx, in.DrillID)
	if err != nil {
		return DrillOutput{}, fmt.Errorf("%w: %v", ErrUpdateDrill, err)
	}
	return toDrillOutput(*row, domain.DefaultOpeningThreshold, true), nil
}
