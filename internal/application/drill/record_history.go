package drill

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/blunderfixer/blunderfixer/internal/domain/drill"
)

type RecordHistoryInput struct {
	DrillID   int64
	Result    string
	Reason    *string
	Moves     []string
	TimeUsed  *float64
	Timestamp *time.Time
}

type RecordHistory interface {
	Execute(ctx context.Context, in RecordHistoryInput) (HistoryOutput, error)
}

type recordHistory struct {
	repo domain.Repository
}

func NewRecordHistory(repo domain.Repository) RecordHistory {
	return &recordHistory{repo: repo}
}

// Execute appends one pass/fail attempt to a drill's history and stamps
// the drill as last drilled at the attempt time. History is append-only;
// re-syncing games never writes here.
func (uc *recordHistory) Execute(ctx context.Context, in RecordHistoryInput) (HistoryOutput, error) {
	result := strings.ToLower(strings.TrimSpace(in.Result))
	if result != domain.ResultPass && result != domain.ResultFail {
		return HistoryOutput{}, ErrInvalidResult
	}

	ts := time.Now().UTC()
	if in.Timestamp != nil {
		ts = in.Timestamp.UTC()
	}

	moves := in.Moves
	if moves == nil {
		moves = []string{}
	}

	entry, err := uc.repo.AppendHistory(ctx, in.DrillID, domain.HistoryEntry{
		DrillID:   in.DrillID,
		Result:    result,
		Reason:    in.Reason,
		Moves:     moves,
		TimeUsed:  in.TimeUsed,
		Timestamp: ts,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDrillNotFound) {
			return HistoryOutput{}, ErrDrillNotFound
		}
		return HistoryOutput{}, fmt.Errorf("%w: %v", ErrRecordHistory, err)
	}

	return HistoryOutput{
		ID:        entry.ID,
		DrillID:   entry.DrillID,
		Result:    entry.Result,
		Reason:    entry.Reason,
		Moves:     entry.Moves,
		FinalEval: entry.FinalEval,
		TimeUsed:  entry.TimeUsed,
		Timestamp: entry.Timestamp,
	}, nil
}
