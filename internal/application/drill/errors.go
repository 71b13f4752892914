package drill

import "errors"

var (
	ErrInvalidUsername = errors.New("invalid username")
	ErrDrillNotFound   = errors.New("drill not found")
	ErrInvalidResult   = errors.New("invalid result")
	ErrListDrills      = errors.New("failed to list drills")
	ErrGetDrill        = errors.New("failed to get drill")
	ErrRecordHistory   = errors.New("failed to record drill history")
	ErrUpdateDrill     = errors.New("failed to update drill")
)
