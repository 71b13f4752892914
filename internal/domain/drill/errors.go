package drill

import "errors"

var (
	ErrDrillNotFound = errors.New("drill not found")
	ErrInvalidResult = errors.New("invalid drill result")
)
