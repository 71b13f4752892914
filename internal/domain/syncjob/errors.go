package syncjob

import "errors"

var (
	ErrJobNotFound       = errors.New("sync job not found")
	ErrInvalidTransition = errors.New("invalid job status transition")

	// Sentinels wrapped by the game source adapter and the drill writer so
	// the orchestrator can classify failures without knowing the transport.
	ErrAdapterUnreachable = errors.New("game source unreachable")
	ErrAdapterRateLimited = errors.New("game source rate limited")
	ErrInvalidGameData    = errors.New("invalid game data")
	ErrStoreWrite         = errors.New("store write failure")
)

// Classify maps an error to its failure class. Unrecognized errors are
// reported as FailureUnknown.
func Classify(err error) FailureClass {
	switch {
	case errors.Is(err, ErrAdapterRateLimited):
		return FailureAdapterRateLimited
	case errors.Is(err, ErrAdapterUnreachable):
		return FailureAdapterUnreachable
	case errors.Is(err, ErrInvalidGameData):
		return FailureInvalidGameData
	case errors.Is(err, ErrStoreWrite):
		return FailureStoreWrite
	default:
		return FailureUnknown
	}
}
