package session

import "github.com/pkg/errors"

var (
	// ErrChartLoad is a missing or malformed chart. StartGame stays Idle.
	ErrChartLoad = errors.New("chart not loaded")
	// ErrClockUnavailable is a missing or invalid clock at StartGame.
	ErrClockUnavailable = errors.New("clock unavailable")
	// ErrClockFault is an invalid transport while loading or playing. The
	// session is stopped and needs a fresh StartGame.
	ErrClockFault = errors.New("clock fault during play")
	// ErrInvalidDifficulty is a difficulty outside 1-3 or a change while
	// playing. The previous difficulty is kept.
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	// ErrEmptyFilteredSet is a chart with no notes at the difficulty.
	ErrEmptyFilteredSet = errors.New("no notes at difficulty")
	// ErrSessionActive is a StartGame or chart load while a play is underway.
	ErrSessionActive = errors.New("session already active")
)
