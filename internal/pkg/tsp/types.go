package tsp

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNonSquare is returned when a row length differs from the row count.
	ErrNonSquare = errors.New("tsp: matrix is not square")
	// ErrNonZeroDiagonal is returned when dist[i][i] != 0.
	ErrNonZeroDiagonal = errors.New("tsp: self-distance must be 0")
	// ErrNegativeWeight is returned for a negative off-diagonal distance.
	ErrNegativeWeight = errors.New("tsp: negative distance")
	// ErrNaN is returned when any entry is NaN.
	ErrNaN = errors.New("tsp: NaN distance")
	// ErrIncompleteGraph is returned when no Hamiltonian path/cycle exists.
	ErrIncompleteGraph = errors.New("tsp: incomplete distance matrix")
	// ErrTooLarge is returned when the subset index no longer fits an int.
	ErrTooLarge = errors.New("tsp: too many vertices for subset indexing")
)

// Mode selects which Hamiltonian structure is minimized.
type Mode int

const (
	// OpenPath visits every vertex once, starting and ending anywhere.
	OpenPath Mode = iota
	// OpenPathFromStart visits every vertex once, starting at vertex 0.
	OpenPathFromStart
	// ClosedTour visits every vertex once and returns to vertex 0.
	ClosedTour
)

func (m Mode) String() string {
	switch m {
	case OpenPath:
		return "open"
	case OpenPathFromStart:
		return "open_from_start"
	case ClosedTour:
		return "closed"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps a config value onto a Mode. Empty means OpenPath.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "open":
		return OpenPath, nil
	case "open_from_start":
		return OpenPathFromStart, nil
	case "closed":
		return ClosedTour, nil
	default:
		return 0, fmt.Errorf("tsp: unknown mode %q", s)
	}
}

// Result is the outcome of Solve.
type Result struct {
	// Order lists every vertex exactly once in visiting order. For
	// ClosedTour and OpenPathFromStart it starts at 0; the return hop of a
	// closed tour is implied, not repeated.
	Order []int

	// Cost is the total distance, including the return hop for ClosedTour.
	Cost float64
}
