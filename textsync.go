// Package textsync provides robust algorithms for synchronizing plain text:
// computing a minimal edit script between two texts, locating a fuzzy match
// for a pattern near an expected position, and building patches that can be
// applied to text that has since drifted.
package textsync

import (
	"time"
)

// Op is the kind of a single edit operation.
type Op int8

// Edit operations.
const (
	OpDelete Op = -1
	OpEqual  Op = 0
	OpInsert Op = 1
)

// String satisfies the fmt.Stringer interface.
func (op Op) String() string {
	switch op {
	case OpDelete:
		return "delete"
	case OpInsert:
		return "insert"
	case OpEqual:
		return "equal"
	}
	return "unknown"
}

// Edit is one edit operation together with the text it applies to. An edit
// script is an ordered []Edit; concatenating the Text of all non-insert
// edits reproduces the source text, all non-delete edits the result text.
type Edit struct {
	Op   Op
	Text string
}

// Engine holds the tuning parameters consumed by the diff, match and patch
// operations. An Engine is not safe for concurrent use; fields may be
// reassigned freely between calls.
type Engine struct {
	// DiffTimeout is how long to map a diff before giving up and accepting
	// a non-minimal result (0 for unlimited time).
	DiffTimeout time.Duration
	// DiffEditCost is the cost of an empty edit operation in terms of edit
	// characters, used by CleanupEfficiency.
	DiffEditCost int

	// MatchThreshold is the score above which no match is declared
	// (0.0 = perfection, 1.0 = very loose).
	MatchThreshold float64
	// MatchDistance is how far from the expected location to search
	// (0 = exact location, 1000+ = broad match). A match this many
	// characters away from the expected location adds 1.0 to its score.
	MatchDistance int
	// MatchMaxBits is the number of bits in an int, bounding pattern length.
	MatchMaxBits int

	// PatchDeleteThreshold is how closely the contents of a large deleted
	// block must match the expected contents for the delete to be applied
	// (0.0 = perfection, 1.0 = very loose). MatchThreshold separately
	// controls how closely the end points must match.
	PatchDeleteThreshold float64
	// PatchMargin is the chunk size of patch context.
	PatchMargin int
}

// New creates an Engine with the default parameters.
func New() *Engine {
	return &Engine{
		DiffTimeout:          time.Second,
		DiffEditCost:         4,
		MatchThreshold:       0.5,
		MatchDistance:        1000,
		MatchMaxBits:         32,
		PatchDeleteThreshold: 0.5,
		PatchMargin:          4,
	}
}
