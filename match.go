package textsync

import (
	"math"
)

// Match locates the best instance of pattern in text near loc. Returns -1
// if no match is found.
func (e *Engine) Match(text, pattern string, loc int) int {
	loc = max(0, min(loc, len(text)))
	switch {
	case text == pattern:
		// Shortcut (potentially not guaranteed by the algorithm).
		return 0
	case len(text) == 0:
		// Nothing to match.
		return -1
	case loc+len(pattern) <= len(text) && text[loc:loc+len(pattern)] == pattern:
		// Perfect match at the perfect spot (includes case of empty pattern).
		return loc
	}
	// Do a fuzzy compare.
	return e.MatchBitap(text, pattern, loc)
}

// MatchBitap locates the best instance of pattern in text near loc using
// the Bitap algorithm. Returns -1 if no match is found.
func (e *Engine) MatchBitap(text, pattern string, loc int) int {
	// Initialise the alphabet.
	alphabet := e.MatchAlphabet(pattern)
	// Highest score beyond which we give up.
	scoreThreshold := e.MatchThreshold
	// Is there a nearby exact match? (speedup)
	bestLoc := indexOf(text, pattern, loc)
	if bestLoc != -1 {
		scoreThreshold = math.Min(e.bitapScore(0, bestLoc, loc, pattern), scoreThreshold)
		// What about in the other direction? (speedup)
		bestLoc = lastIndexOf(text, pattern, loc+len(pattern))
		if bestLoc != -1 {
			scoreThreshold = math.Min(e.bitapScore(0, bestLoc, loc, pattern), scoreThreshold)
		}
	}
	// Initialise the bit arrays.
	matchmask := 1 << uint(len(pattern)-1)
	bestLoc = -1
	var binMin, binMid int
	binMax := len(pattern) + len(text)
	var lastRd []int
	for d := 0; d < len(pattern); d++ {
		// Scan for the best match; each iteration allows for one more
		// error. Run a binary search to determine how far from loc we can
		// stray at this error level.
		binMin = 0
		binMid = binMax
		for binMin < binMid {
			if e.bitapScore(d, loc+binMid, loc, pattern) <= scoreThreshold {
				binMin = binMid
			} else {
				binMax = binMid
			}
			binMid = (binMax-binMin)/2 + binMin
		}
		// Use the result from this iteration as the maximum for the next.
		binMax = binMid
		start := max(1, loc-binMid+1)
		finish := min(loc+binMid, len(text)) + len(pattern)
		rd := make([]int, finish+2)
		rd[finish+1] = (1 << uint(d)) - 1
		for j := finish; j >= start; j-- {
			var charMatch int
			if len(text) > j-1 {
				charMatch = alphabet[text[j-1]]
			}
			if d == 0 {
				// First pass: exact match.
				rd[j] = ((rd[j+1] << 1) | 1) & charMatch
			} else {
				// Subsequent passes: fuzzy match.
				rd[j] = ((rd[j+1]<<1)|1)&charMatch | (((lastRd[j+1] | lastRd[j]) << 1) | 1) | lastRd[j+1]
			}
			if rd[j]&matchmask != 0 {
				score := e.bitapScore(d, j-1, loc, pattern)
				// This match will almost certainly be better than any
				// existing match, but check anyway.
				if score <= scoreThreshold {
					scoreThreshold = score
					bestLoc = j - 1
					if bestLoc > loc {
						// When passing loc, don't exceed our current
						// distance from loc.
						start = max(1, 2*loc-bestLoc)
					} else {
						// Already passed loc, downhill from here on in.
						break
					}
				}
			}
		}
		if e.bitapScore(d+1, loc, loc, pattern) > scoreThreshold {
			// No hope for a (better) match at greater error levels.
			break
		}
		lastRd = rd
	}
	return bestLoc
}

// bitapScore computes the weighted score for a match with d errors at
// location x, relative to the expected location loc.
func (e *Engine) bitapScore(d, x, loc int, pattern string) float64 {
	accuracy := float64(d) / float64(len(pattern))
	proximity := math.Abs(float64(loc - x))
	if e.MatchDistance == 0 {
		// Dodge divide by zero.
		if proximity == 0 {
			return accuracy
		}
		return 1.0
	}
	return accuracy + proximity/float64(e.MatchDistance)
}

// MatchAlphabet initialises the alphabet for the Bitap algorithm: a map
// from each character in pattern to a bitmask with bit i set iff the
// character occurs i positions from the end of the pattern.
func (e *Engine) MatchAlphabet(pattern string) map[byte]int {
	alphabet := map[byte]int{}
	for i := 0; i < len(pattern); i++ {
		alphabet[pattern[i]] |= 1 << uint(len(pattern)-i-1)
	}
	return alphabet
}
