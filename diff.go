package textsync

import (
	"strings"
	"time"
)

// Diff finds the differences between two texts and returns the edit script
// transforming text1 into text2. When checkLines is true and both texts are
// long, a faster line-level pass runs first and its coarse result is then
// refined; this trades optimality for speed.
func (e *Engine) Diff(text1, text2 string, checkLines bool) []Edit {
	return e.DiffRunes([]rune(text1), []rune(text2), checkLines)
}

// DiffRunes is Diff on rune slices.
func (e *Engine) DiffRunes(text1, text2 []rune, checkLines bool) []Edit {
	var deadline time.Time
	if e.DiffTimeout > 0 {
		deadline = time.Now().Add(e.DiffTimeout)
	}
	return e.diffRunes(text1, text2, checkLines, deadline)
}

// diffRunes carries the deadline through the recursion. The zero time means
// unlimited time.
func (e *Engine) diffRunes(text1, text2 []rune, checkLines bool, deadline time.Time) []Edit {
	if runesEqual(text1, text2) {
		var edits []Edit
		if len(text1) > 0 {
			edits = append(edits, Edit{OpEqual, string(text1)})
		}
		return edits
	}
	// Trim off common prefix (speedup).
	n := commonPrefixLength(text1, text2)
	prefix := text1[:n]
	text1 = text1[n:]
	text2 = text2[n:]
	// Trim off common suffix (speedup).
	n = commonSuffixLength(text1, text2)
	suffix := text1[len(text1)-n:]
	text1 = text1[:len(text1)-n]
	text2 = text2[:len(text2)-n]
	// Compute the diff on the middle block.
	edits := e.compute(text1, text2, checkLines, deadline)
	// Restore the prefix and suffix.
	if len(prefix) != 0 {
		edits = append([]Edit{{OpEqual, string(prefix)}}, edits...)
	}
	if len(suffix) != 0 {
		edits = append(edits, Edit{OpEqual, string(suffix)})
	}
	return e.CleanupMerge(edits)
}

// compute finds the differences between two texts assuming they have no
// common prefix or suffix.
func (e *Engine) compute(text1, text2 []rune, checkLines bool, deadline time.Time) []Edit {
	if len(text1) == 0 {
		// Just add some text (speedup).
		return []Edit{{OpInsert, string(text2)}}
	}
	if len(text2) == 0 {
		// Just delete some text (speedup).
		return []Edit{{OpDelete, string(text1)}}
	}
	long, short := text1, text2
	if len(text1) <= len(text2) {
		long, short = text2, text1
	}
	if i := runesIndex(long, short); i != -1 {
		op := OpInsert
		// Swap insertions for deletions if diff is reversed.
		if len(text1) > len(text2) {
			op = OpDelete
		}
		// Shorter text is inside the longer text (speedup).
		return []Edit{
			{op, string(long[:i])},
			{OpEqual, string(short)},
			{op, string(long[i+len(short):])},
		}
	}
	if len(short) == 1 {
		// Single character string; after the previous speedup the
		// character cannot be an equality.
		return []Edit{
			{OpDelete, string(text1)},
			{OpInsert, string(text2)},
		}
	}
	// Check to see if the problem can be split in two.
	if hm := e.halfMatch(text1, text2); hm != nil {
		// Send both halves off for separate processing and splice the
		// common middle between the results.
		edits := e.diffRunes(hm[0], hm[2], checkLines, deadline)
		edits = append(edits, Edit{OpEqual, string(hm[4])})
		return append(edits, e.diffRunes(hm[1], hm[3], checkLines, deadline)...)
	}
	if checkLines && len(text1) > 100 && len(text2) > 100 {
		return e.lineMode(text1, text2, deadline)
	}
	return e.bisect(text1, text2, deadline)
}

// lineMode does a quick line-level diff on both texts, then rediffs the
// replacement blocks for greater accuracy. Can produce non-minimal diffs.
func (e *Engine) lineMode(text1, text2 []rune, deadline time.Time) []Edit {
	// Scan the text on a line-by-line basis first.
	tokens1, tokens2, lines := e.LinesToRunes(string(text1), string(text2))
	edits := e.diffRunes(tokens1, tokens2, false, deadline)
	// Convert the diff back to original text.
	edits = e.CharsToLines(edits, lines)
	// Eliminate freak matches (e.g. blank lines).
	edits = e.CleanupSemantic(edits)
	// Rediff any replacement blocks, this time character-by-character.
	// Add a dummy entry at the end.
	edits = append(edits, Edit{OpEqual, ""})
	pointer := 0
	countDelete := 0
	countInsert := 0
	textDelete := ""
	textInsert := ""
	for pointer < len(edits) {
		switch edits[pointer].Op {
		case OpInsert:
			countInsert++
			textInsert += edits[pointer].Text
		case OpDelete:
			countDelete++
			textDelete += edits[pointer].Text
		case OpEqual:
			// Upon reaching an equality, check for prior redundancies.
			if countDelete >= 1 && countInsert >= 1 {
				// Delete the offending records and add the merged ones.
				edits = splice(edits, pointer-countDelete-countInsert,
					countDelete+countInsert)
				pointer = pointer - countDelete - countInsert
				sub := e.diffRunes([]rune(textDelete), []rune(textInsert), false, deadline)
				for j := len(sub) - 1; j >= 0; j-- {
					edits = splice(edits, pointer, 0, sub[j])
				}
				pointer = pointer + len(sub)
			}
			countInsert = 0
			countDelete = 0
			textDelete = ""
			textInsert = ""
		}
		pointer++
	}
	return edits[:len(edits)-1] // Remove the dummy entry at the end.
}

// Bisect finds the 'middle snake' of a diff, splits the problem in two and
// returns the recursively constructed diff. See Myers' 1986 paper: An O(ND)
// Difference Algorithm and Its Variations. The zero deadline means
// unlimited time; on expiry the remainder degrades to one delete plus one
// insert.
func (e *Engine) Bisect(text1, text2 string, deadline time.Time) []Edit {
	return e.bisect([]rune(text1), []rune(text2), deadline)
}

func (e *Engine) bisect(runes1, runes2 []rune, deadline time.Time) []Edit {
	// Cache the text lengths to prevent multiple calls.
	len1, len2 := len(runes1), len(runes2)
	maxD := (len1 + len2 + 1) / 2
	vOffset := maxD
	vLength := 2 * maxD
	v1 := make([]int, vLength)
	v2 := make([]int, vLength)
	for i := range v1 {
		v1[i] = -1
		v2[i] = -1
	}
	v1[vOffset+1] = 0
	v2[vOffset+1] = 0
	delta := len1 - len2
	// If the total number of characters is odd, the front path will collide
	// with the reverse path.
	front := delta%2 != 0
	// Offsets for start and end of k loop; prevents mapping of space beyond
	// the grid.
	k1start, k1end := 0, 0
	k2start, k2end := 0, 0
	for d := 0; d < maxD; d++ {
		// Bail out if deadline is reached.
		if !deadline.IsZero() && time.Now().After(deadline) {
			break
		}
		// Walk the front path one step.
		for k1 := -d + k1start; k1 <= d-k1end; k1 += 2 {
			k1Offset := vOffset + k1
			var x1 int
			if k1 == -d || (k1 != d && v1[k1Offset-1] < v1[k1Offset+1]) {
				x1 = v1[k1Offset+1]
			} else {
				x1 = v1[k1Offset-1] + 1
			}
			y1 := x1 - k1
			for x1 < len1 && y1 < len2 && runes1[x1] == runes2[y1] {
				x1++
				y1++
			}
			v1[k1Offset] = x1
			if x1 > len1 {
				// Ran off the right of the graph.
				k1end += 2
			} else if y1 > len2 {
				// Ran off the bottom of the graph.
				k1start += 2
			} else if front {
				k2Offset := vOffset + delta - k1
				if k2Offset >= 0 && k2Offset < vLength && v2[k2Offset] != -1 {
					// Mirror x2 onto top-left coordinate system.
					x2 := len1 - v2[k2Offset]
					if x1 >= x2 {
						// Overlap detected.
						return e.bisectSplit(runes1, runes2, x1, y1, deadline)
					}
				}
			}
		}
		// Walk the reverse path one step.
		for k2 := -d + k2start; k2 <= d-k2end; k2 += 2 {
			k2Offset := vOffset + k2
			var x2 int
			if k2 == -d || (k2 != d && v2[k2Offset-1] < v2[k2Offset+1]) {
				x2 = v2[k2Offset+1]
			} else {
				x2 = v2[k2Offset-1] + 1
			}
			y2 := x2 - k2
			for x2 < len1 && y2 < len2 && runes1[len1-x2-1] == runes2[len2-y2-1] {
				x2++
				y2++
			}
			v2[k2Offset] = x2
			if x2 > len1 {
				// Ran off the left of the graph.
				k2end += 2
			} else if y2 > len2 {
				// Ran off the top of the graph.
				k2start += 2
			} else if !front {
				k1Offset := vOffset + delta - k2
				if k1Offset >= 0 && k1Offset < vLength && v1[k1Offset] != -1 {
					x1 := v1[k1Offset]
					y1 := vOffset + x1 - k1Offset
					// Mirror x2 onto top-left coordinate system.
					x2 = len1 - x2
					if x1 >= x2 {
						// Overlap detected.
						return e.bisectSplit(runes1, runes2, x1, y1, deadline)
					}
				}
			}
		}
	}
	// Diff took too long and hit the deadline, or the number of edits equals
	// the number of characters: no commonality at all.
	return []Edit{
		{OpDelete, string(runes1)},
		{OpInsert, string(runes2)},
	}
}

// bisectSplit splits the problem at the middle snake and diffs both halves.
func (e *Engine) bisectSplit(runes1, runes2 []rune, x, y int, deadline time.Time) []Edit {
	edits := e.diffRunes(runes1[:x], runes2[:y], false, deadline)
	return append(edits, e.diffRunes(runes1[x:], runes2[y:], false, deadline)...)
}

// CommonPrefix determines the number of runes common to the start of both
// texts.
func (e *Engine) CommonPrefix(text1, text2 string) int {
	return commonPrefixLength([]rune(text1), []rune(text2))
}

// CommonSuffix determines the number of runes common to the end of both
// texts.
func (e *Engine) CommonSuffix(text1, text2 string) int {
	return commonSuffixLength([]rune(text1), []rune(text2))
}

// CommonOverlap determines the length of the longest suffix of text1 that
// is a prefix of text2. Code units are opaque: composed characters do not
// match their decompositions.
func (e *Engine) CommonOverlap(text1, text2 string) int {
	// Eliminate the null case.
	if len(text1) == 0 || len(text2) == 0 {
		return 0
	}
	// Truncate the longer string.
	if len(text1) > len(text2) {
		text1 = text1[len(text1)-len(text2):]
	} else if len(text1) < len(text2) {
		text2 = text2[:len(text1)]
	}
	n := len(text1)
	// Quick check for the worst case.
	if text1 == text2 {
		return n
	}
	// Start by looking for a single character match and increase length
	// until no match is found.
	// Performance analysis: https://neil.fraser.name/news/2010/11/04/
	best, length := 0, 1
	for {
		pattern := text1[n-length:]
		found := strings.Index(text2, pattern)
		if found == -1 {
			return best
		}
		length += found
		if found == 0 || text1[n-length:] == text2[:length] {
			best = length
			length++
		}
	}
}

// HalfMatch reports whether the two texts share a substring which is at
// least half the length of the longer text. Returns the prefix and suffix
// of text1, the prefix and suffix of text2, and the common middle, or nil
// if no such substring exists. Disabled (nil) when DiffTimeout is zero, as
// the split can produce a non-minimal diff.
func (e *Engine) HalfMatch(text1, text2 string) []string {
	hm := e.halfMatch([]rune(text1), []rune(text2))
	if hm == nil {
		return nil
	}
	parts := make([]string, len(hm))
	for i, r := range hm {
		parts[i] = string(r)
	}
	return parts
}

func (e *Engine) halfMatch(text1, text2 []rune) [][]rune {
	if e.DiffTimeout <= 0 {
		// Don't risk returning a non-optimal diff with unlimited time.
		return nil
	}
	long, short := text1, text2
	if len(text1) <= len(text2) {
		long, short = text2, text1
	}
	if len(long) < 4 || len(short)*2 < len(long) {
		return nil // Pointless.
	}
	// First check if the second quarter is the seed for a half-match.
	hm1 := e.halfMatchAt(long, short, (len(long)+3)/4)
	// Check again based on the third quarter.
	hm2 := e.halfMatchAt(long, short, (len(long)+1)/2)
	var hm [][]rune
	switch {
	case hm1 == nil && hm2 == nil:
		return nil
	case hm2 == nil:
		hm = hm1
	case hm1 == nil:
		hm = hm2
	default:
		// Both matched; select the longest.
		if len(hm1[4]) > len(hm2[4]) {
			hm = hm1
		} else {
			hm = hm2
		}
	}
	if len(text1) > len(text2) {
		return hm
	}
	return [][]rune{hm[2], hm[3], hm[0], hm[1], hm[4]}
}

// halfMatchAt checks whether a substring of short seeded at long[i:] is at
// least half the length of long. Returns the prefix and suffix of long, the
// prefix and suffix of short, and the common middle, or nil.
func (e *Engine) halfMatchAt(long, short []rune, i int) [][]rune {
	// Start with a 1/4 length substring at position i as a seed.
	seed := long[i : i+len(long)/4]
	var bestCommonA, bestCommonB []rune
	bestCommonLen := 0
	var bestLongA, bestLongB, bestShortA, bestShortB []rune
	for j := runesIndexOf(short, seed, 0); j != -1; j = runesIndexOf(short, seed, j+1) {
		prefixLength := commonPrefixLength(long[i:], short[j:])
		suffixLength := commonSuffixLength(long[:i], short[:j])
		if bestCommonLen < suffixLength+prefixLength {
			bestCommonA = short[j-suffixLength : j]
			bestCommonB = short[j : j+prefixLength]
			bestCommonLen = len(bestCommonA) + len(bestCommonB)
			bestLongA = long[:i-suffixLength]
			bestLongB = long[i+prefixLength:]
			bestShortA = short[:j-suffixLength]
			bestShortB = short[j+prefixLength:]
		}
	}
	if bestCommonLen*2 < len(long) {
		return nil
	}
	common := make([]rune, 0, bestCommonLen)
	common = append(common, bestCommonA...)
	common = append(common, bestCommonB...)
	return [][]rune{bestLongA, bestLongB, bestShortA, bestShortB, common}
}
