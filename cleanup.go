package textsync

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Regex patterns for boundary classification in the lossless cleanup.
var (
	nonAlphaNumericRegex = regexp.MustCompile(`[^a-zA-Z0-9]`)
	whitespaceRegex      = regexp.MustCompile(`\s`)
	linebreakRegex       = regexp.MustCompile(`[\r\n]`)
	blanklineEndRegex    = regexp.MustCompile(`\n\r?\n$`)
	blanklineStartRegex  = regexp.MustCompile(`^\r?\n\r?\n`)
)

// CleanupMerge reorders and merges like edit sections, merges equalities,
// and factors common affixes out of adjacent delete/insert pairs. Any edit
// section can move as long as it doesn't cross an equality.
func (e *Engine) CleanupMerge(edits []Edit) []Edit {
	// Add a dummy entry at the end.
	edits = append(edits, Edit{OpEqual, ""})
	pointer := 0
	countDelete := 0
	countInsert := 0
	commonlength := 0
	var textDelete, textInsert []rune
	for pointer < len(edits) {
		switch edits[pointer].Op {
		case OpInsert:
			countInsert++
			textInsert = append(textInsert, []rune(edits[pointer].Text)...)
			pointer++
		case OpDelete:
			countDelete++
			textDelete = append(textDelete, []rune(edits[pointer].Text)...)
			pointer++
		case OpEqual:
			// Upon reaching an equality, check for prior redundancies.
			if countDelete+countInsert > 1 {
				if countDelete != 0 && countInsert != 0 {
					// Factor out any common prefixes.
					commonlength = commonPrefixLength(textInsert, textDelete)
					if commonlength != 0 {
						x := pointer - countDelete - countInsert
						if x > 0 && edits[x-1].Op == OpEqual {
							edits[x-1].Text += string(textInsert[:commonlength])
						} else {
							edits = append([]Edit{{OpEqual, string(textInsert[:commonlength])}}, edits...)
							pointer++
						}
						textInsert = textInsert[commonlength:]
						textDelete = textDelete[commonlength:]
					}
					// Factor out any common suffixes.
					commonlength = commonSuffixLength(textInsert, textDelete)
					if commonlength != 0 {
						insertIndex := len(textInsert) - commonlength
						deleteIndex := len(textDelete) - commonlength
						edits[pointer].Text = string(textInsert[insertIndex:]) + edits[pointer].Text
						textInsert = textInsert[:insertIndex]
						textDelete = textDelete[:deleteIndex]
					}
				}
				// Delete the offending records and add the merged ones.
				if countDelete == 0 {
					edits = splice(edits, pointer-countInsert,
						countDelete+countInsert,
						Edit{OpInsert, string(textInsert)})
				} else if countInsert == 0 {
					edits = splice(edits, pointer-countDelete,
						countDelete+countInsert,
						Edit{OpDelete, string(textDelete)})
				} else {
					edits = splice(edits, pointer-countDelete-countInsert,
						countDelete+countInsert,
						Edit{OpDelete, string(textDelete)},
						Edit{OpInsert, string(textInsert)})
				}
				pointer = pointer - countDelete - countInsert + 1
				if countDelete != 0 {
					pointer++
				}
				if countInsert != 0 {
					pointer++
				}
			} else if pointer != 0 && edits[pointer-1].Op == OpEqual {
				// Merge this equality with the previous one.
				edits[pointer-1].Text += edits[pointer].Text
				edits = append(edits[:pointer], edits[pointer+1:]...)
			} else {
				pointer++
			}
			countInsert = 0
			countDelete = 0
			textDelete = nil
			textInsert = nil
		}
	}
	if len(edits[len(edits)-1].Text) == 0 {
		edits = edits[:len(edits)-1] // Remove the dummy entry at the end.
	}
	// Second pass: look for single edits surrounded on both sides by
	// equalities which can be shifted sideways to eliminate an equality,
	// e.g. A<ins>BA</ins>C -> <ins>AB</ins>AC.
	changes := false
	pointer = 1
	// Intentionally ignore the first and last element (don't need checking).
	for pointer < len(edits)-1 {
		if edits[pointer-1].Op == OpEqual && edits[pointer+1].Op == OpEqual {
			// This is a single edit surrounded by equalities.
			if strings.HasSuffix(edits[pointer].Text, edits[pointer-1].Text) {
				// Shift the edit over the previous equality.
				edits[pointer].Text = edits[pointer-1].Text +
					edits[pointer].Text[:len(edits[pointer].Text)-len(edits[pointer-1].Text)]
				edits[pointer+1].Text = edits[pointer-1].Text + edits[pointer+1].Text
				edits = splice(edits, pointer-1, 1)
				changes = true
			} else if strings.HasPrefix(edits[pointer].Text, edits[pointer+1].Text) {
				// Shift the edit over the next equality.
				edits[pointer-1].Text += edits[pointer+1].Text
				edits[pointer].Text =
					edits[pointer].Text[len(edits[pointer+1].Text):] + edits[pointer+1].Text
				edits = splice(edits, pointer+1, 1)
				changes = true
			}
		}
		pointer++
	}
	// If shifts were made, the diff needs reordering and another shift sweep.
	if changes {
		edits = e.CleanupMerge(edits)
	}
	return edits
}

// CleanupSemantic reduces the number of edits by eliminating semantically
// trivial equalities, then extracts overlaps between adjacent deletions and
// insertions into equalities.
func (e *Engine) CleanupSemantic(edits []Edit) []Edit {
	changes := false
	// Stack of indices where equalities are found.
	equalities := make([]int, 0, len(edits))
	var lastequality string
	var pointer int // Index of current position.
	// Number of characters that changed prior to the equality.
	var lengthInsertions1, lengthDeletions1 int
	// Number of characters that changed after the equality.
	var lengthInsertions2, lengthDeletions2 int
	for pointer < len(edits) {
		if edits[pointer].Op == OpEqual {
			// Equality found.
			equalities = append(equalities, pointer)
			lengthInsertions1 = lengthInsertions2
			lengthDeletions1 = lengthDeletions2
			lengthInsertions2 = 0
			lengthDeletions2 = 0
			lastequality = edits[pointer].Text
		} else {
			// An insertion or deletion.
			if edits[pointer].Op == OpInsert {
				lengthInsertions2 += utf8.RuneCountInString(edits[pointer].Text)
			} else {
				lengthDeletions2 += utf8.RuneCountInString(edits[pointer].Text)
			}
			// Eliminate an equality that is smaller or equal to the edits on
			// both sides of it.
			difference1 := max(lengthInsertions1, lengthDeletions1)
			difference2 := max(lengthInsertions2, lengthDeletions2)
			if utf8.RuneCountInString(lastequality) > 0 &&
				utf8.RuneCountInString(lastequality) <= difference1 &&
				utf8.RuneCountInString(lastequality) <= difference2 {
				// Duplicate record.
				insPoint := equalities[len(equalities)-1]
				edits = splice(edits, insPoint, 0, Edit{OpDelete, lastequality})
				// Change second copy to insert.
				edits[insPoint+1].Op = OpInsert
				// Throw away the equality we just deleted.
				equalities = equalities[:len(equalities)-1]
				// Throw away the previous equality (it needs to be
				// reevaluated).
				if len(equalities) > 0 {
					equalities = equalities[:len(equalities)-1]
				}
				pointer = -1
				if len(equalities) > 0 {
					pointer = equalities[len(equalities)-1]
				}
				// Reset the counters.
				lengthInsertions1 = 0
				lengthDeletions1 = 0
				lengthInsertions2 = 0
				lengthDeletions2 = 0
				lastequality = ""
				changes = true
			}
		}
		pointer++
	}
	// Normalize the diff.
	if changes {
		edits = e.CleanupMerge(edits)
	}
	edits = e.CleanupSemanticLossless(edits)
	// Find any overlaps between deletions and insertions, e.g.
	// <del>abcxxx</del><ins>xxxdef</ins> -> <del>abc</del>xxx<ins>def</ins>
	// <del>xxxabc</del><ins>defxxx</ins> -> <ins>def</ins>xxx<del>abc</del>
	// Only extract an overlap if it is as big as the edit ahead or behind it.
	pointer = 1
	for pointer < len(edits) {
		if edits[pointer-1].Op == OpDelete && edits[pointer].Op == OpInsert {
			deletion := edits[pointer-1].Text
			insertion := edits[pointer].Text
			overlapLength1 := e.CommonOverlap(deletion, insertion)
			overlapLength2 := e.CommonOverlap(insertion, deletion)
			if overlapLength1 >= overlapLength2 {
				if float64(overlapLength1) >= float64(utf8.RuneCountInString(deletion))/2 ||
					float64(overlapLength1) >= float64(utf8.RuneCountInString(insertion))/2 {
					// Overlap found. Insert an equality and trim the
					// surrounding edits.
					edits = splice(edits, pointer, 0, Edit{OpEqual, insertion[:overlapLength1]})
					edits[pointer-1].Text = deletion[:len(deletion)-overlapLength1]
					edits[pointer+1].Text = insertion[overlapLength1:]
					pointer++
				}
			} else {
				if float64(overlapLength2) >= float64(utf8.RuneCountInString(deletion))/2 ||
					float64(overlapLength2) >= float64(utf8.RuneCountInString(insertion))/2 {
					// Reverse overlap found. Insert an equality and swap and
					// trim the surrounding edits.
					edits = splice(edits, pointer, 0, Edit{OpEqual, deletion[:overlapLength2]})
					edits[pointer-1].Op = OpInsert
					edits[pointer-1].Text = insertion[:len(insertion)-overlapLength2]
					edits[pointer+1].Op = OpDelete
					edits[pointer+1].Text = deletion[overlapLength2:]
					pointer++
				}
			}
			pointer++
		}
		pointer++
	}
	return edits
}

// semanticScore computes a score representing whether the boundary between
// two strings falls on logical boundaries. Scores range from 6 (best) to 0
// (worst). Each port of this library behaves slightly differently here due
// to each language's notion of character classes; the function is cosmetic,
// so native classes win over cross-port conformity.
func semanticScore(one, two string) int {
	if len(one) == 0 || len(two) == 0 {
		// Edges are the best.
		return 6
	}
	rune1, _ := utf8.DecodeLastRuneInString(one)
	rune2, _ := utf8.DecodeRuneInString(two)
	char1 := string(rune1)
	char2 := string(rune2)
	nonAlphaNumeric1 := nonAlphaNumericRegex.MatchString(char1)
	nonAlphaNumeric2 := nonAlphaNumericRegex.MatchString(char2)
	whitespace1 := nonAlphaNumeric1 && whitespaceRegex.MatchString(char1)
	whitespace2 := nonAlphaNumeric2 && whitespaceRegex.MatchString(char2)
	lineBreak1 := whitespace1 && linebreakRegex.MatchString(char1)
	lineBreak2 := whitespace2 && linebreakRegex.MatchString(char2)
	blankLine1 := lineBreak1 && blanklineEndRegex.MatchString(one)
	blankLine2 := lineBreak2 && blanklineStartRegex.MatchString(two)
	switch {
	case blankLine1 || blankLine2:
		// Five points for blank lines.
		return 5
	case lineBreak1 || lineBreak2:
		// Four points for line breaks.
		return 4
	case nonAlphaNumeric1 && !whitespace1 && whitespace2:
		// Three points for end of sentences.
		return 3
	case whitespace1 || whitespace2:
		// Two points for whitespace.
		return 2
	case nonAlphaNumeric1 || nonAlphaNumeric2:
		// One point for non-alphanumeric.
		return 1
	}
	return 0
}

// CleanupSemanticLossless looks for single edits surrounded on both sides
// by equalities which can be shifted sideways to align the edit to a word
// boundary, e.g. "The c<ins>at c</ins>ame." -> "The <ins>cat </ins>came."
func (e *Engine) CleanupSemanticLossless(edits []Edit) []Edit {
	pointer := 1
	// Intentionally ignore the first and last element (don't need checking).
	for pointer < len(edits)-1 {
		if edits[pointer-1].Op == OpEqual && edits[pointer+1].Op == OpEqual {
			// This is a single edit surrounded by equalities.
			equality1 := edits[pointer-1].Text
			edit := edits[pointer].Text
			equality2 := edits[pointer+1].Text
			// First, shift the edit as far left as possible.
			commonOffset := e.CommonSuffix(equality1, edit)
			if commonOffset > 0 {
				r1 := []rune(equality1)
				r2 := []rune(edit)
				common := string(r2[len(r2)-commonOffset:])
				equality1 = string(r1[:len(r1)-commonOffset])
				edit = common + string(r2[:len(r2)-commonOffset])
				equality2 = common + equality2
			}
			// Second, step character by character right, looking for the
			// best fit.
			bestEquality1 := equality1
			bestEdit := edit
			bestEquality2 := equality2
			bestScore := semanticScore(equality1, edit) + semanticScore(edit, equality2)
			for len(edit) != 0 && len(equality2) != 0 {
				_, sz := utf8.DecodeRuneInString(edit)
				if len(equality2) < sz || edit[:sz] != equality2[:sz] {
					break
				}
				equality1 += edit[:sz]
				edit = edit[sz:] + equality2[:sz]
				equality2 = equality2[sz:]
				score := semanticScore(equality1, edit) + semanticScore(edit, equality2)
				// The >= encourages trailing rather than leading whitespace
				// on edits.
				if score >= bestScore {
					bestScore = score
					bestEquality1 = equality1
					bestEdit = edit
					bestEquality2 = equality2
				}
			}
			if edits[pointer-1].Text != bestEquality1 {
				// We have an improvement, save it back to the diff.
				if len(bestEquality1) != 0 {
					edits[pointer-1].Text = bestEquality1
				} else {
					edits = splice(edits, pointer-1, 1)
					pointer--
				}
				edits[pointer].Text = bestEdit
				if len(bestEquality2) != 0 {
					edits[pointer+1].Text = bestEquality2
				} else {
					edits = append(edits[:pointer+1], edits[pointer+2:]...)
					pointer--
				}
			}
		}
		pointer++
	}
	return edits
}

// CleanupEfficiency reduces the number of edits by eliminating operationally
// trivial equalities whose removal costs less than DiffEditCost.
func (e *Engine) CleanupEfficiency(edits []Edit) []Edit {
	changes := false
	// Stack of indices where equalities are found.
	type equality struct {
		data int
		next *equality
	}
	var equalities *equality
	var lastequality string
	pointer := 0 // Index of current position.
	// Is there an insertion operation before the last equality.
	preIns := false
	// Is there a deletion operation before the last equality.
	preDel := false
	// Is there an insertion operation after the last equality.
	postIns := false
	// Is there a deletion operation after the last equality.
	postDel := false
	for pointer < len(edits) {
		if edits[pointer].Op == OpEqual {
			// Equality found.
			if len(edits[pointer].Text) < e.DiffEditCost && (postIns || postDel) {
				// Candidate found.
				equalities = &equality{data: pointer, next: equalities}
				preIns = postIns
				preDel = postDel
				lastequality = edits[pointer].Text
			} else {
				// Not a candidate, and can never become one.
				equalities = nil
				lastequality = ""
			}
			postIns = false
			postDel = false
		} else {
			// An insertion or deletion.
			if edits[pointer].Op == OpDelete {
				postDel = true
			} else {
				postIns = true
			}
			// Five types to be split:
			// <ins>A</ins><del>B</del>XY<ins>C</ins><del>D</del>
			// <ins>A</ins>X<ins>C</ins><del>D</del>
			// <ins>A</ins><del>B</del>X<ins>C</ins>
			// <ins>A</ins>X<ins>C</ins><del>D</del>
			// <ins>A</ins><del>B</del>X<del>C</del>
			sumSlots := 0
			for _, slot := range []bool{preIns, preDel, postIns, postDel} {
				if slot {
					sumSlots++
				}
			}
			if len(lastequality) > 0 &&
				((preIns && preDel && postIns && postDel) ||
					(len(lastequality) < e.DiffEditCost/2 && sumSlots == 3)) {
				insPoint := equalities.data
				// Duplicate record.
				edits = splice(edits, insPoint, 0, Edit{OpDelete, lastequality})
				// Change second copy to insert.
				edits[insPoint+1].Op = OpInsert
				// Throw away the equality we just deleted.
				equalities = equalities.next
				lastequality = ""
				if preIns && preDel {
					// No changes made which could affect previous entry,
					// keep going.
					postIns = true
					postDel = true
					equalities = nil
				} else {
					if equalities != nil {
						// Throw away the previous equality.
						equalities = equalities.next
					}
					pointer = -1
					if equalities != nil {
						pointer = equalities.data
					}
					postIns = false
					postDel = false
				}
				changes = true
			}
		}
		pointer++
	}
	if changes {
		edits = e.CleanupMerge(edits)
	}
	return edits
}
