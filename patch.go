package textsync

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Patch is one hunk of context-carrying edits against a known source text.
// Start1/Length1 index the source text, Start2/Length2 the rewritten text.
type Patch struct {
	Edits   []Edit
	Start1  int
	Start2  int
	Length1 int
	Length2 int
}

// String renders the patch in a unified-diff-like format with %xx-escaped
// payloads:
//
//	@@ -382,8 +481,9 @@
//
// Header indices are printed 1-based; a zero-length hunk keeps index 0.
func (p *Patch) String() string {
	var coords1, coords2 string
	switch {
	case p.Length1 == 0:
		coords1 = strconv.Itoa(p.Start1) + ",0"
	case p.Length1 == 1:
		coords1 = strconv.Itoa(p.Start1 + 1)
	default:
		coords1 = strconv.Itoa(p.Start1+1) + "," + strconv.Itoa(p.Length1)
	}
	switch {
	case p.Length2 == 0:
		coords2 = strconv.Itoa(p.Start2) + ",0"
	case p.Length2 == 1:
		coords2 = strconv.Itoa(p.Start2 + 1)
	default:
		coords2 = strconv.Itoa(p.Start2+1) + "," + strconv.Itoa(p.Length2)
	}
	var sb strings.Builder
	sb.WriteString("@@ -" + coords1 + " +" + coords2 + " @@\n")
	// Escape the body of the patch with %xx notation.
	for _, ed := range p.Edits {
		switch ed.Op {
		case OpInsert:
			sb.WriteString("+")
		case OpDelete:
			sb.WriteString("-")
		case OpEqual:
			sb.WriteString(" ")
		}
		sb.WriteString(strings.ReplaceAll(url.QueryEscape(ed.Text), "+", " "))
		sb.WriteString("\n")
	}
	return unescaper.Replace(sb.String())
}

// PatchAddContext increases the context of patch until it is unique within
// text, without letting the pattern expand beyond MatchMaxBits.
func (e *Engine) PatchAddContext(patch Patch, text string) Patch {
	if len(text) == 0 {
		return patch
	}
	pattern := text[patch.Start2 : patch.Start2+patch.Length1]
	padding := 0
	// Look for the first and last matches of pattern in text. If two
	// different matches are found, increase the pattern length.
	for strings.Index(text, pattern) != strings.LastIndex(text, pattern) &&
		len(pattern) < e.MatchMaxBits-2*e.PatchMargin {
		padding += e.PatchMargin
		maxStart := max(0, patch.Start2-padding)
		minEnd := min(len(text), patch.Start2+patch.Length1+padding)
		pattern = text[maxStart:minEnd]
	}
	// Add one chunk for good luck.
	padding += e.PatchMargin
	// Add the prefix.
	prefix := text[max(0, patch.Start2-padding):patch.Start2]
	if len(prefix) != 0 {
		patch.Edits = append([]Edit{{OpEqual, prefix}}, patch.Edits...)
	}
	// Add the suffix.
	suffix := text[patch.Start2+patch.Length1 : min(len(text), patch.Start2+patch.Length1+padding)]
	if len(suffix) != 0 {
		patch.Edits = append(patch.Edits, Edit{OpEqual, suffix})
	}
	// Roll back the start points and extend the lengths.
	patch.Start1 -= len(prefix)
	patch.Start2 -= len(prefix)
	patch.Length1 += len(prefix) + len(suffix)
	patch.Length2 += len(prefix) + len(suffix)
	return patch
}

// PatchMake computes a list of patches to turn one text into another. It
// accepts four shapes of arguments: (text1, text2), (edits), (text1, edits)
// which is the canonical form, and the deprecated (text1, text2, edits)
// whose text2 argument is ignored and kept for compatibility only.
func (e *Engine) PatchMake(opt ...interface{}) []Patch {
	switch len(opt) {
	case 1:
		edits, _ := opt[0].([]Edit)
		text1 := e.Text1(edits)
		return e.PatchMake(text1, edits)
	case 2:
		text1 := opt[0].(string)
		switch t := opt[1].(type) {
		case string:
			edits := e.Diff(text1, t, true)
			if len(edits) > 2 {
				edits = e.CleanupSemantic(edits)
				edits = e.CleanupEfficiency(edits)
			}
			return e.PatchMake(text1, edits)
		case []Edit:
			return e.patchMake(text1, t)
		}
	case 3:
		return e.PatchMake(opt[0], opt[2])
	}
	return []Patch{}
}

// patchMake computes the patch list for the canonical form: the source text
// plus the edit script transforming it.
func (e *Engine) patchMake(text1 string, edits []Edit) []Patch {
	patches := []Patch{}
	if len(edits) == 0 {
		return patches // Get rid of the nil case.
	}
	patch := Patch{}
	charCount1 := 0 // Number of characters into the text1 string.
	charCount2 := 0 // Number of characters into the text2 string.
	// Start with text1 (prepatchText) and apply the edits until we arrive
	// at text2 (postpatchText). We recreate the patches one by one to
	// determine context info.
	prepatchText := text1
	postpatchText := text1
	for i, ed := range edits {
		if len(patch.Edits) == 0 && ed.Op != OpEqual {
			// A new patch starts here.
			patch.Start1 = charCount1
			patch.Start2 = charCount2
		}
		switch ed.Op {
		case OpInsert:
			patch.Edits = append(patch.Edits, ed)
			patch.Length2 += len(ed.Text)
			postpatchText = postpatchText[:charCount2] + ed.Text + postpatchText[charCount2:]
		case OpDelete:
			patch.Length1 += len(ed.Text)
			patch.Edits = append(patch.Edits, ed)
			postpatchText = postpatchText[:charCount2] + postpatchText[charCount2+len(ed.Text):]
		case OpEqual:
			if len(ed.Text) <= 2*e.PatchMargin && len(patch.Edits) != 0 && i != len(edits)-1 {
				// Small equality inside a patch.
				patch.Edits = append(patch.Edits, ed)
				patch.Length1 += len(ed.Text)
				patch.Length2 += len(ed.Text)
			}
			if len(ed.Text) >= 2*e.PatchMargin && len(patch.Edits) != 0 {
				// Time for a new patch.
				patch = e.PatchAddContext(patch, prepatchText)
				patches = append(patches, patch)
				patch = Patch{}
				// Unlike unidiff, our patch lists have a rolling context.
				// Update prepatch text and position to reflect the
				// application of the just completed patch.
				prepatchText = postpatchText
				charCount1 = charCount2
			}
		}
		// Update the current character count.
		if ed.Op != OpInsert {
			charCount1 += len(ed.Text)
		}
		if ed.Op != OpDelete {
			charCount2 += len(ed.Text)
		}
	}
	// Pick up the leftover patch if not empty.
	if len(patch.Edits) != 0 {
		patch = e.PatchAddContext(patch, prepatchText)
		patches = append(patches, patch)
	}
	return patches
}

// PatchDeepCopy returns a patch list identical to patches, sharing no
// backing storage with it.
func (e *Engine) PatchDeepCopy(patches []Patch) []Patch {
	patchesCopy := []Patch{}
	for _, p := range patches {
		patchCopy := Patch{
			Start1:  p.Start1,
			Start2:  p.Start2,
			Length1: p.Length1,
			Length2: p.Length2,
		}
		patchCopy.Edits = append(patchCopy.Edits, p.Edits...)
		patchesCopy = append(patchesCopy, patchCopy)
	}
	return patchesCopy
}

// PatchApply merges a list of patches onto text. Returns the patched text
// plus one boolean per patch indicating whether it applied. The booleans
// follow the list after PatchSplitMax, not the input list: an input patch
// longer than MatchMaxBits is split into several pieces and gets one boolean
// per piece. The input patches are not modified.
func (e *Engine) PatchApply(patches []Patch, text string) (string, []bool) {
	if len(patches) == 0 {
		return text, []bool{}
	}
	// Deep copy the patches so that no changes are made to the originals.
	patches = e.PatchDeepCopy(patches)
	nullPadding := e.PatchAddPadding(patches)
	text = nullPadding + text + nullPadding
	patches = e.PatchSplitMax(patches)
	// delta tracks the offset between the expected and actual location of
	// the previous patch. If there are patches expected at positions 10 and
	// 20, but the first was found at 12, delta is 2 and the second patch has
	// an effective expected position of 22.
	delta := 0
	results := make([]bool, len(patches))
	for x, p := range patches {
		expectedLoc := p.Start2 + delta
		text1 := e.Text1(p.Edits)
		var startLoc int
		endLoc := -1
		if len(text1) > e.MatchMaxBits {
			// PatchSplitMax will only provide an oversized pattern in the
			// case of a monster delete. Match each end separately and
			// require consistency.
			startLoc = e.Match(text, text1[:e.MatchMaxBits], expectedLoc)
			if startLoc != -1 {
				endLoc = e.Match(text,
					text1[len(text1)-e.MatchMaxBits:], expectedLoc+len(text1)-e.MatchMaxBits)
				if endLoc == -1 || startLoc >= endLoc {
					// Can't find valid trailing context. Drop this patch.
					startLoc = -1
				}
			}
		} else {
			startLoc = e.Match(text, text1, expectedLoc)
		}
		if startLoc == -1 {
			// No match found.
			results[x] = false
			// Subtract the delta for this failed patch from subsequent
			// patches.
			delta -= p.Length2 - p.Length1
			continue
		}
		// Found a match.
		results[x] = true
		delta = startLoc - expectedLoc
		var text2 string
		if endLoc == -1 {
			text2 = text[startLoc:min(startLoc+len(text1), len(text))]
		} else {
			text2 = text[startLoc:min(endLoc+e.MatchMaxBits, len(text))]
		}
		if text1 == text2 {
			// Perfect match, just shove the replacement text in.
			text = text[:startLoc] + e.Text2(p.Edits) + text[startLoc+len(text1):]
			continue
		}
		// Imperfect match. Run a diff to get a framework of equivalent
		// indices.
		edits := e.Diff(text1, text2, false)
		if len(text1) > e.MatchMaxBits &&
			float64(e.Levenshtein(edits))/float64(len(text1)) > e.PatchDeleteThreshold {
			// The end points match, but the content is unacceptably bad.
			results[x] = false
			continue
		}
		edits = e.CleanupSemanticLossless(edits)
		index1 := 0
		for _, ed := range p.Edits {
			if ed.Op != OpEqual {
				index2 := e.XIndex(edits, index1)
				switch ed.Op {
				case OpInsert:
					text = text[:startLoc+index2] + ed.Text + text[startLoc+index2:]
				case OpDelete:
					startIndex := startLoc + index2
					text = text[:startIndex] +
						text[startIndex+e.XIndex(edits, index1+len(ed.Text))-index2:]
				}
			}
			if ed.Op != OpDelete {
				index1 += len(ed.Text)
			}
		}
	}
	// Strip the padding off.
	return text[len(nullPadding) : len(nullPadding)+(len(text)-2*len(nullPadding))], results
}

// PatchAddPadding adds some padding on the start and end of every patch so
// that edges can match something. Returns the padding string; the caller
// must wrap the text to be patched in the same padding. Intended to be
// called only from within PatchApply.
func (e *Engine) PatchAddPadding(patches []Patch) string {
	paddingLength := e.PatchMargin
	nullPadding := ""
	for x := 1; x <= paddingLength; x++ {
		nullPadding += string(rune(x))
	}
	// Bump all the patches forward.
	for i := range patches {
		patches[i].Start1 += paddingLength
		patches[i].Start2 += paddingLength
	}
	// Add some padding on start of first diff.
	first := &patches[0]
	if len(first.Edits) == 0 || first.Edits[0].Op != OpEqual {
		// Add nullPadding equality.
		first.Edits = append([]Edit{{OpEqual, nullPadding}}, first.Edits...)
		first.Start1 -= paddingLength // Should be 0.
		first.Start2 -= paddingLength // Should be 0.
		first.Length1 += paddingLength
		first.Length2 += paddingLength
	} else if paddingLength > len(first.Edits[0].Text) {
		// Grow first equality.
		extraLength := paddingLength - len(first.Edits[0].Text)
		first.Edits[0].Text = nullPadding[len(first.Edits[0].Text):] + first.Edits[0].Text
		first.Start1 -= extraLength
		first.Start2 -= extraLength
		first.Length1 += extraLength
		first.Length2 += extraLength
	}
	// Add some padding on end of last diff.
	last := &patches[len(patches)-1]
	if len(last.Edits) == 0 || last.Edits[len(last.Edits)-1].Op != OpEqual {
		// Add nullPadding equality.
		last.Edits = append(last.Edits, Edit{OpEqual, nullPadding})
		last.Length1 += paddingLength
		last.Length2 += paddingLength
	} else if paddingLength > len(last.Edits[len(last.Edits)-1].Text) {
		// Grow last equality.
		lastEdit := last.Edits[len(last.Edits)-1]
		extraLength := paddingLength - len(lastEdit.Text)
		last.Edits[len(last.Edits)-1].Text += nullPadding[:extraLength]
		last.Length1 += extraLength
		last.Length2 += extraLength
	}
	return nullPadding
}

// PatchSplitMax looks through the patches and breaks up any which are
// longer than the maximum limit of the match algorithm, chaining the
// trailing context of each piece into the next. Intended to be called only
// from within PatchApply.
func (e *Engine) PatchSplitMax(patches []Patch) []Patch {
	patchSize := e.MatchMaxBits
	for x := 0; x < len(patches); x++ {
		if patches[x].Length1 <= patchSize {
			continue
		}
		bigpatch := patches[x]
		// Remove the big old patch.
		patches = append(patches[:x], patches[x+1:]...)
		x--
		start1 := bigpatch.Start1
		start2 := bigpatch.Start2
		precontext := ""
		for len(bigpatch.Edits) != 0 {
			// Create one of several smaller patches.
			patch := Patch{}
			empty := true
			patch.Start1 = start1 - len(precontext)
			patch.Start2 = start2 - len(precontext)
			if len(precontext) != 0 {
				patch.Length1 = len(precontext)
				patch.Length2 = len(precontext)
				patch.Edits = append(patch.Edits, Edit{OpEqual, precontext})
			}
			for len(bigpatch.Edits) != 0 && patch.Length1 < patchSize-e.PatchMargin {
				op := bigpatch.Edits[0].Op
				text := bigpatch.Edits[0].Text
				if op == OpInsert {
					// Insertions are harmless.
					patch.Length2 += len(text)
					start2 += len(text)
					patch.Edits = append(patch.Edits, bigpatch.Edits[0])
					bigpatch.Edits = bigpatch.Edits[1:]
					empty = false
				} else if op == OpDelete && len(patch.Edits) == 1 &&
					patch.Edits[0].Op == OpEqual && len(text) > 2*patchSize {
					// This is a large deletion. Let it pass in one chunk.
					patch.Length1 += len(text)
					start1 += len(text)
					empty = false
					patch.Edits = append(patch.Edits, Edit{op, text})
					bigpatch.Edits = bigpatch.Edits[1:]
				} else {
					// Deletion or equality. Only take as much as we can
					// stomach.
					text = text[:min(len(text), patchSize-patch.Length1-e.PatchMargin)]
					patch.Length1 += len(text)
					start1 += len(text)
					if op == OpEqual {
						patch.Length2 += len(text)
						start2 += len(text)
					} else {
						empty = false
					}
					patch.Edits = append(patch.Edits, Edit{op, text})
					if text == bigpatch.Edits[0].Text {
						bigpatch.Edits = bigpatch.Edits[1:]
					} else {
						bigpatch.Edits[0].Text = bigpatch.Edits[0].Text[len(text):]
					}
				}
			}
			// Compute the head context for the next patch.
			precontext = e.Text2(patch.Edits)
			precontext = precontext[max(0, len(precontext)-e.PatchMargin):]
			// Append the end context for this patch.
			postcontext := e.Text1(bigpatch.Edits)
			if len(postcontext) > e.PatchMargin {
				postcontext = postcontext[:e.PatchMargin]
			}
			if len(postcontext) != 0 {
				patch.Length1 += len(postcontext)
				patch.Length2 += len(postcontext)
				if len(patch.Edits) != 0 && patch.Edits[len(patch.Edits)-1].Op == OpEqual {
					patch.Edits[len(patch.Edits)-1].Text += postcontext
				} else {
					patch.Edits = append(patch.Edits, Edit{OpEqual, postcontext})
				}
			}
			if !empty {
				x++
				patches = append(patches[:x], append([]Patch{patch}, patches[x:]...)...)
			}
		}
	}
	return patches
}

// PatchToText takes a list of patches and returns their textual
// representation.
func (e *Engine) PatchToText(patches []Patch) string {
	var sb strings.Builder
	for _, p := range patches {
		sb.WriteString(p.String())
	}
	return sb.String()
}

// patchHeader matches a hunk header line of the textual patch format.
var patchHeader = regexp.MustCompile(`^@@ -(\d+),?(\d*) \+(\d+),?(\d*) @@$`)

// PatchFromText parses a textual representation of patches and returns the
// patch list.
func (e *Engine) PatchFromText(text string) ([]Patch, error) {
	patches := []Patch{}
	if len(text) == 0 {
		return patches, nil
	}
	lines := strings.Split(text, "\n")
	lp := 0
	for lp < len(lines) {
		m := patchHeader.FindStringSubmatch(lines[lp])
		if m == nil {
			return patches, fmt.Errorf("%w: invalid hunk header: %s", ErrPatchMalformed, lines[lp])
		}
		patch := Patch{}
		patch.Start1, _ = strconv.Atoi(m[1])
		if len(m[2]) == 0 {
			patch.Start1--
			patch.Length1 = 1
		} else if m[2] == "0" {
			patch.Length1 = 0
		} else {
			patch.Start1--
			patch.Length1, _ = strconv.Atoi(m[2])
		}
		patch.Start2, _ = strconv.Atoi(m[3])
		if len(m[4]) == 0 {
			patch.Start2--
			patch.Length2 = 1
		} else if m[4] == "0" {
			patch.Length2 = 0
		} else {
			patch.Start2--
			patch.Length2, _ = strconv.Atoi(m[4])
		}
		lp++
		for lp < len(lines) {
			if len(lines[lp]) == 0 {
				lp++
				continue
			}
			sign := lines[lp][0]
			if sign == '@' {
				// Start of next patch.
				break
			}
			line := lines[lp][1:]
			line = strings.ReplaceAll(line, "+", "%2b")
			line, err := url.QueryUnescape(line)
			if err != nil {
				return patches, fmt.Errorf("%w: %v", ErrPatchMalformed, err)
			}
			switch sign {
			case '-':
				patch.Edits = append(patch.Edits, Edit{OpDelete, line})
			case '+':
				patch.Edits = append(patch.Edits, Edit{OpInsert, line})
			case ' ':
				patch.Edits = append(patch.Edits, Edit{OpEqual, line})
			default:
				return patches, fmt.Errorf("%w: invalid edit prefix %q in: %s",
					ErrPatchMalformed, string(sign), line)
			}
			lp++
		}
		patches = append(patches, patch)
	}
	return patches, nil
}
