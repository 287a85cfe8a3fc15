package textsync

import (
	"strconv"
	"strings"
)

// LinesToChars splits two texts into lines and reduces each text to a
// string of comma-separated line tokens, where equal lines share a token.
// Returns the two encoded texts and the line table; table index 0 is the
// empty string and table index i recovers the i-th distinct line.
func (e *Engine) LinesToChars(text1, text2 string) (string, string, []string) {
	// Index 0 is reserved so that no token is ever the empty string.
	lines := []string{""} // e.g. lines[4] == "Hello\n"
	lineIndex := map[string]uint32{}
	tokens1 := linesMunge(text1, &lines, lineIndex)
	tokens2 := linesMunge(text2, &lines, lineIndex)
	return intsToString(tokens1), intsToString(tokens2), lines
}

// LinesToRunes is LinesToChars with the encoded texts returned as rune
// slices ready for DiffRunes.
func (e *Engine) LinesToRunes(text1, text2 string) ([]rune, []rune, []string) {
	chars1, chars2, lines := e.LinesToChars(text1, text2)
	return []rune(chars1), []rune(chars2), lines
}

// linesMunge splits text into newline-terminated fragments (an unterminated
// trailing remainder counts as a line) and maps each fragment to its index
// in the shared line table, assigning new indices in first-seen order.
func linesMunge(text string, lines *[]string, lineIndex map[string]uint32) []uint32 {
	// Walk the text pulling out a substring for each line; splitting on
	// '\n' up front would double the memory footprint.
	lineStart := 0
	lineEnd := -1
	var tokens []uint32
	for lineEnd < len(text)-1 {
		lineEnd = indexOf(text, "\n", lineStart)
		if lineEnd == -1 {
			lineEnd = len(text) - 1
		}
		line := text[lineStart : lineEnd+1]
		lineStart = lineEnd + 1
		if n, ok := lineIndex[line]; ok {
			tokens = append(tokens, n)
		} else {
			*lines = append(*lines, line)
			lineIndex[line] = uint32(len(*lines) - 1)
			tokens = append(tokens, uint32(len(*lines)-1))
		}
	}
	return tokens
}

// CharsToLines rehydrates the text in an edit script from line tokens back
// to real lines of text, using the table produced by LinesToChars.
func (e *Engine) CharsToLines(edits []Edit, lines []string) []Edit {
	hydrated := make([]Edit, 0, len(edits))
	for _, ed := range edits {
		tokens := strings.Split(ed.Text, ",")
		text := make([]string, len(tokens))
		for i, t := range tokens {
			if n, err := strconv.Atoi(t); err == nil {
				text[i] = lines[n]
			}
		}
		ed.Text = strings.Join(text, "")
		hydrated = append(hydrated, ed)
	}
	return hydrated
}
