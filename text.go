package textsync

import (
	"strings"
	"unicode/utf8"
)

// htmlEscaper escapes the characters significant to HTML; payload newlines
// are handled separately by PrettyHTML.
var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Text1 computes the source text of an edit script (all equalities and
// deletions).
func (e *Engine) Text1(edits []Edit) string {
	var sb strings.Builder
	for _, ed := range edits {
		if ed.Op != OpInsert {
			sb.WriteString(ed.Text)
		}
	}
	return sb.String()
}

// Text2 computes the destination text of an edit script (all equalities and
// insertions).
func (e *Engine) Text2(edits []Edit) string {
	var sb strings.Builder
	for _, ed := range edits {
		if ed.Op != OpDelete {
			sb.WriteString(ed.Text)
		}
	}
	return sb.String()
}

// XIndex translates a location in the source text to the corresponding
// location in the destination text, e.g. "The cat" vs "The big cat": 1 -> 1,
// 5 -> 9. A location inside a deletion maps to just past the deletion.
func (e *Engine) XIndex(edits []Edit, loc int) int {
	chars1 := 0
	chars2 := 0
	lastChars1 := 0
	lastChars2 := 0
	lastEdit := Edit{}
	for _, ed := range edits {
		if ed.Op != OpInsert {
			// Equality or deletion.
			chars1 += len(ed.Text)
		}
		if ed.Op != OpDelete {
			// Equality or insertion.
			chars2 += len(ed.Text)
		}
		if chars1 > loc {
			// Overshot the location.
			lastEdit = ed
			break
		}
		lastChars1 = chars1
		lastChars2 = chars2
	}
	if lastEdit.Op == OpDelete {
		// The location was deleted.
		return lastChars2
	}
	// Add the remaining character length.
	return lastChars2 + (loc - lastChars1)
}

// Levenshtein computes the Levenshtein distance of an edit script: the
// number of inserted or deleted characters, where a deletion paired with an
// insertion counts once as a substitution.
func (e *Engine) Levenshtein(edits []Edit) int {
	distance := 0
	insertions := 0
	deletions := 0
	for _, ed := range edits {
		switch ed.Op {
		case OpInsert:
			insertions += utf8.RuneCountInString(ed.Text)
		case OpDelete:
			deletions += utf8.RuneCountInString(ed.Text)
		case OpEqual:
			// A deletion and an insertion is one substitution.
			distance += max(insertions, deletions)
			insertions = 0
			deletions = 0
		}
	}
	return distance + max(insertions, deletions)
}

// PrettyHTML renders an edit script as HTML, wrapping equalities in spans,
// deletions in red <del> and insertions in green <ins>. Newlines render as
// a pilcrow plus <br>.
func (e *Engine) PrettyHTML(edits []Edit) string {
	var sb strings.Builder
	for _, ed := range edits {
		text := strings.ReplaceAll(htmlEscaper.Replace(ed.Text), "\n", "&para;<br>")
		switch ed.Op {
		case OpInsert:
			sb.WriteString("<ins style=\"background:#e6ffe6;\">")
			sb.WriteString(text)
			sb.WriteString("</ins>")
		case OpDelete:
			sb.WriteString("<del style=\"background:#ffe6e6;\">")
			sb.WriteString(text)
			sb.WriteString("</del>")
		case OpEqual:
			sb.WriteString("<span>")
			sb.WriteString(text)
			sb.WriteString("</span>")
		}
	}
	return sb.String()
}

// PrettyText renders an edit script for terminals, coloring deletions red
// and insertions green with ANSI escapes.
func (e *Engine) PrettyText(edits []Edit) string {
	var sb strings.Builder
	for _, ed := range edits {
		switch ed.Op {
		case OpInsert:
			sb.WriteString("\x1b[32m")
			sb.WriteString(ed.Text)
			sb.WriteString("\x1b[0m")
		case OpDelete:
			sb.WriteString("\x1b[31m")
			sb.WriteString(ed.Text)
			sb.WriteString("\x1b[0m")
		case OpEqual:
			sb.WriteString(ed.Text)
		}
	}
	return sb.String()
}
