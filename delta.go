package textsync

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Error kinds surfaced by the parsing operations. Errors wrap one of these
// sentinels and carry the offending input; match with errors.Is.
var (
	// ErrDeltaMismatch reports that a delta consumed more or fewer source
	// characters than the source text contains.
	ErrDeltaMismatch = errors.New("delta length mismatch")
	// ErrDeltaMalformed reports an invalid token, count or escape in a
	// delta string.
	ErrDeltaMalformed = errors.New("malformed delta")
	// ErrPatchMalformed reports an invalid hunk header or edit line in a
	// textual patch.
	ErrPatchMalformed = errors.New("malformed patch")
)

// ToDelta crushes an edit script into an encoded string which describes the
// operations required to transform the source text into the destination
// text: "=3\t-2\t+ing" means keep 3 characters, delete 2, insert "ing".
// Operations are tab-separated; inserted text is escaped using %xx notation
// and counts are in runes.
func (e *Engine) ToDelta(edits []Edit) string {
	var sb strings.Builder
	for _, ed := range edits {
		switch ed.Op {
		case OpInsert:
			sb.WriteString("+")
			sb.WriteString(strings.ReplaceAll(url.QueryEscape(ed.Text), "+", " "))
		case OpDelete:
			sb.WriteString("-")
			sb.WriteString(strconv.Itoa(utf8.RuneCountInString(ed.Text)))
		case OpEqual:
			sb.WriteString("=")
			sb.WriteString(strconv.Itoa(utf8.RuneCountInString(ed.Text)))
		}
		sb.WriteString("\t")
	}
	delta := sb.String()
	if len(delta) != 0 {
		// Strip off trailing tab character.
		delta = delta[:len(delta)-1]
	}
	return unescaper.Replace(delta)
}

// FromDelta reconstructs the full edit script from the source text and an
// encoded delta produced by ToDelta.
func (e *Engine) FromDelta(text1, delta string) ([]Edit, error) {
	var edits []Edit
	i := 0
	runes := []rune(text1)
	for _, token := range strings.Split(delta, "\t") {
		if len(token) == 0 {
			// Blank tokens are ok (from a trailing \t).
			continue
		}
		// Each token begins with a one character parameter which specifies
		// the operation of this token.
		param := token[1:]
		switch op := token[0]; op {
		case '+':
			// Decode would change all "+" to " ".
			text, err := url.QueryUnescape(strings.ReplaceAll(param, "+", "%2b"))
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrDeltaMalformed, err)
			}
			if !utf8.ValidString(text) {
				return nil, fmt.Errorf("%w: invalid UTF-8 token: %q", ErrDeltaMalformed, text)
			}
			edits = append(edits, Edit{OpInsert, text})
		case '=', '-':
			n, err := strconv.ParseInt(param, 10, 0)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid count %q: %v", ErrDeltaMalformed, param, err)
			} else if n < 0 {
				return nil, fmt.Errorf("%w: negative count %q", ErrDeltaMalformed, param)
			}
			i += int(n)
			// Bail on the final length check if out of bounds.
			if i > len(runes) {
				break
			}
			// String slicing is by byte; slice the rune view.
			text := string(runes[i-int(n) : i])
			if op == '=' {
				edits = append(edits, Edit{OpEqual, text})
			} else {
				edits = append(edits, Edit{OpDelete, text})
			}
		default:
			return nil, fmt.Errorf("%w: invalid operation %q", ErrDeltaMalformed, string(token[0]))
		}
	}
	if i != len(runes) {
		return nil, fmt.Errorf("%w: delta length (%v) is different from source text length (%v)",
			ErrDeltaMismatch, i, len(runes))
	}
	return edits, nil
}
