package textsync

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// unescaper reverses the escaping of selected characters for compatibility
// with JavaScript's encodeURI, which leaves them literal. Case-sensitive:
// only the uppercase hex emitted by url.QueryEscape is rewritten.
var unescaper = strings.NewReplacer(
	"%21", "!", "%7E", "~", "%27", "'",
	"%28", "(", "%29", ")", "%3B", ";",
	"%2F", "/", "%3F", "?", "%3A", ":",
	"%40", "@", "%26", "&", "%3D", "=",
	"%2B", "+", "%24", "$", "%2C", ",",
	"%23", "#", "%2A", "*",
)

// indexOf returns the first index of pattern in s at or after s[i].
func indexOf(s, pattern string, i int) int {
	if i > len(s)-1 {
		return -1
	}
	if i <= 0 {
		return strings.Index(s, pattern)
	}
	ind := strings.Index(s[i:], pattern)
	if ind == -1 {
		return -1
	}
	return ind + i
}

// lastIndexOf returns the last index of pattern in s starting at or before
// s[i].
func lastIndexOf(s, pattern string, i int) int {
	if i < 0 {
		return -1
	}
	if i >= len(s) {
		return strings.LastIndex(s, pattern)
	}
	_, size := utf8.DecodeRuneInString(s[i:])
	return strings.LastIndex(s[:i+size], pattern)
}

// runesIndexOf returns the index of pattern in target at or after target[i].
func runesIndexOf(target, pattern []rune, i int) int {
	if i > len(target)-1 {
		return -1
	}
	if i <= 0 {
		return runesIndex(target, pattern)
	}
	ind := runesIndex(target[i:], pattern)
	if ind == -1 {
		return -1
	}
	return ind + i
}

func runesEqual(r1, r2 []rune) bool {
	if len(r1) != len(r2) {
		return false
	}
	for i, c := range r1 {
		if c != r2[i] {
			return false
		}
	}
	return true
}

// runesIndex is the equivalent of strings.Index for rune slices.
func runesIndex(r1, r2 []rune) int {
	last := len(r1) - len(r2)
	for i := 0; i <= last; i++ {
		if runesEqual(r1[i:i+len(r2)], r2) {
			return i
		}
	}
	return -1
}

// intsToString joins ns as comma-separated decimal.
func intsToString(ns []uint32) string {
	if len(ns) == 0 {
		return ""
	}
	// Appr. 3 chars per num plus the comma.
	b := make([]byte, 0, 4*len(ns))
	for _, n := range ns {
		b = strconv.AppendInt(b, int64(n), 10)
		b = append(b, ',')
	}
	return string(b[:len(b)-1])
}

// commonPrefixLength returns the length of the common prefix of two rune
// slices.
func commonPrefixLength(r1, r2 []rune) int {
	// Linear search. See comment in commonSuffixLength.
	n := 0
	for ; n < len(r1) && n < len(r2); n++ {
		if r1[n] != r2[n] {
			return n
		}
	}
	return n
}

// commonSuffixLength returns the length of the common suffix of two rune
// slices.
func commonSuffixLength(r1, r2 []rune) int {
	// Linear search beats the binary search discussed at
	// https://neil.fraser.name/news/2007/10/09/ for typical inputs.
	i1, i2 := len(r1), len(r2)
	for n := 0; ; n++ {
		i1--
		i2--
		if i1 < 0 || i2 < 0 || r1[i1] != r2[i2] {
			return n
		}
	}
}

// splice removes amount elements from edits at index i, replacing them with
// elements.
func splice(edits []Edit, i, amount int, elements ...Edit) []Edit {
	if len(elements) == amount {
		// Easy case: overwrite the relevant items.
		copy(edits[i:], elements)
		return edits
	}
	if len(elements) < amount {
		// Fewer new items than old: copy in the new items and shift the
		// remaining items left.
		copy(edits[i:], elements)
		copy(edits[i+len(elements):], edits[i+amount:])
		end := len(edits) - amount + len(elements)
		// Zero stranded elements at the end so their text can be collected.
		tail := edits[end:]
		for j := range tail {
			tail[j] = Edit{}
		}
		return edits[:end]
	}
	// More new items than old: grow, shift right, copy in.
	need := len(edits) - amount + len(elements)
	for len(edits) < need {
		edits = append(edits, Edit{})
	}
	copy(edits[i+len(elements):], edits[i+amount:])
	copy(edits[i:], elements)
	return edits
}
