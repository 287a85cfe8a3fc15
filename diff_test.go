package textsync

import (
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func rebuildTexts(edits []Edit) (string, string) {
	text1, text2 := "", ""
	for _, ed := range edits {
		if ed.Op != OpInsert {
			text1 += ed.Text
		}
		if ed.Op != OpDelete {
			text2 += ed.Text
		}
	}
	return text1, text2
}

func TestCommonPrefix(t *testing.T) {
	tests := []struct {
		Name     string
		Text1    string
		Text2    string
		Expected int
	}{
		{"Null", "abc", "xyz", 0},
		{"Non-null", "1234abcdef", "1234xyz", 4},
		{"Whole", "1234", "1234xyz", 4},
	}
	e := New()
	for i, test := range tests {
		actual := e.CommonPrefix(test.Text1, test.Text2)
		assert.Equal(t, test.Expected, actual, fmt.Sprintf("Test case #%d, %s", i, test.Name))
	}
}

func TestCommonPrefixLength(t *testing.T) {
	tests := []struct {
		Text1    string
		Text2    string
		Expected int
	}{
		{"abc", "xyz", 0},
		{"1234abcdef", "1234xyz", 4},
		{"1234", "1234xyz", 4},
	}
	for i, test := range tests {
		actual := commonPrefixLength([]rune(test.Text1), []rune(test.Text2))
		assert.Equal(t, test.Expected, actual, fmt.Sprintf("Test case #%d, %#v", i, test))
	}
}

func TestCommonSuffix(t *testing.T) {
	tests := []struct {
		Name     string
		Text1    string
		Text2    string
		Expected int
	}{
		{"Null", "abc", "xyz", 0},
		{"Non-null", "abcdef1234", "xyz1234", 4},
		{"Whole", "1234", "xyz1234", 4},
	}
	e := New()
	for i, test := range tests {
		actual := e.CommonSuffix(test.Text1, test.Text2)
		assert.Equal(t, test.Expected, actual, fmt.Sprintf("Test case #%d, %s", i, test.Name))
	}
}

func TestCommonSuffixLength(t *testing.T) {
	tests := []struct {
		Text1    string
		Text2    string
		Expected int
	}{
		{"abc", "xyz", 0},
		{"abcdef1234", "xyz1234", 4},
		{"1234", "xyz1234", 4},
		{"123", "a3", 1},
	}
	for i, test := range tests {
		actual := commonSuffixLength([]rune(test.Text1), []rune(test.Text2))
		assert.Equal(t, test.Expected, actual, fmt.Sprintf("Test case #%d, %#v", i, test))
	}
}

func TestCommonOverlap(t *testing.T) {
	tests := []struct {
		Name     string
		Text1    string
		Text2    string
		Expected int
	}{
		{"Null", "", "abcd", 0},
		{"Whole", "abc", "abcd", 3},
		{"No overlap", "123456", "abcd", 0},
		{"Overlap", "123456xxx", "xxxabcd", 3},
		// Some overly clever languages (C#) may treat ligatures as equal
		// to their component letters, e.g. U+FB01 == 'fi'.
		{"Unicode", "fi", "ﬁi", 0},
	}
	e := New()
	for i, test := range tests {
		actual := e.CommonOverlap(test.Text1, test.Text2)
		assert.Equal(t, test.Expected, actual, fmt.Sprintf("Test case #%d, %s", i, test.Name))
	}
}

func TestHalfMatch(t *testing.T) {
	tests := []struct {
		Text1    string
		Text2    string
		Timeout  time.Duration
		Expected []string
	}{
		// No match.
		{"1234567890", "abcdef", 1, nil},
		{"12345", "23", 1, nil},
		// Single match.
		{"1234567890", "a345678z", 1, []string{"12", "90", "a", "z", "345678"}},
		{"a345678z", "1234567890", 1, []string{"a", "z", "12", "90", "345678"}},
		{"abc56789z", "1234567890", 1, []string{"abc", "z", "1234", "0", "56789"}},
		{"a23456xyz", "1234567890", 1, []string{"a", "xyz", "1", "7890", "23456"}},
		// Multiple matches.
		{
			"121231234123451234123121",
			"a1234123451234z",
			1,
			[]string{"12123", "123121", "a", "z", "1234123451234"},
		},
		{
			"x-=-=-=-=-=-=-=-=-=-=-=-=",
			"xx-=-=-=-=-=-=-=",
			1,
			[]string{"", "-=-=-=-=-=", "x", "", "x-=-=-=-=-=-=-="},
		},
		{
			"-=-=-=-=-=-=-=-=-=-=-=-=y",
			"-=-=-=-=-=-=-=yy",
			1,
			[]string{"-=-=-=-=-=", "", "", "y", "-=-=-=-=-=-=-=y"},
		},
		// Non-optimal halfmatch: the optimal diff would be
		// -q+x=H-i+e=lloHe+Hu=llo-Hew+y not -qHillo+x=HelloHe-w+Hulloy.
		{
			"qHilloHelloHew",
			"xHelloHeHulloy",
			1,
			[]string{"qHillo", "w", "x", "Hulloy", "HelloHe"},
		},
		// Optimal no halfmatch.
		{"qHilloHelloHew", "xHelloHeHulloy", 0, nil},
	}
	for i, test := range tests {
		e := New()
		e.DiffTimeout = test.Timeout
		actual := e.HalfMatch(test.Text1, test.Text2)
		assert.Equal(t, test.Expected, actual, fmt.Sprintf("Test case #%d, %#v", i, test))
	}
}

func TestBisectSplit(t *testing.T) {
	tests := []struct {
		Text1 string
		Text2 string
	}{
		{"STUV\x05WX\x05YZ\x05[", "WĺĻļ\x05YZ\x05ĽľĿŀZ"},
	}
	e := New()
	for _, test := range tests {
		edits := e.bisectSplit([]rune(test.Text1), []rune(test.Text2), 7, 6,
			time.Now().Add(time.Hour))
		for _, ed := range edits {
			assert.True(t, utf8.ValidString(ed.Text))
		}
	}
}

func TestLinesToChars(t *testing.T) {
	tests := []struct {
		Text1          string
		Text2          string
		ExpectedChars1 string
		ExpectedChars2 string
		ExpectedLines  []string
	}{
		{
			"",
			"alpha\r\nbeta\r\n\r\n\r\n",
			"",
			"1,2,3,3",
			[]string{"", "alpha\r\n", "beta\r\n", "\r\n"},
		},
		{
			"a",
			"b",
			"1",
			"2",
			[]string{"", "a", "b"},
		},
		// Omit final newline.
		{
			"alpha\nbeta\nalpha",
			"",
			"1,2,3",
			"",
			[]string{"", "alpha\n", "beta\n", "alpha"},
		},
	}
	e := New()
	for i, test := range tests {
		actualChars1, actualChars2, actualLines := e.LinesToChars(test.Text1, test.Text2)
		assert.Equal(t, test.ExpectedChars1, actualChars1, fmt.Sprintf("Test case #%d, %#v", i, test))
		assert.Equal(t, test.ExpectedChars2, actualChars2, fmt.Sprintf("Test case #%d, %#v", i, test))
		assert.Equal(t, test.ExpectedLines, actualLines, fmt.Sprintf("Test case #%d, %#v", i, test))
	}
	// More than 256 to reveal any 8-bit limitations.
	n := 300
	lineList := []string{
		"", // Account for the initial empty element of the lines array.
	}
	var charList []string
	for x := 1; x < n+1; x++ {
		lineList = append(lineList, strconv.Itoa(x)+"\n")
		charList = append(charList, strconv.Itoa(x))
	}
	lines := strings.Join(lineList, "")
	chars := strings.Join(charList, ",")
	assert.Equal(t, n, len(strings.Split(chars, ",")))
	actualChars1, actualChars2, actualLines := e.LinesToChars(lines, "")
	assert.Equal(t, chars, actualChars1)
	assert.Equal(t, "", actualChars2)
	assert.Equal(t, lineList, actualLines)
}

func TestCharsToLines(t *testing.T) {
	tests := []struct {
		Edits    []Edit
		Lines    []string
		Expected []Edit
	}{
		{
			Edits: []Edit{
				{OpEqual, "1,2,1"},
				{OpInsert, "2,1,2"},
			},
			Lines: []string{"", "alpha\n", "beta\n"},
			Expected: []Edit{
				{OpEqual, "alpha\nbeta\nalpha\n"},
				{OpInsert, "beta\nalpha\nbeta\n"},
			},
		},
	}
	e := New()
	for i, test := range tests {
		actual := e.CharsToLines(test.Edits, test.Lines)
		assert.Equal(t, test.Expected, actual, fmt.Sprintf("Test case #%d, %#v", i, test))
	}
	// More than 256 to reveal any 8-bit limitations.
	n := 300
	lineList := []string{
		"", // Account for the initial empty element of the lines array.
	}
	charList := []string{}
	for x := 1; x <= n; x++ {
		lineList = append(lineList, strconv.Itoa(x)+"\n")
		charList = append(charList, strconv.Itoa(x))
	}
	assert.Equal(t, n, len(charList))
	chars := strings.Join(charList, ",")
	actual := e.CharsToLines([]Edit{{OpDelete, chars}}, lineList)
	assert.Equal(t, []Edit{{OpDelete, strings.Join(lineList, "")}}, actual)
}

func TestBisect(t *testing.T) {
	tests := []struct {
		Name     string
		Deadline time.Time
		Expected []Edit
	}{
		{
			Name:     "normal",
			Deadline: time.Date(9999, time.December, 31, 23, 59, 59, 59, time.UTC),
			Expected: []Edit{
				{OpDelete, "c"},
				{OpInsert, "m"},
				{OpEqual, "a"},
				{OpDelete, "t"},
				{OpInsert, "p"},
			},
		},
		{
			// The zero time means unlimited time.
			Name:     "zero deadline",
			Deadline: time.Time{},
			Expected: []Edit{
				{OpDelete, "c"},
				{OpInsert, "m"},
				{OpEqual, "a"},
				{OpDelete, "t"},
				{OpInsert, "p"},
			},
		},
		{
			Name:     "timeout",
			Deadline: time.Now().Add(time.Nanosecond),
			Expected: []Edit{
				{OpDelete, "cat"},
				{OpInsert, "map"},
			},
		},
	}
	e := New()
	for i, test := range tests {
		actual := e.Bisect("cat", "map", test.Deadline)
		assert.Equal(t, test.Expected, actual, fmt.Sprintf("Test case #%d, %s", i, test.Name))
	}
	// Test for invalid UTF-8 sequences.
	assert.Equal(t, []Edit{
		{OpEqual, "��"},
	}, e.Bisect("\xe0\xe5", "\xe0\xe5", time.Now().Add(time.Minute)))
}

func TestDiff(t *testing.T) {
	tests := []struct {
		Text1    string
		Text2    string
		Timeout  time.Duration
		Expected []Edit
	}{
		{
			"",
			"",
			time.Second,
			nil,
		},
		{
			"abc",
			"abc",
			time.Second,
			[]Edit{
				{OpEqual, "abc"},
			},
		},
		{
			"abc",
			"ab123c",
			time.Second,
			[]Edit{
				{OpEqual, "ab"},
				{OpInsert, "123"},
				{OpEqual, "c"},
			},
		},
		{
			"a123bc",
			"abc",
			time.Second,
			[]Edit{
				{OpEqual, "a"},
				{OpDelete, "123"},
				{OpEqual, "bc"},
			},
		},
		{
			"abc",
			"a123b456c",
			time.Second,
			[]Edit{
				{OpEqual, "a"},
				{OpInsert, "123"},
				{OpEqual, "b"},
				{OpInsert, "456"},
				{OpEqual, "c"},
			},
		},
		{
			"a123b456c",
			"abc",
			time.Second,
			[]Edit{
				{OpEqual, "a"},
				{OpDelete, "123"},
				{OpEqual, "b"},
				{OpDelete, "456"},
				{OpEqual, "c"},
			},
		},
		// Perform a real diff and switch off the timeout.
		{
			"a",
			"b",
			0,
			[]Edit{
				{OpDelete, "a"},
				{OpInsert, "b"},
			},
		},
		{
			"Apples are a fruit.",
			"Bananas are also fruit.",
			0,
			[]Edit{
				{OpDelete, "Apple"},
				{OpInsert, "Banana"},
				{OpEqual, "s are a"},
				{OpInsert, "lso"},
				{OpEqual, " fruit."},
			},
		},
		{
			"ax\t",
			"ڀx\x00",
			0,
			[]Edit{
				{OpDelete, "a"},
				{OpInsert, "ڀ"},
				{OpEqual, "x"},
				{OpDelete, "\t"},
				{OpInsert, "\x00"},
			},
		},
		{
			"1ayb2",
			"abxab",
			0,
			[]Edit{
				{OpDelete, "1"},
				{OpEqual, "a"},
				{OpDelete, "y"},
				{OpEqual, "b"},
				{OpDelete, "2"},
				{OpInsert, "xab"},
			},
		},
		{
			"abcy",
			"xaxcxabc",
			0,
			[]Edit{
				{OpInsert, "xaxcx"},
				{OpEqual, "abc"},
				{OpDelete, "y"},
			},
		},
		{
			"ABCDa=bcd=efghijklmnopqrsEFGHIJKLMNOefg",
			"a-bcd-efghijklmnopqrs",
			0,
			[]Edit{
				{OpDelete, "ABCD"},
				{OpEqual, "a"},
				{OpDelete, "="},
				{OpInsert, "-"},
				{OpEqual, "bcd"},
				{OpDelete, "="},
				{OpInsert, "-"},
				{OpEqual, "efghijklmnopqrs"},
				{OpDelete, "EFGHIJKLMNOefg"},
			},
		},
		{
			"a [[Pennsylvania]] and [[New",
			" and [[Pennsylvania]]",
			0,
			[]Edit{
				{OpInsert, " "},
				{OpEqual, "a"},
				{OpInsert, "nd"},
				{OpEqual, " [[Pennsylvania]]"},
				{OpDelete, " and [[New"},
			},
		},
	}
	for i, test := range tests {
		e := New()
		e.DiffTimeout = test.Timeout
		actual := e.Diff(test.Text1, test.Text2, false)
		assert.Equal(t, test.Expected, actual, fmt.Sprintf("Test case #%d, %#v", i, test))
	}
	// Test for invalid UTF-8 sequences.
	e := New()
	e.DiffTimeout = 0
	assert.Equal(t, []Edit{{OpDelete, "��"}}, e.Diff("\xe0\xe5", "", false))
}

func TestDiffWithTimeout(t *testing.T) {
	e := New()
	e.DiffTimeout = 200 * time.Millisecond
	a := "`Twas brillig, and the slithy toves\nDid gyre and gimble in the wabe:\nAll mimsy were the borogoves,\nAnd the mome raths outgrabe.\n"
	b := "I am the very model of a modern major general,\nI've information vegetable, animal, and mineral,\nI know the kings of England, and I quote the fights historical,\nFrom Marathon to Waterloo, in order categorical.\n"
	// Increase the text lengths by 8192 times to ensure a timeout.
	for x := 0; x < 13; x++ {
		a = a + a
		b = b + b
	}
	start := time.Now()
	e.Diff(a, b, true)
	elapsed := time.Since(start)
	// Test that we took at least the timeout period.
	assert.True(t, elapsed >= e.DiffTimeout, fmt.Sprintf("%v !>= %v", elapsed, e.DiffTimeout))
	// Test that we didn't take forever (be very forgiving). Theoretically
	// this could fail very occasionally if the OS locks up for a second at
	// the wrong moment.
	assert.True(t, elapsed < e.DiffTimeout*100, fmt.Sprintf("%v !< %v", elapsed, e.DiffTimeout*100))
}

func TestDiffWithCheckLines(t *testing.T) {
	tests := []struct {
		Text1 string
		Text2 string
	}{
		{
			"1234567890\n1234567890\n1234567890\n1234567890\n1234567890\n1234567890\n1234567890\n1234567890\n1234567890\n1234567890\n1234567890\n1234567890\n1234567890\n",
			"abcdefghij\nabcdefghij\nabcdefghij\nabcdefghij\nabcdefghij\nabcdefghij\nabcdefghij\nabcdefghij\nabcdefghij\nabcdefghij\nabcdefghij\nabcdefghij\nabcdefghij\n",
		},
		{
			"1234567890123456789012345678901234567890123456789012345678901234567890123456789012345678901234567890123456789012345678901234567890",
			"abcdefghijabcdefghijabcdefghijabcdefghijabcdefghijabcdefghijabcdefghijabcdefghijabcdefghijabcdefghijabcdefghijabcdefghijabcdefghij",
		},
		{
			"1234567890\n1234567890\n1234567890\n1234567890\n1234567890\n1234567890\n1234567890\n1234567890\n1234567890\n1234567890\n1234567890\n1234567890\n1234567890\n",
			"abcdefghij\n1234567890\n1234567890\n1234567890\nabcdefghij\n1234567890\n1234567890\n1234567890\nabcdefghij\n1234567890\n1234567890\n1234567890\nabcdefghij\n",
		},
	}
	e := New()
	e.DiffTimeout = 0
	// Test cases must be at least 100 chars long to pass the cutoff.
	for i, test := range tests {
		withoutCheckLines := e.Diff(test.Text1, test.Text2, false)
		withCheckLines := e.Diff(test.Text1, test.Text2, true)
		// The line-mode token encoding can split a token mid-number before
		// the rediff pass repairs the texts, so the edit scripts are not
		// always identical; the rebuilt texts must be.
		if i != 2 {
			assert.Equal(t, withoutCheckLines, withCheckLines, fmt.Sprintf("Test case #%d, %#v", i, test))
		}
		rebuilt1a, rebuilt2a := rebuildTexts(withoutCheckLines)
		rebuilt1b, rebuilt2b := rebuildTexts(withCheckLines)
		assert.Equal(t, rebuilt1a, rebuilt1b, fmt.Sprintf("Test case #%d, %#v", i, test))
		assert.Equal(t, rebuilt2a, rebuilt2b, fmt.Sprintf("Test case #%d, %#v", i, test))
	}
}

func speedtestTexts() (string, string) {
	s1 := "`Twas brillig, and the slithy toves\nDid gyre and gimble in the wabe:\nAll mimsy were the borogoves,\nAnd the mome raths outgrabe.\n"
	s2 := "I am the very model of a modern major general,\nI've information vegetable, animal, and mineral,\nI know the kings of England, and I quote the fights historical,\nFrom Marathon to Waterloo, in order categorical.\n"
	for x := 0; x < 10; x++ {
		s1 = s1 + s1
		s2 = s2 + s2
	}
	return s1, s2
}

func BenchmarkDiff(b *testing.B) {
	s1, s2 := speedtestTexts()
	e := New()
	e.DiffTimeout = time.Second
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Diff(s1, s2, true)
	}
}

func BenchmarkDiffRunesLines(b *testing.B) {
	s1, s2 := speedtestTexts()
	e := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		text1, text2, lines := e.LinesToRunes(s1, s2)
		edits := e.DiffRunes(text1, text2, false)
		_ = e.CharsToLines(edits, lines)
	}
}

func BenchmarkCommonPrefix(b *testing.B) {
	s := "ABCDEFGHIJKLMNOPQRSTUVWXYZÅÄÖ"
	e := New()
	for i := 0; i < b.N; i++ {
		e.CommonPrefix(s, s)
	}
}

func BenchmarkCommonSuffix(b *testing.B) {
	s := "ABCDEFGHIJKLMNOPQRSTUVWXYZÅÄÖ"
	e := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sinkInt = e.CommonSuffix(s, s)
	}
}

// sinkInt defeats compiler optimization of benchmark bodies.
var sinkInt int

func BenchmarkCommonLength(b *testing.B) {
	tests := []struct {
		Name string
		X    []rune
		Y    []rune
	}{
		{Name: "empty", X: nil, Y: []rune{}},
		{Name: "short", X: []rune("AABCC"), Y: []rune("AA-CC")},
		{
			Name: "long",
			X:    []rune(strings.Repeat("A", 1000) + "B" + strings.Repeat("C", 1000)),
			Y:    []rune(strings.Repeat("A", 1000) + "-" + strings.Repeat("C", 1000)),
		},
	}
	b.Run("prefix", func(b *testing.B) {
		for _, test := range tests {
			b.Run(test.Name, func(b *testing.B) {
				for i := 0; i < b.N; i++ {
					sinkInt = commonPrefixLength(test.X, test.Y)
				}
			})
		}
	})
	b.Run("suffix", func(b *testing.B) {
		for _, test := range tests {
			b.Run(test.Name, func(b *testing.B) {
				for i := 0; i < b.N; i++ {
					sinkInt = commonSuffixLength(test.X, test.Y)
				}
			})
		}
	})
}

func BenchmarkHalfMatch(b *testing.B) {
	s1, s2 := speedtestTexts()
	e := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.HalfMatch(s1, s2)
	}
}
