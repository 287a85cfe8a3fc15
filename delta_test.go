package textsync

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromDeltaErrors(t *testing.T) {
	tests := []struct {
		Name     string
		Text     string
		Delta    string
		Expected error
	}{
		{"Delta shorter than text", "jumps over the lazyx", "=4\t-1\t+ed\t=6\t-3\t+a\t=5\t+old dog", ErrDeltaMismatch},
		{"Delta longer than text", "umps over the lazy", "=4\t-1\t+ed\t=6\t-3\t+a\t=5\t+old dog", ErrDeltaMismatch},
		{"Invalid URL escaping", "", "+%c3%xy", ErrDeltaMalformed},
		{"Invalid UTF-8 sequence", "", "+%c3xy", ErrDeltaMalformed},
		{"Invalid diff operation", "", "a", ErrDeltaMalformed},
		{"Invalid diff syntax", "", "-", ErrDeltaMalformed},
		{"Negative number in delta", "", "--1", ErrDeltaMalformed},
		{"Empty case", "", "", nil},
	}
	e := New()
	for i, test := range tests {
		edits, err := e.FromDelta(test.Text, test.Delta)
		msg := fmt.Sprintf("Test case #%d, %s", i, test.Name)
		if test.Expected == nil {
			assert.Nil(t, err, msg)
			assert.Nil(t, edits, msg)
		} else {
			assert.Nil(t, edits, msg)
			assert.True(t, errors.Is(err, test.Expected), msg)
		}
	}
}

func TestDeltaRoundTrip(t *testing.T) {
	e := New()
	// Convert an edit script into a delta string.
	edits := []Edit{
		{OpEqual, "jump"},
		{OpDelete, "s"},
		{OpInsert, "ed"},
		{OpEqual, " over "},
		{OpDelete, "the"},
		{OpInsert, "a"},
		{OpEqual, " lazy"},
		{OpInsert, "old dog"},
	}
	text1 := e.Text1(edits)
	assert.Equal(t, "jumps over the lazy", text1)
	delta := e.ToDelta(edits)
	assert.Equal(t, "=4\t-1\t+ed\t=6\t-3\t+a\t=5\t+old dog", delta)
	// Convert the delta string back into an edit script.
	deltaEdits, err := e.FromDelta(text1, delta)
	assert.NoError(t, err)
	assert.Equal(t, edits, deltaEdits)
	// Deltas with special characters.
	edits = []Edit{
		{OpEqual, "ڀ \x00 \t %"},
		{OpDelete, "ځ \x01 \n ^"},
		{OpInsert, "ڂ \x02 \\ |"},
	}
	text1 = e.Text1(edits)
	assert.Equal(t, "ڀ \x00 \t %ځ \x01 \n ^", text1)
	delta = e.ToDelta(edits)
	assert.Equal(t, "=7\t-7\t+%DA%82 %02 %5C %7C", delta)
	deltaEdits, err = e.FromDelta(text1, delta)
	assert.Nil(t, err)
	assert.Equal(t, edits, deltaEdits)
	// Verify the pool of unchanged characters.
	edits = []Edit{
		{OpInsert, "A-Z a-z 0-9 - _ . ! ~ * ' ( ) ; / ? : @ & = + $ , # "},
	}
	delta = e.ToDelta(edits)
	assert.Equal(t, "+A-Z a-z 0-9 - _ . ! ~ * ' ( ) ; / ? : @ & = + $ , # ", delta, "Unchanged characters.")
	deltaEdits, err = e.FromDelta("", delta)
	assert.Nil(t, err)
	assert.Equal(t, edits, deltaEdits)
}
