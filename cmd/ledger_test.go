package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"albumbot/model"
)

func TestRecordLine(t *testing.T) {
	rec := &model.Record{
		Tag:  3,
		Data: model.Entity{Title: "X", ArtistName: "Y"},
		Year: "1999",
	}
	line := recordLine(rec)
	assert.Equal(t, "  #3 Y - X (1999)", line)

	// Terminal output sticks to ASCII punctuation.
	for _, r := range line {
		assert.Less(t, r, rune(128), "non-ASCII rune %q in %q", r, line)
	}
}
