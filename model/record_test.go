package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitGenresRoundTrip(t *testing.T) {
	genres := []string{"rock", "jazz", "post-punk"}
	assert.Equal(t, genres, SplitGenres(JoinGenres(genres)))
}

func TestSplitGenres(t *testing.T) {
	assert.Equal(t, []string{"rock", "jazz"}, SplitGenres("rock, jazz"))
	// No separator means one genre, verbatim.
	assert.Equal(t, []string{"rock,jazz"}, SplitGenres("rock,jazz"))
	assert.Equal(t, []string{""}, SplitGenres(""))
}

func TestIsYear(t *testing.T) {
	assert.True(t, IsYear("1998"))
	assert.True(t, IsYear("2026"))
	assert.False(t, IsYear("abc"))
	assert.False(t, IsYear("19a8"))
	assert.False(t, IsYear(""))
	assert.False(t, IsYear("-1998"))
}

func TestNewPlaceholderRecord(t *testing.T) {
	rec := NewPlaceholderRecord("https://example.com/album")
	assert.Equal(t, "https://example.com/album", rec.URL)
	assert.Equal(t, PlaceholderText, rec.Data.Title)
	assert.Equal(t, PlaceholderText, rec.Data.ArtistName)
	assert.Empty(t, rec.Data.ThumbnailURL)
}
