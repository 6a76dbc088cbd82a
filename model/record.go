package model

import "strings"

// GenreSeparator is the literal separator genres are split on when entered
// and joined with when stored values are edited. Splitting and joining are
// inverses as long as no genre contains the separator itself.
const GenreSeparator = ", "

// PlaceholderText is stored in the title and artist fields when a link
// cannot be resolved and the placeholder fallback policy is active.
const PlaceholderText = "update me"

// Entity is the per-platform metadata returned by the lookup service.
type Entity struct {
	Title        string `json:"title"`
	ArtistName   string `json:"artistName"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// Record is one captured release. Tag is assigned as the length of the
// user's list at creation time and never changes afterwards.
type Record struct {
	Tag     int      `json:"tag"`
	URL     string   `json:"url"`
	Data    Entity   `json:"data"`
	Year    string   `json:"year,omitempty"`
	Genres  []string `json:"genres,omitempty"`
	Country string   `json:"country,omitempty"`
}

// Ledger is the full persisted collection: user identifier to that user's
// ordered record list. It is serialized as a single JSON object.
type Ledger map[string][]*Record

// NewPlaceholderRecord builds a record for a link the lookup service could
// not resolve. The raw user input is kept as the URL.
func NewPlaceholderRecord(rawURL string) *Record {
	return &Record{
		URL: rawURL,
		Data: Entity{
			Title:      PlaceholderText,
			ArtistName: PlaceholderText,
		},
	}
}

// SplitGenres splits freeform genre input on the literal separator.
func SplitGenres(input string) []string {
	return strings.Split(input, GenreSeparator)
}

// JoinGenres joins a genre list back into its input form.
func JoinGenres(genres []string) string {
	return strings.Join(genres, GenreSeparator)
}

// IsYear reports whether the input is a valid year value: non-empty and
// all digits.
func IsYear(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
