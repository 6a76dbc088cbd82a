package render

import (
	"fmt"
	"html"
	"strings"
	"unicode"

	"albumbot/model"
)

// genreJoiner separates genres on the caption's genre line.
const genreJoiner = " • "

// Caption renders a record as the HTML announcement caption: the field block
// followed by an italic hashtag line. Values are HTML-escaped; Telegram's
// HTML parse mode chokes on stray angle brackets otherwise.
func Caption(rec *model.Record) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<b>#%d</b>\n", rec.Tag)
	fmt.Fprintf(&b, "<b>Artist:</b> %s\n", html.EscapeString(rec.Data.ArtistName))
	fmt.Fprintf(&b, "<b>Album:</b> %s\n", html.EscapeString(rec.Data.Title))
	fmt.Fprintf(&b, "<b>Year:</b> %s\n", html.EscapeString(rec.Year))
	fmt.Fprintf(&b, "<b>Genre:</b> %s\n", html.EscapeString(strings.Join(rec.Genres, genreJoiner)))
	fmt.Fprintf(&b, "<b>Country:</b> %s\n", html.EscapeString(rec.Country))
	fmt.Fprintf(&b, "<b>Link:</b> %s\n", html.EscapeString(rec.URL))

	fmt.Fprintf(&b, "\n<i>%s</i>", html.EscapeString(hashtagLine(rec)))
	return b.String()
}

// hashtagLine derives the secondary tag line: artist with whitespace
// stripped, a decade bucket, the country, and each genre with everything
// non-alphanumeric stripped.
func hashtagLine(rec *model.Record) string {
	tags := make([]string, 0, 3+len(rec.Genres))

	if artist := stripWhitespace(rec.Data.ArtistName); artist != "" {
		tags = append(tags, "#"+artist)
	}
	if decade := decadeBucket(rec.Year); decade != "" {
		tags = append(tags, "#"+decade)
	}
	if country := stripWhitespace(rec.Country); country != "" {
		tags = append(tags, "#"+country)
	}
	for _, genre := range rec.Genres {
		if g := alphanumeric(genre); g != "" {
			tags = append(tags, "#"+g)
		}
	}
	return strings.Join(tags, " ")
}

// decadeBucket turns "1998" into "1990s". Years shorter than three digits
// produce no bucket.
func decadeBucket(year string) string {
	if len(year) < 3 {
		return ""
	}
	return year[:3] + "0s"
}

func stripWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func alphanumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
