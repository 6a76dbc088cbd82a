package resolver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lookupResponse mirrors the lookup service's JSON shape.
func lookupResponse(pageURL string, entities map[string]map[string]string) []byte {
	body := map[string]interface{}{
		"pageUrl":            pageURL,
		"entitiesByUniqueId": entities,
	}
	data, _ := json.Marshal(body)
	return data
}

func TestResolveMatchesTargetPlatform(t *testing.T) {
	var gotURL, gotCountry string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1-alpha.1/links", r.URL.Path)
		gotURL = r.URL.Query().Get("url")
		gotCountry = r.URL.Query().Get("userCountry")
		w.Write(lookupResponse("https://song.link/y/123", map[string]map[string]string{
			"ITUNES_SONG::1": {"title": "Other", "artistName": "Other", "thumbnailUrl": "https://img/1"},
			"YANDEX_SONG::2": {"title": "X", "artistName": "Y", "thumbnailUrl": "https://img/2"},
		}))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "RU", "YANDEX")
	res, err := c.Resolve(context.Background(), "https://music.yandex.ru/album/1")
	require.NoError(t, err)

	assert.Equal(t, "https://music.yandex.ru/album/1", gotURL)
	assert.Equal(t, "RU", gotCountry)
	assert.Equal(t, "https://song.link/y/123", res.PageURL)
	assert.Equal(t, "X", res.Entity.Title)
	assert.Equal(t, "Y", res.Entity.ArtistName)
	assert.Equal(t, "https://img/2", res.Entity.ThumbnailURL)
}

func TestResolveNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(lookupResponse("https://song.link/x", map[string]map[string]string{
			"SPOTIFY_SONG::1": {"title": "X", "artistName": "Y"},
		}))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "RU", "YANDEX")
	_, err := c.Resolve(context.Background(), "https://open.spotify.com/album/1")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestResolveLookupFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "RU", "YANDEX")
	_, err := c.Resolve(context.Background(), "https://music.yandex.ru/album/1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoMatch)
}

func TestPlatformTag(t *testing.T) {
	assert.Equal(t, "YANDEX", platformTag("YANDEX_SONG::12345"))
	assert.Equal(t, "ITUNES", platformTag("ITUNES_ALBUM::9"))
	assert.Equal(t, "SPOTIFY", platformTag("SPOTIFY::9"))
	assert.Equal(t, "DEEZER", platformTag("DEEZER"))
}

func TestResolvePlatformIsConfigurable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(lookupResponse("https://song.link/x", map[string]map[string]string{
			"ITUNES_SONG::1": {"title": "X", "artistName": "Y"},
		}))
	}))
	defer srv.Close()

	// The earlier bot revision filtered on the ITUNES store tag.
	c := NewClient(srv.URL, "RU", "ITUNES")
	res, err := c.Resolve(context.Background(), "https://music.apple.com/album/1")
	require.NoError(t, err)
	assert.Equal(t, "X", res.Entity.Title)
}
