package igdb

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediashelf/mediashelf/internal/apperr"
	"github.com/mediashelf/mediashelf/internal/config"
	"github.com/mediashelf/mediashelf/internal/media"
)

type fakeIGDB struct {
	tokenCalls atomic.Int32
	gameCalls  atomic.Int32
	lastBody   atomic.Value
	gamesFunc  func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeIGDB) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		_, _ = w.Write([]byte(`{"access_token": "abc", "expires_in": 5000000, "token_type": "bearer"}`))
	})
	mux.HandleFunc("/v4/games", func(w http.ResponseWriter, r *http.Request) {
		f.gameCalls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "cid", r.Header.Get("Client-ID"))
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		f.lastBody.Store(string(body))
		f.gamesFunc(w, r)
	})
	return mux
}

func newTestClient(t *testing.T, f *fakeIGDB) *Client {
	t.Helper()
	server := httptest.NewServer(f.handler(t))
	t.Cleanup(server.Close)
	return NewClient(config.IGDBConfig{
		ClientID:     "cid",
		ClientSecret: "csecret",
		BaseURL:      server.URL + "/v4",
		AuthURL:      server.URL + "/oauth2/token",
		Timeout:      5 * time.Second,
		TokenBuffer:  60 * time.Second,
	}, zerolog.Nop())
}

func TestClient_Search(t *testing.T) {
	f := &fakeIGDB{gamesFunc: func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id": 1942, "name": "The Witcher 3: Wild Hunt", "summary": "Geralt hunts monsters.",
			 "first_release_date": 1431993600, "total_rating": 82,
			 "cover": {"url": "//images.igdb.com/igdb/image/upload/t_thumb/co1wyy.jpg"},
			 "genres": [{"name": "Role-playing (RPG)"}],
			 "platforms": [{"abbreviation": "PC", "name": "PC (Microsoft Windows)"}, {"name": "Nintendo Switch"}]},
			{"id": 7, "name": "No Data Game"}
		]`))
	}}
	client := newTestClient(t, f)

	results, err := client.Search(context.Background(), media.TypeGame, `witcher "3"`)
	require.NoError(t, err)
	require.Len(t, results, 2)

	body := f.lastBody.Load().(string)
	assert.True(t, strings.HasPrefix(body, `search "witcher \"3\""; fields name, summary, cover.url`))
	assert.Contains(t, body, "limit 20;")
	assert.Contains(t, body, "where category = 0 | category = 8 | category = 9;")

	w3 := results[0]
	assert.Equal(t, media.TypeGame, w3.MediaType)
	assert.Equal(t, "1942", w3.ExternalID)
	assert.Equal(t, "https://images.igdb.com/igdb/image/upload/t_cover_big/co1wyy.jpg", w3.ImageURL)
	assert.Equal(t, 2015, *w3.ReleaseYear)
	assert.Equal(t, "2015-05-19", w3.ReleaseDate)
	assert.InDelta(t, 16.4, *w3.Rating, 1e-9)
	assert.Equal(t, []string{"PC", "Nintendo Switch"}, w3.Game.Platforms)

	bare := results[1]
	assert.Nil(t, bare.ReleaseYear)
	assert.Nil(t, bare.Rating)
	assert.Empty(t, bare.ImageURL)
	assert.NotNil(t, bare.Genres)

	// the token is reused across requests
	_, err = client.Search(context.Background(), media.TypeGame, "zelda")
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.tokenCalls.Load())
}

func TestClient_Details(t *testing.T) {
	f := &fakeIGDB{gamesFunc: func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{
			"id": 1942, "name": "The Witcher 3: Wild Hunt", "url": "https://www.igdb.com/games/the-witcher-3-wild-hunt",
			"involved_companies": [
				{"company": {"name": "CD Projekt RED"}, "developer": true, "publisher": false},
				{"company": {"name": "CD Projekt"}, "developer": false, "publisher": true},
				{"company": {"name": "CD Projekt RED"}, "developer": true, "publisher": false},
				{"company": {"name": "Bandai Namco"}, "developer": false, "publisher": true}
			],
			"screenshots": [{"url": "//images.igdb.com/igdb/image/upload/t_thumb/sc1.jpg"}],
			"videos": [{"video_id": "c0i88t0Kacs"}]
		}]`))
	}}
	client := newTestClient(t, f)

	record, err := client.Details(context.Background(), media.TypeGame, "1942")
	require.NoError(t, err)

	body := f.lastBody.Load().(string)
	assert.Contains(t, body, "where id = 1942; limit 1;")
	assert.Contains(t, body, "involved_companies.company.name")

	assert.True(t, record.Detailed)
	require.NotNil(t, record.Game)
	assert.Equal(t, []string{"CD Projekt RED"}, record.Game.Developers)
	assert.Equal(t, []string{"CD Projekt", "Bandai Namco"}, record.Game.Publishers)
	assert.Equal(t, []string{"https://images.igdb.com/igdb/image/upload/t_screenshot_med/sc1.jpg"}, record.Game.Screenshots)
	assert.Equal(t, []string{"c0i88t0Kacs"}, record.Game.Videos)
	assert.Equal(t, "https://www.igdb.com/games/the-witcher-3-wild-hunt", record.Game.Link)
}

func TestClient_Details_EmptyIsNotFound(t *testing.T) {
	f := &fakeIGDB{gamesFunc: func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}}
	_, err := newTestClient(t, f).Details(context.Background(), media.TypeGame, "99999999")
	assert.Equal(t, apperr.KindUpstreamNotFound, apperr.KindOf(err))
}

func TestClient_Unauthorized_InvalidatesToken(t *testing.T) {
	var n atomic.Int32
	f := &fakeIGDB{gamesFunc: func(w http.ResponseWriter, r *http.Request) {
		if n.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}}
	client := newTestClient(t, f)

	_, err := client.Search(context.Background(), media.TypeGame, "halo")
	assert.Equal(t, apperr.KindUpstreamAuth, apperr.KindOf(err))
	assert.True(t, apperr.Retryable(err))

	_, err = client.Search(context.Background(), media.TypeGame, "halo")
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.tokenCalls.Load())
}

func TestClient_RateLimited(t *testing.T) {
	f := &fakeIGDB{gamesFunc: func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}}
	_, err := newTestClient(t, f).Search(context.Background(), media.TypeGame, "halo")
	assert.Equal(t, apperr.KindUpstreamRateLimited, apperr.KindOf(err))
}

func TestClient_Popular(t *testing.T) {
	f := &fakeIGDB{gamesFunc: func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id": 1, "name": "A"}]`))
	}}
	results, err := newTestClient(t, f).Popular(context.Background(), media.TypeGame, 12)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	body := f.lastBody.Load().(string)
	assert.Contains(t, body, "sort popularity desc;")
	assert.Contains(t, body, "where total_rating_count > 20 & category = 0;")
	assert.Contains(t, body, "limit 12;")
}

func TestClient_NotConfigured(t *testing.T) {
	client := NewClient(config.IGDBConfig{}, zerolog.Nop())
	assert.False(t, client.IsConfigured())

	_, err := client.Search(context.Background(), media.TypeGame, "halo")
	assert.Equal(t, apperr.KindUnavailable, apperr.KindOf(err))
}

func TestClient_InvalidID(t *testing.T) {
	client := NewClient(config.IGDBConfig{ClientID: "a", ClientSecret: "b"}, zerolog.Nop())
	_, err := client.Details(context.Background(), media.TypeGame, "witcher")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestImageURL(t *testing.T) {
	assert.Equal(t, "", imageURL("", "t_cover_big"))
	assert.Equal(t, "https://images.igdb.com/x/t_cover_big/a.jpg", imageURL("//images.igdb.com/x/t_thumb/a.jpg", "t_cover_big"))
	assert.Equal(t, "https://cdn/t_cover_big/a.jpg", imageURL("https://cdn/t_thumb/a.jpg", "t_cover_big"))
}

func TestClient_NonNumericRatingIsNull(t *testing.T) {
	f := &fakeIGDB{gamesFunc: func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id": 119133, "name": "Elden Ring", "total_rating": "pending"},
			{"id": 1942, "name": "The Witcher 3: Wild Hunt", "total_rating": "82"}
		]`))
	}}

	results, err := newTestClient(t, f).Search(context.Background(), media.TypeGame, "ring")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "119133", results[0].ExternalID)
	assert.Nil(t, results[0].Rating)
	require.NotNil(t, results[1].Rating)
	assert.InDelta(t, 16.4, *results[1].Rating, 1e-9)
}
