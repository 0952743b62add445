package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"factloop/pkg/decision"
	"factloop/pkg/epoch"
	"factloop/pkg/game"
	"factloop/pkg/tile"
)

type fakeService struct {
	descErr   error
	tilesErr  error
	logErr    error
	lastNum   int
	lastLang  string
	logged    []string
	tileCount int
}

func (f *fakeService) Describe(ctx context.Context) (game.Description, error) {
	if f.descErr != nil {
		return game.Description{}, f.descErr
	}
	return game.Description{
		Label:        map[string]string{"en": "Missing Date of Death"},
		Description:  map[string]string{"en": "desc"},
		Instructions: map[string]string{"en": "collected until 20190601"},
		Icon:         "http://example.org/icon.png",
	}, nil
}

func (f *fakeService) Tiles(ctx context.Context, num int, lang string) ([]tile.Tile, error) {
	f.lastNum = num
	f.lastLang = lang
	if f.tilesErr != nil {
		return nil, f.tilesErr
	}
	tiles := make([]tile.Tile, 0, f.tileCount)
	for i := 0; i < f.tileCount; i++ {
		tiles = append(tiles, tile.Tile{ID: "Q1"})
	}
	return tiles, nil
}

func (f *fakeService) LogDecision(ctx context.Context, player, qNumber string, d decision.Decision) error {
	if f.logErr != nil {
		return f.logErr
	}
	f.logged = append(f.logged, player+"/"+qNumber+"/"+string(d))
	return nil
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestDescAction(t *testing.T) {
	s := New(&fakeService{}, 0)
	rec := get(t, s, "/?action=desc")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Missing Date of Death", body["label"].(map[string]any)["en"])
	assert.Contains(t, body["instructions"].(map[string]any)["en"], "20190601")
}

func TestDescActionFailure(t *testing.T) {
	s := New(&fakeService{descErr: epoch.ErrNoEpoch}, 0)
	rec := get(t, s, "/?action=desc")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "game data not ready")
}

func TestTilesAction(t *testing.T) {
	svc := &fakeService{tileCount: 2}
	s := New(svc, 0)
	rec := get(t, s, "/?action=tiles&num=2&lang=en")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, svc.lastNum)
	assert.Equal(t, "en", svc.lastLang)

	var body struct {
		Tiles []tile.Tile `json:"tiles"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Tiles, 2)
}

func TestTilesNumParsing(t *testing.T) {
	cases := []struct {
		name   string
		target string
		want   int
	}{
		{"missing num", "/?action=tiles&lang=en", 1},
		{"garbage num", "/?action=tiles&num=xyz", 1},
		{"negative num", "/?action=tiles&num=-3", 1},
		{"capped num", "/?action=tiles&num=9999", 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeService{}
			s := New(svc, 0)
			get(t, s, tc.target)
			assert.Equal(t, tc.want, svc.lastNum)
		})
	}
}

func TestTilesFailureYieldsEmptyBatch(t *testing.T) {
	s := New(&fakeService{tilesErr: errors.New("boom")}, 0)
	rec := get(t, s, "/?action=tiles&num=3")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tiles":[]}`, rec.Body.String())
}

func TestLogAction(t *testing.T) {
	svc := &fakeService{}
	s := New(svc, 0)
	rec := get(t, s, "/?action=log_action&user=alice&tile=Q42&decision=accept")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"logging info"}`, rec.Body.String())
	require.Len(t, svc.logged, 1)
	assert.Equal(t, "alice/Q42/accept", svc.logged[0])
}

// The player is acknowledged even when logging fails or the parameters are
// unusable; that is the platform contract.
func TestLogActionAlwaysAcknowledges(t *testing.T) {
	cases := []struct {
		name string
		svc  *fakeService
		url  string
	}{
		{"store failure", &fakeService{logErr: errors.New("db down")}, "/?action=log_action&user=alice&tile=Q42&decision=accept"},
		{"bad decision", &fakeService{}, "/?action=log_action&user=alice&tile=Q42&decision=maybe"},
		{"missing user", &fakeService{}, "/?action=log_action&tile=Q42&decision=skip"},
		{"missing tile", &fakeService{}, "/?action=log_action&user=alice&decision=skip"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := New(tc.svc, 0)
			rec := get(t, s, tc.url)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"status":"logging info"}`, rec.Body.String())
		})
	}
}

func TestUnknownAction(t *testing.T) {
	s := New(&fakeService{}, 0)
	for _, target := range []string{"/", "/?action=bogus"} {
		rec := get(t, s, target)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"No valid action!"}`, rec.Body.String())
	}
}

func TestJSONPWrapping(t *testing.T) {
	s := New(&fakeService{}, 0)
	rec := get(t, s, "/?action=desc&callback=handleDesc")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/javascript; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "/**/handleDesc("), "body = %q", body)
	assert.True(t, strings.HasSuffix(body, ");"), "body = %q", body)
}

func TestJSONPInvalidCallbackFallsBackToJSON(t *testing.T) {
	s := New(&fakeService{}, 0)
	for _, cb := range []string{"alert(1)", "a%20b", "1abc", "x;y"} {
		rec := get(t, s, "/?action=desc&callback="+cb)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"), "callback %q", cb)
	}
}

func TestHealth(t *testing.T) {
	s := New(&fakeService{}, 0)
	rec := get(t, s, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
