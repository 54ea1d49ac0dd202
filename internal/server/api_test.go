package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirsapient/slang-bang-react-sub000/internal/config"
	"github.com/sirsapient/slang-bang-react-sub000/internal/engine"
	"github.com/sirsapient/slang-bang-react-sub000/internal/game"
)

type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func newServerForTest(t *testing.T) (*httptest.Server, *game.State, *SessionStats) {
	t.Helper()
	clock := game.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s := game.NewState(config.Default(), config.DefaultGameData(), clock)
	e := engine.New(s, nil, game.NewRand(1))
	e.NewGame()

	stats := NewSessionStats()
	t.Cleanup(stats.Bind(s))

	h := NewHandler(&App{Engine: e, Stats: stats}, log.New(io.Discard, "", 0))
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv, s, stats
}

func doJSON(t *testing.T, srv *httptest.Server, method, path string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestHealthz(t *testing.T) {
	srv, _, _ := newServerForTest(t)

	resp, err := srv.Client().Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestBuyDrug_Envelope(t *testing.T) {
	srv, s, _ := newServerForTest(t)
	s.UpdateCash(100_000)

	status, env := doJSON(t, srv, http.MethodPost, "/api/market/buy",
		map[string]any{"drug": "Weed", "qty": 2})
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.Equal(t, 2, s.InventoryQty("Weed"))
}

func TestBuyDrug_ValidationFailure(t *testing.T) {
	srv, _, _ := newServerForTest(t)

	status, env := doJSON(t, srv, http.MethodPost, "/api/market/buy",
		map[string]any{"drug": "Weed", "qty": 0})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Error)
}

func TestTravel_UnknownCityIs404(t *testing.T) {
	srv, _, _ := newServerForTest(t)

	status, env := doJSON(t, srv, http.MethodPost, "/api/travel",
		map[string]any{"city": "Gotham"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, env.Success)
}

func TestStateSnapshotRead(t *testing.T) {
	srv, _, _ := newServerForTest(t)

	status, env := doJSON(t, srv, http.MethodGet, "/api/state", nil)
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)

	var snap game.Snapshot
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, "New York", snap.Player.CurrentCity)
	assert.Equal(t, 5000, snap.Player.Cash)
}

func TestEndDay_ReturnsTickResult(t *testing.T) {
	srv, s, _ := newServerForTest(t)

	status, env := doJSON(t, srv, http.MethodPost, "/api/day/end", nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.Equal(t, 2, s.Player().Day)
}

func TestSessionStats_CountEvents(t *testing.T) {
	srv, s, stats := newServerForTest(t)
	s.UpdateCash(100_000)

	_, env := doJSON(t, srv, http.MethodPost, "/api/market/buy",
		map[string]any{"drug": "Weed", "qty": 1})
	require.True(t, env.Success)

	counts := stats.Counts()
	assert.Positive(t, counts[game.EventCashChanged])
	assert.Positive(t, counts[game.EventInventoryChanged])
	assert.Positive(t, counts[game.EventStateChange])
}

func TestSaveWithoutStore(t *testing.T) {
	srv, _, _ := newServerForTest(t)

	status, env := doJSON(t, srv, http.MethodPost, "/api/save",
		map[string]any{"slot": "slot1"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
}
