package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizparty/trivia-backend/internal/game"
	"github.com/quizparty/trivia-backend/internal/leaderboard"
)

func testServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	lb := leaderboard.New(leaderboard.NewMemStore())
	registry := game.NewRegistry(nil, lb)
	srv := New(Config{Port: "0", PublicURL: "http://play.example.com"}, registry, lb)
	ts := httptest.NewServer(srv.RegisterRoutes())
	t.Cleanup(ts.Close)
	return srv, ts
}

func TestHealth(t *testing.T) {
	_, ts := testServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateAndInspectSession(t *testing.T) {
	_, ts := testServer(t)

	resp, err := http.Post(ts.URL+"/sessions", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	code := created["code"]
	assert.Regexp(t, "^[A-Z]{4,5}$", code)

	info, err := http.Get(ts.URL + "/sessions/" + code)
	require.NoError(t, err)
	defer info.Body.Close()
	assert.Equal(t, http.StatusOK, info.StatusCode)

	missing, err := http.Get(ts.URL + "/sessions/XXXXXX")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestSessionQR(t *testing.T) {
	_, ts := testServer(t)

	resp, err := http.Post(ts.URL+"/sessions", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	var created map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	qr, err := http.Get(ts.URL + "/sessions/" + created["code"] + "/qr")
	require.NoError(t, err)
	defer qr.Body.Close()
	assert.Equal(t, http.StatusOK, qr.StatusCode)
	assert.Equal(t, "image/png", qr.Header.Get("Content-Type"))
}

func TestLeaderboardEndpoint(t *testing.T) {
	_, ts := testServer(t)

	resp, err := http.Get(ts.URL + "/leaderboard")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var data map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&data))
	assert.Contains(t, data, "week")
	assert.Contains(t, data, "month")
	assert.Contains(t, data, "all_time")
}

func TestCORSPreflight(t *testing.T) {
	_, ts := testServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/sessions", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
