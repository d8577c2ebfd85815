package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Seednode/quizbox/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLobby(t *testing.T, handler http.Handler) *Lobby {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	transport, err := NewTransport(srv.URL)
	require.NoError(t, err)

	return NewLobby(transport)
}

func TestListGames(t *testing.T) {
	lobby := newTestLobby(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]protocol.GameSummary{
			{ID: 1, CreatedAt: time.Now()},
			{ID: 2, CreatedAt: time.Now()},
		})
	}))

	games := lobby.ListGames(context.Background())
	require.Len(t, games, 2)
	assert.Equal(t, int64(1), games[0].ID)

	// The last successful fetch is cached.
	assert.Len(t, lobby.Games(), 2)
}

func TestListGamesFailureYieldsEmptyList(t *testing.T) {
	lobby := newTestLobby(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	games := lobby.ListGames(context.Background())
	assert.NotNil(t, games)
	assert.Empty(t, games)
}

func TestCreateGameRecordsIdentity(t *testing.T) {
	lobby := newTestLobby(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload protocol.CreateGameRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Alex", payload.HostName)
		assert.Equal(t, 5, payload.Rounds)

		_ = json.NewEncoder(w).Encode(protocol.CreateGameResponse{GameID: 42, HostPlayerID: 7})
	}))

	assert.False(t, lobby.Joined())

	gameID, playerID, err := lobby.CreateGame(context.Background(), "Alex", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(42), gameID)
	assert.Equal(t, int64(7), playerID)

	assert.True(t, lobby.Joined())
	assert.Equal(t, int64(42), lobby.GameID())
	assert.Equal(t, int64(7), lobby.PlayerID())
}

func TestCreateGameValidation(t *testing.T) {
	lobby := newTestLobby(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not reach the network")
	}))

	for _, name := range []string{"", "   "} {
		_, _, err := lobby.CreateGame(context.Background(), name, 5)
		assert.ErrorIs(t, err, ErrValidation)
	}
	assert.False(t, lobby.Joined())
}

func TestJoinGameRecordsIdentity(t *testing.T) {
	lobby := newTestLobby(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(protocol.JoinGameResponse{PlayerID: 9, GameID: 42})
	}))

	playerID, err := lobby.JoinGame(context.Background(), 42, "Sam")
	require.NoError(t, err)
	assert.Equal(t, int64(9), playerID)
	assert.Equal(t, int64(42), lobby.GameID())
}

func TestJoinGameValidation(t *testing.T) {
	lobby := newTestLobby(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not reach the network")
	}))

	cases := []struct {
		name       string
		gameID     int64
		playerName string
	}{
		{"zero game id", 0, "Sam"},
		{"negative game id", -1, "Sam"},
		{"empty name", 42, ""},
		{"blank name", 42, "   "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := lobby.JoinGame(context.Background(), tc.gameID, tc.playerName)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestPollStopsOnJoin(t *testing.T) {
	var mu sync.Mutex
	listCalls := 0

	lobby := newTestLobby(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/games":
			mu.Lock()
			listCalls++
			mu.Unlock()
			_ = json.NewEncoder(w).Encode([]protocol.GameSummary{{ID: 42, CreatedAt: time.Now()}})
		case r.Method == http.MethodPost && r.URL.Path == "/games/42/join":
			_ = json.NewEncoder(w).Encode(protocol.JoinGameResponse{PlayerID: 9, GameID: 42})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	lobby.pollEvery = 5 * time.Millisecond

	done := make(chan struct{})
	go func() {
		lobby.Poll(context.Background())
		close(done)
	}()

	// The loop refreshes the list while nothing is joined.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return listCalls >= 2
	}, 2*time.Second, time.Millisecond)

	_, err := lobby.JoinGame(context.Background(), 42, "Sam")
	require.NoError(t, err)

	// Joining ends the poll on its next tick.
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poll did not stop after joining")
	}
}

func TestPollStopsOnCancel(t *testing.T) {
	lobby := newTestLobby(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]protocol.GameSummary{})
	}))
	lobby.pollEvery = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		lobby.Poll(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poll did not stop on context cancel")
	}
}

func TestJoinGameNotFound(t *testing.T) {
	lobby := newTestLobby(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := lobby.JoinGame(context.Background(), 9999, "Sam")
	assert.ErrorIs(t, err, ErrNetwork)
	assert.False(t, lobby.Joined())
}
