/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Seednode/quizbox/protocol"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *memoryStore) {
	t.Helper()

	store := newMemoryStore()
	mux := httprouter.New()
	registerQuizGame(&Config{}, store, mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv, store
}

func postJSONBody(t *testing.T, url string, body, out any) *http.Response {
	t.Helper()

	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(encoded))
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func getJSONBody(t *testing.T, url string, out any) *http.Response {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestCreateGame(t *testing.T) {
	srv, store := newTestServer(t)

	var created protocol.CreateGameResponse
	resp := postJSONBody(t, srv.URL+"/games", protocol.CreateGameRequest{HostName: "Alex", Rounds: 5}, &created)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotZero(t, created.GameID)
	assert.NotZero(t, created.HostPlayerID)

	game, err := store.GetGame(created.GameID)
	require.NoError(t, err)
	assert.Equal(t, 5, game.Rounds)
	assert.Equal(t, created.HostPlayerID, game.HostPlayerID)
}

func TestCreateGameDefaults(t *testing.T) {
	srv, store := newTestServer(t)

	var created protocol.CreateGameResponse
	resp := postJSONBody(t, srv.URL+"/games", map[string]any{}, &created)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	game, err := store.GetGame(created.GameID)
	require.NoError(t, err)
	assert.Equal(t, defaultRounds, game.Rounds)

	host, err := store.GetPlayer(created.HostPlayerID)
	require.NoError(t, err)
	assert.Equal(t, "Host", host.Name)
}

func TestListGames(t *testing.T) {
	srv, _ := newTestServer(t)

	var initial []protocol.GameSummary
	resp := getJSONBody(t, srv.URL+"/games", &initial)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, initial)

	var created protocol.CreateGameResponse
	postJSONBody(t, srv.URL+"/games", protocol.CreateGameRequest{HostName: "Alex"}, &created)

	var games []protocol.GameSummary
	getJSONBody(t, srv.URL+"/games", &games)
	require.Len(t, games, 1)
	assert.Equal(t, created.GameID, games[0].ID)
	assert.False(t, games[0].CreatedAt.IsZero())
}

func TestGetGameDetail(t *testing.T) {
	srv, _ := newTestServer(t)

	var created protocol.CreateGameResponse
	postJSONBody(t, srv.URL+"/games", protocol.CreateGameRequest{HostName: "Alex", Rounds: 3}, &created)

	var detail protocol.GameDetail
	resp := getJSONBody(t, fmt.Sprintf("%s/games/%d", srv.URL, created.GameID), &detail)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created.GameID, detail.ID)
	assert.Equal(t, 3, detail.Rounds)
	assert.Equal(t, created.HostPlayerID, detail.HostPlayerID)
	require.Len(t, detail.Players, 1)
	assert.Equal(t, "Alex", detail.Players[0].Name)
}

func TestGetGameNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := getJSONBody(t, srv.URL+"/games/9999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestJoinGame(t *testing.T) {
	srv, _ := newTestServer(t)

	var created protocol.CreateGameResponse
	postJSONBody(t, srv.URL+"/games", protocol.CreateGameRequest{HostName: "Alex"}, &created)

	var joined protocol.JoinGameResponse
	resp := postJSONBody(t, fmt.Sprintf("%s/games/%d/join", srv.URL, created.GameID),
		protocol.JoinGameRequest{PlayerName: "Sam"}, &joined)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created.GameID, joined.GameID)
	assert.NotZero(t, joined.PlayerID)

	var roster []protocol.Player
	getJSONBody(t, fmt.Sprintf("%s/games/%d/players", srv.URL, created.GameID), &roster)
	require.Len(t, roster, 2)
	assert.Equal(t, "Alex", roster[0].Name)
	assert.Equal(t, "Sam", roster[1].Name)
}

func TestJoinGameNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := postJSONBody(t, srv.URL+"/games/9999/join", protocol.JoinGameRequest{PlayerName: "Sam"}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestScoresAggregateVotes(t *testing.T) {
	srv, store := newTestServer(t)

	var created protocol.CreateGameResponse
	postJSONBody(t, srv.URL+"/games", protocol.CreateGameRequest{HostName: "Alex"}, &created)

	sam, err := store.CreatePlayer(created.GameID, "Sam")
	require.NoError(t, err)
	kim, err := store.CreatePlayer(created.GameID, "Kim")
	require.NoError(t, err)

	round, err := store.CreateRound(created.GameID, 0, 1)
	require.NoError(t, err)

	hostSub, err := store.UpsertSubmission(round.ID, created.HostPlayerID, "salsa")
	require.NoError(t, err)
	samSub, err := store.UpsertSubmission(round.ID, sam.ID, "chips")
	require.NoError(t, err)

	// Sam's answer gets two votes, the host's one.
	require.NoError(t, store.UpsertVote(round.ID, samSub.ID, created.HostPlayerID))
	require.NoError(t, store.UpsertVote(round.ID, samSub.ID, kim.ID))
	require.NoError(t, store.UpsertVote(round.ID, hostSub.ID, sam.ID))

	var scores []protocol.ScoreEntry
	resp := getJSONBody(t, fmt.Sprintf("%s/games/%d/scores", srv.URL, created.GameID), &scores)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, scores, 2)
	assert.Equal(t, "Sam", scores[0].PlayerName)
	assert.Equal(t, 2, scores[0].Points)
	assert.Equal(t, "Alex", scores[1].PlayerName)
	assert.Equal(t, 1, scores[1].Points)
}

func TestRandomQuestionFallback(t *testing.T) {
	srv, store := newTestServer(t)

	var question protocol.QuestionResponse
	resp := getJSONBody(t, srv.URL+"/question/random", &question)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, fallbackQuestion, question.Text)

	_, err := store.CreateQuestion("Favorite snack?")
	require.NoError(t, err)

	getJSONBody(t, srv.URL+"/question/random", &question)
	assert.Equal(t, "Favorite snack?", question.Text)
}

func TestImportQuestions(t *testing.T) {
	srv, _ := newTestServer(t)

	var imported protocol.ImportQuestionsResponse
	resp := postJSONBody(t, srv.URL+"/admin/questions/import",
		protocol.ImportQuestionsRequest{Questions: []string{"One?", "", "Two?"}}, &imported)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, imported.Imported)
}

func TestQRCode(t *testing.T) {
	srv, _ := newTestServer(t)

	var created protocol.CreateGameResponse
	postJSONBody(t, srv.URL+"/games", protocol.CreateGameRequest{HostName: "Alex"}, &created)

	resp, err := http.Get(fmt.Sprintf("%s/games/%d/qr", srv.URL, created.GameID))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
}
