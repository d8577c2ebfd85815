/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGames(t *testing.T) {
	store := newMemoryStore()

	game, err := store.CreateGame(5)
	require.NoError(t, err)
	assert.Equal(t, 5, game.Rounds)

	host, err := store.CreatePlayer(game.ID, "Alex")
	require.NoError(t, err)

	require.NoError(t, store.SetHostPlayer(game.ID, host.ID))

	got, err := store.GetGame(game.ID)
	require.NoError(t, err)
	assert.Equal(t, host.ID, got.HostPlayerID)

	_, err = store.GetGame(9999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.CreatePlayer(9999, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStorePlayersSortedByID(t *testing.T) {
	store := newMemoryStore()

	game, err := store.CreateGame(3)
	require.NoError(t, err)

	for _, name := range []string{"Alex", "Sam", "Kim"} {
		_, err := store.CreatePlayer(game.ID, name)
		require.NoError(t, err)
	}

	players, err := store.PlayersByGame(game.ID)
	require.NoError(t, err)
	require.Len(t, players, 3)

	assert.Equal(t, "Alex", players[0].Name)
	assert.Equal(t, "Sam", players[1].Name)
	assert.Equal(t, "Kim", players[2].Name)

	require.NoError(t, store.DeletePlayer(players[1].ID))

	players, err = store.PlayersByGame(game.ID)
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, "Kim", players[1].Name)
}

func TestMemoryStoreUpsertSubmissionReplaces(t *testing.T) {
	store := newMemoryStore()

	game, err := store.CreateGame(1)
	require.NoError(t, err)
	player, err := store.CreatePlayer(game.ID, "Alex")
	require.NoError(t, err)
	round, err := store.CreateRound(game.ID, 0, 1)
	require.NoError(t, err)

	first, err := store.UpsertSubmission(round.ID, player.ID, "chips")
	require.NoError(t, err)

	second, err := store.UpsertSubmission(round.ID, player.ID, "salsa")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	subs, err := store.SubmissionsByRound(round.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "salsa", subs[0].Text)
}

func TestMemoryStoreUpsertVoteReplaces(t *testing.T) {
	store := newMemoryStore()

	game, err := store.CreateGame(1)
	require.NoError(t, err)
	voter, err := store.CreatePlayer(game.ID, "Sam")
	require.NoError(t, err)
	round, err := store.CreateRound(game.ID, 0, 1)
	require.NoError(t, err)

	require.NoError(t, store.UpsertVote(round.ID, 101, voter.ID))
	require.NoError(t, store.UpsertVote(round.ID, 102, voter.ID))

	votes, err := store.VotesByRound(round.ID)
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, int64(102), votes[0].SubmissionID)
}

func TestMemoryStoreRandomQuestion(t *testing.T) {
	store := newMemoryStore()

	_, err := store.RandomQuestion()
	assert.ErrorIs(t, err, ErrNoQuestions)

	_, err = store.CreateQuestion("Favorite snack?")
	require.NoError(t, err)

	question, err := store.RandomQuestion()
	require.NoError(t, err)
	assert.Equal(t, "Favorite snack?", question.Text)
}
