package client

import (
	"testing"

	"github.com/Seednode/quizbox/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderLeaderboard(t *testing.T) {
	rows := RenderLeaderboard([]protocol.LeaderboardEntry{
		{PlayerID: 2, Name: "Sam", Avatar: "🐼", Score: 5, Correct: 2, Total: 3},
		{PlayerID: 1, Name: "Alex", Score: 5, Correct: 1, Total: 3},
		{PlayerID: 3, Name: "Kim", Score: 1, Total: 3},
	})

	require.Len(t, rows, 3)

	// Ranks are positional; tied scores still get sequential ranks.
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, "Sam", rows[0].Name)
	assert.Equal(t, "🐼", rows[0].Avatar)
	assert.Equal(t, 2, rows[1].Rank)
	assert.Equal(t, "Alex", rows[1].Name)
	assert.Equal(t, 3, rows[2].Rank)
	assert.Equal(t, 1, rows[2].Score)
}

func TestRenderLeaderboardEmpty(t *testing.T) {
	rows := RenderLeaderboard(nil)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}
